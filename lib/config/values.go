package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/viper"
)

const (
	KeyBeepVolume       = "buz-beep-vol"
	KeyStartVolume      = "buz-start-vol"
	KeyEndVolume        = "buz-end-vol"
	KeySoundboardVolume = "soundboard-vol"
	KeyTimeToAnswer     = "time-to-answer"
	KeyRandomPeriod     = "rs-period"
	KeyRandomAdd        = "rs-random"
	KeyRandomVolume     = "rs-vol"
	KeyRandomEnable     = "rs-enable"
	KeyRandomSelection  = "rs-selection"
)

const valuesSection = "values"

var ErrUnknownKey = errors.New("config: unknown key")

type Definition struct {
	Key     string
	Default int
	Min     int
	Max     int
	Unit    string
	Name    string
}

var Definitions = []Definition{
	{Key: KeyBeepVolume, Default: 60, Min: 0, Max: 100, Unit: "%", Name: "BzrBeep vol"},
	{Key: KeyStartVolume, Default: 60, Min: 0, Max: 100, Unit: "%", Name: "BzrStart vol"},
	{Key: KeyEndVolume, Default: 60, Min: 0, Max: 100, Unit: "%", Name: "BzrEnd vol"},
	{Key: KeySoundboardVolume, Default: 100, Min: 0, Max: 100, Unit: "%", Name: "Soundb vol"},
	{Key: KeyTimeToAnswer, Default: 5, Min: 1, Max: 21, Unit: "s", Name: "Answer time"},
	{Key: KeyRandomPeriod, Default: 30, Min: 0, Max: 100, Unit: "min", Name: "RandSnd freq"},
	{Key: KeyRandomAdd, Default: 10, Min: 0, Max: 30, Unit: "min", Name: "RandSnd add"},
	{Key: KeyRandomVolume, Default: 100, Min: 0, Max: 100, Unit: "%", Name: "RandSnd vol"},
	{Key: KeyRandomEnable, Default: 0, Min: 0, Max: 1, Unit: "", Name: "RandSnd on"},
	{Key: KeyRandomSelection, Default: 0, Min: 0, Max: 99, Unit: "", Name: "RandSnd sel"},
}

func Lookup(key string) (Definition, bool) {
	for _, d := range Definitions {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

func (d Definition) valid(v int) bool {
	return v >= d.Min && v <= d.Max
}

// Store holds the integer tunables in memory and writes them back to the
// YAML file whenever one changes.
type Store struct {
	mu      sync.Mutex
	path    string
	v       *viper.Viper
	values  map[string]int
	changed map[string]bool
	log     *slog.Logger
}

func Load(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	v, err := readViper(path)
	if err != nil {
		return nil, err
	}
	s := &Store{
		path:    path,
		v:       v,
		values:  make(map[string]int, len(Definitions)),
		changed: make(map[string]bool),
		log:     log,
	}

	dirty := false
	for _, d := range Definitions {
		val := v.GetInt(valuesSection + "." + d.Key)
		if !d.valid(val) {
			log.Warn("config value out of range, using default",
				"key", d.Key, "value", val, "default", d.Default)
			val = d.Default
			v.Set(valuesSection+"."+d.Key, val)
			dirty = true
		}
		s.values[d.Key] = val
	}
	if dirty {
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func readViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return v, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Value(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	if d, ok := Lookup(key); ok {
		return d.Default
	}
	return 0
}

func (s *Store) SetValue(key string, value int) error {
	d, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if !d.valid(value) {
		return fmt.Errorf("config: %s: %d outside %d..%d", key, value, d.Min, d.Max)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[key] == value {
		return nil
	}
	s.values[key] = value
	s.changed[key] = true
	s.v.Set(valuesSection+"."+key, value)
	return s.save()
}

func (s *Store) HasChanged(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed[key]
}

func (s *Store) ResetHasChanged(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.changed, key)
}

// Settings decodes the static part of the file.
func (s *Store) Settings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeSettings(s.v)
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("config: write %s: %w", s.path, err)
	}
	s.log.Debug("config saved", "path", s.path)
	return nil
}

// reload applies tunables read from a fresh copy of the file and marks
// the keys whose value differs.
func (s *Store) reload(v *viper.Viper) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for _, d := range Definitions {
		val := v.GetInt(valuesSection + "." + d.Key)
		if !d.valid(val) {
			continue
		}
		if s.values[d.Key] != val {
			s.values[d.Key] = val
			s.changed[d.Key] = true
			s.v.Set(valuesSection+"."+d.Key, val)
			keys = append(keys, d.Key)
		}
	}
	return keys
}
