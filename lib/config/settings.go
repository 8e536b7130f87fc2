package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	SoundRoot     string         `mapstructure:"sound_root" yaml:"sound_root"`
	SoundboardDir string         `mapstructure:"soundboard_dir" yaml:"soundboard_dir"`
	Sounds        SoundSettings  `mapstructure:"sounds" yaml:"sounds"`
	Priorities    PrioritySet    `mapstructure:"priorities" yaml:"priorities"`
	Timing        TimingSettings `mapstructure:"timing" yaml:"timing"`
	Panel         PanelSettings  `mapstructure:"panel" yaml:"panel"`
	Deck          DeckSettings   `mapstructure:"deck" yaml:"deck"`
	LogLevel      string         `mapstructure:"log_level" yaml:"log_level"`
}

type SoundSettings struct {
	Start  string   `mapstructure:"start" yaml:"start"`
	Beep   string   `mapstructure:"beep" yaml:"beep"`
	End    string   `mapstructure:"end" yaml:"end"`
	Random []string `mapstructure:"random" yaml:"random,omitempty"`
}

// Lower is more urgent.
type PrioritySet struct {
	Start      int `mapstructure:"start" yaml:"start"`
	Beep       int `mapstructure:"beep" yaml:"beep"`
	End        int `mapstructure:"end" yaml:"end"`
	Soundboard int `mapstructure:"soundboard" yaml:"soundboard"`
	Random     int `mapstructure:"random" yaml:"random"`
}

type TimingSettings struct {
	Tick          time.Duration `mapstructure:"tick" yaml:"tick"`
	Debounce      time.Duration `mapstructure:"debounce" yaml:"debounce"`
	SubmitTimeout time.Duration `mapstructure:"submit_timeout" yaml:"submit_timeout"`
	QueueSize     int           `mapstructure:"queue_size" yaml:"queue_size"`
	MountRetry    time.Duration `mapstructure:"mount_retry" yaml:"mount_retry"`
}

type PanelSettings struct {
	Port string `mapstructure:"port" yaml:"port"`
}

type DeckSettings struct {
	Enabled    bool `mapstructure:"enabled" yaml:"enabled"`
	Brightness int  `mapstructure:"brightness" yaml:"brightness"`
}

func DefaultSettings() Settings {
	return Settings{
		SoundRoot:     "/media/buzzer",
		SoundboardDir: "soundboard",
		Sounds: SoundSettings{
			Start: "buzzer/ding.wav",
			Beep:  "buzzer/contdown1_beep.wav",
			End:   "buzzer/contdown1_beepHighpitch.wav",
		},
		Priorities: PrioritySet{
			Start:      2,
			Beep:       2,
			End:        2,
			Soundboard: 1,
			Random:     3,
		},
		Timing: TimingSettings{
			Tick:          5 * time.Millisecond,
			Debounce:      50 * time.Millisecond,
			SubmitTimeout: 20 * time.Millisecond,
			QueueSize:     2,
			MountRetry:    100 * time.Millisecond,
		},
		Panel: PanelSettings{
			Port: "buzzer",
		},
		Deck: DeckSettings{
			Brightness: 80,
		},
		LogLevel: "info",
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("sound_root", d.SoundRoot)
	v.SetDefault("soundboard_dir", d.SoundboardDir)
	v.SetDefault("sounds.start", d.Sounds.Start)
	v.SetDefault("sounds.beep", d.Sounds.Beep)
	v.SetDefault("sounds.end", d.Sounds.End)
	v.SetDefault("sounds.random", d.Sounds.Random)
	v.SetDefault("priorities.start", d.Priorities.Start)
	v.SetDefault("priorities.beep", d.Priorities.Beep)
	v.SetDefault("priorities.end", d.Priorities.End)
	v.SetDefault("priorities.soundboard", d.Priorities.Soundboard)
	v.SetDefault("priorities.random", d.Priorities.Random)
	v.SetDefault("timing.tick", d.Timing.Tick)
	v.SetDefault("timing.debounce", d.Timing.Debounce)
	v.SetDefault("timing.submit_timeout", d.Timing.SubmitTimeout)
	v.SetDefault("timing.queue_size", d.Timing.QueueSize)
	v.SetDefault("timing.mount_retry", d.Timing.MountRetry)
	v.SetDefault("panel.port", d.Panel.Port)
	v.SetDefault("deck.enabled", d.Deck.Enabled)
	v.SetDefault("deck.brightness", d.Deck.Brightness)
	v.SetDefault("log_level", d.LogLevel)
	for _, def := range Definitions {
		v.SetDefault(valuesSection+"."+def.Key, def.Default)
	}
}

func decodeSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("config: decode settings: %w", err)
	}
	return s, nil
}

type fileLayout struct {
	Settings `yaml:",inline"`
	Values   map[string]int `yaml:"values"`
}

// WriteDefault writes a config file holding every default.
func WriteDefault(path string) error {
	layout := fileLayout{
		Settings: DefaultSettings(),
		Values:   make(map[string]int, len(Definitions)),
	}
	for _, d := range Definitions {
		layout.Values[d.Key] = d.Default
	}

	data, err := yaml.Marshal(layout)
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (t TimingSettings) MarshalYAML() (any, error) {
	return map[string]any{
		"tick":           t.Tick.String(),
		"debounce":       t.Debounce.String(),
		"submit_timeout": t.SubmitTimeout.String(),
		"queue_size":     t.QueueSize,
		"mount_retry":    t.MountRetry.String(),
	}, nil
}
