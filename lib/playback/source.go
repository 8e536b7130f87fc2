package playback

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/patrickmn/go-cache"
)

// FrameLen is the number of sample frames handed to the output at once.
const FrameLen = 256

const (
	maxCachedClip   = 512 << 10
	clipExpiration  = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz %d ch %d bit", f.SampleRate, f.Channels, f.BitDepth)
}

// Source yields interleaved PCM samples. ReadFrame returns io.EOF once
// the sound is exhausted.
type Source interface {
	Format() Format
	ReadFrame(dst []int) (int, error)
	Close() error
}

type Opener interface {
	Open(path string) (Source, error)
}

// FileOpener decodes WAV files from fsys. Short clips are kept in memory
// so repeated countdown beeps do not hit the storage device.
type FileOpener struct {
	fsys  fs.FS
	clips *cache.Cache
}

func NewFileOpener(fsys fs.FS) *FileOpener {
	return &FileOpener{
		fsys:  fsys,
		clips: cache.New(clipExpiration, cleanupInterval),
	}
}

func (o *FileOpener) Open(name string) (Source, error) {
	name = strings.TrimPrefix(name, "/")

	if data, ok := o.clips.Get(name); ok {
		return newWavSource(bytes.NewReader(data.([]byte)), nil)
	}

	f, err := o.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("playback: open %s: %w", name, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("playback: stat %s: %w", name, err)
	}

	rs, seekable := f.(io.ReadSeeker)
	if !seekable || st.Size() <= maxCachedClip {
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("playback: read %s: %w", name, err)
		}
		if len(data) <= maxCachedClip {
			o.clips.SetDefault(name, data)
		}
		return newWavSource(bytes.NewReader(data), nil)
	}
	return newWavSource(rs, f)
}

type wavSource struct {
	dec    *wav.Decoder
	buf    *audio.IntBuffer
	format Format
	closer io.Closer
}

var errNotWav = errors.New("playback: not a PCM WAV file")

func newWavSource(r io.ReadSeeker, closer io.Closer) (*wavSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if closer != nil {
			closer.Close()
		}
		return nil, errNotWav
	}
	format := Format{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	return &wavSource{
		dec: dec,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			SourceBitDepth: format.BitDepth,
		},
		format: format,
		closer: closer,
	}, nil
}

func (s *wavSource) Format() Format {
	return s.format
}

func (s *wavSource) ReadFrame(dst []int) (int, error) {
	s.buf.Data = dst
	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("playback: decode: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (s *wavSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
