package playback

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

func writeWav(t *testing.T, path string, samples []int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           samples,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func readAll(t *testing.T, src Source) []int {
	t.Helper()
	var out []int
	buf := make([]int, FrameLen)
	for {
		n, err := src.ReadFrame(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
}

func TestFileOpenerDecodesWav(t *testing.T) {
	dir := t.TempDir()
	samples := make([]int, 1000)
	for i := range samples {
		samples[i] = i - 500
	}
	writeWav(t, filepath.Join(dir, "buzzer", "ding.wav"), samples)

	o := NewFileOpener(os.DirFS(dir))
	src, err := o.Open("/buzzer/ding.wav")
	require.NoError(t, err)
	defer src.Close()

	require.Equal(t, Format{SampleRate: 8000, Channels: 1, BitDepth: 16}, src.Format())
	require.Equal(t, samples, readAll(t, src))
}

func TestFileOpenerCachesShortClips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "beep.wav")
	writeWav(t, path, []int{1, 2, 3, 4})

	o := NewFileOpener(os.DirFS(dir))
	src, err := o.Open("beep.wav")
	require.NoError(t, err)
	src.Close()

	// served from memory once the card copy is gone
	require.NoError(t, os.Remove(path))
	src, err = o.Open("beep.wav")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4}, readAll(t, src))
}

func TestFileOpenerErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not audio at all"), 0o644))

	o := NewFileOpener(os.DirFS(dir))
	_, err := o.Open("missing.wav")
	require.Error(t, err)

	_, err = o.Open("notes.txt")
	require.ErrorIs(t, err, errNotWav)
}

func TestTo16(t *testing.T) {
	require.Equal(t, int16(1000), to16(1000, 0, 1))
	require.Equal(t, int16(500), to16(1000, 0, 0.5))
	require.Equal(t, int16(256), to16(65536, 8, 1))
	require.Equal(t, int16(0), to16(128, -8, 1))
	require.Equal(t, int16(32767), to16(40000, 0, 1))
	require.Equal(t, int16(-32768), to16(-40000, 0, 1))
}
