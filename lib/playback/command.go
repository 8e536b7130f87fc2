package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

var ErrNoPlayer = errors.New("playback: no audio player found")

// Output is the single physical audio device.
type Output interface {
	Start(f Format, gain float64) error
	WriteFrame(samples []int) error
	// Drain ends the input and returns a channel that delivers once the
	// buffered audio has played out. Stop still cuts it off.
	Drain() <-chan error
	Stop() error
}

// CommandOutput feeds raw 16-bit PCM to paplay or aplay on stdin. Stop
// kills the player so an abandoned sound goes silent immediately.
type CommandOutput struct {
	command string
	args    func(Format) []string

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	drained chan error
	gain    float64
	shift   int
	buf     []byte
}

func NewCommandOutput() (*CommandOutput, error) {
	if path, err := exec.LookPath("paplay"); err == nil {
		return &CommandOutput{command: path, args: paplayArgs}, nil
	}
	if path, err := exec.LookPath("aplay"); err == nil {
		return &CommandOutput{command: path, args: aplayArgs}, nil
	}
	return nil, ErrNoPlayer
}

func paplayArgs(f Format) []string {
	return []string{
		"--raw",
		"--format=s16le",
		"--rate=" + strconv.Itoa(f.SampleRate),
		"--channels=" + strconv.Itoa(f.Channels),
	}
}

func aplayArgs(f Format) []string {
	return []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-r", strconv.Itoa(f.SampleRate),
		"-c", strconv.Itoa(f.Channels),
	}
}

func (o *CommandOutput) Command() string {
	return o.command
}

func (o *CommandOutput) Start(f Format, gain float64) error {
	if o.cmd != nil {
		o.Stop()
	}
	cmd := exec.Command(o.command, o.args(f)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("playback: %s: %w", o.command, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("playback: start %s: %w", o.command, err)
	}
	o.cmd = cmd
	o.stdin = stdin
	o.gain = gain
	o.shift = f.BitDepth - 16
	return nil
}

func (o *CommandOutput) WriteFrame(samples []int) error {
	if o.cmd == nil || o.drained != nil {
		return fmt.Errorf("playback: output not started")
	}
	if cap(o.buf) < len(samples)*2 {
		o.buf = make([]byte, len(samples)*2)
	}
	buf := o.buf[:len(samples)*2]
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(to16(s, o.shift, o.gain)))
	}
	if _, err := o.stdin.Write(buf); err != nil {
		return fmt.Errorf("playback: write: %w", err)
	}
	return nil
}

func (o *CommandOutput) Drain() <-chan error {
	if o.drained != nil {
		return o.drained
	}
	done := make(chan error, 1)
	if o.cmd == nil {
		close(done)
		return done
	}
	o.stdin.Close()
	cmd, name := o.cmd, o.command
	go func() {
		if err := cmd.Wait(); err != nil {
			done <- fmt.Errorf("playback: %s: %w", name, err)
		}
		close(done)
	}()
	o.drained = done
	return done
}

func (o *CommandOutput) Stop() error {
	if o.cmd == nil {
		return nil
	}
	cmd, drained := o.cmd, o.drained
	o.cmd, o.drained = nil, nil
	if drained == nil {
		o.stdin.Close()
	}
	cmd.Process.Kill()
	if drained != nil {
		<-drained
	} else {
		cmd.Wait()
	}
	return nil
}

// to16 scales a sample of any bit depth to int16 and applies gain.
func to16(s int, shift int, gain float64) int16 {
	switch {
	case shift > 0:
		s >>= shift
	case shift == -8:
		// 8-bit WAV is unsigned
		s = (s - 128) << 8
	case shift < 0:
		s <<= -shift
	}
	v := int(float64(s) * gain)
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	return int16(v)
}
