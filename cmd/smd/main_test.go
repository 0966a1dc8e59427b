// ABOUTME: Tests for the smd command-line tool
// ABOUTME: Runs encode, info and decode end to end and drives playback into a capture output
package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/smd-go/pkg/smd"
	"github.com/stretchr/testify/require"
)

func sineBuffer(rate, channels, frames int) *audio.Buffer {
	buf := audio.NewBuffer(audio.Format{Codec: "pcm", SampleRate: rate, Channels: channels, BitDepth: 16}, frames)
	for ch := range buf.Samples {
		for i := range buf.Samples[ch] {
			buf.Samples[ch][i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		}
	}
	return buf
}

func writeTestWAV(t *testing.T, path string, buf *audio.Buffer) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, encode.WriteWAV(f, buf, 16))
	require.NoError(t, f.Close())
}

func TestRunRoundTrip(t *testing.T) {
	dir := t.TempDir()
	wavIn := filepath.Join(dir, "in.wav")
	smdPath := filepath.Join(dir, "song.smd")
	wavOut := filepath.Join(dir, "out.wav")

	src := sineBuffer(8000, 2, 1000)
	writeTestWAV(t, wavIn, src)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-log-level", "error", "encode", "-in", wavIn, "-out", smdPath, "-range", "64", "-table", "32"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(smdPath)
	require.NoError(t, err)
	h, err := smd.ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, uint32(8000), h.SampleRate)
	require.Equal(t, uint16(2), h.Channels)
	require.Equal(t, uint16(64), h.FrequencyRange)
	require.Equal(t, uint16(32), h.FrequencyTableSize)
	// 1000 samples fill 16 blocks of 64, plus the silent tail block
	require.Equal(t, uint32(17), h.FrameCount)
	require.Len(t, data, int(h.DataSize))

	stdout.Reset()
	code = run([]string{"-log-level", "error", "info", "-in", smdPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), "Frequency range:")
	require.Contains(t, stdout.String(), "Sub-band 0:")

	code = run([]string{"-log-level", "error", "decode", "-in", smdPath, "-out", wavOut}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	decoded, err := decode.Load(wavOut)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Format.Channels)
	require.Equal(t, 8000, decoded.Format.SampleRate)
	require.Equal(t, int(h.SampleCount), decoded.Frames())
}

func TestRunResamples(t *testing.T) {
	dir := t.TempDir()
	wavIn := filepath.Join(dir, "in.wav")
	smdPath := filepath.Join(dir, "song.smd")
	writeTestWAV(t, wavIn, sineBuffer(8000, 1, 800))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-log-level", "error", "encode", "-in", wavIn, "-out", smdPath, "-range", "64", "-rate", "16000"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(smdPath)
	require.NoError(t, err)
	h, err := smd.ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, uint32(16000), h.SampleRate)
	require.GreaterOrEqual(t, h.SampleCount, uint32(1600))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", []string{}, 2},
		{"unknown command", []string{"transcode"}, 2},
		{"missing flag", []string{"encode", "-out", "x.smd"}, 1},
		{"missing file", []string{"info", "-in", filepath.Join(t.TempDir(), "absent.smd")}, 1},
		{"missing input", []string{"encode", "-in", filepath.Join(t.TempDir(), "absent.wav"), "-out", filepath.Join(t.TempDir(), "x.smd")}, 1},
		{"bad flag", []string{"info", "-bogus"}, 1},
		{"version", []string{"-version"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			require.Equal(t, tt.code, run(append([]string{"-log-level", "off"}, tt.args...), &stdout, &stderr))
		})
	}
}

func TestDecodeRejectsOtherFormats(t *testing.T) {
	dir := t.TempDir()
	wavIn := filepath.Join(dir, "in.wav")
	writeTestWAV(t, wavIn, sineBuffer(8000, 1, 100))

	err := decodeFile(wavIn, filepath.Join(dir, "out.wav"), 16)
	require.Error(t, err)
}

// captureOutput records written samples and cancels playback after limit writes
type captureOutput struct {
	samples []int32
	writes  int
	limit   int
	cancel  context.CancelFunc
	volume  int
	muted   bool
}

func (c *captureOutput) Open(sampleRate, channels int) error { return nil }
func (c *captureOutput) SetVolume(volume int)                { c.volume = volume }
func (c *captureOutput) SetMuted(muted bool)                 { c.muted = muted }
func (c *captureOutput) Close() error                        { return nil }

func (c *captureOutput) Write(samples []int32) error {
	c.samples = append(c.samples, samples...)
	c.writes++
	if c.limit > 0 && c.writes >= c.limit {
		c.cancel()
	}
	return nil
}

func encodeTestStream(t *testing.T, frames int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.smd")
	_, err := encodeFile(sineBuffer(8000, 2, frames), path, smd.Config{FrequencyRange: 64})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestPlaybackStopsAtEnd(t *testing.T) {
	dec, err := smd.NewDecoder(encodeTestStream(t, 5000))
	require.NoError(t, err)

	out := &captureOutput{}
	p := newPlayback(dec, out, false)
	require.NoError(t, p.run(context.Background()))

	total := int(dec.Header().SampleCount)
	require.Len(t, out.samples, 2*total)
	require.Equal(t, int64(total), p.position.Load())
	require.Equal(t, int64(2*total), p.written.Load())
	require.Positive(t, p.frames.Load())
}

func TestPlaybackLoopsUntilCancelled(t *testing.T) {
	dec, err := smd.NewDecoder(encodeTestStream(t, 1000))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &captureOutput{limit: 10, cancel: cancel}
	p := newPlayback(dec, out, true)
	require.NoError(t, p.run(ctx))

	require.Equal(t, 10, out.writes)
	require.Equal(t, int64(10*playbackChunk), p.position.Load())
	require.Greater(t, p.position.Load(), int64(dec.Header().SampleCount))
}

func TestFramesAdvanced(t *testing.T) {
	require.Equal(t, 3, framesAdvanced(2, 5, 10))
	require.Equal(t, 4, framesAdvanced(8, 2, 10))
	require.Equal(t, 0, framesAdvanced(1, 1, 10))
	require.Equal(t, 0, framesAdvanced(0, 0, 0))
}

func TestStreamStatus(t *testing.T) {
	dec, err := smd.NewDecoder(encodeTestStream(t, 200))
	require.NoError(t, err)

	msg := streamStatus("song.smd", dec.Header(), true, 80)
	require.Equal(t, "song.smd", msg.File)
	require.Equal(t, 64, msg.FrequencyRange)
	require.Equal(t, "bitmap", msg.SelectorMode)
	require.True(t, *msg.Looping)
	require.Equal(t, 80, msg.Volume)
}
