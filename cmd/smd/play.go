// ABOUTME: play subcommand
// ABOUTME: Decodes an SMD file to an audio output with an optional status TUI
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/smd-go/internal/logging"
	"github.com/Resonate-Protocol/smd-go/internal/ui"
	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/output"
	"github.com/Resonate-Protocol/smd-go/pkg/smd"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func runPlay(args []string, stdout io.Writer) error {
	fs := newFlagSet("play")
	in := fs.String("in", "", "Input smd file")
	loop := fs.Bool("loop", false, "Repeat the file until interrupted")
	noTUI := fs.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	volume := fs.Int("volume", 100, "Initial volume (0-100)")
	backend := fs.String("backend", "oto", "Output backend: oto or malgo")
	logFile := fs.String("log-file", "", "Log file used while the TUI is active (default: discard)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePaths(map[string]string{"in": *in}); err != nil {
		return err
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *in, err)
	}
	dec, err := smd.NewDecoder(data)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}
	header := dec.Header()

	useTUI := !*noTUI
	if useTUI {
		// TUI mode: keep logs off the terminal
		w := io.Discard
		if *logFile != "" {
			f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				return fmt.Errorf("error opening log file: %w", err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		logging.Init(w, zerolog.GlobalLevel())
	}

	out, err := output.New(*backend, 24)
	if err != nil {
		return err
	}
	if err := out.Open(int(header.SampleRate), int(header.Channels)); err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing output")
		}
	}()
	out.SetVolume(*volume)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := newPlayback(dec, out, *loop)

	// TUI setup
	var tuiProg *tea.Program
	var volumeCtrl *ui.VolumeControl
	tuiDone := make(chan struct{})

	if useTUI {
		volumeCtrl = ui.NewVolumeControl()
		tuiProg, err = ui.Run(volumeCtrl, streamStatus(filepath.Base(*in), header, *loop, *volume))
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		go func() {
			defer close(tuiDone)
			if _, err := tuiProg.Run(); err != nil {
				log.Error().Err(err).Msg("TUI stopped")
			}
		}()
		go handleVolumeControl(ctx, out, volumeCtrl)
		go statsUpdateLoop(ctx, p, tuiProg.Send)
	} else {
		close(tuiDone)
		log.Info().
			Str("file", *in).
			Uint32("sample_rate", header.SampleRate).
			Uint16("channels", header.Channels).
			Dur("duration", header.Duration()).
			Bool("loop", *loop).
			Msg("playing")
	}

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	playErr := make(chan error, 1)
	go func() { playErr <- p.run(playCtx) }()

	// Wait for the end of the file, a quit from the TUI, or a signal
	var quit <-chan ui.QuitMsg
	if volumeCtrl != nil {
		quit = volumeCtrl.Quit
	}
	select {
	case err = <-playErr:
	case <-quit:
		log.Info().Msg("Received quit signal from TUI")
		cancel()
		<-playErr
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
		cancel()
		<-playErr
	}

	if tuiProg != nil {
		tuiProg.Send(ui.StatusMsg{State: ui.StateFinished, Position: p.position.Load(), Frames: max(p.frames.Load(), 1)})
		<-tuiDone
	}
	if err != nil {
		return err
	}

	log.Info().
		Int64("samples", p.position.Load()).
		Int64("frames", p.frames.Load()).
		Msg("playback finished")
	fmt.Fprintf(stdout, "%s: played %s\n", *in, p.elapsed().Round(time.Millisecond))
	return nil
}

// playbackChunk is the number of samples per channel decoded per Write
const playbackChunk = 2048

// playback pulls decoded samples and pushes them to an output. The counters
// are read by the stats loop while run is active.
type playback struct {
	dec  *smd.Decoder
	out  output.Output
	loop bool

	total    int64
	planar   [][]float32
	position atomic.Int64
	frames   atomic.Int64
	written  atomic.Int64
}

func newPlayback(dec *smd.Decoder, out output.Output, loop bool) *playback {
	header := dec.Header()
	planar := make([][]float32, header.Channels)
	for ch := range planar {
		planar[ch] = make([]float32, max(playbackChunk, dec.Latency()))
	}
	return &playback{
		dec:    dec,
		out:    out,
		loop:   loop,
		total:  int64(header.SampleCount),
		planar: planar,
	}
}

// run plays until the file ends or ctx is cancelled; a looping playback only
// stops on cancellation
func (p *playback) run(ctx context.Context) error {
	if p.total == 0 {
		return nil
	}
	// The first Latency samples precede the encoded input
	if err := p.dec.Read(p.planar, 0, p.dec.Latency()); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		length := int64(playbackChunk)
		if !p.loop {
			length = min(length, p.total-p.position.Load())
			if length <= 0 {
				return nil
			}
		}

		before := p.dec.Frame()
		if err := p.dec.Read(p.planar, 0, int(length)); err != nil {
			return err
		}
		samples := audio.Interleave(p.planar, 0, int(length))
		if err := p.out.Write(samples); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		p.frames.Add(int64(framesAdvanced(before, p.dec.Frame(), int(p.dec.Header().FrameCount))))
		p.written.Add(int64(len(samples)))
		p.position.Add(length)
	}
}

func (p *playback) elapsed() time.Duration {
	rate := int64(p.dec.Header().SampleRate)
	return time.Duration(p.position.Load()) * time.Second / time.Duration(rate)
}

// framesAdvanced counts decoded frames between two cursor positions of a
// looping decoder
func framesAdvanced(before, after, frameCount int) int {
	if frameCount == 0 {
		return 0
	}
	return ((after-before)%frameCount + frameCount) % frameCount
}

// streamStatus describes a stream for the TUI
func streamStatus(file string, h smd.Header, loop bool, volume int) ui.StatusMsg {
	geom := h.Geometry()
	return ui.StatusMsg{
		File:           file,
		State:          ui.StatePlaying,
		Looping:        &loop,
		Codec:          "smd",
		SampleRate:     int(h.SampleRate),
		Channels:       int(h.Channels),
		BitDepth:       24,
		FrequencyRange: geom.FrequencyRange,
		UpperLimit:     geom.FrequencyUpperLimit,
		TableSize:      geom.FrequencyTableSize,
		SelectorMode:   geom.Mode.String(),
		Bitrate:        int(h.Bitrate()),
		Total:          int64(h.SampleCount),
		Volume:         volume,
	}
}

// handleVolumeControl processes volume changes from TUI
func handleVolumeControl(ctx context.Context, out output.Output, volumeCtrl *ui.VolumeControl) {
	for {
		select {
		case vol := <-volumeCtrl.Changes:
			log.Debug().Int("volume", vol.Volume).Bool("muted", vol.Muted).Msg("volume change")
			out.SetVolume(vol.Volume)
			out.SetMuted(vol.Muted)
		case <-ctx.Done():
			return
		}
	}
}

// statsUpdateLoop periodically updates TUI with playback statistics
func statsUpdateLoop(ctx context.Context, p *playback, send func(tea.Msg)) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			frames := p.frames.Load()
			if frames == 0 {
				continue
			}
			send(ui.StatusMsg{
				Position: p.position.Load(),
				Frames:   frames,
				Written:  p.written.Load(),
			})
		case <-ctx.Done():
			return
		}
	}
}
