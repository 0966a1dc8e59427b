// ABOUTME: encode subcommand
// ABOUTME: Loads a source file, optionally resamples it and streams SMD frames to disk
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/resample"
	"github.com/Resonate-Protocol/smd-go/pkg/smd"
	"github.com/rs/zerolog/log"
)

// encodeChunkFrames is how many frames are handed to the encoder at once
const encodeChunkFrames = 4096

func runEncode(args []string, stdout io.Writer) error {
	fs := newFlagSet("encode")
	in := fs.String("in", "", "Input audio file (mp3, flac, opus, wav)")
	out := fs.String("out", "", "Output smd file")
	frequencyRange := fs.Int("range", smd.DefaultFrequencyRange, "Transform size (multiple of 32)")
	limit := fs.Int("limit", 0, "Highest coefficient that may be kept (default -range)")
	table := fs.Int("table", 0, "Coefficients kept per block (default -range/4, multiple of 8)")
	rate := fs.Int("rate", 0, "Resample to this rate before encoding (default source rate)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePaths(map[string]string{"in": *in, "out": *out}); err != nil {
		return err
	}

	src, err := decode.Load(*in)
	if err != nil {
		return err
	}
	if *rate > 0 && *rate != src.Format.SampleRate {
		log.Info().
			Int("from", src.Format.SampleRate).
			Int("to", *rate).
			Msg("resampling")
		src = resample.New(src.Format.SampleRate, *rate).Buffer(src)
	}

	header, err := encodeFile(src, *out, smd.Config{
		FrequencyRange:      *frequencyRange,
		FrequencyUpperLimit: *limit,
		FrequencyTableSize:  *table,
		Logger:              &log.Logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d frames, %s, %.1f kbps\n",
		*out, header.FrameCount, header.Duration().Round(time.Millisecond), header.Bitrate()/1000)
	return nil
}

// encodeFile streams buf to path as an SMD0 file. A zeroed header is written
// first and replaced once the frame count is known.
func encodeFile(buf *audio.Buffer, path string, cfg smd.Config) (smd.Header, error) {
	format := audio.Format{
		Codec:      "smd",
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.Channels,
		BitDepth:   24,
	}
	enc, err := encode.NewSMD(format, cfg)
	if err != nil {
		return smd.Header{}, err
	}
	defer enc.Close()

	f, err := os.Create(path)
	if err != nil {
		return smd.Header{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(make([]byte, smd.HeaderSize)); err != nil {
		return smd.Header{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	frames := buf.Frames()
	for start := 0; start < frames; start += encodeChunkFrames {
		n := min(encodeChunkFrames, frames-start)
		data, err := enc.Encode(audio.Interleave(buf.Samples, start, n))
		if err != nil {
			return smd.Header{}, err
		}
		if _, err := f.Write(data); err != nil {
			return smd.Header{}, fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	data, err := enc.Flush()
	if err != nil {
		return smd.Header{}, err
	}
	if _, err := f.Write(data); err != nil {
		return smd.Header{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if _, err := f.WriteAt(enc.Header(), 0); err != nil {
		return smd.Header{}, fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return smd.Header{}, fmt.Errorf("failed to close %s: %w", path, err)
	}

	header := enc.StreamHeader()
	geom := header.Geometry()
	log.Info().
		Str("file", path).
		Uint32("frames", header.FrameCount).
		Uint32("samples", header.SampleCount).
		Int("range", geom.FrequencyRange).
		Int("limit", geom.FrequencyUpperLimit).
		Int("table", geom.FrequencyTableSize).
		Stringer("mode", geom.Mode).
		Msg("encoded")
	return header, nil
}
