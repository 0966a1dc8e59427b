// ABOUTME: decode subcommand
// ABOUTME: Decodes an SMD file to a WAV file of its original length
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/smd-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/smd-go/pkg/audio/encode"
	"github.com/rs/zerolog/log"
)

func runDecode(args []string, stdout io.Writer) error {
	fs := newFlagSet("decode")
	in := fs.String("in", "", "Input smd file")
	out := fs.String("out", "", "Output wav file")
	bitDepth := fs.Int("bits", 16, "WAV sample size: 16 or 24")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePaths(map[string]string{"in": *in, "out": *out}); err != nil {
		return err
	}

	if err := decodeFile(*in, *out, *bitDepth); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: written\n", *out)
	return nil
}

func decodeFile(in, out string, bitDepth int) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", in, err)
	}
	codec, err := decode.CodecFor(in, data)
	if err != nil {
		return err
	}
	if codec != "smd" {
		return fmt.Errorf("%s is not an smd file", in)
	}

	buf, err := decode.LoadBytes(in, data)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	if err := encode.WriteWAV(f, buf, bitDepth); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", out, err)
	}

	log.Info().
		Str("file", out).
		Int("frames", buf.Frames()).
		Dur("duration", buf.Duration()).
		Msg("decoded")
	return nil
}
