// ABOUTME: info subcommand
// ABOUTME: Prints the header fields, selector mode and sub-band layout of an SMD file
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Resonate-Protocol/smd-go/pkg/smd"
)

func runInfo(args []string, stdout io.Writer) error {
	fs := newFlagSet("info")
	in := fs.String("in", "", "Input smd file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePaths(map[string]string{"in": *in}); err != nil {
		return err
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *in, err)
	}
	defer f.Close()

	buf := make([]byte, smd.HeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return fmt.Errorf("failed to read header of %s: %w", *in, err)
	}
	h, err := smd.ParseHeader(buf)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}

	return printInfo(stdout, h)
}

func printInfo(w io.Writer, h smd.Header) error {
	geom := h.Geometry()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Sample rate:\t%d Hz\n", h.SampleRate)
	fmt.Fprintf(tw, "Channels:\t%d\n", h.Channels)
	fmt.Fprintf(tw, "Samples:\t%d\n", h.SampleCount)
	fmt.Fprintf(tw, "Duration:\t%s\n", h.Duration().Round(time.Millisecond))
	fmt.Fprintf(tw, "Frames:\t%d\n", h.FrameCount)
	fmt.Fprintf(tw, "Data size:\t%d bytes\n", h.DataSize)
	fmt.Fprintf(tw, "Bitrate:\t%.1f kbps\n", h.Bitrate()/1000)
	fmt.Fprintf(tw, "Frequency range:\t%d\n", geom.FrequencyRange)
	fmt.Fprintf(tw, "Upper limit:\t%d\n", geom.FrequencyUpperLimit)
	fmt.Fprintf(tw, "Table size:\t%d\n", geom.FrequencyTableSize)
	fmt.Fprintf(tw, "Selector:\t%s (%d bytes, index width %d bits)\n",
		geom.Mode, geom.SelectorBytes(), geom.IndexBitSize)
	fmt.Fprintf(tw, "Block size:\t%d bytes\n", geom.BlockSize())
	for j := 0; j < geom.SubBands(); j++ {
		lo, hi := geom.Band(j)
		fmt.Fprintf(tw, "Sub-band %d:\t[%d, %d)\n", j, lo, hi)
	}
	return tw.Flush()
}
