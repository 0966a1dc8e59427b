// ABOUTME: Entry point for the smd command-line tool
// ABOUTME: Dispatches the encode, decode, info and play subcommands
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/smd-go/internal/logging"
	"github.com/Resonate-Protocol/smd-go/internal/version"
	"github.com/rs/zerolog/log"
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = []command{
	{"encode", "encode an mp3, flac, opus or wav file to smd", runEncode},
	{"decode", "decode an smd file to wav", runDecode},
	{"info", "print the header and frame layout of an smd file", runInfo},
	{"play", "play an smd file", runPlay},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("smd", flag.ContinueOnError)
	global.SetOutput(stderr)
	logLevel := global.String("log-level", "", "Log level: trace, debug, info, warn, error (default $"+logging.EnvLevel+" or info)")
	showVersion := global.Bool("version", false, "Print version and exit")
	global.Usage = func() { usage(global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	logging.Init(stderr, logging.ResolveLevel(*logLevel))

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return 2
	}

	for _, cmd := range commands {
		if cmd.name != rest[0] {
			continue
		}
		if err := cmd.run(rest[1:], stdout); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			log.Error().Err(err).Str("command", cmd.name).Msg("command failed")
			return 1
		}
		return 0
	}

	fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
	global.Usage()
	return 2
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "%s\n\nUsage: smd [flags] <command> [command flags]\n\nCommands:\n", version.String())
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(w, "\nFlags:")
	fs.PrintDefaults()
}

// newFlagSet builds a subcommand flag set that reports errors instead of exiting
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("smd "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// requirePaths checks that the named path flags were set
func requirePaths(paths map[string]string) error {
	for name, value := range paths {
		if value == "" {
			return fmt.Errorf("missing required flag -%s", name)
		}
	}
	return nil
}
