// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/chip8go/internal/frontend"
	"github.com/retroenv/chip8go/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8go [options] <ROM file to run>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after the ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)

	valid := false
	for _, name := range frontend.Names() {
		if opts.Frontend == name {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(frontend.Names(), ", "))
	}

	if opts.Scale < 1 {
		return fmt.Errorf("invalid scale factor %d, must be at least 1", opts.Scale)
	}
	if opts.InstructionsPerFrame < 1 {
		return fmt.Errorf("invalid instruction rate %d, must be at least 1 instruction per frame",
			opts.InstructionsPerFrame)
	}

	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Frontend, "f", frontend.SDL, "frontend to use for display, input and audio (sdl/gl/terminal)")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "window scale factor, display pixels per CHIP-8 pixel")
	flags.IntVar(&opts.InstructionsPerFrame, "ipf", options.DefaultInstructionsPerFrame, "instructions to execute per 60 Hz frame")
	flags.BoolVar(&opts.ShiftQuirk, "shift-quirk", false, "shift instructions operate on Vy instead of Vx (legacy behavior)")
	flags.BoolVar(&opts.LoadStoreQuirk, "loadstore-quirk", false, "register dump/load instructions increment I (legacy behavior)")
	flags.BoolVar(&opts.SkipUnknown, "skip-unknown", false, "log and skip unknown opcodes instead of halting")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
