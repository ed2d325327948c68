// Package main implements the main entry point for a CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/retroenv/chip8go/internal/chip8"
	"github.com/retroenv/chip8go/internal/cli"
	"github.com/retroenv/chip8go/internal/config"
	"github.com/retroenv/chip8go/internal/frontend"
	"github.com/retroenv/chip8go/internal/loader"
	"github.com/retroenv/chip8go/internal/options"
	"github.com/retroenv/chip8go/internal/runner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// the graphical frontends require their calls to happen on the main thread
func init() {
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	printBanner(logger, opts)

	if err := run(ctx, logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Fatal("Emulation failed", log.Err(err))
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	rom, err := loader.New(logger).Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	vm := chip8.New()
	vm.SetQuirks(chip8.Quirks{
		ShiftSourceY:        opts.ShiftQuirk,
		LoadStoreIncrementI: opts.LoadStoreQuirk,
	})
	if err := vm.LoadROM(rom); err != nil {
		return fmt.Errorf("loading ROM into machine: %w", err)
	}

	front, err := config.CreateFrontend(opts.Frontend, frontend.Config{
		Title: "chip8go - " + opts.Input,
		Scale: opts.Scale,
	})
	if err != nil {
		return fmt.Errorf("creating frontend: %w", err)
	}
	defer func() {
		if err := front.Close(); err != nil {
			logger.Error("Closing frontend failed", log.Err(err))
		}
	}()

	logger.Info("Starting emulation",
		log.String("rom", opts.Input),
		log.String("frontend", opts.Frontend),
		log.Int("instructions_per_frame", opts.InstructionsPerFrame))

	return runner.New(logger, vm, front, opts).Run(ctx)
}

// printBanner prints application version information
func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}
	logger.Info("chip8go", log.String("version", buildinfo.Version(version, commit, date)))
}
