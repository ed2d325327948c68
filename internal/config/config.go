// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/retroenv/chip8go/internal/frontend"
	"github.com/retroenv/chip8go/internal/frontend/gl"
	"github.com/retroenv/chip8go/internal/frontend/sdl"
	"github.com/retroenv/chip8go/internal/frontend/terminal"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateFrontend creates the chosen display/input/audio frontend instance.
func CreateFrontend(name string, cfg frontend.Config) (frontend.Frontend, error) {
	switch name {
	case frontend.SDL:
		return sdl.New(cfg)

	case frontend.GL:
		return gl.New(cfg)

	case frontend.Terminal:
		return terminal.New(cfg)

	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", name)
	}
}
