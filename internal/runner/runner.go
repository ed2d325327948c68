// Package runner implements the emulator driver loop that connects the
// CHIP-8 core with a frontend at a 60 Hz frame rate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/chip8go/internal/chip8"
	"github.com/retroenv/chip8go/internal/frontend"
	"github.com/retroenv/chip8go/internal/options"
	"github.com/retroenv/retrogolib/log"
)

const frameInterval = time.Second / 60

// Runner drives the emulator. Each frame it polls input, executes a batch
// of instructions, ticks the timers and renders the display.
type Runner struct {
	logger   *log.Logger
	vm       *chip8.Chip8
	frontend frontend.Frontend
	options  options.Program
}

// New creates a new emulator runner.
func New(logger *log.Logger, vm *chip8.Chip8, front frontend.Frontend,
	opts options.Program) *Runner {

	return &Runner{
		logger:   logger,
		vm:       vm,
		frontend: front,
		options:  opts,
	}
}

// Run executes the driver loop until the frontend reports a quit request,
// the context gets canceled or the machine faults.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		keys, quit, err := r.frontend.PollInput()
		if err != nil {
			return fmt.Errorf("polling input: %w", err)
		}
		if quit {
			return nil
		}
		r.vm.SetKeys(keys)

		if err := r.runFrame(); err != nil {
			return err
		}

		r.vm.TickTimers()
		r.frontend.SetBeep(r.vm.SoundActive())

		if err := r.frontend.Render(r.vm.Frame()); err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
	}
}

// runFrame executes the configured batch of instructions. Unknown opcodes
// stop the loop unless skipping is enabled, in which case they are logged
// and stepped over.
func (r *Runner) runFrame() error {
	for i := 0; i < r.options.InstructionsPerFrame; i++ {
		r.traceInstruction()

		err := r.vm.Step()
		if err == nil {
			continue
		}

		var opErr chip8.UnknownOpcodeError
		if r.options.SkipUnknown && errors.As(err, &opErr) {
			r.logger.Warn("Skipping unknown opcode",
				log.Hex("opcode", opErr.Opcode),
				log.Hex("address", opErr.PC))
			r.vm.SkipInstruction()
			continue
		}

		return fmt.Errorf("executing instruction: %w", err)
	}
	return nil
}

// traceInstruction logs the upcoming instruction in debug mode.
func (r *Runner) traceInstruction() {
	if !r.options.Debug {
		return
	}
	op, ok := r.vm.NextOpcode()
	if !ok {
		return
	}
	r.logger.Debug("Executing",
		log.Hex("address", r.vm.PC()),
		log.String("instruction", chip8.Disassemble(op)))
}
