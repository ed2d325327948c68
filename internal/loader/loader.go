// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/chip8go/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// Loader handles loading ROM files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new ROM loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads a CHIP-8 ROM file and returns its program image. The size
// bound of the user program space is enforced here, before the bytes reach
// the virtual machine.
func (l *Loader) Load(path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ch8" && ext != ".rom" {
		l.logger.Debug("Unusual ROM file extension",
			log.String("file", path),
			log.String("extension", ext))
	}

	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	maxSize := chip8.MemorySize - chip8.ProgramStart
	if len(rom) > maxSize {
		return nil, chip8.ROMTooLargeError{Size: len(rom), Free: maxSize}
	}

	l.logger.Debug("Loaded ROM",
		log.String("file", path),
		log.Int("bytes", len(rom)))

	return rom, nil
}
