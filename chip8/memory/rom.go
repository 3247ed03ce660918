package memory

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrROMTooLarge is returned when a program image does not fit in memory.
var ErrROMTooLarge = errors.New("ROM too large")

// ROM is a flat binary program image.
type ROM struct {
	name string
	data []byte
}

// NewROM creates a ROM from a slice of bytes. The data is copied.
func NewROM(name string, data []byte) (*ROM, error) {
	if len(data) > MaxROMSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrROMTooLarge, len(data), MaxROMSize)
	}

	rom := &ROM{
		name: name,
		data: make([]byte, len(data)),
	}
	copy(rom.data, data)

	return rom, nil
}

// NewROMFromReader reads a whole program image from r. It reads at most one
// byte past MaxROMSize, so oversized inputs are rejected without being
// consumed entirely.
func NewROMFromReader(name string, r io.Reader) (*ROM, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM %s: %w", name, err)
	}

	return NewROM(name, data)
}

// NewROMFromFile loads a program image from disk, named after the file.
func NewROMFromFile(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewROMFromReader(name, f)
}

// Name returns the name of the program, usually the file name without extension.
func (r *ROM) Name() string {
	return r.name
}

// Size returns the length of the program image in bytes.
func (r *ROM) Size() int {
	return len(r.data)
}

// Bytes returns a copy of the program image.
func (r *ROM) Bytes() []byte {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return data
}
