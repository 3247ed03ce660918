package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/bit"
)

const (
	// Size is the amount of addressable memory.
	Size = 0x1000
	// AddressMask limits any address to the 12 bit address space.
	AddressMask = Size - 1

	// FontAddress is where the built-in hex glyphs are installed.
	FontAddress = 0x000
	// FontGlyphSize is the number of bytes (rows) in each glyph.
	FontGlyphSize = 5

	// ProgramAddress is where every program image is loaded.
	ProgramAddress = 0x200
	// ReservedTail is the amount of memory at the top of the address space kept
	// away from programs. Nothing is reserved.
	ReservedTail = 0
	// MaxROMSize is the biggest program image that fits in memory.
	MaxROMSize = Size - ProgramAddress - ReservedTail
)

var fontSet = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// FontSet returns a copy of the built-in hex glyphs.
func FontSet() []byte {
	font := make([]byte, len(fontSet))
	copy(font, fontSet[:])
	return font
}

// GlyphAddress returns the address of the glyph for the low nibble of digit.
func GlyphAddress(digit uint8) uint16 {
	return FontAddress + uint16(digit&0x0F)*FontGlyphSize
}

// Memory is the 4K address space of the machine. Every access is masked to
// 12 bits, so reads and writes past 0xFFF wrap around to 0x000.
type Memory struct {
	data [Size]byte
}

// New creates memory with the font installed, equivalent to a freshly
// powered on interpreter with no program loaded.
func New() *Memory {
	m := &Memory{}
	m.Reset()
	return m
}

// Reset clears the whole address space and installs the font.
func (m *Memory) Reset() {
	m.data = [Size]byte{}
	copy(m.data[FontAddress:], fontSet[:])
}

// Read returns the byte at the specified address.
func (m *Memory) Read(addr uint16) byte {
	return m.data[addr&AddressMask]
}

// Write sets the byte at the specified address.
func (m *Memory) Write(addr uint16, value byte) {
	m.data[addr&AddressMask] = value
}

// ReadWord reads the big-endian word at addr, addr+1.
func (m *Memory) ReadWord(addr uint16) uint16 {
	return bit.Combine(m.Read(addr), m.Read(addr+1))
}

// Slice copies n bytes starting at addr, wrapping at the end of memory.
func (m *Memory) Slice(addr uint16, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.Read(addr + uint16(i))
	}
	return out
}

// LoadROM copies the program image at ProgramAddress. Memory is left
// untouched if the image does not fit.
func (m *Memory) LoadROM(rom *ROM) error {
	if len(rom.data) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrROMTooLarge, len(rom.data), MaxROMSize)
	}

	copy(m.data[ProgramAddress:], rom.data)
	slog.Debug("ROM copied to memory", "name", rom.Name(), "bytes", len(rom.data), "address", fmt.Sprintf("0x%03X", ProgramAddress))

	return nil
}
