package cpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/memory"
)

const (
	// RegisterCount is the number of general purpose registers, V0 to VF.
	RegisterCount = 16
	// StackDepth is the maximum subroutine nesting.
	StackDepth = 16

	flagRegister = 0xF
)

var (
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// ExecError reports a fault raised while executing the instruction at PC.
// Faults are never fatal for the CPU: the faulting instruction is skipped.
type ExecError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("0x%03X: opcode 0x%04X: %v", e.PC, e.Opcode, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Bus provides access to the addressable memory.
type Bus interface {
	Read(address uint16) byte
	ReadWord(address uint16) uint16
	Write(address uint16, value byte)
}

// Display is the framebuffer the CPU draws on.
type Display interface {
	Clear()
	DrawSprite(x, y uint8, rows []byte) bool
}

// Keypad is the read side of the key latch.
type Keypad interface {
	IsPressed(key uint8) bool
	FirstPressed() (uint8, bool)
}

// RandomSource provides the entropy for CXNN. *rand.Rand from math/rand/v2
// satisfies it, so tests can inject a seeded generator.
type RandomSource interface {
	Uint32() uint32
}

// State is the execution state of the CPU.
type State uint8

const (
	Running State = iota
	// AwaitingKey is entered by FX0A when no key is pressed, PC stays on the
	// instruction until a key shows up in the latch.
	AwaitingKey
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	default:
		return "unknown"
	}
}

// CPU holds the interpreter registers and executes instructions against its
// collaborators.
type CPU struct {
	v          [RegisterCount]uint8
	i          uint16
	pc         uint16
	stack      [StackDepth]uint16
	sp         uint8
	delayTimer uint8
	soundTimer uint8

	// rows of the sprite being drawn, DXYN draws at most 15
	sprite [15]byte

	// metadata
	currentOpcode uint16
	state         State
	cycles        uint64

	bus     Bus
	display Display
	keypad  Keypad
	rng     RandomSource
}

// New returns a CPU in its reset state.
func New(bus Bus, display Display, keypad Keypad, rng RandomSource) *CPU {
	c := &CPU{
		bus:     bus,
		display: display,
		keypad:  keypad,
		rng:     rng,
	}
	c.Reset()

	return c
}

// Reset clears registers, stack and timers, and points PC at the program.
func (c *CPU) Reset() {
	c.v = [RegisterCount]uint8{}
	c.i = 0
	c.pc = memory.ProgramAddress
	c.stack = [StackDepth]uint16{}
	c.sp = 0
	c.delayTimer = 0
	c.soundTimer = 0
	c.sprite = [15]byte{}
	c.currentOpcode = 0
	c.state = Running
	c.cycles = 0
}

// Step fetches, decodes and executes a single instruction.
//
// PC is advanced past the instruction before it executes, so jumps, calls and
// returns overwrite it and skips add a further 2. PC wraps within the 12 bit
// address space. A returned error is an
// *ExecError; execution can continue with the next Step regardless.
func (c *CPU) Step() error {
	address := c.pc
	c.currentOpcode = c.fetch()
	instruction := Decode(c.currentOpcode)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("exec",
			"pc", fmt.Sprintf("0x%03X", address),
			"opcode", fmt.Sprintf("0x%04X", c.currentOpcode),
			"instr", instruction.String())
	}

	c.pc = (c.pc + 2) & memory.AddressMask
	c.cycles++

	if err := handlers[instruction.Op](c, instruction); err != nil {
		return &ExecError{PC: address, Opcode: c.currentOpcode, Err: err}
	}

	return nil
}

// TickTimers decrements the delay and sound timers, stopping at zero. It is
// meant to be called at 60Hz, independently of the instruction rate.
func (c *CPU) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// fetch reads the big-endian opcode at PC.
func (c *CPU) fetch() uint16 {
	return c.bus.ReadWord(c.pc)
}

func (c *CPU) pushStack(address uint16) error {
	if int(c.sp) >= StackDepth {
		return ErrStackOverflow
	}

	c.stack[c.sp] = address
	c.sp++
	return nil
}

func (c *CPU) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}

	c.sp--
	return c.stack[c.sp], nil
}

func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc = (c.pc + 2) & memory.AddressMask
	}
}

func (c *CPU) setFlag(condition bool) {
	if condition {
		c.v[flagRegister] = 1
		return
	}
	c.v[flagRegister] = 0
}

// Getters for drivers, renderers and tests.
func (c *CPU) GetV(x uint8) uint8           { return c.v[x&0x0F] }
func (c *CPU) GetI() uint16                 { return c.i }
func (c *CPU) GetPC() uint16                { return c.pc }
func (c *CPU) GetSP() uint8                 { return c.sp }
func (c *CPU) GetDelayTimer() uint8         { return c.delayTimer }
func (c *CPU) GetSoundTimer() uint8         { return c.soundTimer }
func (c *CPU) GetCurrentOpcode() uint16     { return c.currentOpcode }
func (c *CPU) GetCycles() uint64            { return c.cycles }
func (c *CPU) GetState() State              { return c.state }
func (c *CPU) IsAwaitingKey() bool          { return c.state == AwaitingKey }
func (c *CPU) GetStack() [StackDepth]uint16 { return c.stack }
