package chip8

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

// DefaultStepsPerFrame gives roughly 720 instructions per second at 60 frames
// per second.
const DefaultStepsPerFrame = 12

// ErrTooManyFaults is returned by RunUntilFrame once the CPU raised more
// faults than the configured budget.
var ErrTooManyFaults = errors.New("too many CPU faults")

// Config holds the tunables of a Machine. The zero value is usable.
type Config struct {
	// StepsPerFrame is the number of instructions executed between two timer
	// ticks. Zero selects DefaultStepsPerFrame.
	StepsPerFrame int
	// Seed feeds the CXNN random generator. Zero picks a random seed.
	Seed uint64
	// MaxFaults is the number of faults tolerated before RunUntilFrame
	// fails. Zero never fails.
	MaxFaults int
}

// Machine wires the CPU to memory, framebuffer and keypad and drives it one
// frame at a time.
type Machine struct {
	cfg    Config
	mem    *memory.Memory
	fb     *video.FrameBuffer
	keypad *input.Keypad
	cpu    *cpu.CPU
	pcg    *rand.PCG
	seed   uint64
	rom    *memory.ROM

	paused    bool
	stepFrame bool

	frameCount       uint64
	instructionCount uint64
	faults           int
}

// New creates a machine with no program loaded.
func New(cfg Config) *Machine {
	if cfg.StepsPerFrame <= 0 {
		cfg.StepsPerFrame = DefaultStepsPerFrame
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	m := &Machine{
		cfg:    cfg,
		mem:    memory.New(),
		fb:     video.NewFrameBuffer(),
		keypad: input.NewKeypad(),
		pcg:    rand.NewPCG(seed, seed),
		seed:   seed,
	}
	m.cpu = cpu.New(m.mem, m.fb, m.keypad, rand.New(m.pcg))

	slog.Debug("Machine created", "steps_per_frame", cfg.StepsPerFrame, "seed", seed, "max_faults", cfg.MaxFaults)

	return m
}

// NewWithFile creates a machine and loads the program at path into it.
func NewWithFile(path string, cfg Config) (*Machine, error) {
	rom, err := memory.NewROMFromFile(path)
	if err != nil {
		return nil, err
	}

	m := New(cfg)
	if err := m.LoadROM(rom); err != nil {
		return nil, err
	}

	slog.Info("Loaded ROM", "name", rom.Name(), "bytes", rom.Size())

	return m, nil
}

// LoadROM resets the machine and installs rom as its program. On failure the
// machine is left as it was.
func (m *Machine) LoadROM(rom *memory.ROM) error {
	if rom.Size() > memory.MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max %d", memory.ErrROMTooLarge, rom.Size(), memory.MaxROMSize)
	}

	m.rom = rom
	m.Reset()

	return nil
}

// LoadProgram is LoadROM for a raw byte slice.
func (m *Machine) LoadProgram(data []byte) error {
	rom, err := memory.NewROM("program", data)
	if err != nil {
		return err
	}
	return m.LoadROM(rom)
}

// Reset returns the machine to power-on state and reloads the current
// program, if any. The keypad latch is left alone since it mirrors physical
// keys. The random generator is reseeded, so a run after Reset is identical
// to the first one.
func (m *Machine) Reset() {
	m.mem.Reset()
	m.fb.Clear()
	m.cpu.Reset()
	m.pcg.Seed(m.seed, m.seed)

	if m.rom != nil {
		// size was checked by LoadROM
		if err := m.mem.LoadROM(m.rom); err != nil {
			slog.Error("Failed to reload ROM", "name", m.rom.Name(), "error", err)
		}
	}

	m.paused = false
	m.stepFrame = false
	m.frameCount = 0
	m.instructionCount = 0
	m.faults = 0
}

// Step executes a single instruction. Faults are logged and returned as
// *cpu.ExecError; once the fault budget is exhausted the error also wraps
// ErrTooManyFaults.
func (m *Machine) Step() error {
	m.instructionCount++

	err := m.cpu.Step()
	if err == nil {
		return nil
	}

	m.faults++
	var execErr *cpu.ExecError
	if errors.As(err, &execErr) {
		slog.Warn("CPU fault",
			"pc", fmt.Sprintf("0x%03X", execErr.PC),
			"opcode", fmt.Sprintf("0x%04X", execErr.Opcode),
			"error", execErr.Err)
	}

	if m.cfg.MaxFaults > 0 && m.faults > m.cfg.MaxFaults {
		return fmt.Errorf("%w (%d): %w", ErrTooManyFaults, m.faults, err)
	}

	return err
}

// TickTimers decrements the delay and sound timers.
func (m *Machine) TickTimers() {
	m.cpu.TickTimers()
}

// RunUntilFrame executes one frame worth of instructions followed by a
// timer tick. It does nothing while paused, unless a single frame step was
// requested.
func (m *Machine) RunUntilFrame() error {
	if m.paused {
		if !m.stepFrame {
			return nil
		}
		m.stepFrame = false
	}

	for i := 0; i < m.cfg.StepsPerFrame; i++ {
		if err := m.Step(); errors.Is(err, ErrTooManyFaults) {
			return err
		}
	}

	m.cpu.TickTimers()
	m.frameCount++

	return nil
}

// GetCurrentFrame returns the framebuffer renderers draw from.
func (m *Machine) GetCurrentFrame() *video.FrameBuffer {
	return m.fb
}

// Keypad returns the key latch written by input collaborators.
func (m *Machine) Keypad() *input.Keypad {
	return m.keypad
}

// CPU exposes the interpreter for inspection.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// Memory exposes the address space for inspection.
func (m *Machine) Memory() *memory.Memory {
	return m.mem
}

// ROM returns the loaded program, nil if none.
func (m *Machine) ROM() *memory.ROM {
	return m.rom
}

// HandleAction applies an input action. Keypad actions latch the key,
// emulator controls act on Press only. Snapshot and Quit are left to the
// driver.
func (m *Machine) HandleAction(act action.Action, pressed bool) {
	if key, ok := action.KeyIndex(act); ok {
		if pressed {
			m.keypad.Press(key)
		} else {
			m.keypad.Release(key)
		}
		return
	}

	if !pressed {
		return
	}

	switch act {
	case action.EmulatorPauseToggle:
		m.paused = !m.paused
		if m.paused {
			slog.Info("Emulation paused", "frame", m.frameCount)
		} else {
			slog.Info("Emulation resumed", "frame", m.frameCount)
		}
	case action.EmulatorStepFrame:
		if m.paused {
			m.stepFrame = true
			slog.Debug("Stepping one frame", "frame", m.frameCount)
		}
	case action.EmulatorReset:
		m.Reset()
		slog.Info("Emulator reset")
	}
}

// IsPaused reports whether frame execution is suspended.
func (m *Machine) IsPaused() bool {
	return m.paused
}

// GetFrameCount returns the number of frames run since the last reset.
func (m *Machine) GetFrameCount() uint64 {
	return m.frameCount
}

// GetInstructionCount returns the number of instructions executed since the
// last reset.
func (m *Machine) GetInstructionCount() uint64 {
	return m.instructionCount
}

// GetFaultCount returns the number of faults raised since the last reset.
func (m *Machine) GetFaultCount() int {
	return m.faults
}

// Seed returns the seed of the random generator, useful to replay a run.
func (m *Machine) Seed() uint64 {
	return m.seed
}
