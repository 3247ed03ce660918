package cpu

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

const testSeed = 0xC8

type testMachine struct {
	cpu  *CPU
	mem  *memory.Memory
	fb   *video.FrameBuffer
	keys *input.Keypad
}

func newTestMachine(program ...uint16) *testMachine {
	m := &testMachine{
		mem:  memory.New(),
		fb:   video.NewFrameBuffer(),
		keys: input.NewKeypad(),
	}
	m.cpu = New(m.mem, m.fb, m.keys, rand.New(rand.NewPCG(testSeed, testSeed)))
	m.load(memory.ProgramAddress, program...)

	return m
}

func (m *testMachine) load(address uint16, program ...uint16) {
	for i, opcode := range program {
		m.mem.Write(address+uint16(2*i), bit.High(opcode))
		m.mem.Write(address+uint16(2*i)+1, bit.Low(opcode))
	}
}

func (m *testMachine) step(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, m.cpu.Step())
	}
}

func TestCPU_New(t *testing.T) {
	m := newTestMachine()

	assert.Equal(t, uint16(0x200), m.cpu.GetPC())
	assert.Equal(t, uint16(0), m.cpu.GetI())
	assert.Equal(t, uint8(0), m.cpu.GetSP())
	assert.Equal(t, Running, m.cpu.GetState())
}

func TestCPU_Reset(t *testing.T) {
	m := newTestMachine()
	m.cpu.v[3] = 0x42
	m.cpu.i = 0x300
	m.cpu.pc = 0x456
	m.cpu.sp = 2
	m.cpu.stack[1] = 0x222
	m.cpu.delayTimer = 10
	m.cpu.soundTimer = 20
	m.cpu.state = AwaitingKey

	m.cpu.Reset()
	first := *m.cpu
	m.cpu.Reset()

	assert.Equal(t, first, *m.cpu, "reset should be idempotent")
	assert.Equal(t, [RegisterCount]uint8{}, m.cpu.v)
	assert.Equal(t, [StackDepth]uint16{}, m.cpu.GetStack())
	assert.Equal(t, uint16(0x200), m.cpu.GetPC())
	assert.Equal(t, uint16(0), m.cpu.GetI())
	assert.Equal(t, uint8(0), m.cpu.GetSP())
	assert.Equal(t, uint8(0), m.cpu.GetDelayTimer())
	assert.Equal(t, uint8(0), m.cpu.GetSoundTimer())
	assert.False(t, m.cpu.IsAwaitingKey())
}

func TestCPU_FetchIsBigEndianAndWraps(t *testing.T) {
	m := newTestMachine()
	m.cpu.pc = 0xFFF
	m.mem.Write(0xFFF, 0x60)
	// 0x000 holds the first font byte, 0xF0

	m.step(t, 1)

	assert.Equal(t, uint16(0x60F0), m.cpu.GetCurrentOpcode())
	assert.Equal(t, uint8(0xF0), m.cpu.GetV(0))
	assert.Equal(t, uint16(0x001), m.cpu.GetPC())
	assert.Equal(t, uint64(1), m.cpu.GetCycles())
}

type wordCountingBus struct {
	*memory.Memory
	words []uint16
}

func (b *wordCountingBus) ReadWord(address uint16) uint16 {
	b.words = append(b.words, address)
	return b.Memory.ReadWord(address)
}

func TestCPU_FetchReadsOneWordFromTheBus(t *testing.T) {
	bus := &wordCountingBus{Memory: memory.New()}
	bus.Write(0x200, 0x61)
	bus.Write(0x201, 0x2A)
	c := New(bus, video.NewFrameBuffer(), input.NewKeypad(), rand.New(rand.NewPCG(testSeed, testSeed)))

	require.NoError(t, c.Step())

	assert.Equal(t, []uint16{0x200}, bus.words)
	assert.Equal(t, uint16(0x612A), c.GetCurrentOpcode())
	assert.Equal(t, uint8(0x2A), c.GetV(1))
}

func TestCPU_cls(t *testing.T) {
	m := newTestMachine(0x00E0)
	for y := uint(0); y < video.FramebufferHeight; y += 3 {
		for x := uint(0); x < video.FramebufferWidth; x += 2 {
			m.fb.SetPixel(x, y, 1)
		}
	}
	m.fb.ClearDirty()

	m.step(t, 1)

	assert.Equal(t, make([]byte, video.FramebufferSize), m.fb.Snapshot())
	assert.True(t, m.fb.Dirty())
	assert.Equal(t, uint16(0x202), m.cpu.GetPC())
}

func TestCPU_jp(t *testing.T) {
	m := newTestMachine(0x1ABC)

	m.step(t, 1)

	assert.Equal(t, uint16(0xABC), m.cpu.GetPC())
}

func TestCPU_jpV0(t *testing.T) {
	tests := []struct {
		desc   string
		v0     uint8
		opcode uint16
		want   uint16
	}{
		{desc: "adds V0", v0: 0x10, opcode: 0xB300, want: 0x310},
		{desc: "zero offset", v0: 0, opcode: 0xB456, want: 0x456},
		{desc: "wraps past the address space", v0: 0xFF, opcode: 0xBFFF, want: 0x0FE},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(tC.opcode)
			m.cpu.v[0] = tC.v0

			m.step(t, 1)

			assert.Equal(t, tC.want, m.cpu.GetPC())
		})
	}
}

func TestCPU_callAndReturn(t *testing.T) {
	m := newTestMachine(0x2300)
	m.load(0x300, 0x00EE)

	m.step(t, 1)
	assert.Equal(t, uint16(0x300), m.cpu.GetPC())
	assert.Equal(t, uint8(1), m.cpu.GetSP())
	assert.Equal(t, uint16(0x202), m.cpu.GetStack()[0])

	m.step(t, 1)
	assert.Equal(t, uint16(0x202), m.cpu.GetPC(), "return lands after the call")
	assert.Equal(t, uint8(0), m.cpu.GetSP())
}

func TestCPU_nestedCalls(t *testing.T) {
	m := newTestMachine(0x2300)
	m.load(0x300, 0x2400, 0x00EE)
	m.load(0x400, 0x00EE)

	m.step(t, 2)
	assert.Equal(t, uint16(0x400), m.cpu.GetPC())
	assert.Equal(t, uint8(2), m.cpu.GetSP())

	m.step(t, 1)
	assert.Equal(t, uint16(0x302), m.cpu.GetPC())

	m.step(t, 1)
	assert.Equal(t, uint16(0x202), m.cpu.GetPC())
	assert.Equal(t, uint8(0), m.cpu.GetSP())
}

func TestCPU_stackOverflow(t *testing.T) {
	// 0x200: CALL 0x200, recursing forever
	m := newTestMachine(0x2200)

	m.step(t, StackDepth)
	assert.Equal(t, uint8(StackDepth), m.cpu.GetSP())

	err := m.cpu.Step()

	require.ErrorIs(t, err, ErrStackOverflow)
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0x200), execErr.PC)
	assert.Equal(t, uint16(0x2200), execErr.Opcode)

	// the call is skipped, nothing else changes
	assert.Equal(t, uint8(StackDepth), m.cpu.GetSP())
	assert.Equal(t, uint16(0x202), m.cpu.GetPC())
}

func TestCPU_stackUnderflow(t *testing.T) {
	m := newTestMachine(0x00EE, 0x6105)

	err := m.cpu.Step()

	require.ErrorIs(t, err, ErrStackUnderflow)
	assert.Equal(t, "0x200: opcode 0x00EE: stack underflow", err.Error())
	assert.Equal(t, uint8(0), m.cpu.GetSP())
	assert.Equal(t, uint16(0x202), m.cpu.GetPC())

	// execution carries on
	m.step(t, 1)
	assert.Equal(t, uint8(5), m.cpu.GetV(1))
}

func TestCPU_unknownOpcode(t *testing.T) {
	m := newTestMachine(0x0123)
	for r := range m.cpu.v {
		m.cpu.v[r] = uint8(r * 3)
	}
	m.cpu.i = 0x345
	m.cpu.sp = 1
	m.cpu.stack[0] = 0x222
	m.cpu.delayTimer = 9
	m.cpu.soundTimer = 7
	before := *m.cpu
	mem := m.mem.Slice(0, memory.Size)

	err := m.cpu.Step()

	require.ErrorIs(t, err, ErrUnknownOpcode)
	assert.Equal(t, uint16(0x202), m.cpu.GetPC())
	assert.Equal(t, before.v, m.cpu.v)
	assert.Equal(t, before.i, m.cpu.i)
	assert.Equal(t, before.stack, m.cpu.stack)
	assert.Equal(t, before.sp, m.cpu.sp)
	assert.Equal(t, before.delayTimer, m.cpu.delayTimer)
	assert.Equal(t, before.soundTimer, m.cpu.soundTimer)
	assert.Equal(t, mem, m.mem.Slice(0, memory.Size))
	assert.False(t, m.fb.Dirty())
}

func TestCPU_skips(t *testing.T) {
	tests := []struct {
		desc    string
		opcode  uint16
		vx, vy  uint8
		pressed bool
		skip    bool
	}{
		{desc: "3XNN equal", opcode: 0x3142, vx: 0x42, skip: true},
		{desc: "3XNN not equal", opcode: 0x3142, vx: 0x41, skip: false},
		{desc: "4XNN equal", opcode: 0x4142, vx: 0x42, skip: false},
		{desc: "4XNN not equal", opcode: 0x4142, vx: 0x41, skip: true},
		{desc: "5XY0 equal", opcode: 0x5120, vx: 7, vy: 7, skip: true},
		{desc: "5XY0 not equal", opcode: 0x5120, vx: 7, vy: 8, skip: false},
		{desc: "9XY0 equal", opcode: 0x9120, vx: 7, vy: 7, skip: false},
		{desc: "9XY0 not equal", opcode: 0x9120, vx: 7, vy: 8, skip: true},
		{desc: "EX9E pressed", opcode: 0xE19E, vx: 0xA, pressed: true, skip: true},
		{desc: "EX9E released", opcode: 0xE19E, vx: 0xA, skip: false},
		{desc: "EXA1 pressed", opcode: 0xE1A1, vx: 0xA, pressed: true, skip: false},
		{desc: "EXA1 released", opcode: 0xE1A1, vx: 0xA, skip: true},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(tC.opcode)
			m.cpu.v[1] = tC.vx
			m.cpu.v[2] = tC.vy
			if tC.pressed {
				m.keys.Press(tC.vx)
			}

			m.step(t, 1)

			want := uint16(0x202)
			if tC.skip {
				want = 0x204
			}
			assert.Equal(t, want, m.cpu.GetPC())
		})
	}
}

func TestCPU_skipKeyUsesLowNibble(t *testing.T) {
	m := newTestMachine(0xE19E)
	m.cpu.v[1] = 0x1A
	m.keys.Press(0xA)

	m.step(t, 1)

	assert.Equal(t, uint16(0x204), m.cpu.GetPC())
}

func TestCPU_ldByte(t *testing.T) {
	m := newTestMachine()

	for nn := 0; nn <= 0xFF; nn++ {
		m.cpu.pc = memory.ProgramAddress
		m.load(memory.ProgramAddress, 0x6A00|uint16(nn))

		m.step(t, 1)

		if !assert.Equal(t, uint8(nn), m.cpu.GetV(0xA)) {
			return
		}
	}
}

func TestCPU_addByte(t *testing.T) {
	tests := []struct {
		desc string
		vx   uint8
		nn   uint8
		want uint8
	}{
		{desc: "adds", vx: 0x10, nn: 0x05, want: 0x15},
		{desc: "wraps", vx: 0xFF, nn: 0x02, want: 0x01},
		{desc: "wraps to zero", vx: 0x01, nn: 0xFF, want: 0x00},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(0x7100 | uint16(tC.nn))
			m.cpu.v[1] = tC.vx
			m.cpu.v[0xF] = 0x55

			m.step(t, 1)

			assert.Equal(t, tC.want, m.cpu.GetV(1))
			assert.Equal(t, uint8(0x55), m.cpu.GetV(0xF), "VF must not be touched")
		})
	}
}

func TestCPU_logic(t *testing.T) {
	tests := []struct {
		desc   string
		opcode uint16
		want   uint8
	}{
		{desc: "8XY0 LD", opcode: 0x8120, want: 0x3C},
		{desc: "8XY1 OR", opcode: 0x8121, want: 0xFC},
		{desc: "8XY2 AND", opcode: 0x8122, want: 0x30},
		{desc: "8XY3 XOR", opcode: 0x8123, want: 0xCC},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(tC.opcode)
			m.cpu.v[1] = 0xF0
			m.cpu.v[2] = 0x3C

			m.step(t, 1)

			assert.Equal(t, tC.want, m.cpu.GetV(1))
			assert.Equal(t, uint8(0x3C), m.cpu.GetV(2))
		})
	}
}

func TestCPU_arithmeticBoundaries(t *testing.T) {
	boundaries := []uint8{0, 1, 254, 255}

	for _, a := range boundaries {
		for _, b := range boundaries {
			sum := int(a) + int(b)
			cases := []struct {
				name   string
				opcode uint16
				want   uint8
				flag   uint8
			}{
				{name: "8XY4", opcode: 0x8124, want: uint8(sum), flag: boolToFlag(sum > 255)},
				{name: "8XY5", opcode: 0x8125, want: a - b, flag: boolToFlag(b <= a)},
				{name: "8XY7", opcode: 0x8127, want: b - a, flag: boolToFlag(a <= b)},
			}

			for _, tc := range cases {
				m := newTestMachine(tc.opcode)
				m.cpu.v[1] = a
				m.cpu.v[2] = b

				m.step(t, 1)

				assert.Equalf(t, tc.want, m.cpu.GetV(1), "%s with VX=%d VY=%d", tc.name, a, b)
				assert.Equalf(t, tc.flag, m.cpu.GetV(0xF), "%s flag with VX=%d VY=%d", tc.name, a, b)
			}
		}
	}
}

func TestCPU_shifts(t *testing.T) {
	tests := []struct {
		desc   string
		opcode uint16
		vx     uint8
		want   uint8
		flag   uint8
	}{
		{desc: "SHR odd", opcode: 0x8126, vx: 0x03, want: 0x01, flag: 1},
		{desc: "SHR even", opcode: 0x8126, vx: 0x02, want: 0x01, flag: 0},
		{desc: "SHR zero", opcode: 0x8126, vx: 0x00, want: 0x00, flag: 0},
		{desc: "SHL high bit set", opcode: 0x812E, vx: 0x81, want: 0x02, flag: 1},
		{desc: "SHL high bit clear", opcode: 0x812E, vx: 0x40, want: 0x80, flag: 0},
		{desc: "SHL 0xFF", opcode: 0x812E, vx: 0xFF, want: 0xFE, flag: 1},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(tC.opcode)
			m.cpu.v[1] = tC.vx
			m.cpu.v[2] = 0xAA

			m.step(t, 1)

			assert.Equal(t, tC.want, m.cpu.GetV(1))
			assert.Equal(t, tC.flag, m.cpu.GetV(0xF))
		})
	}
}

func TestCPU_flagWinsWhenTargetIsVF(t *testing.T) {
	tests := []struct {
		desc   string
		opcode uint16
		vf, vy uint8
		want   uint8
	}{
		{desc: "ADD with carry", opcode: 0x8F14, vf: 200, vy: 100, want: 1},
		{desc: "ADD without carry", opcode: 0x8F14, vf: 2, vy: 3, want: 0},
		{desc: "SUB without borrow", opcode: 0x8F15, vf: 5, vy: 3, want: 1},
		{desc: "SHR", opcode: 0x8F06, vf: 0x03, want: 1},
		{desc: "SHL", opcode: 0x8F0E, vf: 0x40, want: 0},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(tC.opcode)
			m.cpu.v[0xF] = tC.vf
			m.cpu.v[1] = tC.vy

			m.step(t, 1)

			assert.Equal(t, tC.want, m.cpu.GetV(0xF))
		})
	}
}

func TestCPU_ldI(t *testing.T) {
	m := newTestMachine(0xA123)

	m.step(t, 1)

	assert.Equal(t, uint16(0x123), m.cpu.GetI())
}

func TestCPU_rnd(t *testing.T) {
	m := newTestMachine(0xC30F, 0xC4FF, 0xC500)
	expected := rand.New(rand.NewPCG(testSeed, testSeed))

	m.step(t, 3)

	assert.Equal(t, uint8(expected.Uint32())&0x0F, m.cpu.GetV(3))
	assert.Equal(t, uint8(expected.Uint32()), m.cpu.GetV(4))
	assert.Equal(t, uint8(0), m.cpu.GetV(5), "mask 0x00 always yields 0")
}

func TestCPU_rndIsReproducible(t *testing.T) {
	run := func() [RegisterCount]uint8 {
		m := newTestMachine(0xC0FF, 0xC1FF, 0xC2FF, 0xC3FF)
		m.step(t, 4)
		return m.cpu.v
	}

	assert.Equal(t, run(), run())
}

func TestCPU_drw(t *testing.T) {
	// I = glyph "0", draw at (V0, V1) twice
	m := newTestMachine(0xA000, 0xD015, 0xD015)
	m.cpu.v[0] = 10
	m.cpu.v[1] = 4
	m.cpu.v[0xF] = 0x55

	m.step(t, 2)

	assert.Equal(t, uint8(0), m.cpu.GetV(0xF), "first draw on a blank screen has no collision")
	assert.True(t, m.fb.Dirty())
	// top row of the glyph is 0xF0
	for x := uint(10); x < 14; x++ {
		assert.Equal(t, byte(1), m.fb.GetPixel(x, 4))
	}
	assert.Equal(t, byte(0), m.fb.GetPixel(14, 4))

	m.fb.ClearDirty()
	m.step(t, 1)

	assert.Equal(t, uint8(1), m.cpu.GetV(0xF), "second draw collides")
	assert.Equal(t, make([]byte, video.FramebufferSize), m.fb.Snapshot(), "XOR twice restores the screen")
	assert.True(t, m.fb.Dirty())
}

func TestCPU_drwReadsWrapAroundMemory(t *testing.T) {
	m := newTestMachine(0xD012)
	m.cpu.i = 0xFFF
	m.mem.Write(0xFFF, 0x80)
	// 0x000 holds 0xF0

	m.step(t, 1)

	assert.Equal(t, byte(1), m.fb.GetPixel(0, 0))
	assert.Equal(t, byte(0), m.fb.GetPixel(1, 0))
	for x := uint(0); x < 4; x++ {
		assert.Equal(t, byte(1), m.fb.GetPixel(x, 1))
	}
}

func TestCPU_drwWrapsScreenCoordinates(t *testing.T) {
	m := newTestMachine(0xD011)
	m.cpu.v[0] = 62
	m.cpu.v[1] = 255
	m.cpu.i = 0x300
	m.mem.Write(0x300, 0xF0)

	require.NotPanics(t, func() { m.step(t, 1) })

	// y=255 wraps to 31, x columns 62, 63, 0, 1
	assert.Equal(t, byte(1), m.fb.GetPixel(62, 31))
	assert.Equal(t, byte(1), m.fb.GetPixel(63, 31))
	assert.Equal(t, byte(1), m.fb.GetPixel(0, 31))
	assert.Equal(t, byte(1), m.fb.GetPixel(1, 31))
	assert.Equal(t, byte(0), m.fb.GetPixel(2, 31))
}

func TestCPU_drwZeroRows(t *testing.T) {
	m := newTestMachine(0xD010)
	m.cpu.v[0xF] = 1

	m.step(t, 1)

	assert.Equal(t, uint8(0), m.cpu.GetV(0xF))
	assert.Equal(t, make([]byte, video.FramebufferSize), m.fb.Snapshot())
}

func TestCPU_drwDoesNotAllocate(t *testing.T) {
	m := newTestMachine(0xA000, 0xD015)
	m.step(t, 1)

	allocs := testing.AllocsPerRun(100, func() {
		m.cpu.pc = 0x202
		if err := m.cpu.Step(); err != nil {
			t.Fatal(err)
		}
	})

	assert.Zero(t, allocs)
}

func TestCPU_drwOnlyDrawsRequestedRows(t *testing.T) {
	// a tall sprite followed by a single row from a different address
	m := newTestMachine(0xD01F, 0x00E0, 0xA300, 0xD011)
	m.cpu.i = 0x310
	for row := uint16(0); row < 15; row++ {
		m.mem.Write(0x310+row, 0xFF)
	}
	m.mem.Write(0x300, 0x80)

	m.step(t, 4)

	assert.Equal(t, byte(1), m.fb.GetPixel(0, 0))
	for x := uint(1); x < 8; x++ {
		assert.Equal(t, byte(0), m.fb.GetPixel(x, 0))
	}
	assert.Equal(t, byte(0), m.fb.GetPixel(0, 1))
}

func TestCPU_waitForKey(t *testing.T) {
	m := newTestMachine(0xF30A)

	for i := 0; i < 5; i++ {
		m.step(t, 1)
		assert.Equal(t, uint16(0x200), m.cpu.GetPC(), "PC must not move while no key is pressed")
		assert.True(t, m.cpu.IsAwaitingKey())
	}

	m.keys.Press(0xB)
	m.keys.Press(0x7)
	m.step(t, 1)

	assert.Equal(t, uint16(0x202), m.cpu.GetPC())
	assert.Equal(t, uint8(0x7), m.cpu.GetV(3), "lowest pressed key wins")
	assert.Equal(t, Running, m.cpu.GetState())
}

func TestCPU_waitForKeyTimersKeepRunning(t *testing.T) {
	m := newTestMachine(0xF30A)
	m.cpu.delayTimer = 3

	m.step(t, 1)
	m.cpu.TickTimers()
	m.step(t, 1)
	m.cpu.TickTimers()

	assert.True(t, m.cpu.IsAwaitingKey())
	assert.Equal(t, uint8(1), m.cpu.GetDelayTimer())
}

func TestCPU_timers(t *testing.T) {
	// VA = 60, DT = VA, ST = VA
	m := newTestMachine(0x6A3C, 0xFA15, 0xFA18, 0xFB07)

	m.step(t, 3)
	assert.Equal(t, uint8(60), m.cpu.GetDelayTimer())
	assert.Equal(t, uint8(60), m.cpu.GetSoundTimer())

	for i := 0; i < 10; i++ {
		m.cpu.TickTimers()
	}
	m.step(t, 1)

	assert.Equal(t, uint8(50), m.cpu.GetV(0xB))
	assert.Equal(t, uint8(50), m.cpu.GetSoundTimer())

	for i := 0; i < 100; i++ {
		m.cpu.TickTimers()
	}
	assert.Equal(t, uint8(0), m.cpu.GetDelayTimer())
	assert.Equal(t, uint8(0), m.cpu.GetSoundTimer())
}

func TestCPU_addI(t *testing.T) {
	tests := []struct {
		desc  string
		i     uint16
		vx    uint8
		wantI uint16
		flag  uint8
	}{
		{desc: "adds", i: 0x100, vx: 0xFF, wantI: 0x1FF, flag: 0},
		{desc: "reaches the last address", i: 0xFFE, vx: 1, wantI: 0xFFF, flag: 0},
		{desc: "leaves the address space", i: 0xFFE, vx: 2, wantI: 0x000, flag: 1},
		{desc: "leaves the address space by a lot", i: 0xFFF, vx: 0xFF, wantI: 0x0FE, flag: 1},
	}
	for _, tC := range tests {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(0xF11E)
			m.cpu.i = tC.i
			m.cpu.v[1] = tC.vx

			m.step(t, 1)

			assert.Equal(t, tC.wantI, m.cpu.GetI())
			assert.Equal(t, tC.flag, m.cpu.GetV(0xF))
		})
	}
}

func TestCPU_ldF(t *testing.T) {
	m := newTestMachine(0xF229, 0xF329)
	m.cpu.v[2] = 0xA
	m.cpu.v[3] = 0x1F

	m.step(t, 1)
	assert.Equal(t, uint16(50), m.cpu.GetI())

	m.step(t, 1)
	assert.Equal(t, uint16(75), m.cpu.GetI(), "only the low nibble selects a glyph")
}

func TestCPU_ldB(t *testing.T) {
	tests := []struct {
		value uint8
		want  []byte
	}{
		{value: 234, want: []byte{2, 3, 4}},
		{value: 7, want: []byte{0, 0, 7}},
		{value: 100, want: []byte{1, 0, 0}},
		{value: 255, want: []byte{2, 5, 5}},
	}
	for _, tC := range tests {
		m := newTestMachine(0xF533)
		m.cpu.v[5] = tC.value
		m.cpu.i = 0x300

		m.step(t, 1)

		assert.Equal(t, tC.want, m.mem.Slice(0x300, 3))
		assert.Equal(t, uint16(0x300), m.cpu.GetI())
	}
}

func TestCPU_storeLoadRoundTrip(t *testing.T) {
	m := newTestMachine(0xA400, 0xF555, 0xA400, 0xF565)
	values := []uint8{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	copy(m.cpu.v[:], values)
	m.cpu.v[6] = 0x99

	m.step(t, 2)
	assert.Equal(t, values, m.mem.Slice(0x400, 6))
	assert.Equal(t, byte(0), m.mem.Read(0x406), "only V0..VX are stored")
	assert.Equal(t, uint16(0x406), m.cpu.GetI())

	for r := 0; r <= 5; r++ {
		m.cpu.v[r] = 0
	}

	m.step(t, 2)
	assert.Equal(t, values, m.cpu.v[:6])
	assert.Equal(t, uint8(0x99), m.cpu.GetV(6))
	assert.Equal(t, uint16(0x406), m.cpu.GetI())
}

func TestCPU_storeWrapsAroundMemory(t *testing.T) {
	m := newTestMachine(0xF255)
	m.cpu.i = 0xFFE
	m.cpu.v[0], m.cpu.v[1], m.cpu.v[2] = 0xA, 0xB, 0xC

	m.step(t, 1)

	assert.Equal(t, byte(0xA), m.mem.Read(0xFFE))
	assert.Equal(t, byte(0xB), m.mem.Read(0xFFF))
	assert.Equal(t, byte(0xC), m.mem.Read(0x000))
	assert.Equal(t, uint16(0x001), m.cpu.GetI())
}

func TestExecError(t *testing.T) {
	err := &ExecError{PC: 0x2A4, Opcode: 0xFFFF, Err: ErrUnknownOpcode}

	assert.Equal(t, "0x2A4: opcode 0xFFFF: unknown opcode", err.Error())
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
	assert.False(t, errors.Is(err, ErrStackOverflow))
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
