package cpu

import (
	"github.com/valerio/go-chip8/chip8/bit"
	"github.com/valerio/go-chip8/chip8/memory"
)

// handler executes an instruction. PC already points at the next
// instruction when it runs.
type handler func(c *CPU, in Instruction) error

var handlers = [opCount]handler{
	OpUnknown: unknown,
	OpCLS:     cls,
	OpRET:     ret,
	OpJP:      jp,
	OpCALL:    call,
	OpSEByte:  seByte,
	OpSNEByte: sneByte,
	OpSEReg:   seReg,
	OpLDByte:  ldByte,
	OpADDByte: addByte,
	OpLDReg:   ldReg,
	OpOR:      or,
	OpAND:     and,
	OpXOR:     xor,
	OpADDReg:  addReg,
	OpSUB:     sub,
	OpSHR:     shr,
	OpSUBN:    subn,
	OpSHL:     shl,
	OpSNEReg:  sneReg,
	OpLDI:     ldI,
	OpJPV0:    jpV0,
	OpRND:     rnd,
	OpDRW:     drw,
	OpSKP:     skp,
	OpSKNP:    sknp,
	OpLDVxDT:  ldVxDT,
	OpLDVxK:   ldVxK,
	OpLDDTVx:  ldDTVx,
	OpLDSTVx:  ldSTVx,
	OpADDI:    addI,
	OpLDF:     ldF,
	OpLDB:     ldB,
	OpLDIVx:   ldIVx,
	OpLDVxI:   ldVxI,
}

func unknown(c *CPU, in Instruction) error {
	return ErrUnknownOpcode
}

// 00E0
func cls(c *CPU, in Instruction) error {
	c.display.Clear()
	return nil
}

// 00EE
func ret(c *CPU, in Instruction) error {
	address, err := c.popStack()
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

// 1NNN
func jp(c *CPU, in Instruction) error {
	c.pc = in.NNN()
	return nil
}

// 2NNN, the return address is the instruction after the call.
func call(c *CPU, in Instruction) error {
	if err := c.pushStack(c.pc); err != nil {
		return err
	}
	c.pc = in.NNN()
	return nil
}

// 3XNN
func seByte(c *CPU, in Instruction) error {
	c.skipIf(c.v[in.X()] == in.NN())
	return nil
}

// 4XNN
func sneByte(c *CPU, in Instruction) error {
	c.skipIf(c.v[in.X()] != in.NN())
	return nil
}

// 5XY0
func seReg(c *CPU, in Instruction) error {
	c.skipIf(c.v[in.X()] == c.v[in.Y()])
	return nil
}

// 6XNN
func ldByte(c *CPU, in Instruction) error {
	c.v[in.X()] = in.NN()
	return nil
}

// 7XNN, VF is not affected.
func addByte(c *CPU, in Instruction) error {
	c.v[in.X()] += in.NN()
	return nil
}

// 8XY0
func ldReg(c *CPU, in Instruction) error {
	c.v[in.X()] = c.v[in.Y()]
	return nil
}

// 8XY1
func or(c *CPU, in Instruction) error {
	c.v[in.X()] |= c.v[in.Y()]
	return nil
}

// 8XY2
func and(c *CPU, in Instruction) error {
	c.v[in.X()] &= c.v[in.Y()]
	return nil
}

// 8XY3
func xor(c *CPU, in Instruction) error {
	c.v[in.X()] ^= c.v[in.Y()]
	return nil
}

// The flag is always written after the result, so when X is F the flag wins.

// 8XY4
func addReg(c *CPU, in Instruction) error {
	result, carry := bit.CheckedAdd(c.v[in.X()], c.v[in.Y()])
	c.v[in.X()] = result
	c.setFlag(carry)
	return nil
}

// 8XY5
func sub(c *CPU, in Instruction) error {
	result, borrow := bit.CheckedSub(c.v[in.X()], c.v[in.Y()])
	c.v[in.X()] = result
	c.setFlag(!borrow)
	return nil
}

// 8XY6
func shr(c *CPU, in Instruction) error {
	value := c.v[in.X()]
	c.v[in.X()] = value >> 1
	c.v[flagRegister] = bit.GetBitValue(0, value)
	return nil
}

// 8XY7
func subn(c *CPU, in Instruction) error {
	result, borrow := bit.CheckedSub(c.v[in.Y()], c.v[in.X()])
	c.v[in.X()] = result
	c.setFlag(!borrow)
	return nil
}

// 8XYE
func shl(c *CPU, in Instruction) error {
	value := c.v[in.X()]
	c.v[in.X()] = value << 1
	c.v[flagRegister] = bit.GetBitValue(7, value)
	return nil
}

// 9XY0
func sneReg(c *CPU, in Instruction) error {
	c.skipIf(c.v[in.X()] != c.v[in.Y()])
	return nil
}

// ANNN
func ldI(c *CPU, in Instruction) error {
	c.i = in.NNN()
	return nil
}

// BNNN, a target past 0xFFF wraps.
func jpV0(c *CPU, in Instruction) error {
	c.pc = (in.NNN() + uint16(c.v[0])) & memory.AddressMask
	return nil
}

// CXNN
func rnd(c *CPU, in Instruction) error {
	c.v[in.X()] = uint8(c.rng.Uint32()) & in.NN()
	return nil
}

// DXYN
func drw(c *CPU, in Instruction) error {
	rows := c.sprite[:in.N()]
	for row := range rows {
		rows[row] = c.bus.Read(c.i + uint16(row))
	}

	collision := c.display.DrawSprite(c.v[in.X()], c.v[in.Y()], rows)
	c.setFlag(collision)
	return nil
}

// EX9E
func skp(c *CPU, in Instruction) error {
	c.skipIf(c.keypad.IsPressed(c.v[in.X()]))
	return nil
}

// EXA1
func sknp(c *CPU, in Instruction) error {
	c.skipIf(!c.keypad.IsPressed(c.v[in.X()]))
	return nil
}

// FX07
func ldVxDT(c *CPU, in Instruction) error {
	c.v[in.X()] = c.delayTimer
	return nil
}

// FX0A, rewinds PC while no key is pressed so the same instruction runs again
// on the next step.
func ldVxK(c *CPU, in Instruction) error {
	key, ok := c.keypad.FirstPressed()
	if !ok {
		c.pc = (c.pc - 2) & memory.AddressMask
		c.state = AwaitingKey
		return nil
	}

	c.v[in.X()] = key
	c.state = Running
	return nil
}

// FX15
func ldDTVx(c *CPU, in Instruction) error {
	c.delayTimer = c.v[in.X()]
	return nil
}

// FX18
func ldSTVx(c *CPU, in Instruction) error {
	c.soundTimer = c.v[in.X()]
	return nil
}

// FX1E, VF reports I leaving the address space. I wraps to stay within it.
func addI(c *CPU, in Instruction) error {
	sum := uint32(c.i) + uint32(c.v[in.X()])
	c.i = uint16(sum) & memory.AddressMask
	c.setFlag(sum > memory.AddressMask)
	return nil
}

// FX29
func ldF(c *CPU, in Instruction) error {
	c.i = memory.GlyphAddress(c.v[in.X()])
	return nil
}

// FX33
func ldB(c *CPU, in Instruction) error {
	value := c.v[in.X()]
	c.bus.Write(c.i, value/100)
	c.bus.Write(c.i+1, (value/10)%10)
	c.bus.Write(c.i+2, value%10)
	return nil
}

// FX55
func ldIVx(c *CPU, in Instruction) error {
	x := uint16(in.X())
	for r := uint16(0); r <= x; r++ {
		c.bus.Write(c.i+r, c.v[r])
	}
	c.i = (c.i + x + 1) & memory.AddressMask
	return nil
}

// FX65
func ldVxI(c *CPU, in Instruction) error {
	x := uint16(in.X())
	for r := uint16(0); r <= x; r++ {
		c.v[r] = c.bus.Read(c.i + r)
	}
	c.i = (c.i + x + 1) & memory.AddressMask
	return nil
}
