package cpu

import (
	"fmt"

	"github.com/valerio/go-chip8/chip8/bit"
)

// Op identifies one of the instructions of the machine. The set is closed:
// every opcode decodes to exactly one Op, with OpUnknown as the only
// fallback.
type Op uint8

const (
	OpUnknown Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEByte     // 3XNN
	OpSNEByte    // 4XNN
	OpSEReg      // 5XY0
	OpLDByte     // 6XNN
	OpADDByte    // 7XNN
	OpLDReg      // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDReg     // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXNN
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpLDIVx      // FX55
	OpLDVxI      // FX65

	opCount
)

// Instruction is a decoded opcode. Operands are extracted on demand from the
// raw word, so they are always within their nibble ranges.
type Instruction struct {
	Op     Op
	Opcode uint16
}

// X is the register index in bits 8-11.
func (i Instruction) X() uint8 { return bit.Nibble(i.Opcode, 2) }

// Y is the register index in bits 4-7.
func (i Instruction) Y() uint8 { return bit.Nibble(i.Opcode, 1) }

// N is the 4 bit immediate in bits 0-3.
func (i Instruction) N() uint8 { return bit.Nibble(i.Opcode, 0) }

// NN is the 8 bit immediate in bits 0-7.
func (i Instruction) NN() uint8 { return bit.Low(i.Opcode) }

// NNN is the 12 bit address in bits 0-11.
func (i Instruction) NNN() uint16 { return i.Opcode & 0x0FFF }

// Decode maps a raw opcode to its instruction. The high nibble selects one of
// 16 groups, groups 0, 8, E and F are further selected by their low nibble or
// low byte.
func Decode(opcode uint16) Instruction {
	return Instruction{Op: decodeOp(opcode), Opcode: opcode}
}

func decodeOp(opcode uint16) Op {
	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return OpCLS
		case 0x00EE:
			return OpRET
		}
	case 0x1:
		return OpJP
	case 0x2:
		return OpCALL
	case 0x3:
		return OpSEByte
	case 0x4:
		return OpSNEByte
	case 0x5:
		if bit.Nibble(opcode, 0) == 0 {
			return OpSEReg
		}
	case 0x6:
		return OpLDByte
	case 0x7:
		return OpADDByte
	case 0x8:
		return aluOps[bit.Nibble(opcode, 0)]
	case 0x9:
		if bit.Nibble(opcode, 0) == 0 {
			return OpSNEReg
		}
	case 0xA:
		return OpLDI
	case 0xB:
		return OpJPV0
	case 0xC:
		return OpRND
	case 0xD:
		return OpDRW
	case 0xE:
		switch bit.Low(opcode) {
		case 0x9E:
			return OpSKP
		case 0xA1:
			return OpSKNP
		}
	case 0xF:
		return miscOps[bit.Low(opcode)]
	}

	return OpUnknown
}

// aluOps is indexed by the low nibble of 8XYN opcodes, zero value is OpUnknown.
var aluOps = [16]Op{
	0x0: OpLDReg,
	0x1: OpOR,
	0x2: OpAND,
	0x3: OpXOR,
	0x4: OpADDReg,
	0x5: OpSUB,
	0x6: OpSHR,
	0x7: OpSUBN,
	0xE: OpSHL,
}

// miscOps is indexed by the low byte of FXNN opcodes, zero value is OpUnknown.
var miscOps = [256]Op{
	0x07: OpLDVxDT,
	0x0A: OpLDVxK,
	0x15: OpLDDTVx,
	0x18: OpLDSTVx,
	0x1E: OpADDI,
	0x29: OpLDF,
	0x33: OpLDB,
	0x55: OpLDIVx,
	0x65: OpLDVxI,
}

var opNames = [opCount]string{
	OpUnknown: "???",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEByte:  "SE",
	OpSNEByte: "SNE",
	OpSEReg:   "SE",
	OpLDByte:  "LD",
	OpADDByte: "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpLDIVx:   "LD",
	OpLDVxI:   "LD",
}

// Name returns the mnemonic of the operation.
func (o Op) Name() string {
	if o >= opCount {
		return opNames[OpUnknown]
	}
	return opNames[o]
}

// String returns the instruction with its operands, used in logs.
func (i Instruction) String() string {
	name := i.Op.Name()

	switch i.Op {
	case OpCLS, OpRET:
		return name
	case OpJP, OpCALL:
		return fmt.Sprintf("%s 0x%03X", name, i.NNN())
	case OpSEByte, OpSNEByte, OpLDByte, OpADDByte, OpRND:
		return fmt.Sprintf("%s V%X, 0x%02X", name, i.X(), i.NN())
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSHR, OpSUBN, OpSHL:
		return fmt.Sprintf("%s V%X, V%X", name, i.X(), i.Y())
	case OpLDI:
		return fmt.Sprintf("%s I, 0x%03X", name, i.NNN())
	case OpJPV0:
		return fmt.Sprintf("%s V0, 0x%03X", name, i.NNN())
	case OpDRW:
		return fmt.Sprintf("%s V%X, V%X, %d", name, i.X(), i.Y(), i.N())
	case OpSKP, OpSKNP:
		return fmt.Sprintf("%s V%X", name, i.X())
	case OpLDVxDT:
		return fmt.Sprintf("%s V%X, DT", name, i.X())
	case OpLDVxK:
		return fmt.Sprintf("%s V%X, K", name, i.X())
	case OpLDDTVx:
		return fmt.Sprintf("%s DT, V%X", name, i.X())
	case OpLDSTVx:
		return fmt.Sprintf("%s ST, V%X", name, i.X())
	case OpADDI:
		return fmt.Sprintf("%s I, V%X", name, i.X())
	case OpLDF:
		return fmt.Sprintf("%s F, V%X", name, i.X())
	case OpLDB:
		return fmt.Sprintf("%s B, V%X", name, i.X())
	case OpLDIVx:
		return fmt.Sprintf("%s [I], V%X", name, i.X())
	case OpLDVxI:
		return fmt.Sprintf("%s V%X, [I]", name, i.X())
	default:
		return fmt.Sprintf("%s 0x%04X", name, i.Opcode)
	}
}
