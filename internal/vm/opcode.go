package vm

import "fmt"

// Op identifies a decoded instruction.
type Op uint8

const (
	OpInvalid Op = iota

	OpCls     // 00E0 - Clear screen
	OpRts     // 00EE - Return from subroutine
	OpJmp     // 1NNN - Jump to NNN
	OpJsr     // 2NNN - Call subroutine at NNN
	OpSkeqImm // 3XNN - Skip if VX == NN
	OpSkneImm // 4XNN - Skip if VX != NN
	OpSkeqReg // 5XY0 - Skip if VX == VY
	OpMovImm  // 6XNN - VX = NN
	OpAddImm  // 7XNN - VX += NN, no carry
	OpMovReg  // 8XY0 - VX = VY
	OpOr      // 8XY1 - VX |= VY
	OpAnd     // 8XY2 - VX &= VY
	OpXor     // 8XY3 - VX ^= VY
	OpAddReg  // 8XY4 - VX += VY, carry in VF
	OpSub     // 8XY5 - VX -= VY, VF = not borrow
	OpShr     // 8XY6 - VX >>= 1, VF = shifted out bit
	OpRsb     // 8XY7 - VX = VY - VX, VF = not borrow
	OpShl     // 8XYE - VX <<= 1, VF = shifted out bit
	OpSkneReg // 9XY0 - Skip if VX != VY
	OpMvi     // ANNN - I = NNN
	OpJmi     // BNNN - Jump to NNN + V0
	OpRand    // CXNN - VX = random & NN
	OpSprite  // DXYN - Draw N rows from I at (VX, VY), VF = collision
	OpSkpr    // EX9E - Skip if key VX pressed
	OpSkup    // EXA1 - Skip if key VX not pressed
	OpGdelay  // FX07 - VX = delay timer
	OpKey     // FX0A - Wait for key, store in VX
	OpSdelay  // FX15 - Delay timer = VX
	OpSsound  // FX18 - Sound timer = VX
	OpAdi     // FX1E - I += VX
	OpFont    // FX29 - I = address of glyph VX
	OpBcd     // FX33 - Store BCD of VX at I, I+1, I+2
	OpStr     // FX55 - Store V0..VX at I
	OpLdr     // FX65 - Load V0..VX from I
)

var mnemonics = [...]string{
	OpInvalid: "db",
	OpCls:     "cls",
	OpRts:     "rts",
	OpJmp:     "jmp",
	OpJsr:     "jsr",
	OpSkeqImm: "skeq",
	OpSkneImm: "skne",
	OpSkeqReg: "skeq",
	OpMovImm:  "mov",
	OpAddImm:  "add",
	OpMovReg:  "mov",
	OpOr:      "or",
	OpAnd:     "and",
	OpXor:     "xor",
	OpAddReg:  "add",
	OpSub:     "sub",
	OpShr:     "shr",
	OpRsb:     "rsb",
	OpShl:     "shl",
	OpSkneReg: "skne",
	OpMvi:     "mvi",
	OpJmi:     "jmi",
	OpRand:    "rand",
	OpSprite:  "sprite",
	OpSkpr:    "skpr",
	OpSkup:    "skup",
	OpGdelay:  "gdelay",
	OpKey:     "key",
	OpSdelay:  "sdelay",
	OpSsound:  "ssound",
	OpAdi:     "adi",
	OpFont:    "font",
	OpBcd:     "bcd",
	OpStr:     "str",
	OpLdr:     "ldr",
}

func (op Op) String() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Instruction is a decoded opcode together with its operand fields.
// Fields an instruction does not use are still filled from the opcode.
type Instruction struct {
	Op     Op
	Opcode uint16

	X   uint8  // Second nibble
	Y   uint8  // Third nibble
	N   uint8  // Fourth nibble
	NNN uint16 // Low 12 bits
	KK  uint8  // Low 8 bits
}

// Decode splits an opcode into its fields and identifies the instruction.
// It returns false if the opcode is not part of the instruction set.
func Decode(opcode uint16) (Instruction, bool) {
	instr := Instruction{
		Opcode: opcode,
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
		N:      uint8(opcode & 0x000F),
		NNN:    opcode & 0x0FFF,
		KK:     uint8(opcode & 0x00FF),
	}

	instr.Op = decodeOp(opcode)
	return instr, instr.Op != OpInvalid
}

func decodeOp(opcode uint16) Op {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRts
		}

	case 0x1000:
		return OpJmp

	case 0x2000:
		return OpJsr

	case 0x3000:
		return OpSkeqImm

	case 0x4000:
		return OpSkneImm

	case 0x5000:
		if opcode&0x000F == 0 {
			return OpSkeqReg
		}

	case 0x6000:
		return OpMovImm

	case 0x7000:
		return OpAddImm

	case 0x8000:
		switch opcode & 0x000F {
		case 0x0000:
			return OpMovReg
		case 0x0001:
			return OpOr
		case 0x0002:
			return OpAnd
		case 0x0003:
			return OpXor
		case 0x0004:
			return OpAddReg
		case 0x0005:
			return OpSub
		case 0x0006:
			return OpShr
		case 0x0007:
			return OpRsb
		case 0x000E:
			return OpShl
		}

	case 0x9000:
		if opcode&0x000F == 0 {
			return OpSkneReg
		}

	case 0xA000:
		return OpMvi

	case 0xB000:
		return OpJmi

	case 0xC000:
		return OpRand

	case 0xD000:
		return OpSprite

	case 0xE000:
		switch opcode & 0x00FF {
		case 0x009E:
			return OpSkpr
		case 0x00A1:
			return OpSkup
		}

	case 0xF000:
		switch opcode & 0x00FF {
		case 0x0007:
			return OpGdelay
		case 0x000A:
			return OpKey
		case 0x0015:
			return OpSdelay
		case 0x0018:
			return OpSsound
		case 0x001E:
			return OpAdi
		case 0x0029:
			return OpFont
		case 0x0033:
			return OpBcd
		case 0x0055:
			return OpStr
		case 0x0065:
			return OpLdr
		}
	}

	return OpInvalid
}

// String renders the instruction in assembler form, e.g. "add v1, v2".
func (instr Instruction) String() string {
	name := instr.Op.String()

	switch instr.Op {
	case OpCls, OpRts:
		return name

	case OpJmp, OpJsr, OpMvi, OpJmi:
		return fmt.Sprintf("%s 0x%04x", name, instr.NNN)

	case OpSkeqImm, OpSkneImm, OpMovImm, OpAddImm, OpRand:
		return fmt.Sprintf("%s v%x, %d", name, instr.X, instr.KK)

	case OpSkeqReg, OpSkneReg, OpMovReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpRsb:
		return fmt.Sprintf("%s v%x, v%x", name, instr.X, instr.Y)

	case OpSprite:
		return fmt.Sprintf("%s v%x, v%x, %d", name, instr.X, instr.Y, instr.N)

	case OpStr, OpLdr:
		return fmt.Sprintf("%s v0-v%x", name, instr.X)

	case OpShr, OpShl, OpSkpr, OpSkup, OpGdelay, OpKey, OpSdelay, OpSsound, OpAdi, OpFont, OpBcd:
		return fmt.Sprintf("%s v%x", name, instr.X)
	}

	return fmt.Sprintf("%s 0x%02x, 0x%02x", name, instr.Opcode>>8, instr.Opcode&0x00FF)
}
