package vm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kapitanov/chip8/internal/keyboard"
)

// Execute decodes and runs a single instruction. Every instruction moves
// PC itself. Illegal opcodes and stack faults leave the machine untouched
// and return an error.
func (cpu *CPU) Execute(opcode uint16) error {
	instr, ok := Decode(opcode)
	if !ok {
		return &IllegalInstructionError{PC: cpu.pc, Opcode: opcode}
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", cpu.pc),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", instr.String(),
		)
	}

	x, y := instr.X, instr.Y

	switch instr.Op {
	case OpCls:
		cpu.display.Clear()
		cpu.next()

	case OpRts:
		if cpu.sp == 0 {
			return fmt.Errorf("return at 0x%04x: %w", cpu.pc, ErrStackUnderflow)
		}
		cpu.sp--
		cpu.jump(cpu.stack[cpu.sp])

	case OpJmp:
		cpu.jump(instr.NNN)

	case OpJsr:
		if cpu.sp >= StackSize {
			return fmt.Errorf("call 0x%04x at 0x%04x: %w", instr.NNN, cpu.pc, ErrStackOverflow)
		}
		cpu.stack[cpu.sp] = cpu.pc + InstructionSize
		cpu.sp++
		cpu.jump(instr.NNN)

	case OpSkeqImm:
		cpu.skipIf(cpu.registers[x] == instr.KK)

	case OpSkneImm:
		cpu.skipIf(cpu.registers[x] != instr.KK)

	case OpSkeqReg:
		cpu.skipIf(cpu.registers[x] == cpu.registers[y])

	case OpSkneReg:
		cpu.skipIf(cpu.registers[x] != cpu.registers[y])

	case OpMovImm:
		cpu.registers[x] = instr.KK
		cpu.next()

	case OpAddImm:
		cpu.registers[x] += instr.KK
		cpu.next()

	case OpMovReg:
		cpu.registers[x] = cpu.registers[y]
		cpu.next()

	case OpOr:
		cpu.registers[x] |= cpu.registers[y]
		cpu.next()

	case OpAnd:
		cpu.registers[x] &= cpu.registers[y]
		cpu.next()

	case OpXor:
		cpu.registers[x] ^= cpu.registers[y]
		cpu.next()

	case OpAddReg:
		sum := uint16(cpu.registers[x]) + uint16(cpu.registers[y])
		cpu.registers[x] = uint8(sum)
		cpu.setFlag(sum > 0xFF)
		cpu.next()

	case OpSub:
		vx, vy := cpu.registers[x], cpu.registers[y]
		cpu.registers[x] = vx - vy
		cpu.setFlag(vx >= vy)
		cpu.next()

	case OpRsb:
		vx, vy := cpu.registers[x], cpu.registers[y]
		cpu.registers[x] = vy - vx
		cpu.setFlag(vy >= vx)
		cpu.next()

	case OpShr:
		vx := cpu.registers[x]
		cpu.registers[x] = vx >> 1
		cpu.setFlag(vx&0x01 != 0)
		cpu.next()

	case OpShl:
		vx := cpu.registers[x]
		cpu.registers[x] = vx << 1
		cpu.setFlag(vx&0x80 != 0)
		cpu.next()

	case OpMvi:
		cpu.index = instr.NNN
		cpu.next()

	case OpJmi:
		cpu.jump(instr.NNN + uint16(cpu.registers[0]))

	case OpRand:
		cpu.registers[x] = cpu.random() & instr.KK
		cpu.next()

	case OpSprite:
		sprite := cpu.memory.ReadSlice(cpu.index, cpu.index+uint16(instr.N))
		collision := cpu.display.LoadSprite(int(cpu.registers[x]), int(cpu.registers[y]), sprite)
		cpu.setFlag(collision)
		cpu.next()

	case OpSkpr:
		cpu.skipIf(cpu.keyboard.IsPressed(keyOf(cpu.registers[x])))

	case OpSkup:
		cpu.skipIf(!cpu.keyboard.IsPressed(keyOf(cpu.registers[x])))

	case OpGdelay:
		cpu.registers[x] = cpu.delayTimer
		cpu.next()

	case OpKey:
		// PC stays put until a key is held, so the instruction repeats.
		if key, ok := cpu.keyboard.Pressed(); ok {
			cpu.registers[x] = uint8(key)
			cpu.next()
		}

	case OpSdelay:
		cpu.delayTimer = cpu.registers[x]
		cpu.next()

	case OpSsound:
		cpu.soundTimer = cpu.registers[x]
		cpu.next()

	case OpAdi:
		cpu.index += uint16(cpu.registers[x])
		cpu.next()

	case OpFont:
		cpu.index = FontStart + uint16(cpu.registers[x])*FontGlyphHeight
		cpu.next()

	case OpBcd:
		vx := cpu.registers[x]
		cpu.memory.Write(cpu.index, vx/100)
		cpu.memory.Write(cpu.index+1, (vx/10)%10)
		cpu.memory.Write(cpu.index+2, vx%10)
		cpu.next()

	case OpStr:
		n := uint16(x) + 1
		cpu.memory.WriteSlice(cpu.index, cpu.index+n, cpu.registers[:n])
		cpu.next()

	case OpLdr:
		n := uint16(x) + 1
		copy(cpu.registers[:n], cpu.memory.ReadSlice(cpu.index, cpu.index+n))
		cpu.next()

	default:
		return &IllegalInstructionError{PC: cpu.pc, Opcode: opcode}
	}

	return nil
}

// Only the low nibble of a register selects a key.
func keyOf(v uint8) keyboard.Key {
	return keyboard.Key(v & 0x0F)
}

func (cpu *CPU) next() {
	cpu.pc += InstructionSize
}

func (cpu *CPU) jump(addr uint16) {
	cpu.pc = addr
}

func (cpu *CPU) skipIf(cond bool) {
	if cond {
		cpu.pc += 2 * InstructionSize
	} else {
		cpu.pc += InstructionSize
	}
}

// setFlag writes VF. It runs after the result is stored, so the flag wins
// when VF is also the destination.
func (cpu *CPU) setFlag(cond bool) {
	if cond {
		cpu.registers[0x0F] = 1
	} else {
		cpu.registers[0x0F] = 0
	}
}
