package vm

import (
	"fmt"
	"io"
)

// Disassemble writes a linear listing of program as if loaded at
// ProgramStart: one "addr  word  mnemonic" line per instruction. Data
// interleaved with code is decoded like code. A trailing odd byte is
// listed on its own.
func Disassemble(w io.Writer, program []byte) error {
	addr := ProgramStart

	for i := 0; i+1 < len(program); i += InstructionSize {
		opcode := uint16(program[i])<<8 | uint16(program[i+1])
		instr, _ := Decode(opcode)

		if _, err := fmt.Fprintf(w, "0x%04x  %04X  %s\n", addr, opcode, instr); err != nil {
			return err
		}

		addr += InstructionSize
	}

	if len(program)%2 == 1 {
		b := program[len(program)-1]
		if _, err := fmt.Fprintf(w, "0x%04x  %02X    db 0x%02x\n", addr, b, b); err != nil {
			return err
		}
	}

	return nil
}
