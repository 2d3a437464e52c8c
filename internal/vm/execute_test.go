package vm

import (
	"testing"

	"github.com/kapitanov/chip8/internal/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddImmAllPairs(t *testing.T) {
	cpu := New()

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			cpu.pc = ProgramStart
			cpu.registers[0x3] = uint8(a)
			cpu.registers[0xF] = 0xAA

			require.NoError(t, cpu.Execute(0x7300|uint16(b)))

			if cpu.registers[0x3] != uint8((a+b)%256) || cpu.registers[0xF] != 0xAA {
				t.Fatalf("add v3, %d with v3=%d: got v3=%d vf=%d", b, a, cpu.registers[0x3], cpu.registers[0xF])
			}
		}
	}
	assert.Equal(t, ProgramStart+InstructionSize, cpu.PC())
}

func TestAddRegAllPairs(t *testing.T) {
	cpu := New()

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			cpu.registers[0x1] = uint8(a)
			cpu.registers[0x2] = uint8(b)

			require.NoError(t, cpu.Execute(0x8124))

			var carry uint8
			if a+b > 255 {
				carry = 1
			}
			if cpu.registers[0x1] != uint8((a+b)%256) || cpu.registers[0xF] != carry {
				t.Fatalf("add v1, v2 with %d, %d: got v1=%d vf=%d", a, b, cpu.registers[0x1], cpu.registers[0xF])
			}
		}
	}
}

func TestSubAllPairs(t *testing.T) {
	cpu := New()

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			cpu.registers[0x1] = uint8(a)
			cpu.registers[0x2] = uint8(b)

			require.NoError(t, cpu.Execute(0x8125))

			var noBorrow uint8
			if a >= b {
				noBorrow = 1
			}
			if cpu.registers[0x1] != uint8((a-b+256)%256) || cpu.registers[0xF] != noBorrow {
				t.Fatalf("sub v1, v2 with %d, %d: got v1=%d vf=%d", a, b, cpu.registers[0x1], cpu.registers[0xF])
			}
		}
	}
}

func TestRsbAllPairs(t *testing.T) {
	cpu := New()

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			cpu.registers[0x1] = uint8(a)
			cpu.registers[0x2] = uint8(b)

			require.NoError(t, cpu.Execute(0x8127))

			var noBorrow uint8
			if b >= a {
				noBorrow = 1
			}
			if cpu.registers[0x1] != uint8((b-a+256)%256) || cpu.registers[0xF] != noBorrow {
				t.Fatalf("rsb v1, v2 with %d, %d: got v1=%d vf=%d", a, b, cpu.registers[0x1], cpu.registers[0xF])
			}
		}
	}
}

func TestRegisterOps(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		vx, vy uint8
		wantX  uint8
		wantF  uint8
	}{
		{"mov", 0x8120, 0x11, 0x22, 0x22, 0xAA},
		{"or", 0x8121, 0xF0, 0x0F, 0xFF, 0xAA},
		{"and", 0x8122, 0xF3, 0x3F, 0x33, 0xAA},
		{"xor", 0x8123, 0xFF, 0x0F, 0xF0, 0xAA},
		{"shr odd", 0x8126, 0x05, 0x00, 0x02, 1},
		{"shr even", 0x8126, 0x04, 0x00, 0x02, 0},
		{"shr ignores vy", 0x8126, 0x80, 0xFF, 0x40, 0},
		{"shl high", 0x812E, 0x81, 0x00, 0x02, 1},
		{"shl low", 0x812E, 0x41, 0x00, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := New()
			cpu.registers[0x1] = tt.vx
			cpu.registers[0x2] = tt.vy
			cpu.registers[0xF] = 0xAA

			require.NoError(t, cpu.Execute(tt.opcode))

			assert.Equal(t, tt.wantX, cpu.V(0x1))
			assert.Equal(t, tt.vy, cpu.V(0x2))
			assert.Equal(t, tt.wantF, cpu.V(0xF))
			assert.Equal(t, ProgramStart+InstructionSize, cpu.PC())
		})
	}
}

func TestFlagOverwritesVF(t *testing.T) {
	cpu := New()
	cpu.registers[0xF] = 0xFF
	cpu.registers[0x1] = 0x01

	require.NoError(t, cpu.Execute(0x8F14))
	assert.Equal(t, uint8(1), cpu.V(0xF))

	cpu.registers[0xF] = 0x02
	require.NoError(t, cpu.Execute(0x8F06))
	assert.Equal(t, uint8(0), cpu.V(0xF))
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		v1, v2 uint8
		skip   bool
	}{
		{"skeq imm equal", 0x3142, 0x42, 0, true},
		{"skeq imm differ", 0x3142, 0x41, 0, false},
		{"skne imm equal", 0x4142, 0x42, 0, false},
		{"skne imm differ", 0x4142, 0x41, 0, true},
		{"skeq reg equal", 0x5120, 7, 7, true},
		{"skeq reg differ", 0x5120, 7, 8, false},
		{"skne reg equal", 0x9120, 7, 7, false},
		{"skne reg differ", 0x9120, 7, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := New()
			cpu.registers[0x1] = tt.v1
			cpu.registers[0x2] = tt.v2

			require.NoError(t, cpu.Execute(tt.opcode))

			want := ProgramStart + InstructionSize
			if tt.skip {
				want += InstructionSize
			}
			assert.Equal(t, want, cpu.PC())
		})
	}
}

func TestKeySkips(t *testing.T) {
	cpu := New()
	cpu.registers[0x4] = 0x0B

	require.NoError(t, cpu.Execute(0xE49E))
	assert.Equal(t, uint16(0x202), cpu.PC())
	require.NoError(t, cpu.Execute(0xE4A1))
	assert.Equal(t, uint16(0x206), cpu.PC())

	cpu.Keyboard().SetKey(keyboard.KeyB)

	require.NoError(t, cpu.Execute(0xE49E))
	assert.Equal(t, uint16(0x20A), cpu.PC())
	require.NoError(t, cpu.Execute(0xE4A1))
	assert.Equal(t, uint16(0x20C), cpu.PC())
}

func TestKeySkipMasksRegister(t *testing.T) {
	cpu := New()
	cpu.registers[0x4] = 0x1B
	cpu.Keyboard().SetKey(keyboard.KeyB)

	require.NoError(t, cpu.Execute(0xE49E))
	assert.Equal(t, uint16(0x204), cpu.PC())
}

func TestJumpsAndCalls(t *testing.T) {
	cpu := New()

	require.NoError(t, cpu.Execute(0x1ABC))
	assert.Equal(t, uint16(0x0ABC), cpu.PC())

	require.NoError(t, cpu.Execute(0x2300))
	assert.Equal(t, uint16(0x300), cpu.PC())
	assert.Equal(t, uint16(1), cpu.SP())
	assert.Equal(t, uint16(0xABE), cpu.stack[0])

	require.NoError(t, cpu.Execute(0x00EE))
	assert.Equal(t, uint16(0xABE), cpu.PC())
	assert.Zero(t, cpu.SP())

	cpu.registers[0] = 0x10
	require.NoError(t, cpu.Execute(0xB300))
	assert.Equal(t, uint16(0x310), cpu.PC())
}

func TestCallReturnProgram(t *testing.T) {
	cpu := New()
	run(t, cpu, []byte{
		0x22, 0x06, // 200: jsr 0x206
		0x61, 0x02, // 202: mov v1, 2
		0x12, 0x04, // 204: jmp 0x204
		0x60, 0x01, // 206: mov v0, 1
		0x00, 0xEE, // 208: rts
	}, 5)

	assert.Equal(t, uint8(1), cpu.V(0))
	assert.Equal(t, uint8(2), cpu.V(1))
	assert.Equal(t, uint16(0x204), cpu.PC())
	assert.Zero(t, cpu.SP())
}

func TestStackOverflow(t *testing.T) {
	cpu := New()
	for i := 0; i < StackSize; i++ {
		require.NoError(t, cpu.Execute(0x2200))
	}

	err := cpu.Execute(0x2200)

	assert.ErrorIs(t, err, ErrStackOverflow)
	assert.Equal(t, uint16(StackSize), cpu.SP())
	assert.Equal(t, uint16(0x200), cpu.PC())
}

func TestStackUnderflow(t *testing.T) {
	cpu := New()

	err := cpu.Execute(0x00EE)

	assert.ErrorIs(t, err, ErrStackUnderflow)
	assert.Zero(t, cpu.SP())
	assert.Equal(t, ProgramStart, cpu.PC())
}

func TestIndexOps(t *testing.T) {
	cpu := New()

	require.NoError(t, cpu.Execute(0xA123))
	assert.Equal(t, uint16(0x123), cpu.I())

	cpu.registers[0x5] = 0xFF
	cpu.registers[0xF] = 0xAA
	require.NoError(t, cpu.Execute(0xF51E))
	assert.Equal(t, uint16(0x222), cpu.I())
	assert.Equal(t, uint8(0xAA), cpu.V(0xF))

	cpu.index = 0xFFFF
	cpu.registers[0x5] = 0x02
	require.NoError(t, cpu.Execute(0xF51E))
	assert.Equal(t, uint16(0x0001), cpu.I())
}

func TestFont(t *testing.T) {
	cpu := New()
	cpu.registers[0x2] = 0xA

	require.NoError(t, cpu.Execute(0xF229))

	assert.Equal(t, uint16(0xA*FontGlyphHeight), cpu.I())
	assert.Equal(t, []uint8{0xF0, 0x90, 0xF0, 0x90, 0x90}, cpu.memory.ReadSlice(cpu.I(), cpu.I()+FontGlyphHeight))
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value uint8
		want  []uint8
	}{
		{234, []uint8{2, 3, 4}},
		{0, []uint8{0, 0, 0}},
		{255, []uint8{2, 5, 5}},
		{7, []uint8{0, 0, 7}},
		{90, []uint8{0, 9, 0}},
	}

	for _, tt := range tests {
		cpu := New()
		cpu.index = 0x300
		cpu.registers[0x6] = tt.value

		require.NoError(t, cpu.Execute(0xF633))

		assert.Equal(t, tt.want, cpu.memory.ReadSlice(0x300, 0x303), "value %d", tt.value)
		assert.Equal(t, uint16(0x300), cpu.I())
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	cpu := New()
	cpu.index = 0x400
	var want [RegisterCount]uint8
	for i := range want {
		want[i] = uint8(i*17 + 3)
	}
	cpu.registers = want

	require.NoError(t, cpu.Execute(0xFF55))
	assert.Equal(t, want[:], cpu.memory.ReadSlice(0x400, 0x410))
	assert.Equal(t, uint16(0x400), cpu.I())

	cpu.registers = [RegisterCount]uint8{}
	require.NoError(t, cpu.Execute(0xFF65))

	assert.Equal(t, want, cpu.Registers())
	assert.Equal(t, uint16(0x400), cpu.I())
}

func TestStorePartial(t *testing.T) {
	cpu := New()
	cpu.index = 0x400
	cpu.registers[0] = 1
	cpu.registers[1] = 2
	cpu.registers[2] = 3

	require.NoError(t, cpu.Execute(0xF155))

	assert.Equal(t, []uint8{1, 2, 0}, cpu.memory.ReadSlice(0x400, 0x403))

	cpu.memory.WriteSlice(0x500, 0x503, []uint8{9, 8, 7})
	cpu.index = 0x500
	require.NoError(t, cpu.Execute(0xF165))

	assert.Equal(t, uint8(9), cpu.V(0))
	assert.Equal(t, uint8(8), cpu.V(1))
	assert.Equal(t, uint8(3), cpu.V(2))
}

func TestTimerOps(t *testing.T) {
	cpu := New()
	cpu.registers[0x3] = 42

	require.NoError(t, cpu.Execute(0xF315))
	require.NoError(t, cpu.Execute(0xF318))
	assert.Equal(t, uint8(42), cpu.DelayTimer())
	assert.Equal(t, uint8(42), cpu.SoundTimer())

	cpu.UpdateTimers()
	require.NoError(t, cpu.Execute(0xF407))
	assert.Equal(t, uint8(41), cpu.V(0x4))
}

func TestRandUsesSourceAndMask(t *testing.T) {
	values := []uint8{0xFF, 0xA5}
	cpu := New(WithRandom(func() uint8 {
		v := values[0]
		values = values[1:]
		return v
	}))

	require.NoError(t, cpu.Execute(0xC10F))
	require.NoError(t, cpu.Execute(0xC2F0))

	assert.Equal(t, uint8(0x0F), cpu.V(0x1))
	assert.Equal(t, uint8(0xA0), cpu.V(0x2))
	assert.Equal(t, uint16(0x204), cpu.PC())
}

func TestClearScreen(t *testing.T) {
	cpu := New()
	cpu.registers[0] = 10
	require.NoError(t, cpu.Execute(0xD005))

	require.NoError(t, cpu.Execute(0x00E0))

	assert.Equal(t, make([]uint8, len(cpu.Display().Buffer())), cpu.Display().Buffer())
	change, ok := cpu.Display().Changes()
	assert.True(t, ok)
	assert.True(t, change.Cleared)
	assert.Equal(t, uint16(0x204), cpu.PC())
}

func TestWaitForKey(t *testing.T) {
	cpu := New()
	require.NoError(t, cpu.Load([]byte{0xF5, 0x0A}))

	for i := 0; i < 5; i++ {
		require.NoError(t, cpu.Tick())
		assert.Equal(t, ProgramStart, cpu.PC())
	}
	assert.Zero(t, cpu.V(0x5))

	cpu.Keyboard().SetKey(keyboard.KeyE)
	cpu.Keyboard().SetKey(keyboard.Key9)
	require.NoError(t, cpu.Tick())

	assert.Equal(t, uint8(0x9), cpu.V(0x5))
	assert.Equal(t, ProgramStart+InstructionSize, cpu.PC())
}
