package vm

import (
	"testing"

	"github.com/kapitanov/chip8/internal/display"
	"github.com/kapitanov/chip8/internal/keyboard"
	"github.com/kapitanov/chip8/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run loads program and executes n instructions.
func run(t *testing.T, cpu *CPU, program []byte, n int) {
	t.Helper()

	require.NoError(t, cpu.Load(program))
	for i := 0; i < n; i++ {
		require.NoError(t, cpu.Tick(), "tick %d", i)
	}
}

func TestNew(t *testing.T) {
	cpu := New()

	assert.Equal(t, ProgramStart, cpu.PC())
	assert.Zero(t, cpu.I())
	assert.Zero(t, cpu.SP())
	assert.Equal(t, [RegisterCount]uint8{}, cpu.Registers())
	assert.Zero(t, cpu.DelayTimer())
	assert.Zero(t, cpu.SoundTimer())
	assert.Equal(t, font[:], cpu.memory.ReadSlice(FontStart, FontStart+uint16(len(font))))
}

func TestNewKeepsInjectedMemory(t *testing.T) {
	mem := memory.New()
	mem.Write(0x300, 0x42)

	cpu := New(WithMemory(mem))

	assert.Equal(t, uint8(0x42), mem.Read(0x300))
	assert.Equal(t, uint8(0xF0), mem.Read(FontStart))
	assert.Same(t, mem, cpu.memory)
}

func TestLoad(t *testing.T) {
	cpu := New()

	require.NoError(t, cpu.Load([]byte{0x12, 0x34, 0x56}))

	assert.Equal(t, []uint8{0x12, 0x34, 0x56}, cpu.memory.ReadSlice(0x200, 0x203))
	assert.Equal(t, ProgramStart, cpu.PC())
	assert.Equal(t, uint16(0x1234), cpu.Fetch())
}

func TestLoadTooLarge(t *testing.T) {
	cpu := New()

	assert.NoError(t, cpu.Load(make([]byte, memory.Size-int(ProgramStart))))
	assert.ErrorIs(t, cpu.Load(make([]byte, memory.Size-int(ProgramStart)+1)), ErrProgramTooLarge)
}

func TestReset(t *testing.T) {
	cpu := New()
	run(t, cpu, []byte{
		0x60, 0x05, // mov v0, 5
		0xA3, 0x00, // mvi 0x300
		0xF0, 0x15, // sdelay v0
		0xF0, 0x18, // ssound v0
		0x22, 0x0C, // jsr 0x20c
		0x00, 0x00,
		0xD0, 0x05, // sprite v0, v0, 5
	}, 6)
	cpu.Keyboard().SetKey(keyboard.Key3)
	require.NotEqual(t, ProgramStart, cpu.PC())

	cpu.Reset()

	assert.Equal(t, ProgramStart, cpu.PC())
	assert.Zero(t, cpu.I())
	assert.Zero(t, cpu.SP())
	assert.Equal(t, [RegisterCount]uint8{}, cpu.Registers())
	assert.Zero(t, cpu.DelayTimer())
	assert.Zero(t, cpu.SoundTimer())
	assert.Equal(t, make([]uint8, display.Width*display.Height), cpu.Display().Buffer())
	assert.False(t, cpu.Keyboard().IsPressed(keyboard.Key3))
	assert.Zero(t, cpu.memory.Read(0x200))
	assert.Equal(t, font[:], cpu.memory.ReadSlice(FontStart, FontStart+uint16(len(font))))
}

func TestFetchBigEndian(t *testing.T) {
	cpu := New()
	require.NoError(t, cpu.Load([]byte{0xAB, 0xCD}))

	assert.Equal(t, uint16(0xABCD), cpu.Fetch())
	assert.Equal(t, ProgramStart, cpu.PC())
}

func TestUpdateTimersSaturate(t *testing.T) {
	cpu := New()
	run(t, cpu, []byte{
		0x60, 0x02, // mov v0, 2
		0x61, 0x01, // mov v1, 1
		0xF0, 0x15, // sdelay v0
		0xF1, 0x18, // ssound v1
	}, 4)
	assert.True(t, cpu.SoundActive())

	cpu.UpdateTimers()
	assert.Equal(t, uint8(1), cpu.DelayTimer())
	assert.Zero(t, cpu.SoundTimer())
	assert.False(t, cpu.SoundActive())

	cpu.UpdateTimers()
	cpu.UpdateTimers()
	assert.Zero(t, cpu.DelayTimer())
	assert.Zero(t, cpu.SoundTimer())
}

func TestTickClearsChanges(t *testing.T) {
	cpu := New()
	run(t, cpu, []byte{
		0xD0, 0x01, // sprite v0, v0, 1
		0x60, 0x00, // mov v0, 0
	}, 1)

	_, ok := cpu.Display().Changes()
	assert.True(t, ok)

	require.NoError(t, cpu.Tick())
	_, ok = cpu.Display().Changes()
	assert.False(t, ok)
}

func TestDrawScenario(t *testing.T) {
	mem := memory.New()
	cpu := New(WithMemory(mem))

	require.NoError(t, cpu.Load([]byte{0xA2, 0x00, 0x60, 0x00, 0x61, 0x00, 0xD0, 0x11}))
	mem.Write(0x200, 0xF0)

	// The sprite byte shares its address with the first instruction.
	require.NoError(t, cpu.Execute(0xA200))
	for i := 0; i < 3; i++ {
		require.NoError(t, cpu.Tick())
	}

	d := cpu.Display()
	for x := 0; x < 8; x++ {
		want := uint8(0)
		if x < 4 {
			want = 1
		}
		assert.Equal(t, want, d.Pixel(x, 0), "x=%d", x)
	}
	assert.Zero(t, cpu.V(0xF))
	assert.Equal(t, uint16(0x208), cpu.PC())

	change, ok := d.Changes()
	assert.True(t, ok)
	assert.Equal(t, display.Change{X: 0, Y: 0, N: 1}, change)
}

func TestDrawSetsCollision(t *testing.T) {
	cpu := New()
	run(t, cpu, []byte{
		0xA0, 0x00, // mvi 0x000 (glyph 0)
		0x60, 0x3E, // mov v0, 62
		0x61, 0x1E, // mov v1, 30
		0xD0, 0x15, // sprite v0, v1, 5
		0xD0, 0x15, // sprite v0, v1, 5
	}, 4)
	assert.Zero(t, cpu.V(0xF))
	assert.Equal(t, uint8(1), cpu.Display().Pixel(62, 30))
	assert.Equal(t, uint8(1), cpu.Display().Pixel(1, 30))
	assert.Equal(t, uint8(1), cpu.Display().Pixel(62, 2))

	require.NoError(t, cpu.Tick())
	assert.Equal(t, uint8(1), cpu.V(0xF))
	assert.Equal(t, make([]uint8, display.Width*display.Height), cpu.Display().Buffer())
}

func TestIllegalInstruction(t *testing.T) {
	tests := []uint16{0x0000, 0x00E1, 0x0123, 0x5121, 0x8008, 0x800F, 0x9001, 0xE09F, 0xF000, 0xF0FF}

	for _, opcode := range tests {
		cpu := New()
		before := cpu.Registers()

		err := cpu.Execute(opcode)

		assert.ErrorIs(t, err, ErrIllegalInstruction, "opcode 0x%04X", opcode)
		var illegal *IllegalInstructionError
		if assert.ErrorAs(t, err, &illegal) {
			assert.Equal(t, opcode, illegal.Opcode)
			assert.Equal(t, ProgramStart, illegal.PC)
		}
		assert.Equal(t, ProgramStart, cpu.PC())
		assert.Equal(t, before, cpu.Registers())
	}
}

func TestTickIllegalInstruction(t *testing.T) {
	cpu := New()
	require.NoError(t, cpu.Load([]byte{0xFF, 0xFF}))

	err := cpu.Tick()

	assert.EqualError(t, err, "illegal instruction 0xFFFF at 0x0200")
}
