package vm

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/kapitanov/chip8/internal/display"
	"github.com/kapitanov/chip8/internal/keyboard"
	"github.com/kapitanov/chip8/internal/memory"
)

const (
	StackSize     = 16
	RegisterCount = 16

	ProgramStart    = uint16(0x200)
	InstructionSize = 2
)

var (
	ErrProgramTooLarge    = errors.New("program too large")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrIllegalInstruction = errors.New("illegal instruction")
)

// IllegalInstructionError reports an opcode with no defined handler.
type IllegalInstructionError struct {
	PC     uint16
	Opcode uint16
}

func (e *IllegalInstructionError) Error() string {
	return fmt.Sprintf("illegal instruction 0x%04X at 0x%04x", e.Opcode, e.PC)
}

func (e *IllegalInstructionError) Is(err error) bool {
	return err == ErrIllegalInstruction
}

// Memory is the byte store the CPU executes from. Addresses are not
// validated by the CPU.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	ReadSlice(start, end uint16) []uint8
	WriteSlice(start, end uint16, data []uint8)
	Clear()
	Size() int
}

// CPU is the CHIP-8 interpreter. It is not safe for concurrent use.
type CPU struct {
	memory    Memory               // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack [StackSize]uint16 // Stack
	sp    uint16            // Stack pointer

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	display  *display.Display
	keyboard *keyboard.Keyboard

	random func() uint8
}

type Option func(*CPU)

// WithMemory makes the CPU execute from m instead of fresh RAM.
// The contents of m are kept; only the font region is overwritten.
func WithMemory(m Memory) Option {
	return func(cpu *CPU) {
		cpu.memory = m
	}
}

// WithRandom replaces the random byte source used by Cxkk.
func WithRandom(fn func() uint8) Option {
	return func(cpu *CPU) {
		cpu.random = fn
	}
}

func New(options ...Option) *CPU {
	cpu := &CPU{
		pc:       ProgramStart,
		display:  display.New(),
		keyboard: keyboard.New(),
		random:   randomByte,
	}

	for _, opt := range options {
		opt(cpu)
	}

	if cpu.memory == nil {
		cpu.memory = memory.New()
	}

	cpu.loadFont()
	return cpu
}

func randomByte() uint8 {
	return uint8(rand.IntN(256))
}

// Reset restores the power-on state: registers, stack and timers are
// zeroed, memory is wiped (except the font), the screen is cleared and all
// keys are released.
func (cpu *CPU) Reset() {
	cpu.pc = ProgramStart
	cpu.index = 0
	cpu.sp = 0
	cpu.registers = [RegisterCount]uint8{}
	cpu.stack = [StackSize]uint16{}
	cpu.delayTimer = 0
	cpu.soundTimer = 0

	slog.Debug("clear memory", "n", cpu.memory.Size())
	cpu.memory.Clear()
	cpu.loadFont()

	cpu.display.Clear()
	cpu.keyboard.Reset()
}

func (cpu *CPU) loadFont() {
	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", FontStart), "n", len(font))
	cpu.memory.WriteSlice(FontStart, FontStart+uint16(len(font)), font[:])
}

// Load copies a program image into memory at ProgramStart.
// No other state is touched.
func (cpu *CPU) Load(program []byte) error {
	end := int(ProgramStart) + len(program)
	if end > cpu.memory.Size() {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(program), cpu.memory.Size()-int(ProgramStart))
	}

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	cpu.memory.WriteSlice(ProgramStart, uint16(end), program)
	return nil
}

// Tick executes one instruction.
func (cpu *CPU) Tick() error {
	cpu.display.ClearChanges()
	return cpu.Execute(cpu.Fetch())
}

// UpdateTimers decrements both timers, stopping at zero. Hosts call it at
// 60 Hz regardless of the instruction rate.
func (cpu *CPU) UpdateTimers() {
	if cpu.delayTimer > 0 {
		cpu.delayTimer--
	}

	if cpu.soundTimer > 0 {
		cpu.soundTimer--
	}
}

// Fetch reads the instruction word at PC.
func (cpu *CPU) Fetch() uint16 {
	hi := cpu.memory.Read(cpu.pc)
	lo := cpu.memory.Read(cpu.pc + 1)

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	return opcode
}

func (cpu *CPU) PC() uint16 {
	return cpu.pc
}

func (cpu *CPU) I() uint16 {
	return cpu.index
}

func (cpu *CPU) SP() uint16 {
	return cpu.sp
}

// V returns register Vx.
func (cpu *CPU) V(x uint8) uint8 {
	return cpu.registers[x]
}

func (cpu *CPU) Registers() [RegisterCount]uint8 {
	return cpu.registers
}

func (cpu *CPU) DelayTimer() uint8 {
	return cpu.delayTimer
}

func (cpu *CPU) SoundTimer() uint8 {
	return cpu.soundTimer
}

// SoundActive reports whether the buzzer should sound.
func (cpu *CPU) SoundActive() bool {
	return cpu.soundTimer > 0
}

func (cpu *CPU) Display() *display.Display {
	return cpu.display
}

func (cpu *CPU) Keyboard() *keyboard.Keyboard {
	return cpu.keyboard
}
