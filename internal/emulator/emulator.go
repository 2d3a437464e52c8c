// Package emulator drives a CPU from a host: it feeds input, runs a batch
// of instructions per frame, ticks the timers and redraws on damage.
package emulator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/keyboard"
	"github.com/kapitanov/chip8/internal/vm"
)

// HAL is the host side of the emulator: a window or a terminal.
type HAL interface {
	ReadInput(keyDown func(keyboard.Key), keyUp func(keyboard.Key)) error
	Draw(gfx []uint8) error
	WaitForNextFrame() error
}

// Beeper is implemented by hosts that can sound a cue. Beep is called
// once each time the sound timer starts running.
type Beeper interface {
	Beep() error
}

type Emulator struct {
	cpu     *vm.CPU
	program []byte
	steps   int // Instructions per frame

	looped   bool
	sounding bool
}

func New(cpu *vm.CPU, program []byte, steps int) *Emulator {
	return &Emulator{
		cpu:     cpu,
		program: program,
		steps:   steps,
	}
}

// Boot resets the machine and loads the program.
func (e *Emulator) Boot() error {
	e.cpu.Reset()
	e.looped = false
	e.sounding = false

	if err := e.cpu.Load(e.program); err != nil {
		return fmt.Errorf("unable to load program: %w", err)
	}

	return nil
}

// Looped reports whether the program reached a jump to itself. Such a
// program can never make progress, so no more instructions are executed
// until the next Boot.
func (e *Emulator) Looped() bool {
	return e.looped
}

// Run boots the machine and runs frames until the host or the program
// fails. Reboot requests are handled here; hal.ErrQuit is returned as is.
func (e *Emulator) Run(h HAL) error {
	if err := e.Boot(); err != nil {
		return err
	}

	for {
		if err := e.Step(h); err != nil {
			return err
		}

		if err := h.WaitForNextFrame(); err != nil {
			return err
		}
	}
}

// Step runs one frame, rebooting the machine if the host asks for it.
func (e *Emulator) Step(h HAL) error {
	err := e.Frame(h)
	if errors.Is(err, hal.ErrReboot) {
		slog.Info("reboot")
		return e.Boot()
	}

	return err
}

// Frame reads input, executes up to steps instructions, decrements the
// timers once and redraws if the screen changed.
func (e *Emulator) Frame(h HAL) error {
	kb := e.cpu.Keyboard()
	if err := h.ReadInput(kb.SetKey, kb.UnsetKey); err != nil {
		return err
	}

	screen := e.cpu.Display()
	_, dirty := screen.Changes()

	for i := 0; i < e.steps && !e.looped; i++ {
		pc := e.cpu.PC()
		instr, _ := vm.Decode(e.cpu.Fetch())

		if err := e.cpu.Tick(); err != nil {
			return fmt.Errorf("unable to execute program: %w", err)
		}

		if _, changed := screen.Changes(); changed {
			dirty = true
		}

		if instr.Op == vm.OpJmp && e.cpu.PC() == pc {
			slog.Info("program looped", "pc", fmt.Sprintf("0x%04x", pc))
			e.looped = true
		}
	}

	if err := e.beep(h); err != nil {
		return err
	}

	e.cpu.UpdateTimers()

	if !dirty {
		return nil
	}

	screen.ClearChanges()
	return h.Draw(screen.Buffer())
}

func (e *Emulator) beep(h HAL) error {
	active := e.cpu.SoundActive()
	start := active && !e.sounding
	e.sounding = active

	b, ok := h.(Beeper)
	if !start || !ok {
		return nil
	}

	return b.Beep()
}
