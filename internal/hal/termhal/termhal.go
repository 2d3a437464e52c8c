// Package termhal runs the emulator inside a raw-mode terminal.
package termhal

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"

	"github.com/kapitanov/chip8/internal/display"
	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/keyboard"
	"golang.org/x/term"
)

const (
	enterScreen = "\x1b[?1049h\x1b[?25l\x1b[2J"
	leaveScreen = "\x1b[0m\x1b[?25h\x1b[?1049l"
	bel         = '\a'
)

var (
	ErrNotTerminal      = errors.New("stdin is not a terminal")
	ErrTerminalTooSmall = errors.New("terminal too small")
)

type Options struct {
	FPS        int
	Pixel      string
	Foreground color.RGBA
	Background color.RGBA
}

type HAL struct {
	fd       int
	oldState *term.State
	out      *bufio.Writer
	input    <-chan byte
	latch    *latch
	renderer *renderer
	limiter  *hal.FrameLimiter
}

func New(opts Options) (*HAL, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to get terminal size: %w", err)
	}
	if width < display.Width || height < display.Height {
		return nil, fmt.Errorf("%w: need %dx%d, have %dx%d", ErrTerminalTooSmall, display.Width, display.Height, width, height)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	slog.Debug("hal: raw mode", "width", width, "height", height)

	input := make(chan byte, 64)
	go readInput(os.Stdin, input)

	h := &HAL{
		fd:       fd,
		oldState: oldState,
		out:      bufio.NewWriterSize(os.Stdout, 64*1024),
		input:    input,
		latch:    newLatch(opts.FPS / 4),
		renderer: newRenderer(opts.Pixel, opts.Foreground, opts.Background),
		limiter:  hal.NewFrameLimiter(opts.FPS),
	}

	if _, err := h.out.WriteString(enterScreen); err != nil {
		h.Shutdown()
		return nil, fmt.Errorf("failed to prepare screen: %w", err)
	}

	return h, nil
}

func (h *HAL) Shutdown() {
	h.limiter.Stop()

	_, _ = h.out.WriteString(leaveScreen)
	if err := h.out.Flush(); err != nil {
		slog.Error("failed to restore screen", "err", err)
	}

	if err := term.Restore(h.fd, h.oldState); err != nil {
		slog.Error("failed to restore terminal", "err", err)
	}
}

// readInput forwards stdin bytes until the reader fails.
func readInput(r io.Reader, input chan<- byte) {
	defer close(input)

	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			input <- b
		}

		if err != nil {
			return
		}
	}
}

func (h *HAL) ReadInput(keyDown func(keyboard.Key), keyUp func(keyboard.Key)) error {
	return h.latch.read(h.input, keyDown, keyUp)
}

func (h *HAL) Draw(gfx []uint8) error {
	h.renderer.render(h.out, gfx)
	if err := h.out.Flush(); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

// Beep rings the terminal bell.
func (h *HAL) Beep() error {
	return ring(h.out)
}

func ring(w *bufio.Writer) error {
	if err := w.WriteByte(bel); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to ring bell: %w", err)
	}

	return nil
}

func (h *HAL) WaitForNextFrame() error {
	h.limiter.Wait()
	return nil
}
