// Package ebitenhal runs the emulator in an ebiten window. Ebiten owns the
// main loop, so the emulator frame is driven from Update.
package ebitenhal

import (
	"errors"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/kapitanov/chip8/internal/display"
	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/keyboard"
)

type Options struct {
	Scale      int
	FPS        int
	Foreground color.RGBA
	Background color.RGBA
}

// Keys follow hal.Layout by physical position.
var keys = [keyboard.KeyCount]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

type HAL struct {
	opts    Options
	pixels  []byte // RGBA, display.Width*display.Height*4
	image   *ebiten.Image
	pressed [keyboard.KeyCount]bool

	isKeyPressed     func(ebiten.Key) bool
	isKeyJustPressed func(ebiten.Key) bool
}

func New(opts Options) *HAL {
	h := &HAL{
		opts:             opts,
		pixels:           make([]byte, display.Width*display.Height*4),
		isKeyPressed:     ebiten.IsKeyPressed,
		isKeyJustPressed: inpututil.IsKeyJustPressed,
	}

	_ = h.Draw(make([]uint8, display.Width*display.Height))
	return h
}

// Run opens the window and calls frame once per tick until frame fails or
// the window is closed. hal.ErrQuit ends the loop without an error.
func (h *HAL) Run(frame func() error) error {
	ebiten.SetWindowSize(display.Width*h.opts.Scale, display.Height*h.opts.Scale)
	ebiten.SetWindowTitle("CHIP-8")
	ebiten.SetTPS(h.opts.FPS)

	slog.Debug("hal: run ebiten", "tps", h.opts.FPS)
	return ebiten.RunGame(&game{hal: h, frame: frame})
}

func (h *HAL) ReadInput(keyDown func(keyboard.Key), keyUp func(keyboard.Key)) error {
	if h.isKeyJustPressed(ebiten.KeyEscape) {
		slog.Debug("hal: exit requested")
		return hal.ErrQuit
	}

	if h.isKeyJustPressed(ebiten.KeyBackspace) {
		// The reboot releases every key, so held keys must press again.
		h.pressed = [keyboard.KeyCount]bool{}
		return hal.ErrReboot
	}

	for i, k := range keys {
		down := h.isKeyPressed(k)
		if down == h.pressed[i] {
			continue
		}

		h.pressed[i] = down
		if down {
			keyDown(hal.LayoutKeys[i])
		} else {
			keyUp(hal.LayoutKeys[i])
		}
	}

	return nil
}

func (h *HAL) Draw(gfx []uint8) error {
	for i, pixel := range gfx {
		c := h.opts.Background
		if pixel != 0 {
			c = h.opts.Foreground
		}

		p := h.pixels[i*4 : i*4+4]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	}

	return nil
}

// WaitForNextFrame is a no-op: ebiten calls Update at the configured TPS.
func (h *HAL) WaitForNextFrame() error {
	return nil
}

type game struct {
	hal   *HAL
	frame func() error
}

func (g *game) Update() error {
	err := g.frame()
	if errors.Is(err, hal.ErrQuit) {
		return ebiten.Termination
	}

	return err
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.hal.image == nil {
		g.hal.image = ebiten.NewImage(display.Width, display.Height)
	}

	g.hal.image.WritePixels(g.hal.pixels)
	screen.DrawImage(g.hal.image, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return display.Width, display.Height
}
