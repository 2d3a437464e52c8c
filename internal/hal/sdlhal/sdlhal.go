package sdlhal

import (
	"fmt"
	"image/color"
	"log/slog"
	"unsafe"

	"github.com/kapitanov/chip8/internal/display"
	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/keyboard"
	"github.com/veandco/go-sdl2/sdl"
)

type Options struct {
	Scale      int
	FPS        int
	Foreground color.RGBA
	Background color.RGBA
}

type HAL struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int
	limiter         *hal.FrameLimiter

	fgColor uint32
	bgColor uint32
}

func New(opts Options) (*HAL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	windowWidth := int32(display.Width * opts.Scale)
	windowHeight := int32(display.Height * opts.Scale)

	window, err := sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, windowWidth, windowHeight, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window", "width", windowWidth, "height", windowHeight)

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	err = renderer.SetLogicalSize(windowWidth, windowHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, display.Width, display.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	return &HAL{
		window:          window,
		renderer:        renderer,
		texture:         texture,
		backBuffer:      make([]uint32, display.Width*display.Height),
		backBufferPitch: display.Width * int(unsafe.Sizeof(uint32(0))),
		limiter:         hal.NewFrameLimiter(opts.FPS),
		fgColor:         hal.ARGB(opts.Foreground),
		bgColor:         hal.ARGB(opts.Background),
	}, nil
}

func (h *HAL) Shutdown() {
	h.limiter.Stop()

	if err := h.texture.Destroy(); err != nil {
		slog.Error("failed to destroy sdl texture", "err", err)
	}

	if err := h.renderer.Destroy(); err != nil {
		slog.Error("failed to destroy sdl renderer", "err", err)
	}

	if err := h.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

func (h *HAL) ReadInput(keyDown func(keyboard.Key), keyUp func(keyboard.Key)) error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e.GetType() {
		case sdl.QUIT:
			slog.Debug("hal: exit requested")
			return hal.ErrQuit
		case sdl.KEYDOWN:
			err := processKeyDown(e.(*sdl.KeyboardEvent), keyDown)
			if err != nil {
				return err
			}

		case sdl.KEYUP:
			processKeyUp(e.(*sdl.KeyboardEvent), keyUp)
		}
	}

	return nil
}

func processKeyDown(e *sdl.KeyboardEvent, callback func(keyboard.Key)) error {
	switch e.Keysym.Scancode {
	case sdl.SCANCODE_BACKSPACE:
		return hal.ErrReboot
	case sdl.SCANCODE_ESCAPE:
		return hal.ErrQuit
	}

	if e.Repeat != 0 {
		return nil
	}

	key, ok := keyMap(e.Keysym.Scancode)
	if ok {
		callback(key)
	}

	return nil
}

func processKeyUp(e *sdl.KeyboardEvent, callback func(keyboard.Key)) {
	key, ok := keyMap(e.Keysym.Scancode)
	if ok {
		callback(key)
	}
}

// Scancodes follow hal.Layout by physical position, whatever the user's
// keyboard layout is.
var scancodes = [keyboard.KeyCount]sdl.Scancode{
	sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4,
	sdl.SCANCODE_Q, sdl.SCANCODE_W, sdl.SCANCODE_E, sdl.SCANCODE_R,
	sdl.SCANCODE_A, sdl.SCANCODE_S, sdl.SCANCODE_D, sdl.SCANCODE_F,
	sdl.SCANCODE_Z, sdl.SCANCODE_X, sdl.SCANCODE_C, sdl.SCANCODE_V,
}

func keyMap(code sdl.Scancode) (keyboard.Key, bool) {
	for i, sc := range scancodes {
		if sc == code {
			return hal.LayoutKeys[i], true
		}
	}

	return 0, false
}

func (h *HAL) Draw(gfx []uint8) error {
	for i, pixel := range gfx {
		argb := h.bgColor
		if pixel != 0 {
			argb = h.fgColor
		}

		h.backBuffer[i] = argb
	}

	backBufferPtr := unsafe.Pointer(&h.backBuffer[0])
	if err := h.texture.Update(nil, backBufferPtr, h.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := h.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := h.renderer.Copy(h.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	h.renderer.Present()
	return nil
}

func (h *HAL) WaitForNextFrame() error {
	h.limiter.Wait()
	return nil
}
