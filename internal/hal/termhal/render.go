package termhal

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/kapitanov/chip8/internal/display"
)

type renderer struct {
	pixel string
	fg    string
	bg    string
	buf   bytes.Buffer
}

func newRenderer(pixel string, fg, bg color.RGBA) *renderer {
	return &renderer{
		pixel: pixel,
		fg:    foreground(fg),
		bg:    foreground(bg),
	}
}

func foreground(c color.RGBA) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
}

// render writes a whole frame, switching colour only where it changes.
func (r *renderer) render(w io.Writer, gfx []uint8) {
	r.buf.Reset()
	r.buf.WriteString("\x1b[H")

	lit := -1
	for y := 0; y < display.Height; y++ {
		if y > 0 {
			r.buf.WriteString("\r\n")
		}

		for x := 0; x < display.Width; x++ {
			pixel := int(gfx[y*display.Width+x])
			if pixel != lit {
				if pixel != 0 {
					r.buf.WriteString(r.fg)
				} else {
					r.buf.WriteString(r.bg)
				}
				lit = pixel
			}

			r.buf.WriteString(r.pixel)
		}
	}

	_, _ = w.Write(r.buf.Bytes())
}
