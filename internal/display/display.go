package display

import "strings"

const (
	Width  = 64
	Height = 32

	spriteWidth = 8
)

// Change describes the region touched by the most recent draw.
// It is a redraw hint: wrapped sprites are not tightly bounded, and a host
// may always redraw the whole buffer instead.
type Change struct {
	X, Y int // Top-left corner of the sprite, before wrapping
	N    int // Number of sprite rows

	// Cleared is set when the whole screen was wiped.
	Cleared bool
}

// Display is a monochrome framebuffer with XOR sprite compositing.
type Display struct {
	buffer  []uint8 // Row-major, one byte (0 or 1) per pixel
	change  Change
	changed bool
}

func New() *Display {
	return &Display{
		buffer: make([]uint8, Width*Height),
	}
}

// LoadSprite XORs sprite rows onto the screen at (x, y), wrapping on both
// axes. It reports whether any lit pixel was turned off.
func (d *Display) LoadSprite(x, y int, sprite []uint8) bool {
	collision := false

	for row, bits := range sprite {
		py := (y + row) % Height

		for bit := 0; bit < spriteWidth; bit++ {
			pixel := (bits >> (spriteWidth - 1 - bit)) & 1
			px := (x + bit) % Width

			i := py*Width + px
			old := d.buffer[i]
			d.buffer[i] = old ^ pixel

			if old == 1 && pixel == 1 {
				collision = true
			}
		}
	}

	d.change = Change{X: x, Y: y, N: len(sprite)}
	d.changed = true

	return collision
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.change = Change{N: Height, Cleared: true}
	d.changed = true
}

// Buffer returns the framebuffer, Width*Height entries of 0 or 1.
// The slice aliases internal state and must not be modified.
func (d *Display) Buffer() []uint8 {
	return d.buffer
}

// Pixel returns the pixel at (x, y) without wrapping.
func (d *Display) Pixel(x, y int) uint8 {
	return d.buffer[y*Width+x]
}

// Changes returns the damage recorded since the last ClearChanges.
func (d *Display) Changes() (Change, bool) {
	return d.change, d.changed
}

func (d *Display) ClearChanges() {
	d.change = Change{}
	d.changed = false
}

// String renders the framebuffer with '#' for lit and '.' for dark pixels.
func (d *Display) String() string {
	var sb strings.Builder
	sb.Grow((Width + 1) * Height)

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if d.buffer[y*Width+x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
