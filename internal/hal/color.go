package hal

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.RGBA{
	"black":  {0x00, 0x00, 0x00, 0xff},
	"white":  {0xff, 0xff, 0xff, 0xff},
	"green":  {0x00, 0xc0, 0x00, 0xff},
	"red":    {0xc0, 0x00, 0x00, 0xff},
	"blue":   {0x00, 0x40, 0xe0, 0xff},
	"cyan":   {0x00, 0xc0, 0xc0, 0xff},
	"yellow": {0xe0, 0xe0, 0x00, 0xff},
	"purple": {0xa0, 0x00, 0xc0, 0xff},
	"grey":   {0x80, 0x80, 0x80, 0xff},
	"amber":  {0xbe, 0xa7, 0x00, 0xff},
}

// ParseColor accepts a colour name or a "#rrggbb" value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}

		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}

	return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
}

// ARGB packs c as 0xAARRGGBB.
func ARGB(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
