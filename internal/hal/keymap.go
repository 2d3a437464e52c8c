package hal

import (
	"unicode"

	"github.com/kapitanov/chip8/internal/keyboard"
)

// Physical                Logical
// ================        =================
// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
// | q | w | e | r |       | 4 | 5 | 6 | D |
// | a | s | d | f |  <=>  | 7 | 8 | 9 | E |
// | z | x | c | v |       | A | 0 | B | F |
// ================        =================

// Layout lists the physical keys row by row.
var Layout = [keyboard.KeyCount]rune{
	'1', '2', '3', '4',
	'q', 'w', 'e', 'r',
	'a', 's', 'd', 'f',
	'z', 'x', 'c', 'v',
}

// LayoutKeys holds the keypad code for each entry of Layout.
var LayoutKeys = [keyboard.KeyCount]keyboard.Key{
	keyboard.Key1, keyboard.Key2, keyboard.Key3, keyboard.KeyC,
	keyboard.Key4, keyboard.Key5, keyboard.Key6, keyboard.KeyD,
	keyboard.Key7, keyboard.Key8, keyboard.Key9, keyboard.KeyE,
	keyboard.KeyA, keyboard.Key0, keyboard.KeyB, keyboard.KeyF,
}

// KeyForRune maps a typed character to a keypad code, ignoring case.
func KeyForRune(r rune) (keyboard.Key, bool) {
	r = unicode.ToLower(r)
	for i, physical := range Layout {
		if physical == r {
			return LayoutKeys[i], true
		}
	}

	return 0, false
}
