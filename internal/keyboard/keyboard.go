package keyboard

import "fmt"

const KeyCount = 16

// Key is a hexadecimal keypad code, 0x0-0xF.
//
//	| 1 | 2 | 3 | C |
//	| 4 | 5 | 6 | D |
//	| 7 | 8 | 9 | E |
//	| A | 0 | B | F |
type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

func (k Key) String() string {
	return fmt.Sprintf("%X", uint8(k))
}

// Keyboard latches the state of all 16 keys. Several keys may be held at
// once.
type Keyboard struct {
	pad [KeyCount]bool
}

func New() *Keyboard {
	return &Keyboard{}
}

// SetKey marks key as held. Keys outside 0x0-0xF panic.
func (kb *Keyboard) SetKey(key Key) {
	kb.pad[key] = true
}

// UnsetKey marks key as released. Keys outside 0x0-0xF panic.
func (kb *Keyboard) UnsetKey(key Key) {
	kb.pad[key] = false
}

func (kb *Keyboard) IsPressed(key Key) bool {
	return kb.pad[key]
}

// Pressed returns the lowest-numbered held key.
func (kb *Keyboard) Pressed() (Key, bool) {
	for i, down := range kb.pad {
		if down {
			return Key(i), true
		}
	}

	return 0, false
}

// Reset releases every key.
func (kb *Keyboard) Reset() {
	kb.pad = [KeyCount]bool{}
}
