package termhal

import (
	"github.com/kapitanov/chip8/internal/hal"
	"github.com/kapitanov/chip8/internal/keyboard"
)

const (
	ctrlC     = 0x03
	ctrlQ     = 0x11
	backspace = 0x08
	del       = 0x7f
)

// latch turns a stream of typed bytes into press/release events.
// Terminals never report releases, so a key stays held for a number of
// frames after its last byte arrived.
type latch struct {
	hold      int
	remaining [keyboard.KeyCount]int
}

func newLatch(hold int) *latch {
	return &latch{
		hold: max(hold, 1),
	}
}

// read drains pending input without blocking. A closed input counts as a
// quit request.
func (l *latch) read(input <-chan byte, keyDown func(keyboard.Key), keyUp func(keyboard.Key)) error {
	for k, n := range l.remaining {
		if n == 0 {
			continue
		}

		l.remaining[k] = n - 1
		if n == 1 {
			keyUp(keyboard.Key(k))
		}
	}

	for {
		select {
		case b, ok := <-input:
			if !ok {
				return hal.ErrQuit
			}
			if err := l.feed(b, keyDown); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

func (l *latch) feed(b byte, keyDown func(keyboard.Key)) error {
	switch b {
	case ctrlC, ctrlQ:
		return hal.ErrQuit
	case backspace, del:
		// The reboot releases every key, so held keys must press again.
		l.remaining = [keyboard.KeyCount]int{}
		return hal.ErrReboot
	}

	key, ok := hal.KeyForRune(rune(b))
	if !ok {
		return nil
	}

	if l.remaining[key] == 0 {
		keyDown(key)
	}
	l.remaining[key] = l.hold

	return nil
}
