// Package hal holds what the host backends share: control errors, the
// physical keyboard layout, colours and frame pacing.
package hal

import "errors"

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)
