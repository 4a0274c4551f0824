// Package process terminates browser process trees left behind by the
// Chrome PDF engine.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for PIDs that must never be signalled:
// 0 and negative values address process groups, 1 is init.
var ErrInvalidPID = errors.New("invalid process id")

// KillTree force-kills pid and every process it spawned.
func KillTree(pid int) error {
	if pid <= 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
