//go:build !windows

package ui

import (
	"io"
	"os"
)

// OpenTTY opens the controlling terminal for interactive input, used when
// stdin already carries the script.
func OpenTTY() (io.ReadWriteCloser, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}
