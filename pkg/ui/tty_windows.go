//go:build windows

package ui

import (
	"io"
	"os"
)

// OpenTTY opens the console input device, used when stdin already carries
// the script.
func OpenTTY() (io.ReadWriteCloser, error) {
	return os.OpenFile("CONIN$", os.O_RDWR, 0)
}
