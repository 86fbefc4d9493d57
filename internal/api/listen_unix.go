//go:build unix

package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenUnix binds path with a 0077 umask so the socket is created 0600.
// A stale socket left by a previous run is removed first; any other file
// at path is an error.
func listenUnix(path string) (net.Listener, error) {
	info, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	case info.Mode()&fs.ModeSocket == 0:
		return nil, fmt.Errorf("%s exists and is not a socket", path)
	default:
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	old := unix.Umask(0o077)
	defer unix.Umask(old)
	return net.Listen("unix", path)
}
