//go:build linux

package console

import "golang.org/x/sys/unix"

// setKeyMode disables line buffering and echo. VTIME=1 lets a read return
// after a tenth of a second with whatever has arrived.
func setKeyMode(fd int) error {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Lflag &^= unix.ICANON | unix.ECHO
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 1
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
