//go:build !linux

package serial

func configureRaw(fd, baud int) error {
	return ErrUnsupportedPlatform
}
