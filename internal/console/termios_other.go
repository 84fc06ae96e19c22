//go:build !linux

package console

func setKeyMode(int) error {
	return ErrUnsupportedPlatform
}
