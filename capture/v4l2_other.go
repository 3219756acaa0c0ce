//go:build !linux

package capture

import "github.com/pkg/errors"

// V4L2 is only available on linux.
func V4L2(width, height int, dropDark bool) Opener {
	return func(id int) (Device, error) {
		return nil, errors.New("V4L2 capture is only supported on linux")
	}
}
