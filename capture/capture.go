// Package capture runs webcam capture sessions: a background acquisition
// loop per session, a live preview hand-off and a still image on stop.
package capture

import (
	"image"

	"github.com/pkg/errors"
)

var (
	// ErrDeviceUnavailable is returned by Start when the camera can not be opened.
	ErrDeviceUnavailable = errors.New("camera device unavailable")

	// ErrAcquisitionFault marks a failure inside the acquisition loop.
	ErrAcquisitionFault = errors.New("frame acquisition failed")
)

// Device is an open camera. A Device is used only by the goroutine that
// opened it.
type Device interface {
	// Read returns the next frame. A nil image with a nil error is an
	// empty read.
	Read() (image.Image, error)
	Close() error
}

// Opener opens a camera by device id.
type Opener func(id int) (Device, error)

// Preview receives every acquired frame. Implementations must not touch
// UI state directly; they hand the frame over to the UI's own goroutine.
type Preview interface {
	Show(frame image.Image)
}

// PreviewFunc adapts a function to Preview.
type PreviewFunc func(frame image.Image)

func (f PreviewFunc) Show(frame image.Image) {
	f(frame)
}

var nopPreview = PreviewFunc(func(image.Image) {})
