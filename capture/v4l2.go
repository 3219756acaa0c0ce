//go:build linux

package capture

import (
	"bytes"
	"image"
	"log/slog"

	"github.com/blackjack/webcam"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const pixelFormatMJPEG webcam.PixelFormat = 0x47504A4D

type v4l2Device struct {
	cam      *webcam.Webcam
	dropDark bool
}

// V4L2 opens /dev/videoN directly and streams MJPEG. With dropDark,
// frames that are almost black count as empty reads.
func V4L2(width, height int, dropDark bool) Opener {
	if width <= 0 || height <= 0 {
		width, height = 640, 480
	}
	return func(id int) (Device, error) {
		cam, err := webcam.Open(DevicePath(id))
		if err != nil {
			return nil, errors.Wrap(err, "Can not open device ")
		}

		if _, ok := cam.GetSupportedFormats()[pixelFormatMJPEG]; !ok {
			cam.Close()
			return nil, errors.Errorf("%s does not support MJPEG", DevicePath(id))
		}
		_, w, h, err := cam.SetImageFormat(pixelFormatMJPEG, uint32(width), uint32(height))
		if err != nil {
			cam.Close()
			return nil, errors.Wrap(err, "Can not set image format")
		}
		slog.Debug("V4L2 format", "device", id, "width", w, "height", h)

		err = cam.StartStreaming()
		if err != nil {
			cam.Close()
			return nil, errors.Wrap(err, "Can not start streaming")
		}
		return &v4l2Device{cam: cam, dropDark: dropDark}, nil
	}
}

func (d *v4l2Device) Read() (image.Image, error) {
	err := d.cam.WaitForFrame(1)
	switch err.(type) {
	case nil:
	case *webcam.Timeout:
		return nil, nil
	default:
		return nil, errors.Wrap(err, "Frame wait failed")
	}

	frame, err := d.cam.ReadFrame()
	if err != nil {
		return nil, errors.Wrap(err, "Read frame failed")
	}
	if len(frame) == 0 {
		return nil, nil
	}

	img, err := imaging.Decode(bytes.NewReader(frame))
	if err != nil {
		// truncated MJPEG frames happen, the next one is usually fine
		slog.Debug("Dropping undecodable frame", "error", err)
		return nil, nil
	}
	if d.dropDark && !hasGoodBlackLevel(img) {
		return nil, nil
	}
	return img, nil
}

func (d *v4l2Device) Close() error {
	if err := d.cam.StopStreaming(); err != nil {
		slog.Debug("Can not stop streaming", "error", err)
	}
	return d.cam.Close()
}
