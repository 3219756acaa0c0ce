package capture

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

type openCVDevice struct {
	cam *gocv.VideoCapture
	mat gocv.Mat
}

// OpenCV opens cameras through OpenCV's VideoCapture. A zero width or
// height keeps the driver's default resolution.
func OpenCV(width, height int) Opener {
	return func(id int) (Device, error) {
		cam, err := gocv.VideoCaptureDevice(id)
		if err != nil {
			return nil, errors.Wrap(err, "Can not open device")
		}
		if !cam.IsOpened() {
			cam.Close()
			return nil, errors.Errorf("Can not connect to camera %d", id)
		}
		if width > 0 && height > 0 {
			cam.Set(gocv.VideoCaptureFrameWidth, float64(width))
			cam.Set(gocv.VideoCaptureFrameHeight, float64(height))
		}
		return &openCVDevice{cam: cam, mat: gocv.NewMat()}, nil
	}
}

func (d *openCVDevice) Read() (image.Image, error) {
	if ok := d.cam.Read(&d.mat); !ok {
		return nil, errors.New("Can not read frame")
	}
	if d.mat.Empty() {
		return nil, nil
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "Can not convert frame")
	}
	return img, nil
}

func (d *openCVDevice) Close() error {
	d.mat.Close()
	return d.cam.Close()
}
