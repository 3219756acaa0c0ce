package capture

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// EncodeStill crops the frame around its center to the width/height
// aspect ratio, scales it to that size and encodes it as PNG. A zero
// width or height keeps the frame size.
func EncodeStill(frame image.Image, width, height int) ([]byte, error) {
	if frame == nil {
		return nil, nil
	}
	if width > 0 && height > 0 {
		frame = imaging.Fill(frame, width, height, imaging.Center, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "Can not encode still")
	}
	return buf.Bytes(), nil
}
