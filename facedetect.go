package faceid

import (
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FaceDetector counts faces with an OpenCV Haar cascade.
type FaceDetector struct {
	classifier gocv.CascadeClassifier
	mu         sync.Mutex
}

func NewFaceDetector(cascadeFile string) (*FaceDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadeFile) {
		classifier.Close()
		return nil, errors.Errorf("Error reading cascade file: %v", cascadeFile)
	}
	return &FaceDetector{classifier: classifier}, nil
}

// Count returns the number of faces in an encoded image.
func (d *FaceDetector) Count(img []byte) (int, error) {
	mat, err := gocv.IMDecode(img, gocv.IMReadGrayScale)
	if err != nil {
		return 0, errors.Wrap(err, "Can not decode image")
	}
	defer mat.Close()
	if mat.Empty() {
		return 0, errors.New("Can not decode image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.classifier.DetectMultiScale(mat)), nil
}

func (d *FaceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}
