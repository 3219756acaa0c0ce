// Package classifier trains and runs the face classification model.
// Faces are turned into dlib descriptors; a model keeps the descriptors
// of every training image and scores a new face against each class.
package classifier

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoModelLoaded is returned when the model file can not be used.
	ErrNoModelLoaded = errors.New("no model loaded")

	// ErrInferenceFault is returned when a prediction can not be made.
	ErrInferenceFault = errors.New("inference failed")

	// ErrNoFace is returned when an image does not contain exactly one face.
	ErrNoFace = errors.New("no single face found")

	// ErrEmptyDataset is returned when training has nothing to learn from.
	ErrEmptyDataset = errors.New("no usable training images")
)

// Prediction is the outcome of one classification. Scores[i] belongs to
// Labels[i]; the order is the one fixed at training time.
type Prediction struct {
	Label  string
	Labels []string
	Scores []float32
}

// Best returns the index and value of the highest score, or -1.
func (p Prediction) Best() (int, float32) {
	best := -1
	var score float32
	for i, s := range p.Scores {
		if best < 0 || s > score {
			best, score = i, s
		}
	}
	return best, score
}

// Classifier predicts which known person an image shows.
type Classifier interface {
	Predict(img []byte) (Prediction, error)
}
