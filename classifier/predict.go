package classifier

import (
	"github.com/pkg/errors"
)

// Predictor classifies images with a trained model.
type Predictor struct {
	model       *Model
	embedder    Embedder
	temperature float64
}

func NewPredictor(model *Model, embedder Embedder, temperature float64) *Predictor {
	return &Predictor{model: model, embedder: embedder, temperature: temperature}
}

// LoadPredictor loads the model archive at path.
func LoadPredictor(path string, embedder Embedder, temperature float64) (*Predictor, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewPredictor(m, embedder, temperature), nil
}

func (p *Predictor) Predict(img []byte) (Prediction, error) {
	if p == nil || p.model == nil {
		return Prediction{}, ErrNoModelLoaded
	}
	if len(img) == 0 {
		return Prediction{}, errors.Wrap(ErrInferenceFault, "empty image")
	}
	d, err := p.embedder.Embed(img)
	if err != nil {
		return Prediction{}, errors.Wrapf(ErrInferenceFault, "%v", err)
	}
	return p.model.Score(d, p.temperature), nil
}

// Model returns the model in use.
func (p *Predictor) Model() *Model {
	return p.model
}
