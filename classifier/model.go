package classifier

import (
	"archive/zip"
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/Kagami/go-face"
	"github.com/pkg/errors"
)

const modelEntry = "model.json"

// Model is a trained classifier: the class labels, sorted, and the
// descriptor of every usable training image.
type Model struct {
	Labels  []string `json:"labels"`
	Samples []Entry  `json:"samples"`
}

type Entry struct {
	Class      int        `json:"class"`
	Descriptor Descriptor `json:"descriptor"`
}

func (m *Model) validate() error {
	if len(m.Labels) == 0 || len(m.Samples) == 0 {
		return errors.New("model is empty")
	}
	for i, e := range m.Samples {
		if e.Class < 0 || e.Class >= len(m.Labels) {
			return errors.Errorf("sample %d has class %d of %d", i, e.Class, len(m.Labels))
		}
	}
	return nil
}

// Save writes the model as a zip archive. The file is replaced
// atomically, a failed save leaves any previous model in place.
func (m *Model) Save(path string) error {
	if err := m.validate(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".faceid-model-*")
	if err != nil {
		return errors.Wrap(err, "Can not create model file")
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	w, err := zw.Create(modelEntry)
	if err == nil {
		err = json.NewEncoder(w).Encode(m)
	}
	if err == nil {
		err = zw.Close()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "Can not write model")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "Can not save model")
	}
	return nil
}

// Load reads a model saved by Save.
func Load(path string) (*Model, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(ErrNoModelLoaded, "%s: %v", path, err)
	}
	defer zr.Close()

	f, err := zr.Open(modelEntry)
	if err != nil {
		return nil, errors.Wrapf(ErrNoModelLoaded, "%s: %v", path, err)
	}
	defer f.Close()

	m := &Model{}
	if err := json.NewDecoder(f).Decode(m); err != nil {
		return nil, errors.Wrapf(ErrNoModelLoaded, "%s: %v", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, errors.Wrapf(ErrNoModelLoaded, "%s: %v", path, err)
	}
	return m, nil
}

// Score rates a descriptor against every class. The distance to a class
// is the distance to its closest training sample; scores are a softmax
// over -distance/temperature, so they add up to 1.
func (m *Model) Score(d Descriptor, temperature float64) Prediction {
	if temperature <= 0 {
		temperature = 0.1
	}

	dist := make([]float64, len(m.Labels))
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	for _, e := range m.Samples {
		if v := math.Sqrt(face.SquaredEuclideanDistance(d, e.Descriptor)); v < dist[e.Class] {
			dist[e.Class] = v
		}
	}

	closest := math.Inf(1)
	for _, v := range dist {
		closest = math.Min(closest, v)
	}

	weights := make([]float64, len(dist))
	var sum float64
	for i, v := range dist {
		// shifted by the closest distance to keep exp in range
		weights[i] = math.Exp(-(v - closest) / temperature)
		sum += weights[i]
	}

	p := Prediction{
		Labels: append([]string(nil), m.Labels...),
		Scores: make([]float32, len(dist)),
	}
	for i, w := range weights {
		p.Scores[i] = float32(w / sum)
	}
	if best, _ := p.Best(); best >= 0 {
		p.Label = p.Labels[best]
	}
	return p
}
