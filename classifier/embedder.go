package classifier

import (
	"bytes"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Descriptor is a 128-dimensional dlib face descriptor.
type Descriptor = face.Descriptor

// Embedder turns an image with one face into a descriptor.
type Embedder interface {
	Embed(img []byte) (Descriptor, error)
	Close() error
}

// DlibEmbedder uses dlib through go-face. The model directory must hold
// shape_predictor_5_face_landmarks.dat, dlib_face_recognition_resnet_model_v1.dat
// and mmod_human_face_detector.dat.
type DlibEmbedder struct {
	rec *face.Recognizer
	mu  sync.Mutex
}

func NewDlibEmbedder(modelDir string) (*DlibEmbedder, error) {
	rec, err := face.NewRecognizer(modelDir)
	if err != nil {
		return nil, errors.Wrapf(err, "Can not load dlib models from %s", modelDir)
	}
	return &DlibEmbedder{rec: rec}, nil
}

func (e *DlibEmbedder) Embed(img []byte) (Descriptor, error) {
	data, err := asJPEG(img)
	if err != nil {
		return Descriptor{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec == nil {
		return Descriptor{}, errors.New("embedder is closed")
	}

	f, err := e.rec.RecognizeSingle(data)
	if err != nil {
		return Descriptor{}, errors.Wrap(err, "Can not recognize face")
	}
	if f == nil {
		return Descriptor{}, ErrNoFace
	}
	return f.Descriptor, nil
}

func (e *DlibEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec != nil {
		e.rec.Close()
		e.rec = nil
	}
	return nil
}

// asJPEG re-encodes non-JPEG input, dlib's loader only reads JPEG.
func asJPEG(img []byte) ([]byte, error) {
	if len(img) > 2 && img[0] == 0xFF && img[1] == 0xD8 {
		return img, nil
	}
	decoded, err := imaging.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, errors.Wrap(err, "Can not decode image")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return nil, errors.Wrap(err, "Can not encode image")
	}
	return buf.Bytes(), nil
}
