package faceid

import (
	"context"
	"sync"
	"time"

	"github.com/abihf/faceid/capture"
	"github.com/abihf/faceid/classifier"
	"github.com/abihf/faceid/config"
	"github.com/pkg/errors"
)

// NewSession builds a capture session from the config.
func NewSession(conf *config.Config, preview capture.Preview) (*capture.Session, error) {
	open, err := capture.NewOpener(conf.Backend, conf.DarkFrames)
	if err != nil {
		return nil, err
	}
	return capture.NewSession(&capture.Option{
		Open:       open,
		Preview:    preview,
		Mirror:     conf.MirrorEnabled(),
		FrameDelay: time.Duration(conf.FrameDelay) * time.Millisecond,
		PinCPU:     conf.CPU() >= 0,
		CPU:        conf.CPU(),
	}), nil
}

// NewPredictor loads the dlib models and the trained model named in the
// config. The embedder is returned so the caller can close it.
func NewPredictor(conf *config.Config) (*classifier.Predictor, classifier.Embedder, error) {
	emb, err := classifier.NewDlibEmbedder(conf.DlibModels)
	if err != nil {
		return nil, nil, err
	}
	p, err := classifier.LoadPredictor(conf.ModelFile, emb, conf.Temperature)
	if err != nil {
		emb.Close()
		return nil, nil, err
	}
	return p, emb, nil
}

// Shooter takes stills from a shared session, one at a time. A second
// caller waits for the first shot to finish instead of joining its loop.
type Shooter struct {
	mu      sync.Mutex
	session *capture.Session
	conf    *config.Config
}

func NewShooter(session *capture.Session, conf *config.Config) *Shooter {
	return &Shooter{session: session, conf: conf}
}

// Shoot runs one short capture on device: start, let exposure settle
// for the configured warmup, stop and return the still.
func (s *Shooter) Shoot(ctx context.Context, device int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, time.Duration(s.conf.Timeout)*time.Second)
	defer cancel()
	if err := s.session.Start(startCtx, device, s.conf.Width, s.conf.Height); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(s.conf.Warmup) * time.Millisecond):
	}

	still, err := s.session.Stop()
	if err != nil {
		return nil, err
	}
	if still == nil {
		return nil, errors.New("no frame captured")
	}
	return still, ctx.Err()
}

// Session is the session shots are taken from.
func (s *Shooter) Session() *capture.Session {
	return s.session
}
