package main

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/abihf/faceid"
	"github.com/abihf/faceid/classifier"
	"github.com/abihf/faceid/config"
	"github.com/abihf/faceid/protocol"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/errors"
)

var conf = config.Load()

type server struct {
	shooter *faceid.Shooter

	mu        sync.RWMutex
	predictor *classifier.Predictor
	embedder  classifier.Embedder
}

func main() {
	if err := serve(); err != nil {
		log.Fatal(err)
	}
}

func serve() error {
	if isAlreadyRun(conf.PidFile) {
		return errors.New("already run")
	}

	srv := &server{}
	if err := srv.reload(); err != nil {
		// keep serving, TRAIN can still produce a model
		log.Printf("Model not loaded: %v", err)
	}
	defer srv.close()

	session, err := faceid.NewSession(conf, nil)
	if err != nil {
		return errors.Wrap(err, "Can not set up capture")
	}
	srv.shooter = faceid.NewShooter(session, conf)
	defer session.Dispose()

	os.MkdirAll(filepath.Dir(conf.Socket), 0o755)
	if err := writeLockFile(conf.PidFile); err != nil {
		log.Printf("Can not write pid file: %v", err)
	}
	defer os.Remove(conf.PidFile)

	os.Remove(conf.Socket)

	ln, err := net.Listen("unix", conf.Socket)
	if err != nil {
		return errors.Wrap(err, "Listen error")
	}
	defer ln.Close()

	os.Chmod(conf.Socket, 0666)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for {
			fd, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				log.Printf("Accept error: %v\n", err.Error())
				return
			}

			go srv.handle(ctx, fd)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	daemon.SdNotify(false, daemon.SdNotifyReady)
	sig := <-sigc
	log.Printf("Caught signal %s: shutting down.", sig)
	daemon.SdNotify(false, daemon.SdNotifyStopping)
	return nil
}

func (s *server) handle(ctx context.Context, c net.Conn) {
	defer c.Close()

	reqs := protocol.NewReqReader(c)
	for {
		req, err := reqs.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Println("Can not read request", err)
			}
			return
		}

		var extras map[string]string
		switch req.Action {
		case protocol.ActionIdentify:
			extras, err = s.identify(ctx, protocol.ToIdentifyReq(req))
		case protocol.ActionTrain:
			err = s.train(ctx)
		case protocol.ActionStatus:
			extras = s.status()
		default:
			err = errors.Errorf("unknown action %q", req.Action)
		}

		if err != nil {
			log.Printf("%s error: %v", req.Action, err)
			protocol.WriteErrorRes(c, err)
		} else {
			protocol.WriteSuccessRes(c, extras)
		}
	}
}

func (s *server) identify(ctx context.Context, req *protocol.IdentifyReq) (map[string]string, error) {
	device := req.Device
	if device < 0 {
		device = conf.Device
	}
	log.Printf("Identifying for %s on camera %d", req.Client, device)

	still, err := s.shooter.Shoot(ctx, device)
	if err != nil {
		return nil, err
	}
	if err := faceid.SaveSnapshot(conf.Snapshot, still); err != nil {
		log.Println(err)
	}

	s.mu.RLock()
	predictor := s.predictor
	s.mu.RUnlock()

	res, err := faceid.Identify(predictor, still, conf.Threshold)
	if err != nil {
		return nil, err
	}
	person := res.Person()
	if person == "" {
		return nil, errors.New("no match")
	}
	return map[string]string{
		"label": person,
		"score": strconv.FormatFloat(float64(res.Score), 'f', 4, 32),
	}, nil
}

// status reports the camera state and the loaded model.
func (s *server) status() map[string]string {
	session := s.shooter.Session()
	extras := map[string]string{
		"running": strconv.FormatBool(session.Running()),
		"device":  strconv.Itoa(session.DeviceID()),
	}
	if err := session.Err(); err != nil {
		extras["camera_error"] = err.Error()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.predictor != nil {
		extras["people"] = strconv.Itoa(len(s.predictor.Model().Labels))
	} else {
		extras["people"] = "0"
	}
	return extras
}

func (s *server) train(ctx context.Context) error {
	if err := faceid.Retrain(ctx, conf.Trainer, conf.Dataset, conf.ModelFile); err != nil {
		return err
	}
	return s.reload()
}

func (s *server) reload() error {
	predictor, emb, err := faceid.NewPredictor(conf)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old := s.embedder
	s.predictor, s.embedder = predictor, emb
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	log.Printf("Model loaded: %d people", len(predictor.Model().Labels))
	return nil
}

func (s *server) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embedder != nil {
		s.embedder.Close()
	}
}
