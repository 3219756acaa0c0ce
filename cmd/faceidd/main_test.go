package main

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/abihf/faceid"
	"github.com/abihf/faceid/capture"
	"github.com/pkg/errors"
)

func TestLockFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faceidd.pid")
	if isAlreadyRun(path) {
		t.Fatal("no pid file yet")
	}

	if err := writeLockFile(path); err != nil {
		t.Fatalf("writeLockFile: %v", err)
	}
	if !isAlreadyRun(path) {
		t.Error("our own pid should count as running")
	}

	if err := writeLockFile(filepath.Join(path, "nested")); err == nil {
		t.Error("expected error writing under a file")
	}
}

func TestIsAlreadyRun_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"garbage", "faceidd"},
		{"zero", "0"},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "faceidd.pid")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if isAlreadyRun(path) {
				t.Error("invalid pid file must not count as running")
			}
		})
	}
}

type faultyDevice struct{}

func (faultyDevice) Read() (image.Image, error) { return nil, errors.New("stream broken") }
func (faultyDevice) Close() error               { return nil }

func TestServer_Status(t *testing.T) {
	session := capture.NewSession(&capture.Option{
		Open: func(int) (capture.Device, error) { return faultyDevice{}, nil },
	})
	srv := &server{shooter: faceid.NewShooter(session, conf)}

	st := srv.status()
	if st["running"] != "false" || st["device"] != "-1" || st["people"] != "0" {
		t.Errorf("idle status: got %v", st)
	}
	if _, ok := st["camera_error"]; ok {
		t.Errorf("idle status has a camera error: %v", st)
	}

	if _, err := srv.shooter.Shoot(t.Context(), 2); !errors.Is(err, capture.ErrAcquisitionFault) {
		t.Fatalf("Shoot: got %v, want ErrAcquisitionFault", err)
	}
	if st := srv.status(); st["camera_error"] == "" {
		t.Errorf("status after a fault: got %v, want camera_error", st)
	}
}
