package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_Defaults(t *testing.T) {
	conf, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if conf == nil {
		t.Fatal("config must never be nil")
	}

	if conf.Width != 300 || conf.Height != 300 {
		t.Errorf("size: got %dx%d, want 300x300", conf.Width, conf.Height)
	}
	if !conf.MirrorEnabled() {
		t.Error("mirror should default to true")
	}
	if conf.Threshold != 0.6 {
		t.Errorf("threshold: got %v, want 0.6", conf.Threshold)
	}
	if conf.FrameDelay != 33 {
		t.Errorf("frame delay: got %d, want 33", conf.FrameDelay)
	}
	if conf.CPU() != -1 {
		t.Errorf("capture cpu: got %d, want -1", conf.CPU())
	}
	if conf.ModelFile != "FaceModel.zip" {
		t.Errorf("model file: got %q", conf.ModelFile)
	}
}

func TestLoadFile_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"device": 2, "mirror": false, "threshold": 0.75, "dataset": "/srv/faces"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	conf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if conf.Device != 2 {
		t.Errorf("device: got %d, want 2", conf.Device)
	}
	if conf.MirrorEnabled() {
		t.Error("mirror should be disabled by file")
	}
	if conf.Threshold != 0.75 {
		t.Errorf("threshold: got %v, want 0.75", conf.Threshold)
	}
	if conf.Dataset != "/srv/faces" {
		t.Errorf("dataset: got %q", conf.Dataset)
	}
	// untouched fields still get defaults
	if conf.Snapshot != "screenshot.png" {
		t.Errorf("snapshot: got %q", conf.Snapshot)
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"device": 2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FACEID_DEVICE", "5")
	t.Setenv("FACEID_MODEL_FILE", "/tmp/model.zip")
	t.Setenv("FACEID_CAPTURE_CPU", "3")

	conf, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if conf.Device != 5 {
		t.Errorf("device: got %d, want 5", conf.Device)
	}
	if conf.ModelFile != "/tmp/model.zip" {
		t.Errorf("model file: got %q", conf.ModelFile)
	}
	if conf.CPU() != 3 {
		t.Errorf("capture cpu: got %d, want 3", conf.CPU())
	}
}

func TestLoad_UsesEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"backend": "v4l2"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FACEID_CONFIG", path)

	conf := Load()
	if conf.Backend != "v4l2" {
		t.Errorf("backend: got %q, want v4l2", conf.Backend)
	}
}
