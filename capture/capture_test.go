package capture

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func grayFrame(level uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

func TestHasGoodBlackLevel(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"black", grayFrame(0), false},
		{"nearly black", grayFrame(10), false},
		{"normal", grayFrame(120), true},
		{"bright", grayFrame(250), true},
		{"empty", image.NewGray(image.Rect(0, 0, 0, 0)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasGoodBlackLevel(tc.img); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestChanPreview_KeepsNewest(t *testing.T) {
	p := NewChanPreview()
	first := grayFrame(1)
	last := grayFrame(2)

	p.Show(first)
	p.Show(last)

	got := <-p.Frames()
	if got.At(0, 0).(color.Gray).Y != 2 {
		t.Error("preview should hold the newest frame")
	}
	select {
	case <-p.Frames():
		t.Error("preview should hold a single frame")
	default:
	}
}

func TestListDevices(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"video2", "video0", "video10", "videoX"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	old := devGlob
	devGlob = filepath.Join(dir, "video*")
	defer func() { devGlob = old }()

	devices := ListDevices()
	want := []int{0, 2, 10}
	if len(devices) != len(want) {
		t.Fatalf("got %d devices, want %d", len(devices), len(want))
	}
	for i, id := range want {
		if devices[i].ID != id {
			t.Errorf("device %d: got id %d, want %d", i, devices[i].ID, id)
		}
	}
}

func TestListDevices_Fallback(t *testing.T) {
	old := devGlob
	devGlob = filepath.Join(t.TempDir(), "video*")
	defer func() { devGlob = old }()

	devices := ListDevices()
	if len(devices) != 1 || devices[0].ID != 0 {
		t.Errorf("got %v, want a single device 0", devices)
	}
}

func TestNewOpener(t *testing.T) {
	for _, backend := range []string{"", "opencv", "v4l2"} {
		if _, err := NewOpener(backend, false); err != nil {
			t.Errorf("%q: %v", backend, err)
		}
	}
	if _, err := NewOpener("directshow", false); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestEncodeStill_Nil(t *testing.T) {
	still, err := EncodeStill(nil, 10, 10)
	if still != nil || err != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", still, err)
	}
}
