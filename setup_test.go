package faceid

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abihf/faceid/capture"
	"github.com/abihf/faceid/config"
	"github.com/pkg/errors"
)

type stillDevice struct{}

func (stillDevice) Read() (image.Image, error) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.SetGray(0, 0, color.Gray{Y: 255})
	return img, nil
}

func (stillDevice) Close() error { return nil }

func testConf() *config.Config {
	return &config.Config{Width: 4, Height: 4, Timeout: 1, Warmup: 5}
}

func TestShoot(t *testing.T) {
	session := capture.NewSession(&capture.Option{
		Open:       func(int) (capture.Device, error) { return stillDevice{}, nil },
		FrameDelay: time.Millisecond,
	})

	still, err := NewShooter(session, testConf()).Shoot(context.Background(), 0)
	if err != nil {
		t.Fatalf("Shoot: %v", err)
	}
	if len(still) == 0 {
		t.Fatal("empty still")
	}
	if session.Running() {
		t.Error("session should be stopped after a shot")
	}
}

func TestShoot_DeviceUnavailable(t *testing.T) {
	session := capture.NewSession(&capture.Option{
		Open: func(int) (capture.Device, error) { return nil, errors.New("unplugged") },
	})

	if _, err := NewShooter(session, testConf()).Shoot(context.Background(), 3); !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Errorf("got %v, want ErrDeviceUnavailable", err)
	}
}

// countingDevice tracks how many devices are open at once.
type countingDevice struct {
	open *atomic.Int32
}

func (d countingDevice) Read() (image.Image, error) { return stillDevice{}.Read() }

func (d countingDevice) Close() error {
	d.open.Add(-1)
	return nil
}

func TestShooter_ConcurrentShots(t *testing.T) {
	tests := []struct {
		name    string
		devices [2]int
	}{
		{"same camera", [2]int{0, 0}},
		{"different cameras", [2]int{0, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var open, peak atomic.Int32
			session := capture.NewSession(&capture.Option{
				Open: func(int) (capture.Device, error) {
					n := open.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					return countingDevice{open: &open}, nil
				},
				FrameDelay: time.Millisecond,
			})
			conf := testConf()
			conf.Warmup = 50
			shooter := NewShooter(session, conf)

			var wg sync.WaitGroup
			errs := make([]error, 2)
			stills := make([][]byte, 2)
			for i, device := range tc.devices {
				wg.Add(1)
				go func() {
					defer wg.Done()
					stills[i], errs[i] = shooter.Shoot(context.Background(), device)
				}()
				time.Sleep(10 * time.Millisecond)
			}
			wg.Wait()

			for i := range errs {
				if errs[i] != nil {
					t.Errorf("shot %d: %v", i, errs[i])
				}
				if len(stills[i]) == 0 {
					t.Errorf("shot %d: empty still", i)
				}
			}
			if peak.Load() != 1 {
				t.Errorf("devices open at once: got %d, want 1", peak.Load())
			}
		})
	}
}

func TestShooter_CancelledBeforeShot(t *testing.T) {
	session := capture.NewSession(&capture.Option{
		Open: func(int) (capture.Device, error) { return stillDevice{}, nil },
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewShooter(session, testConf()).Shoot(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if session.Running() {
		t.Error("a cancelled shot must not start the camera")
	}
}
