package capture

import (
	"context"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/abihf/faceid/utils/thread"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// DefaultFrameDelay gives roughly 30 frames per second.
const DefaultFrameDelay = 33 * time.Millisecond

var errStoppedEarly = errors.Wrap(context.Canceled, "capture stopped before the first frame")

type Option struct {
	Open    Opener
	Preview Preview

	// Mirror flips every frame horizontally before it is stored.
	Mirror bool

	// FrameDelay is the pause between two reads. Zero means DefaultFrameDelay.
	FrameDelay time.Duration

	// PinCPU pins the acquisition thread to core CPU.
	PinCPU bool
	CPU    int
}

// Session owns one camera at a time. Start and Stop are serialized;
// Dispose may be called from anywhere at any time.
type Session struct {
	open    Opener
	preview Preview
	mirror  bool
	delay   time.Duration
	cpu     int // negative: no pinning

	// op serializes Start and Stop so at most one loop exists.
	op sync.Mutex

	mu      sync.Mutex
	run     *run
	lastErr error
}

// run is one acquisition loop. last and err are written by the loop
// goroutine only and read only after done is closed.
type run struct {
	deviceID      int
	width, height int

	cancel context.CancelFunc
	done   chan struct{}
	ready  chan error
	once   sync.Once

	last image.Image
	err  error
}

func NewSession(opt *Option) *Session {
	s := &Session{
		open:    opt.Open,
		preview: opt.Preview,
		mirror:  opt.Mirror,
		delay:   opt.FrameDelay,
		cpu:     -1,
	}
	if opt.PinCPU {
		s.cpu = opt.CPU
	}
	if s.open == nil {
		s.open = OpenCV(0, 0)
	}
	if s.preview == nil {
		s.preview = nopPreview
	}
	if s.delay <= 0 {
		s.delay = DefaultFrameDelay
	}
	return s
}

// Start opens the device on a background goroutine and blocks until the
// first frame arrives, the device fails, or ctx is done. A session already
// running on another device is stopped first; one running on the same
// device is left alone.
func (s *Session) Start(ctx context.Context, deviceID, width, height int) error {
	s.op.Lock()
	defer s.op.Unlock()

	if cur := s.current(); cur != nil {
		if cur.deviceID == deviceID && !cur.finished() {
			return nil
		}
		slog.Debug("Stopping previous capture", "device", cur.deviceID)
		cur.cancel()
		<-cur.done
		s.detach(cur)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r := &run{
		deviceID: deviceID,
		width:    width,
		height:   height,
		cancel:   cancel,
		done:     make(chan struct{}),
		ready:    make(chan error, 1),
	}

	s.mu.Lock()
	s.run = r
	s.mu.Unlock()

	go s.acquire(loopCtx, r)

	var err error
	select {
	case err = <-r.ready:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		cancel()
		<-r.done
		s.detach(r)
		return err
	}

	slog.Debug("Capture started", "device", deviceID)
	return nil
}

// Stop ends the running loop and returns the last frame as PNG, cropped
// and resized to the size given to Start. It returns nil when nothing is
// running or no frame was acquired. A loop failure that happened after
// the first frame is returned along with the still.
func (s *Session) Stop() ([]byte, error) {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	r := s.run
	s.run = nil
	s.mu.Unlock()
	if r == nil {
		return nil, nil
	}

	r.cancel()
	// the loop must be gone before last is read
	<-r.done

	s.mu.Lock()
	s.lastErr = r.err
	s.mu.Unlock()

	if r.last == nil {
		return nil, r.err
	}
	still, err := EncodeStill(r.last, r.width, r.height)
	if err != nil {
		return nil, err
	}
	slog.Debug("Capture stopped", "device", r.deviceID, "bytes", len(still))
	return still, r.err
}

// Dispose cancels the running loop without waiting for it and drops the
// last frame. The loop may still be closing the device when Dispose returns.
func (s *Session) Dispose() {
	s.mu.Lock()
	r := s.run
	s.run = nil
	s.mu.Unlock()

	if r != nil {
		r.cancel()
	}
}

// Running reports whether an acquisition loop is active.
func (s *Session) Running() bool {
	r := s.current()
	return r != nil && !r.finished()
}

// DeviceID returns the device of the current loop, or -1.
func (s *Session) DeviceID() int {
	if r := s.current(); r != nil {
		return r.deviceID
	}
	return -1
}

// Err returns the failure of the most recently ended loop.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil && s.run.finished() {
		return s.run.err
	}
	return s.lastErr
}

func (s *Session) current() *run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

func (s *Session) detach(r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == r {
		s.run = nil
	}
	s.lastErr = r.err
}

func (s *Session) acquire(ctx context.Context, r *run) {
	// the device is opened, used and closed on this thread only
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.done)
	defer func() {
		if p := recover(); p != nil {
			r.err = errors.Wrapf(ErrAcquisitionFault, "device %d: %v", r.deviceID, p)
			r.release(r.err)
		}
		r.release(errStoppedEarly)
	}()

	if s.cpu >= 0 {
		thread.SetCPUAffinity(s.cpu)
	}

	dev, err := s.open(r.deviceID)
	if err != nil {
		r.release(errors.Wrapf(ErrDeviceUnavailable, "device %d: %v", r.deviceID, err))
		return
	}
	defer func() {
		if err := dev.Close(); err != nil {
			slog.Warn("Can not close camera", "device", r.deviceID, "error", err)
		}
	}()

	for ctx.Err() == nil {
		frame, err := dev.Read()
		if err != nil {
			r.err = errors.Wrapf(ErrAcquisitionFault, "device %d: %v", r.deviceID, err)
			r.release(r.err)
			return
		}

		if frame != nil {
			if s.mirror {
				frame = imaging.FlipH(frame)
			}
			r.last = frame
			r.release(nil)
			s.preview.Show(frame)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
		}
	}
}

// release resolves the first-frame gate. Only the first call counts.
func (r *run) release(err error) {
	r.once.Do(func() {
		r.ready <- err
	})
}

func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
