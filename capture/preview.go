package capture

import "image"

// ChanPreview hands frames to a consumer goroutine through a one-slot
// channel. A slow consumer only ever sees the newest frame.
type ChanPreview struct {
	frames chan image.Image
}

func NewChanPreview() *ChanPreview {
	return &ChanPreview{frames: make(chan image.Image, 1)}
}

// Show never blocks the acquisition loop.
func (p *ChanPreview) Show(frame image.Image) {
	for {
		select {
		case p.frames <- frame:
			return
		default:
		}
		select {
		case <-p.frames:
		default:
		}
	}
}

// Frames is the receive side for the consumer.
func (p *ChanPreview) Frames() <-chan image.Image {
	return p.frames
}
