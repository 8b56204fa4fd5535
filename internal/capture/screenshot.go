package capture

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/kbinani/screenshot"
)

// ScreenCapturer grabs a screen region at a fixed rate.
type ScreenCapturer struct {
	rect    image.Rectangle
	fps     int
	grab    func(image.Rectangle) (*image.RGBA, error)
	frameCh chan *Frame
	stopCh  chan struct{}

	mu      sync.Mutex
	running bool
}

// NewScreenCapturer captures region (relative to the display) of the given
// display. An empty region means the whole display.
func NewScreenCapturer(displayIndex int, region image.Rectangle, fps int) (*ScreenCapturer, error) {
	if fps <= 0 || fps > 60 {
		return nil, fmt.Errorf("fps must be 1-60, got %d", fps)
	}
	n := screenshot.NumActiveDisplays()
	if displayIndex < 0 || displayIndex >= n {
		return nil, fmt.Errorf("display index %d out of range (have %d displays)", displayIndex, n)
	}
	bounds := screenshot.GetDisplayBounds(displayIndex)
	rect := bounds
	if !region.Empty() {
		rect = region.Add(bounds.Min).Intersect(bounds)
		if rect.Empty() {
			return nil, fmt.Errorf("region %v is outside display %d %v", region, displayIndex, bounds)
		}
	}
	return newScreenCapturer(rect, fps, screenshot.CaptureRect), nil
}

func newScreenCapturer(rect image.Rectangle, fps int, grab func(image.Rectangle) (*image.RGBA, error)) *ScreenCapturer {
	return &ScreenCapturer{
		rect:    rect,
		fps:     fps,
		grab:    grab,
		frameCh: make(chan *Frame, 2),
		stopCh:  make(chan struct{}),
	}
}

func (c *ScreenCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("already running")
	}
	c.running = true
	go c.loop()
	return nil
}

func (c *ScreenCapturer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
}

func (c *ScreenCapturer) Frames() <-chan *Frame {
	return c.frameCh
}

func (c *ScreenCapturer) loop() {
	ticker := time.NewTicker(time.Second / time.Duration(c.fps))
	defer ticker.Stop()
	defer close(c.frameCh)

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			img, err := c.grab(c.rect)
			if err != nil {
				log.Printf("capture %v: %v", c.rect, err)
				continue
			}
			// Drop the frame if the consumer is behind.
			select {
			case c.frameCh <- &Frame{Image: img, Timestamp: time.Now()}:
			default:
			}
		}
	}
}
