package capture

import (
	"image"
	"time"
)

// Frame represents a captured screen frame.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Time
}

// Capturer produces frames on a channel until stopped.
type Capturer interface {
	Start() error
	Stop()
	Frames() <-chan *Frame
}
