package pusher

import (
	"context"
	"log"
	"time"
)

// EchoTimeout bounds how long Run waits for the overlay to echo a frame.
var EchoTimeout = 5 * time.Second

// FrameSender is implemented by *Client.
type FrameSender interface {
	SendFrame(data []byte) error
	Echoes() <-chan struct{}
	Done() <-chan struct{}
}

// Run pushes frames from src until ctx is done or the connection ends. A new
// frame goes out once the previous one was echoed and at least interval has
// passed since it was sent.
func Run(ctx context.Context, c FrameSender, src Source, interval time.Duration) error {
	for {
		data, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		sent := time.Now()
		if err := c.SendFrame(data); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-c.Done():
			return nil
		case <-c.Echoes():
		case <-time.After(EchoTimeout):
			log.Printf("no echo within %v, sending next frame anyway", EchoTimeout)
		}

		if wait := interval - time.Since(sent); wait > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		}
	}
}
