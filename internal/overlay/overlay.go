// Package overlay holds the render-side state of the overlay window: which
// frame is displayed and whether the window lets input fall through to the
// desktop beneath it.
//
// A Loop is driven once per render tick by the window backend and is owned
// by that goroutine. It never blocks; the only blocking wait on the render
// side is the initial relay.Recv before the window exists.
package overlay

import (
	"fmt"
	"image"
	"log"

	"github.com/junsooki/AirOverlay/internal/config"
	"github.com/junsooki/AirOverlay/internal/decoder"
	"github.com/junsooki/AirOverlay/internal/relay"
)

// Mode is the input passthrough state of the window.
type Mode int

const (
	// Passive windows let pointer and keyboard input through.
	Passive Mode = iota
	// Interactive windows take input themselves.
	Interactive
)

func (m Mode) String() string {
	if m == Interactive {
		return "interactive"
	}
	return "passive"
}

// InputWants is what the GUI layer reports each tick.
type InputWants struct {
	Pointer  bool
	Keyboard bool
}

// Surface is the part of the native window the loop controls.
type Surface interface {
	SetMousePassthrough(enabled bool)
}

// FrameSource yields frames without blocking. *relay.Relay implements it.
type FrameSource interface {
	TryRecv() (relay.Frame, bool)
}

// Displayed is a decoded frame ready to be uploaded as a texture.
// Generation increases by one every time the displayed frame changes.
type Displayed struct {
	Image      *image.RGBA
	Seq        uint64
	Generation uint64
}

// State is the window state as of the last tick.
type State struct {
	Decorated        bool
	Opacity          float64
	MousePassthrough bool
	Displayed        *Displayed
}

// Options configure a Loop.
type Options struct {
	Opacity    float64
	OnBadFrame config.BadFramePolicy
}

// Loop is the overlay state machine.
type Loop struct {
	src     FrameSource
	dec     decoder.Decoder
	surface Surface
	policy  config.BadFramePolicy

	state      State
	generation uint64
	badFrames  uint64
}

// New creates a loop in the Passive state and applies passthrough to surface.
func New(src FrameSource, dec decoder.Decoder, surface Surface, opts Options) *Loop {
	if opts.OnBadFrame == "" {
		opts.OnBadFrame = config.KeepLastFrame
	}
	l := &Loop{
		src:     src,
		dec:     dec,
		surface: surface,
		policy:  opts.OnBadFrame,
		state: State{
			Decorated:        false,
			Opacity:          opts.Opacity,
			MousePassthrough: true,
		},
	}
	surface.SetMousePassthrough(true)
	return l
}

// Tick runs one render tick: re-derives passthrough from wants and swaps in
// the next queued frame, if any. A non-nil error is fatal for the overlay
// and only happens under the FailOnBadFrame policy.
func (l *Loop) Tick(wants InputWants) error {
	l.applyWants(wants)

	f, ok := l.src.TryRecv()
	if !ok {
		return nil
	}
	return l.Show(f)
}

func (l *Loop) applyWants(wants InputWants) {
	passthrough := !(wants.Pointer || wants.Keyboard)
	if passthrough == l.state.MousePassthrough {
		return
	}
	l.state.MousePassthrough = passthrough
	l.surface.SetMousePassthrough(passthrough)
}

// Show decodes f and makes it the displayed frame. On a decode error the
// previous frame stays on screen; the error is returned only under the
// FailOnBadFrame policy.
func (l *Loop) Show(f relay.Frame) error {
	img, err := l.dec.Decode(f.Data)
	if err != nil {
		l.badFrames++
		if l.policy == config.FailOnBadFrame {
			return fmt.Errorf("frame %d: %w", f.Seq, err)
		}
		log.Printf("frame %d: %v (keeping previous frame)", f.Seq, err)
		return nil
	}
	l.generation++
	l.state.Displayed = &Displayed{Image: img, Seq: f.Seq, Generation: l.generation}
	return nil
}

// State returns the current window state.
func (l *Loop) State() State {
	return l.state
}

// Mode returns the current passthrough mode.
func (l *Loop) Mode() Mode {
	if l.state.MousePassthrough {
		return Passive
	}
	return Interactive
}

// BadFrames returns how many frames failed to decode.
func (l *Loop) BadFrames() uint64 {
	return l.badFrames
}
