package ingest

import (
	"context"
	"errors"
	"log"

	"github.com/junsooki/AirOverlay/internal/registry"
	"github.com/junsooki/AirOverlay/internal/relay"
)

// FrameSink receives decoded frames. *relay.Relay implements it.
type FrameSink interface {
	Send(data []byte) error
}

type eventKind int

const (
	eventConnect eventKind = iota
	eventDisconnect
	eventMessage
)

type event struct {
	kind      eventKind
	clientID  string
	responder registry.Responder
	msg       registry.Message
}

// Hub serializes connect, disconnect and message events from every
// connection onto one goroutine. That goroutine owns the registry and is the
// only producer into the frame sink.
type Hub struct {
	events     chan event
	done       chan struct{}
	reg        *registry.Registry
	sink       FrameSink
	minPayload int

	sinkClosed bool
}

// NewHub creates a hub that forwards frames to sink.
func NewHub(sink FrameSink, minPayload int) *Hub {
	return &Hub{
		events:     make(chan event, 64),
		done:       make(chan struct{}),
		reg:        registry.New(),
		sink:       sink,
		minPayload: minPayload,
	}
}

// Connect reports a new client. Safe to call from any goroutine.
func (h *Hub) Connect(id string, resp registry.Responder) {
	h.submit(event{kind: eventConnect, clientID: id, responder: resp})
}

// Disconnect reports a client that went away. Safe to call from any goroutine.
func (h *Hub) Disconnect(id string) {
	h.submit(event{kind: eventDisconnect, clientID: id})
}

// Deliver reports an inbound message. Safe to call from any goroutine.
func (h *Hub) Deliver(id string, msg registry.Message) {
	h.submit(event{kind: eventMessage, clientID: id, msg: msg})
}

func (h *Hub) submit(e event) {
	select {
	case h.events <- e:
	case <-h.done:
	}
}

// Run drains events until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		h.reg.CloseAll()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-h.events:
			h.handle(e)
		}
	}
}

func (h *Hub) handle(e event) {
	switch e.kind {
	case eventConnect:
		log.Printf("client %s connected", e.clientID)
		h.reg.Connect(e.clientID, e.responder)
	case eventDisconnect:
		log.Printf("client %s disconnected", e.clientID)
		h.reg.Disconnect(e.clientID)
	case eventMessage:
		// The echo tells the sender it may push the next frame.
		h.reg.Echo(e.clientID, e.msg)
		h.forward(e.clientID, e.msg)
	}
}

func (h *Hub) forward(id string, msg registry.Message) {
	data, err := DecodePayload(msg, h.minPayload)
	switch {
	case errors.Is(err, ErrTooShort):
		return
	case errors.Is(err, ErrWrongType):
		log.Printf("client %s: %v", id, err)
		return
	case err != nil:
		log.Printf("client %s: dropping frame: %v", id, err)
		return
	}

	if err := h.sink.Send(data); err != nil {
		if errors.Is(err, relay.ErrClosed) {
			if !h.sinkClosed {
				log.Println("overlay is gone, frames are no longer displayed")
				h.sinkClosed = true
			}
			return
		}
		log.Printf("relay send: %v", err)
	}
}
