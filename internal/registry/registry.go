// Package registry tracks connected clients and how to reply to them.
//
// A Registry is not safe for concurrent use. It is owned by the single
// goroutine that drains network events.
package registry

import (
	"log"
)

// MessageType mirrors the websocket frame kind of a message.
type MessageType int

const (
	TextMessage MessageType = iota + 1
	BinaryMessage
)

func (t MessageType) String() string {
	switch t {
	case TextMessage:
		return "text"
	case BinaryMessage:
		return "binary"
	}
	return "unknown"
}

// Message is one inbound or outbound payload.
type Message struct {
	Type MessageType
	Data []byte
}

// Responder sends a message back to one specific client.
type Responder interface {
	Send(msg Message) error
	Close() error
}

// Client is a connected peer.
type Client struct {
	ID        string
	Responder Responder
}

// Registry maps client IDs to their responders.
type Registry struct {
	clients map[string]*Client
}

func New() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Connect registers a client. A second Connect with the same id replaces the
// previous responder.
func (r *Registry) Connect(id string, resp Responder) {
	r.clients[id] = &Client{ID: id, Responder: resp}
}

// Disconnect removes a client. Unknown ids are ignored.
func (r *Registry) Disconnect(id string) {
	delete(r.clients, id)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.clients[id]
	return ok
}

// Len returns the number of connected clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

// Echo sends msg back to the client it came from. It is best-effort: an
// unknown id is a no-op, and a failing responder is closed and dropped from
// the registry. Echo reports whether the client had to be dropped.
func (r *Registry) Echo(id string, msg Message) (dropped bool) {
	c, ok := r.clients[id]
	if !ok {
		return false
	}
	if err := c.Responder.Send(msg); err != nil {
		log.Printf("echo to client %s: %v", id, err)
		_ = c.Responder.Close()
		delete(r.clients, id)
		return true
	}
	return false
}

// CloseAll closes every responder and empties the registry.
func (r *Registry) CloseAll() {
	for id, c := range r.clients {
		_ = c.Responder.Close()
		delete(r.clients, id)
	}
}
