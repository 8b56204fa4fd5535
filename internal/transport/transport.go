package transport

import "github.com/junsooki/AirOverlay/internal/registry"

// MessageHandler is called for every message received on a channel.
type MessageHandler func(msg registry.Message)

var _ registry.Responder = (*DataChannelTransport)(nil)
