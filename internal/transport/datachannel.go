package transport

import (
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/AirOverlay/internal/registry"
)

// DataChannelTransport carries frame payloads and their echoes over a WebRTC DataChannel.
type DataChannelTransport struct {
	dc *webrtc.DataChannel
}

// NewDataChannelTransport wraps dc and passes every inbound message to onMessage.
func NewDataChannelTransport(dc *webrtc.DataChannel, onMessage MessageHandler) *DataChannelTransport {
	t := &DataChannelTransport{dc: dc}
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		m := registry.Message{Type: registry.BinaryMessage, Data: msg.Data}
		if msg.IsString {
			m.Type = registry.TextMessage
		}
		onMessage(m)
	})
	return t
}

// Send writes msg back on the channel, preserving its text/binary kind.
func (t *DataChannelTransport) Send(msg registry.Message) error {
	if t.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return fmt.Errorf("data channel %s is %s", t.dc.Label(), t.dc.ReadyState())
	}
	if msg.Type == registry.TextMessage {
		return t.dc.SendText(string(msg.Data))
	}
	return t.dc.Send(msg.Data)
}

func (t *DataChannelTransport) Close() error {
	return t.dc.Close()
}
