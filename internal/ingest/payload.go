package ingest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/junsooki/AirOverlay/internal/registry"
)

var (
	// ErrWrongType is returned for binary payloads; frames must arrive as base64 text.
	ErrWrongType = errors.New("wrong type: expected text, received binary")
	// ErrTooShort is returned when a decoded payload is too small to be an image.
	ErrTooShort = errors.New("payload too short")
)

// DecodePayload turns an inbound message into frame bytes. The text must be
// base64, optionally wrapped as a data URL. Decoded payloads of minLen bytes
// or fewer are rejected as keepalives.
func DecodePayload(msg registry.Message, minLen int) ([]byte, error) {
	if msg.Type != registry.TextMessage {
		return nil, ErrWrongType
	}
	text := strings.TrimSpace(string(msg.Data))
	if strings.HasPrefix(text, "data:") {
		i := strings.Index(text, ";base64,")
		if i < 0 {
			return nil, errors.New("data url without base64 payload")
		}
		text = text[i+len(";base64,"):]
	}

	enc := base64.StdEncoding
	if len(text)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	data, err := enc.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	if len(data) <= minLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(data))
	}
	return data, nil
}
