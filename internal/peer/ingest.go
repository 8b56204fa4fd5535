// Package peer accepts frame streams over WebRTC data channels.
package peer

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/junsooki/AirOverlay/internal/registry"
	"github.com/junsooki/AirOverlay/internal/transport"
)

// FramesLabel is the label of the data channel that carries frames.
const FramesLabel = "frames"

// ICEServers is the default ICE server configuration.
var ICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302"}},
}

// EventSink receives client lifecycle and message events. *ingest.Hub implements it.
type EventSink interface {
	Connect(id string, resp registry.Responder)
	Disconnect(id string)
	Deliver(id string, msg registry.Message)
}

// Ingest is the answering side of one WebRTC session. Every "frames" data
// channel the remote opens becomes a client of the sink.
type Ingest struct {
	pc   *webrtc.PeerConnection
	sink EventSink
}

// NewIngest creates a peer connection that reports to sink and hands local
// ICE candidates to sendCandidate.
func NewIngest(sink EventSink, sendCandidate func(json.RawMessage)) (*Ingest, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: ICEServers})
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}
	p := &Ingest{pc: pc, sink: sink}

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Printf("peer connection state: %s", state.String())
	})
	pc.OnDataChannel(p.accept)
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			log.Printf("marshal ICE candidate: %v", err)
			return
		}
		sendCandidate(data)
	})
	return p, nil
}

func (p *Ingest) accept(dc *webrtc.DataChannel) {
	if dc.Label() != FramesLabel {
		log.Printf("ignoring data channel %q", dc.Label())
		return
	}
	id := uuid.NewString()
	t := transport.NewDataChannelTransport(dc, func(msg registry.Message) {
		p.sink.Deliver(id, msg)
	})
	dc.OnOpen(func() {
		p.sink.Connect(id, t)
	})
	dc.OnClose(func() {
		p.sink.Disconnect(id)
	})
}

// HandleOffer applies the remote SDP offer and returns the local answer.
func (p *Ingest) HandleOffer(payload json.RawMessage) (json.RawMessage, error) {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return nil, err
	}
	if err := p.pc.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return nil, err
	}
	return json.Marshal(answer)
}

// HandleICECandidate adds a remote ICE candidate.
func (p *Ingest) HandleICECandidate(payload json.RawMessage) error {
	var candidate webrtc.ICECandidateInit
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return err
	}
	return p.pc.AddICECandidate(candidate)
}

// Close shuts down the peer connection.
func (p *Ingest) Close() {
	if err := p.pc.Close(); err != nil {
		log.Printf("close peer connection: %v", err)
	}
}
