package signaling

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session is one negotiated peer, created per signaling connection.
type Session interface {
	HandleOffer(payload json.RawMessage) (json.RawMessage, error)
	HandleICECandidate(payload json.RawMessage) error
	Close()
}

// SessionFactory creates a session. sendCandidate forwards local ICE
// candidates to the remote side and may be called from any goroutine.
type SessionFactory func(sendCandidate func(json.RawMessage)) (Session, error)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Handler serves the WebSocket signaling endpoint.
type Handler struct {
	newSession SessionFactory
}

// NewHandler creates a signaling handler.
func NewHandler(f SessionFactory) *Handler {
	return &Handler{newSession: f}
}

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.ws.WriteJSON(msg)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("signaling upgrade error:", err)
		return
	}
	c := &conn{ws: ws}
	defer ws.Close()

	sess, err := h.newSession(func(candidate json.RawMessage) {
		_ = c.send(Message{Type: TypeICECandidate, Payload: candidate})
	})
	if err != nil {
		log.Printf("create session: %v", err)
		_ = c.send(Message{Type: TypeError, Msg: err.Error()})
		return
	}
	defer sess.Close()

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("signaling read error: %v", err)
			}
			return
		}
		if err := h.dispatch(c, sess, msg); err != nil {
			log.Printf("signaling %s: %v", msg.Type, err)
			_ = c.send(Message{Type: TypeError, Msg: err.Error()})
		}
	}
}

func (h *Handler) dispatch(c *conn, sess Session, msg Message) error {
	switch msg.Type {
	case TypeOffer:
		answer, err := sess.HandleOffer(msg.Payload)
		if err != nil {
			return err
		}
		return c.send(Message{Type: TypeAnswer, Payload: answer})
	case TypeICECandidate:
		return sess.HandleICECandidate(msg.Payload)
	case TypePing:
		return c.send(Message{Type: TypePong})
	default:
		log.Printf("signaling: unknown message type %q", msg.Type)
	}
	return nil
}
