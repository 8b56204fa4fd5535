package ingest

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/junsooki/AirOverlay/internal/registry"
)

const (
	readLimit    = 16 << 20 // 16MB
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server accepts WebSocket clients and feeds their messages into a Hub.
type Server struct {
	hub *Hub
	mux *http.ServeMux
}

// NewServer creates a server with the frame endpoint mounted on "/".
func NewServer(hub *Hub) *Server {
	s := &Server{hub: hub, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleWS)
	return s
}

// Handle mounts an extra handler, e.g. WebRTC signaling.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	id := uuid.NewString()
	done := make(chan struct{})
	s.hub.Connect(id, &wsResponder{conn: conn})
	go pingLoop(conn, done)
	readLoop(id, conn, s.hub)
	close(done)
}

func readLoop(id string, conn *websocket.Conn, hub *Hub) {
	defer func() {
		hub.Disconnect(id)
		conn.Close()
	}()
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("client %s read error: %v", id, err)
			}
			return
		}
		msg := registry.Message{Type: registry.TextMessage, Data: data}
		if mt == websocket.BinaryMessage {
			msg.Type = registry.BinaryMessage
		}
		hub.Deliver(id, msg)
	}
}

func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// wsResponder echoes over a WebSocket connection. WriteMessage is only
// called from the hub goroutine.
type wsResponder struct {
	conn *websocket.Conn
}

func (r *wsResponder) Send(msg registry.Message) error {
	mt := websocket.TextMessage
	if msg.Type == registry.BinaryMessage {
		mt = websocket.BinaryMessage
	}
	r.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return r.conn.WriteMessage(mt, msg.Data)
}

func (r *wsResponder) Close() error {
	return r.conn.Close()
}
