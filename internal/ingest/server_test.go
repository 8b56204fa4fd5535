package ingest

import (
	"context"
	"encoding/base64"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/AirOverlay/internal/relay"
)

func TestServerEchoesAndRelays(t *testing.T) {
	r := relay.New(0)
	hub, _ := startHub(t, r, 8)
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	payload := base64.StdEncoding.EncodeToString([]byte("pretend this is a png image"))
	for _, msg := range []string{"ping!", payload} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		mt, echo, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, mt)
		assert.Equal(t, msg, string(echo))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	f, err := r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pretend this is a png image", string(f.Data))
	assert.Equal(t, uint64(1), r.Stats().Sent, "the short message must not be relayed")
}

func TestServerBinaryIsEchoedNotRelayed(t *testing.T) {
	r := relay.New(0)
	hub, _ := startHub(t, r, 0)
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x89, 'P', 'N', 'G'}))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, echo, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, echo)
	assert.Zero(t, r.Stats().Sent)
}

func TestServeStopsOnCancel(t *testing.T) {
	hub, _ := startHub(t, relay.New(0), 0)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- NewServer(hub).Serve(ctx, ln) }()

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return")
	}
}
