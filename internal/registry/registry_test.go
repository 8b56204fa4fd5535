package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponder struct {
	sent   []Message
	err    error
	closed bool
}

func (f *fakeResponder) Send(msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeResponder) Close() error {
	f.closed = true
	return nil
}

func TestEchoGoesBackToSender(t *testing.T) {
	reg := New()
	a, b := &fakeResponder{}, &fakeResponder{}
	reg.Connect("a", a)
	reg.Connect("b", b)

	msg := Message{Type: TextMessage, Data: []byte("aGVsbG8=")}
	assert.False(t, reg.Echo("a", msg))

	require.Len(t, a.sent, 1)
	assert.Equal(t, msg, a.sent[0])
	assert.Empty(t, b.sent)
}

func TestEchoAfterDisconnectIsNoop(t *testing.T) {
	reg := New()
	r := &fakeResponder{}
	reg.Connect("a", r)
	reg.Disconnect("a")
	reg.Disconnect("a")

	assert.False(t, reg.Has("a"))
	assert.False(t, reg.Echo("a", Message{Type: TextMessage, Data: []byte("x")}))
	assert.Empty(t, r.sent)
}

func TestEchoFailureDropsClient(t *testing.T) {
	reg := New()
	r := &fakeResponder{err: errors.New("broken pipe")}
	reg.Connect("a", r)

	assert.True(t, reg.Echo("a", Message{Type: BinaryMessage, Data: []byte{1}}))
	assert.True(t, r.closed)
	assert.Zero(t, reg.Len())
}

func TestReconnectReplacesResponder(t *testing.T) {
	reg := New()
	old, cur := &fakeResponder{}, &fakeResponder{}
	reg.Connect("a", old)
	reg.Connect("a", cur)
	reg.Echo("a", Message{Type: TextMessage, Data: []byte("x")})

	assert.Empty(t, old.sent)
	assert.Len(t, cur.sent, 1)
	assert.Equal(t, 1, reg.Len())
}

func TestCloseAll(t *testing.T) {
	reg := New()
	a, b := &fakeResponder{}, &fakeResponder{}
	reg.Connect("a", a)
	reg.Connect("b", b)
	reg.CloseAll()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Zero(t, reg.Len())
}
