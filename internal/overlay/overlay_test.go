package overlay

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/AirOverlay/internal/config"
	"github.com/junsooki/AirOverlay/internal/decoder"
	"github.com/junsooki/AirOverlay/internal/ingest"
	"github.com/junsooki/AirOverlay/internal/registry"
	"github.com/junsooki/AirOverlay/internal/relay"
)

type fakeSurface struct {
	calls []bool
}

func (s *fakeSurface) SetMousePassthrough(enabled bool) {
	s.calls = append(s.calls, enabled)
}

func onePixelPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, c)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newLoop(t *testing.T, policy config.BadFramePolicy) (*Loop, *relay.Relay, *fakeSurface) {
	t.Helper()
	r := relay.New(0)
	s := &fakeSurface{}
	l := New(r, decoder.NewImageDecoder(), s, Options{Opacity: 1, OnBadFrame: policy})
	return l, r, s
}

func TestStartsPassive(t *testing.T) {
	l, _, s := newLoop(t, config.KeepLastFrame)

	assert.Equal(t, Passive, l.Mode())
	assert.Equal(t, []bool{true}, s.calls)
	st := l.State()
	assert.False(t, st.Decorated)
	assert.Equal(t, 1.0, st.Opacity)
	assert.Nil(t, st.Displayed)
}

func TestPassthroughFollowsWants(t *testing.T) {
	l, _, s := newLoop(t, config.KeepLastFrame)

	steps := []struct {
		wants InputWants
		mode  Mode
	}{
		{InputWants{}, Passive},
		{InputWants{Pointer: true}, Interactive},
		{InputWants{Pointer: true}, Interactive},
		{InputWants{}, Passive},
		{InputWants{Keyboard: true}, Interactive},
		{InputWants{Pointer: true, Keyboard: true}, Interactive},
		{InputWants{}, Passive},
	}
	for i, step := range steps {
		require.NoError(t, l.Tick(step.wants))
		assert.Equal(t, step.mode, l.Mode(), "tick %d", i)
		assert.Equal(t, step.mode == Passive, l.State().MousePassthrough, "tick %d", i)
	}
	// Initial apply plus one call per transition.
	assert.Equal(t, []bool{true, false, true, false, true}, s.calls)
}

func TestRapidToggling(t *testing.T) {
	l, _, s := newLoop(t, config.KeepLastFrame)
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Tick(InputWants{Pointer: i%2 == 0}))
	}
	assert.Len(t, s.calls, 11)
}

func TestDisplaysFrameExactlyOnce(t *testing.T) {
	l, r, _ := newLoop(t, config.KeepLastFrame)
	require.NoError(t, r.Send(onePixelPNG(t, color.NRGBA{G: 255, A: 255})))

	require.NoError(t, l.Tick(InputWants{}))
	d := l.State().Displayed
	require.NotNil(t, d)
	assert.Equal(t, uint64(1), d.Generation)
	assert.Equal(t, uint64(1), d.Seq)
	assert.Equal(t, image.Rect(0, 0, 1, 1), d.Image.Bounds())
	assert.Equal(t, color.RGBA{G: 255, A: 255}, d.Image.RGBAAt(0, 0))

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Tick(InputWants{}))
	}
	assert.Same(t, d, l.State().Displayed)
}

func TestFramesShownInOrder(t *testing.T) {
	l, r, _ := newLoop(t, config.KeepLastFrame)
	shades := []uint8{10, 20, 30}
	for _, g := range shades {
		require.NoError(t, r.Send(onePixelPNG(t, color.NRGBA{G: g, A: 255})))
	}
	for i, g := range shades {
		require.NoError(t, l.Tick(InputWants{}))
		d := l.State().Displayed
		assert.Equal(t, uint64(i+1), d.Generation)
		assert.Equal(t, g, d.Image.RGBAAt(0, 0).G)
	}
}

func TestBadFrameKeepsPrevious(t *testing.T) {
	l, r, _ := newLoop(t, config.KeepLastFrame)
	require.NoError(t, r.Send(onePixelPNG(t, color.NRGBA{B: 255, A: 255})))
	require.NoError(t, l.Tick(InputWants{}))
	good := l.State().Displayed

	require.NoError(t, r.Send([]byte("this is not an image at all")))
	require.NoError(t, l.Tick(InputWants{}))

	assert.Same(t, good, l.State().Displayed)
	assert.Equal(t, uint64(1), l.BadFrames())
}

func TestBadFrameFatal(t *testing.T) {
	l, r, _ := newLoop(t, config.FailOnBadFrame)
	require.NoError(t, r.Send([]byte("this is not an image at all")))

	err := l.Tick(InputWants{})
	assert.ErrorContains(t, err, "frame 1")
	assert.Nil(t, l.State().Displayed)
}

// A malformed base64 message never reaches the loop; the shown frame stays put.
func TestMalformedBase64NeverReachesLoop(t *testing.T) {
	l, r, _ := newLoop(t, config.FailOnBadFrame)
	require.NoError(t, r.Send(onePixelPNG(t, color.NRGBA{R: 1, A: 255})))
	require.NoError(t, l.Tick(InputWants{}))
	before := l.State().Displayed

	_, err := ingest.DecodePayload(registry.Message{Type: registry.TextMessage, Data: []byte("!!not base64!!")}, 0)
	require.Error(t, err)

	require.NoError(t, l.Tick(InputWants{}))
	assert.Same(t, before, l.State().Displayed)
	assert.Zero(t, r.Stats().Queued)
}
