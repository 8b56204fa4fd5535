package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 64, cfg.MinPayload)
	assert.Equal(t, 0, cfg.RelayCap)
	assert.Equal(t, 200, cfg.X)
	assert.Equal(t, 200, cfg.Y)
	assert.Equal(t, 177, cfg.Width)
	assert.Equal(t, 112, cfg.Height)
	assert.Equal(t, 1.0, cfg.Opacity)
	assert.Equal(t, KeepLastFrame, cfg.OnBadFrame)
	assert.False(t, cfg.WebRTC)
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := map[string][]string{
		"policy":      {"-on-bad-frame", "ignore"},
		"opacity":     {"-opacity", "1.5"},
		"relay cap":   {"-relay-cap", "-1"},
		"min payload": {"-min-payload", "-3"},
		"size":        {"-w", "0"},
		"addr":        {"-addr", ""},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parse(args)
			assert.Error(t, err)
		})
	}
}

func TestNaturalSizeIgnoresFixedSize(t *testing.T) {
	cfg, err := parse([]string{"-natural-size", "-w", "0", "-h", "0", "-on-bad-frame", "fatal"})
	require.NoError(t, err)
	assert.True(t, cfg.NaturalSize)
	assert.Equal(t, FailOnBadFrame, cfg.OnBadFrame)
}

func TestParsePush(t *testing.T) {
	cfg, err := parsePush([]string{"-file", "a.png", "-file", "b.png", "-fps", "4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, cfg.Files)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)

	_, err = parsePush(nil)
	assert.Error(t, err, "no source")

	_, err = parsePush([]string{"-screen", "-format", "gif"})
	assert.Error(t, err)
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("10, 20,300,400")
	require.NoError(t, err)
	assert.Equal(t, [4]int{10, 20, 300, 400}, r)

	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,10"} {
		_, err := ParseRegion(bad)
		assert.Error(t, err, bad)
	}
}
