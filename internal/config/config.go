package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BadFramePolicy selects what the overlay does with a frame that fails to decode.
type BadFramePolicy string

const (
	// KeepLastFrame logs the bad frame and keeps showing the previous one.
	KeepLastFrame BadFramePolicy = "keep"
	// FailOnBadFrame stops the overlay with the decode error.
	FailOnBadFrame BadFramePolicy = "fatal"
)

// Config holds all runtime configuration of the overlay binary.
type Config struct {
	Addr       string
	MinPayload int
	RelayCap   int
	WebRTC     bool

	X, Y          int
	Width, Height int
	NaturalSize   bool
	Opacity       float64
	Title         string
	OnBadFrame    BadFramePolicy
}

// ParseFlags parses flags for the overlay binary.
func ParseFlags() *Config {
	cfg, err := parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

func parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("overlay", flag.ContinueOnError)
	cfg := &Config{}
	var policy string
	fs.StringVar(&cfg.Addr, "addr", ":8080", "WebSocket listen address")
	fs.IntVar(&cfg.MinPayload, "min-payload", 64, "Decoded payloads of this many bytes or fewer are dropped")
	fs.IntVar(&cfg.RelayCap, "relay-cap", 0, "Keep only the latest N queued frames (0 = unbounded)")
	fs.BoolVar(&cfg.WebRTC, "webrtc", false, "Accept frames over WebRTC data channels (signaling on /rtc)")
	fs.IntVar(&cfg.X, "x", 200, "Image anchor X")
	fs.IntVar(&cfg.Y, "y", 200, "Image anchor Y")
	fs.IntVar(&cfg.Width, "w", 177, "Image width")
	fs.IntVar(&cfg.Height, "h", 112, "Image height")
	fs.BoolVar(&cfg.NaturalSize, "natural-size", false, "Draw images at their own size instead of -w/-h")
	fs.Float64Var(&cfg.Opacity, "opacity", 1.0, "Image opacity (0-1)")
	fs.StringVar(&cfg.Title, "title", "AirOverlay", "Window title (hidden, the window is undecorated)")
	fs.StringVar(&policy, "on-bad-frame", string(KeepLastFrame), "What to do with undecodable frames: keep or fatal")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.OnBadFrame = BadFramePolicy(policy)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr must not be empty")
	case c.MinPayload < 0:
		return fmt.Errorf("min-payload must be >= 0, got %d", c.MinPayload)
	case c.RelayCap < 0:
		return fmt.Errorf("relay-cap must be >= 0, got %d", c.RelayCap)
	case !c.NaturalSize && (c.Width <= 0 || c.Height <= 0):
		return fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	case c.Opacity < 0 || c.Opacity > 1:
		return fmt.Errorf("opacity must be in [0,1], got %v", c.Opacity)
	}
	switch c.OnBadFrame {
	case KeepLastFrame, FailOnBadFrame:
	default:
		return fmt.Errorf("on-bad-frame must be %q or %q, got %q", KeepLastFrame, FailOnBadFrame, c.OnBadFrame)
	}
	return nil
}

// PushConfig holds configuration for the framepush binary.
type PushConfig struct {
	URL      string
	Files    []string
	Screen   bool
	Display  int
	Region   string
	FPS      int
	Format   string
	Quality  int
	Interval time.Duration
}

// ParsePushFlags parses flags for the framepush binary.
func ParsePushFlags() *PushConfig {
	cfg, err := parsePush(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

type fileList []string

func (f *fileList) String() string     { return strings.Join(*f, ",") }
func (f *fileList) Set(v string) error { *f = append(*f, v); return nil }

func parsePush(args []string) (*PushConfig, error) {
	fs := flag.NewFlagSet("framepush", flag.ContinueOnError)
	cfg := &PushConfig{}
	var files fileList
	fs.StringVar(&cfg.URL, "url", "ws://localhost:8080/", "Overlay WebSocket URL")
	fs.Var(&files, "file", "Image file to send (repeatable, sent in a loop)")
	fs.BoolVar(&cfg.Screen, "screen", false, "Send screen captures instead of files")
	fs.IntVar(&cfg.Display, "display", 0, "Display index to capture (0 = primary)")
	fs.StringVar(&cfg.Region, "region", "", "Capture region x,y,w,h (default: whole display)")
	fs.IntVar(&cfg.FPS, "fps", 2, "Frames per second")
	fs.StringVar(&cfg.Format, "format", "png", "Image format: png or jpeg")
	fs.IntVar(&cfg.Quality, "quality", 80, "JPEG quality (1-100)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Files = files
	if cfg.FPS <= 0 || cfg.FPS > 60 {
		return nil, fmt.Errorf("fps must be 1-60, got %d", cfg.FPS)
	}
	cfg.Interval = time.Second / time.Duration(cfg.FPS)
	if !cfg.Screen && len(cfg.Files) == 0 {
		return nil, errors.New("need -file or -screen")
	}
	if cfg.Format != "png" && cfg.Format != "jpeg" {
		return nil, fmt.Errorf("format must be png or jpeg, got %q", cfg.Format)
	}
	if cfg.Region != "" {
		if _, err := ParseRegion(cfg.Region); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// ParseRegion parses "x,y,w,h" into its four components.
func ParseRegion(s string) ([4]int, error) {
	var r [4]int
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return r, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return r, fmt.Errorf("region %q: %w", s, err)
		}
		r[i] = n
	}
	if r[2] <= 0 || r[3] <= 0 {
		return r, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return r, nil
}
