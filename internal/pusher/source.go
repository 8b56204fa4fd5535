package pusher

import (
	"context"
	"fmt"
	"os"

	"github.com/junsooki/AirOverlay/internal/capture"
	"github.com/junsooki/AirOverlay/internal/encoder"
)

// Source yields encoded images to push.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

// FileSource cycles through image files, sending their bytes unchanged.
type FileSource struct {
	files []string
	cache map[string][]byte
	i     int
}

func NewFileSource(files []string) *FileSource {
	return &FileSource{files: files, cache: make(map[string][]byte)}
}

func (s *FileSource) Next(ctx context.Context) ([]byte, error) {
	if len(s.files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	name := s.files[s.i%len(s.files)]
	s.i++
	if data, ok := s.cache[name]; ok {
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	s.cache[name] = data
	return data, nil
}

// CaptureSource encodes frames from a screen capturer.
type CaptureSource struct {
	frames <-chan *capture.Frame
	enc    encoder.Encoder
}

func NewCaptureSource(frames <-chan *capture.Frame, enc encoder.Encoder) *CaptureSource {
	return &CaptureSource{frames: frames, enc: enc}
}

func (s *CaptureSource) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case f, ok := <-s.frames:
		if !ok {
			return nil, fmt.Errorf("capture stopped")
		}
		return s.enc.Encode(f.Image)
	}
}
