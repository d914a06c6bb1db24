package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/willhenshall/hls-transcoder/internal/services/ffmpeg"
)

// StubEncoder implements ffmpeg.Client without launching a process. It
// writes a playlist plus SegmentsPerVariant fake segments into the
// output directory, and fails any input whose original name contains a
// registered marker.
type StubEncoder struct {
	SegmentsPerVariant int

	mu       sync.Mutex
	failures map[string]error
	calls    []ffmpeg.EncodeRequest
}

// NewStubEncoder returns a stub producing count segments per variant.
func NewStubEncoder(count int) *StubEncoder {
	return &StubEncoder{
		SegmentsPerVariant: count,
		failures:           make(map[string]error),
	}
}

// FailInputsContaining makes every encode whose input path contains
// marker return err.
func (s *StubEncoder) FailInputsContaining(marker string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[marker] = err
}

// Calls returns a copy of every request seen so far.
func (s *StubEncoder) Calls() []ffmpeg.EncodeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ffmpeg.EncodeRequest, len(s.calls))
	copy(out, s.calls)
	return out
}

// EncodeVariant records the request and materializes fake output.
func (s *StubEncoder) EncodeVariant(ctx context.Context, req ffmpeg.EncodeRequest) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.calls = append(s.calls, req)
	var failure error
	for marker, err := range s.failures {
		if strings.Contains(req.InputPath, marker) {
			failure = err
			break
		}
	}
	s.mu.Unlock()
	if failure != nil {
		return 0, failure
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return 0, err
	}

	var playlist strings.Builder
	playlist.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n")
	fmt.Fprintf(&playlist, "#EXT-X-TARGETDURATION:%d\n", req.SegmentSeconds)
	for i := 0; i < s.SegmentsPerVariant; i++ {
		name := fmt.Sprintf("segment_%03d.ts", i)
		fmt.Fprintf(&playlist, "#EXTINF:%d.0,\n%s\n", req.SegmentSeconds, name)
		data := fmt.Sprintf("fake segment %d at %dk", i, req.BitrateKbps)
		if err := os.WriteFile(filepath.Join(req.OutputDir, name), []byte(data), 0o644); err != nil {
			return 0, err
		}
	}
	playlist.WriteString("#EXT-X-ENDLIST\n")
	if err := os.WriteFile(filepath.Join(req.OutputDir, ffmpeg.PlaylistName), []byte(playlist.String()), 0o644); err != nil {
		return 0, err
	}
	return s.SegmentsPerVariant, nil
}

var _ ffmpeg.Client = (*StubEncoder)(nil)
