package pose

import (
	"bufio"
	"context"
	"image"
	"io"
	"os"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// ErrReplayExhausted is returned once every recorded frame has been replayed.
var ErrReplayExhausted = errors.New("no more recorded frames")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxReplayLine bounds a single recorded frame.
const maxReplayLine = 1 << 20

// A ReplayFrame is one recorded detection: the buffer it was made on and what was found.
type ReplayFrame struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Rotation  int        `json:"rotation"`
	Landmarks []Landmark `json:"landmarks"`
}

// Size is the buffer size of the frame.
func (f ReplayFrame) Size() image.Point {
	return image.Point{X: f.Width, Y: f.Height}
}

// ReadReplay parses one JSON encoded ReplayFrame per line. Blank lines and lines starting with
// '#' are skipped.
func ReadReplay(r io.Reader) ([]ReplayFrame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReplayLine)

	var frames []ReplayFrame
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var frame ReplayFrame
		if err := json.UnmarshalFromString(line, &frame); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		if frame.Width <= 0 || frame.Height <= 0 {
			return nil, errors.Errorf("line %d: frame size must be positive, got %dx%d", lineNum, frame.Width, frame.Height)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// ReadReplayFile reads a recording written one frame per line.
func ReadReplayFile(path string) ([]ReplayFrame, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	frames, err := ReadReplay(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read replay %q", path)
	}
	return frames, nil
}

// WriteReplay writes frames in the format ReadReplay accepts.
func WriteReplay(w io.Writer, frames []ReplayFrame) error {
	stream := json.BorrowStream(w)
	defer json.ReturnStream(stream)
	for _, frame := range frames {
		stream.WriteVal(frame)
		stream.WriteRaw("\n")
		if stream.Error != nil {
			return stream.Error
		}
	}
	return stream.Flush()
}

// ReplayExtractor is an Extractor that hands out recorded landmarks in order, ignoring the image.
type ReplayExtractor struct {
	mu     sync.Mutex
	frames []ReplayFrame
	next   int
}

// NewReplayExtractor replays frames.
func NewReplayExtractor(frames []ReplayFrame) *ReplayExtractor {
	return &ReplayExtractor{frames: frames}
}

// Detect returns the landmarks of the next recorded frame, or ErrReplayExhausted.
func (r *ReplayExtractor) Detect(ctx context.Context, img image.Image, rotationDegrees int) ([]Landmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.frames) {
		return nil, ErrReplayExhausted
	}
	frame := r.frames[r.next]
	r.next++
	return frame.Landmarks, nil
}

// Remaining is the number of frames not yet replayed.
func (r *ReplayExtractor) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames) - r.next
}
