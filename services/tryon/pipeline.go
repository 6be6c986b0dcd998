package tryon

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"go.viam.com/tryon/logging"
	"go.viam.com/tryon/utils"
	"go.viam.com/tryon/vision/pose"
)

// ErrClosed is returned by Submit once the pipeline is closed.
var ErrClosed = errors.New("pipeline is closed")

// latencyWindow is how many recent detection latencies Stats summarizes.
const latencyWindow = 256

// A Frame is one camera frame offered to the pipeline. Release frees the buffer backing it and is
// called exactly once by the pipeline for every submitted frame.
type Frame interface {
	// Image returns the frame's pixels, or pose.ErrImageNotAvailable when none are ready yet.
	Image() (image.Image, error)
	// Rotation is the clockwise rotation in degrees that makes the image upright.
	Rotation() int
	// DisplaySize is the size of the surface the overlay is shown on.
	DisplaySize() image.Point
	Release()
}

// MapperFactory builds the mapping from a frame's image space to its display space.
type MapperFactory func(frame Frame, img image.Image) (pose.CoordinateMapper, error)

// ViewMapperFactory maps through pose.NewViewMapper using the frame's rotation and sizes.
func ViewMapperFactory(mirror bool) MapperFactory {
	return func(frame Frame, img image.Image) (pose.CoordinateMapper, error) {
		return pose.NewViewMapper(img.Bounds().Size(), frame.Rotation(), frame.DisplaySize(), mirror)
	}
}

// Result is published for every processed frame that got as far as detection.
type Result struct {
	// Sequence numbers admitted frames from 1.
	Sequence uint64
	Overlay
	// Body is the validated torso in display coordinates, or nil.
	Body *pose.Body
	// Latency covers image acquisition through rendering.
	Latency time.Duration
	// Err is set when the frame failed. Errors other than detection failures and ErrNotReady are
	// fatal to the pipeline.
	Err error
}

// Stats are running counters of the pipeline.
type Stats struct {
	Submitted uint64
	Accepted  uint64
	Dropped   uint64
	Skipped   uint64
	Rendered  uint64
	Failed    uint64

	MeanLatency time.Duration
	P95Latency  time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock sets the clock latencies are measured with.
func WithClock(c clock.Clock) PipelineOption {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// WithMapperFactory replaces the default view mapping.
func WithMapperFactory(factory MapperFactory) PipelineOption {
	return func(p *Pipeline) {
		p.mapperFor = factory
	}
}

// WithConfidenceThreshold sets the minimum landmark confidence.
func WithConfidenceThreshold(threshold float64) PipelineOption {
	return func(p *Pipeline) {
		p.threshold = threshold
	}
}

// Pipeline admits at most one frame at a time into detection. Frames offered while a detection is
// in flight are released and dropped immediately. Each admitted frame is processed on a background
// worker, which releases the frame and reopens the gate before publishing its Result to a single
// slot channel; an unread result is replaced by the next one.
type Pipeline struct {
	logger    logging.Logger
	engine    *Engine
	extractor pose.Extractor
	mapperFor MapperFactory
	clock     clock.Clock
	threshold float64

	workers *utils.StoppableWorkers
	busy    atomic.Bool
	results chan Result

	submitted, accepted, dropped, skipped, rendered, failed atomic.Uint64

	publishMu     sync.Mutex
	lastPublished uint64

	mu        sync.Mutex
	closed    bool
	fatal     error
	latencies []float64
	nextLat   int
}

// NewPipeline returns a running pipeline.
func NewPipeline(engine *Engine, extractor pose.Extractor, logger logging.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		logger:    logger,
		engine:    engine,
		extractor: extractor,
		mapperFor: ViewMapperFactory(false),
		clock:     clock.New(),
		threshold: pose.DefaultConfidenceThreshold,
		workers:   utils.NewStoppableWorkers(),
		results:   make(chan Result, 1),
		latencies: make([]float64, 0, latencyWindow),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Results delivers the latest result. It is closed by Close.
func (p *Pipeline) Results() <-chan Result {
	return p.results
}

// Submit offers a frame. It reports whether the frame was admitted; a frame that is not admitted
// has already been released. After a fatal acquisition error every call returns that error.
func (p *Pipeline) Submit(frame Frame) (bool, error) {
	release := utils.ReleaseOnce(frame.Release)
	p.submitted.Add(1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		release()
		return false, ErrClosed
	}
	if p.fatal != nil {
		release()
		return false, p.fatal
	}
	if !p.busy.CompareAndSwap(false, true) {
		p.dropped.Add(1)
		release()
		return false, nil
	}
	seq := p.accepted.Add(1)
	started := p.workers.AddWorkers(func(ctx context.Context) {
		var (
			result  Result
			publish bool
		)
		defer func() {
			if r := recover(); r != nil {
				err := errors.Errorf("frame processing panicked: %v", r)
				p.logger.Errorw("frame processing panicked", "error", err)
				result, publish = p.fail(Result{Err: err})
			}
			release()
			p.busy.Store(false)
			if publish {
				result.Sequence = seq
				p.publish(result)
			}
		}()
		result, publish = p.process(ctx, frame)
	})
	if !started {
		p.busy.Store(false)
		release()
		return false, ErrClosed
	}
	return true, nil
}

// process runs one admitted frame. It reports whether the result should be published.
func (p *Pipeline) process(ctx context.Context, frame Frame) (Result, bool) {
	start := p.clock.Now()

	img, err := frame.Image()
	if err != nil {
		if errors.Is(err, pose.ErrImageNotAvailable) {
			p.skipped.Add(1)
			p.logger.Debug("frame image not available yet")
			return Result{}, false
		}
		err = errors.Wrap(err, "cannot acquire frame image")
		p.logger.Errorw("frame acquisition failed", "error", err)
		p.mu.Lock()
		p.fatal = err
		p.mu.Unlock()
		return p.fail(Result{Err: err})
	}

	landmarks, err := p.extractor.Detect(ctx, img, frame.Rotation())
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, false
		}
		p.logger.Warnw("landmark detection failed", "error", err)
		overlay, renderErr := p.engine.Render(ctx, nil, frame.DisplaySize())
		if renderErr != nil {
			overlay = Overlay{}
		}
		return p.fail(Result{Overlay: snapshot(overlay), Err: err})
	}

	display := frame.DisplaySize()
	var (
		body  *pose.Body
		debug []pose.Landmark
	)
	detected, ok := pose.Validate(landmarks, p.threshold)
	markAll := p.engine.Params().DebugMarkers && len(landmarks) > 0
	if (ok || markAll) && display.X > 0 && display.Y > 0 {
		mapper, err := p.mapperFor(frame, img)
		if err != nil {
			return p.fail(Result{Err: errors.Wrap(err, "cannot map landmarks to display")})
		}
		if ok {
			mapped := detected.Map(mapper)
			body = &mapped
		}
		if markAll {
			debug = pose.MapLandmarks(landmarks, mapper)
		}
	}

	overlay, err := p.engine.RenderLandmarks(ctx, body, debug, display)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, false
		}
		if errors.Is(err, ErrNotReady) {
			p.logger.Debugw("display not ready", "size", display)
		}
		return p.fail(Result{Body: body, Err: err})
	}

	latency := p.clock.Since(start)
	p.recordLatency(latency)
	if overlay.Rendered {
		p.rendered.Add(1)
	}
	return Result{Overlay: snapshot(overlay), Body: body, Latency: latency}, true
}

func (p *Pipeline) fail(r Result) (Result, bool) {
	p.failed.Add(1)
	return r, true
}

// publish replaces any unread result with r. Results older than the last published one are
// dropped.
func (p *Pipeline) publish(r Result) {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	if r.Sequence < p.lastPublished {
		return
	}
	p.lastPublished = r.Sequence
	for {
		select {
		case p.results <- r:
			return
		default:
		}
		select {
		case <-p.results:
		default:
		}
	}
}

// snapshot copies the engine owned raster so the next render cannot change a published result.
func snapshot(o Overlay) Overlay {
	if o.Raster == nil {
		return o
	}
	raster := *o.Raster
	raster.Pix = append([]uint8(nil), o.Raster.Pix...)
	o.Raster = &raster
	return o
}

func (p *Pipeline) recordLatency(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.latencies) < latencyWindow {
		p.latencies = append(p.latencies, ms)
		return
	}
	p.latencies[p.nextLat] = ms
	p.nextLat = (p.nextLat + 1) % latencyWindow
}

// Stats returns the current counters and a latency summary over recent frames.
func (p *Pipeline) Stats() Stats {
	s := Stats{
		Submitted: p.submitted.Load(),
		Accepted:  p.accepted.Load(),
		Dropped:   p.dropped.Load(),
		Skipped:   p.skipped.Load(),
		Rendered:  p.rendered.Load(),
		Failed:    p.failed.Load(),
	}

	p.mu.Lock()
	data := stats.Float64Data(append([]float64(nil), p.latencies...))
	p.mu.Unlock()
	if len(data) == 0 {
		return s
	}
	if mean, err := stats.Mean(data); err == nil {
		s.MeanLatency = time.Duration(mean * float64(time.Millisecond))
	}
	if p95, err := stats.Percentile(data, 95); err == nil {
		s.P95Latency = time.Duration(p95 * float64(time.Millisecond))
	}
	return s
}

// Err returns the fatal error that stopped the pipeline, if any.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fatal
}

// Close stops the workers, waits for the frame in flight and closes Results.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.workers.Stop()
	close(p.results)
	return nil
}
