package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/output"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// SchedulerMode selects how frames are admitted
type SchedulerMode string

const (
	// SchedulerBatch starts frames until more than MaxConcurrency are
	// outstanding, then waits for all of them before starting more
	SchedulerBatch SchedulerMode = "batch"
	// SchedulerPool keeps MaxConcurrency workers busy pulling frames from a queue
	SchedulerPool SchedulerMode = "pool"
)

var (
	// ErrInvalidConfig is returned for animation configs that cannot be run
	ErrInvalidConfig = errors.New("invalid animation config")
)

// AnimationConfig contains configuration for rendering a frame sequence
type AnimationConfig struct {
	Start          int           // First frame index (inclusive)
	End            int           // Last frame index (inclusive)
	Width          int           // Frame width in pixels
	Height         int           // Frame height in pixels
	MaxConcurrency int           // Bound on concurrent frame renders
	Mode           SchedulerMode // Admission strategy
	Render         RenderConfig  // Per-frame render settings
}

// DefaultAnimationConfig returns sensible default values
func DefaultAnimationConfig() AnimationConfig {
	return AnimationConfig{
		Start:          1,
		End:            312,
		Width:          1920,
		Height:         1080,
		MaxConcurrency: 32,
		Mode:           SchedulerBatch,
		Render:         DefaultRenderConfig(),
	}
}

// FrameCount returns the number of frames in the range
func (c AnimationConfig) FrameCount() int {
	return max(0, c.End-c.Start+1)
}

// Validate reports the first problem with the config
func (c AnimationConfig) Validate() error {
	switch {
	case c.Start < 0:
		return fmt.Errorf("%w: start frame %d is negative", ErrInvalidConfig, c.Start)
	case c.End < c.Start:
		return fmt.Errorf("%w: end frame %d is before start frame %d", ErrInvalidConfig, c.End, c.Start)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: frame size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	case c.MaxConcurrency <= 0:
		return fmt.Errorf("%w: max concurrency %d must be positive", ErrInvalidConfig, c.MaxConcurrency)
	case c.Mode != SchedulerBatch && c.Mode != SchedulerPool:
		return fmt.Errorf("%w: unknown scheduler mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// SceneGenerator builds the scene for a frame index
type SceneGenerator func(frame int) (Scene, error)

// Scheduler renders a range of frames concurrently and hands each finished
// frame to a writer. Every frame owns its scene and image; nothing is shared
// between concurrent renders.
type Scheduler struct {
	config   AnimationConfig
	generate SceneGenerator
	writer   output.FrameWriter
	logger   core.Logger

	inFlight atomic.Int64
	peak     atomic.Int64
	written  atomic.Int64
}

// NewScheduler creates a scheduler for the given frame range
func NewScheduler(config AnimationConfig, generate SceneGenerator, writer output.FrameWriter, logger core.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if generate == nil || writer == nil {
		return nil, fmt.Errorf("%w: scene generator and frame writer are required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Scheduler{
		config:   config,
		generate: generate,
		writer:   writer,
		logger:   logger,
	}, nil
}

// Run renders every frame in the configured range. The first frame error
// stops further frames from being started and is returned once the frames
// already running have finished. The context is only consulted between frames.
func (s *Scheduler) Run(ctx context.Context) (AnimationStats, error) {
	startTime := time.Now()
	var stats AnimationStats
	var err error
	s.peak.Store(0)
	s.written.Store(0)

	s.logger.Printf("Rendering frames %d-%d at %dx%d (%s, max %d concurrent)\n",
		s.config.Start, s.config.End, s.config.Width, s.config.Height, s.config.Mode, s.config.MaxConcurrency)

	switch s.config.Mode {
	case SchedulerPool:
		err = s.runPool(ctx)
	default:
		stats.Batches, err = s.runBatches(ctx)
	}

	stats.FramesWritten = int(s.written.Load())
	stats.PeakInFlight = int(s.peak.Load())
	stats.Elapsed = time.Since(startTime)
	return stats, err
}

// runBatches admits frames in index order. Once more than MaxConcurrency
// frames are outstanding it joins all of them before admitting the next one,
// so a single slow frame holds up its whole batch.
func (s *Scheduler) runBatches(ctx context.Context) (int, error) {
	batches := 0
	g := new(errgroup.Group)
	outstanding := 0

	for frame := s.config.Start; frame <= s.config.End; frame++ {
		if ctx.Err() != nil {
			break
		}

		index := frame
		g.Go(func() error {
			_, err := s.renderFrame(index)
			return err
		})
		outstanding++

		if outstanding > s.config.MaxConcurrency {
			s.logger.Printf("Waiting for %d frames to finish\n", outstanding)
			batches++
			if err := g.Wait(); err != nil {
				return batches, err
			}
			g = new(errgroup.Group)
			outstanding = 0
		}
	}

	if outstanding > 0 {
		batches++
		if err := g.Wait(); err != nil {
			return batches, err
		}
	}
	return batches, ctx.Err()
}

// runPool keeps up to MaxConcurrency frames in flight, starting the next
// frame as soon as any frame finishes
func (s *Scheduler) runPool(ctx context.Context) error {
	pool := NewWorkerPool(s.config.MaxConcurrency, s.renderFrame)
	pool.Start()
	defer pool.Stop()

	next := s.config.Start
	pending := 0
	var firstErr error

	admit := func() {
		if next > s.config.End || firstErr != nil || ctx.Err() != nil {
			return
		}
		pool.SubmitTask(FrameTask{Index: next})
		next++
		pending++
	}

	for i := 0; i < pool.GetNumWorkers(); i++ {
		admit()
	}

	for pending > 0 {
		result, ok := pool.GetResult()
		if !ok {
			return fmt.Errorf("worker pool closed unexpectedly")
		}
		pending--
		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
		admit()
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// renderFrame is one unit of work: build the scene, render it, persist it
func (s *Scheduler) renderFrame(index int) (RenderStats, error) {
	s.enter()
	defer s.inFlight.Add(-1)

	s.logger.Printf("Rendering frame %03d\n", index)

	scene, err := s.generate(index)
	if err != nil {
		return RenderStats{}, fmt.Errorf("frame %d: %w", index, err)
	}

	raytracer := NewRaytracer(scene, s.config.Width, s.config.Height)
	raytracer.SetRenderConfig(s.config.Render)
	raytracer.SetLogger(s.logger)
	frame, stats := raytracer.Render()

	if err := s.writer.WriteFrame(index, frame); err != nil {
		return stats, fmt.Errorf("frame %d: %w", index, err)
	}
	s.written.Add(1)
	return stats, nil
}

// enter records a frame starting and tracks the peak number in flight
func (s *Scheduler) enter() {
	current := s.inFlight.Add(1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			return
		}
	}
}
