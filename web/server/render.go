package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/output"
	"github.com/df07/go-sphere-animation/pkg/renderer"
	"github.com/df07/go-sphere-animation/pkg/scene"
)

// maxStreamFrames bounds a single streamed render
const maxStreamFrames = 400

// AnimationRequest selects a range of frames to stream
type AnimationRequest struct {
	FrameRequest
	Start          int                    `json:"start"`
	End            int                    `json:"end"`
	MaxConcurrency int                    `json:"maxConcurrency"`
	Mode           renderer.SchedulerMode `json:"mode"`
}

// FrameUpdate represents a single finished frame sent via SSE
type FrameUpdate struct {
	Frame     int    `json:"frame"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	ElapsedMs int64  `json:"elapsedMs"`
}

// CompleteUpdate summarizes a finished stream
type CompleteUpdate struct {
	FramesWritten int   `json:"framesWritten"`
	Batches       int   `json:"batches"`
	PeakInFlight  int   `json:"peakInFlight"`
	ElapsedMs     int64 `json:"elapsedMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// sseFrameWriter implements output.FrameWriter by streaming frames to the client
type sseFrameWriter struct {
	ctx       context.Context
	events    chan<- SSEEvent
	startTime time.Time
}

var _ output.FrameWriter = (*sseFrameWriter)(nil)

func (fw *sseFrameWriter) WriteFrame(index int, img image.Image) error {
	imageData, err := imageToBase64PNG(img)
	if err != nil {
		return err
	}

	data, err := json.Marshal(FrameUpdate{
		Frame:     index,
		ImageData: imageData,
		ElapsedMs: elapsedMs(fw.startTime),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", output.ErrPersistence, err)
	}

	select {
	case fw.events <- SSEEvent{Type: "frame", Data: string(data)}:
		return nil
	case <-fw.ctx.Done():
		return fmt.Errorf("%w: client disconnected: %w", output.ErrPersistence, fw.ctx.Err())
	}
}

// handleRender renders a frame range with the frame scheduler and streams each
// finished frame via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)
	ctx := r.Context()

	// Single writer goroutine owns the response
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(ctx, w, sseEventChan)
		close(writerDone)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := parseAnimationRequest(r.URL.Query())
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
		close(consoleDone)
	}()

	stats, err := s.runAnimation(ctx, req, sseEventChan, webLogger)

	// All frames have finished, so nothing logs after this point
	close(consoleChan)
	<-consoleDone

	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	data, err := json.Marshal(CompleteUpdate{
		FramesWritten: stats.FramesWritten,
		Batches:       stats.Batches,
		PeakInFlight:  stats.PeakInFlight,
		ElapsedMs:     stats.Elapsed.Milliseconds(),
	})
	if err != nil {
		log.Printf("Error marshaling completion: %v", err)
		return
	}
	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// runAnimation drives the scheduler with frames going to the SSE stream
func (s *Server) runAnimation(ctx context.Context, req *AnimationRequest, events chan<- SSEEvent, logger core.Logger) (renderer.AnimationStats, error) {
	gen, err := scene.Lookup(req.Scene)
	if err != nil {
		return renderer.AnimationStats{}, err
	}
	generate := func(frame int) (renderer.Scene, error) {
		sc, err := gen(frame, req.Width, req.Height)
		if err != nil {
			return nil, err
		}
		return sc, nil
	}

	config := renderer.AnimationConfig{
		Start:          req.Start,
		End:            req.End,
		Width:          req.Width,
		Height:         req.Height,
		MaxConcurrency: req.MaxConcurrency,
		Mode:           req.Mode,
		Render:         renderer.DefaultRenderConfig(),
	}
	config.Render.NumWorkers = req.TileWorkers

	writer := &sseFrameWriter{ctx: ctx, events: events, startTime: time.Now()}
	scheduler, err := renderer.NewScheduler(config, generate, writer, logger)
	if err != nil {
		return renderer.AnimationStats{}, err
	}
	return scheduler.Run(ctx)
}

// parseAnimationRequest parses a frame range on top of the frame parameters
func parseAnimationRequest(values url.Values) (*AnimationRequest, error) {
	frameReq, err := parseFrameRequest(values)
	if err != nil {
		return nil, err
	}
	req := &AnimationRequest{FrameRequest: *frameReq}

	if req.Start, err = parseIntParam(values, "start", 1, 0, 100000); err != nil {
		return nil, err
	}
	if req.End, err = parseIntParam(values, "end", req.Start+29, req.Start, req.Start+maxStreamFrames-1); err != nil {
		return nil, err
	}
	if req.MaxConcurrency, err = parseIntParam(values, "maxConcurrency", 8, 1, 64); err != nil {
		return nil, err
	}

	req.Mode = renderer.SchedulerMode(values.Get("mode"))
	if req.Mode == "" {
		req.Mode = renderer.SchedulerBatch
	}
	if req.Mode != renderer.SchedulerBatch && req.Mode != renderer.SchedulerPool {
		return nil, fmt.Errorf("invalid mode: %s", req.Mode)
	}
	return req, nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan, os.Stdout)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards log lines to the SSE stream until consoleChan closes
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			continue
		}

		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		default:
			// Channel full, skip message to avoid blocking
		}
	}
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
