package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-sphere-animation/pkg/output"
	"github.com/df07/go-sphere-animation/pkg/renderer"
	"github.com/df07/go-sphere-animation/pkg/scene"
)

// Server previews frames of the sphere animation over HTTP
type Server struct {
	port int
	mux  *http.ServeMux
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	s := &Server{port: port, mux: http.NewServeMux()}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/frame", s.handleFrame)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)
	s.mux.HandleFunc("/api/render", s.handleRender)
	return s
}

// FrameRequest selects a single frame of a scene
type FrameRequest struct {
	Scene       string `json:"scene"`       // Scene name (e.g., "spheres")
	Frame       int    `json:"frame"`       // Frame index
	Width       int    `json:"width"`       // Image width
	Height      int    `json:"height"`      // Image height
	TileWorkers int    `json:"tileWorkers"` // Tiles rendered in parallel
}

// Stats represents render statistics for one frame
type Stats struct {
	TotalPixels   int     `json:"totalPixels"`
	Hits          int     `json:"hits"`
	PixelWrites   int     `json:"pixelWrites"`
	CoveredPixels int     `json:"coveredPixels"`
	Coverage      float64 `json:"coverage"`
	DurationMs    int64   `json:"durationMs"`
}

func newStats(rs renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:   rs.TotalPixels,
		Hits:          rs.Hits,
		PixelWrites:   rs.PixelWrites,
		CoveredPixels: rs.CoveredPixels,
		Coverage:      rs.Coverage(),
		DurationMs:    rs.Duration.Milliseconds(),
	}
}

// Handler returns the server's routes, for embedding or testing
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	type sceneEntry struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
		Animated    bool   `json:"animated"`
	}

	var scenes []sceneEntry
	for _, info := range scene.ListScenes() {
		scenes = append(scenes, sceneEntry{
			ID:          info.ID,
			DisplayName: info.DisplayName,
			Description: info.Description,
			Animated:    info.Animated,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"default": scene.DefaultSceneName, "scenes": scenes})
}

// handleFrame renders one frame and returns it as a PNG
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req, err := parseFrameRequest(r.URL.Query())
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	frame, stats, err := renderFrame(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := output.EncodePNG(&buf, frame); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("X-Covered-Pixels", strconv.Itoa(stats.CoveredPixels))
	w.Write(buf.Bytes())
}

// renderFrame builds and renders the requested frame
func renderFrame(req *FrameRequest) (*renderer.Frame, renderer.RenderStats, error) {
	sc, err := buildScene(req)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}

	rt := renderer.NewRaytracer(sc, req.Width, req.Height)
	config := renderer.DefaultRenderConfig()
	config.NumWorkers = req.TileWorkers
	rt.SetRenderConfig(config)

	frame, stats := rt.Render()
	return frame, stats, nil
}

// buildScene looks up and generates the scene for a frame request
func buildScene(req *FrameRequest) (*scene.Scene, error) {
	gen, err := scene.Lookup(req.Scene)
	if err != nil {
		return nil, err
	}
	return gen(req.Frame, req.Width, req.Height)
}

// parseFrameRequest parses the parameters shared by every frame endpoint
func parseFrameRequest(values url.Values) (*FrameRequest, error) {
	req := &FrameRequest{Scene: values.Get("scene")}

	var err error
	if req.Frame, err = parseIntParam(values, "frame", 1, 0, 100000); err != nil {
		return nil, err
	}
	if req.Width, err = parseIntParam(values, "width", 640, 1, 3840); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 360, 1, 2160); err != nil {
		return nil, err
	}
	if req.TileWorkers, err = parseIntParam(values, "tileWorkers", 4, 1, 64); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := output.EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// elapsedMs is the milliseconds since start, for progress events
func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
