package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/geometry"
	"github.com/df07/go-sphere-animation/pkg/material"
	"github.com/df07/go-sphere-animation/pkg/scene"
)

func serve(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewServer(0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := serve(t, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}
}

func TestHandleScenes(t *testing.T) {
	rec := serve(t, "/api/scenes")
	var resp struct {
		Default string `json:"default"`
		Scenes  []struct {
			ID string `json:"id"`
		} `json:"scenes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Default != "spheres" || len(resp.Scenes) != len(scene.Names()) {
		t.Errorf("Unexpected scene list %+v", resp)
	}
}

func TestHandleFrame(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		statusCode int
	}{
		{"default scene", "scene=spheres&frame=10&width=64&height=36", http.StatusOK},
		{"tiled static", "scene=static&width=300&height=250&tileWorkers=3", http.StatusOK},
		{"unknown scene", "scene=cornell-box", http.StatusBadRequest},
		{"width out of range", "width=0", http.StatusBadRequest},
		{"non-numeric frame", "frame=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, "/api/frame?"+tt.query)
			if rec.Code != tt.statusCode {
				t.Fatalf("Status = %d, want %d (%s)", rec.Code, tt.statusCode, rec.Body.String())
			}
			if tt.statusCode != http.StatusOK {
				return
			}

			values, _ := url.ParseQuery(tt.query)
			req, err := parseFrameRequest(values)
			if err != nil {
				t.Fatal(err)
			}
			img, err := png.Decode(rec.Body)
			if err != nil {
				t.Fatalf("Response is not a PNG: %v", err)
			}
			if img.Bounds().Dx() != req.Width || img.Bounds().Dy() != req.Height {
				t.Errorf("Image is %v, want %dx%d", img.Bounds(), req.Width, req.Height)
			}
		})
	}
}

func TestInspectPixel(t *testing.T) {
	newSphere := func(id int, center core.Vec3, radius float64, albedo core.Vec3) *geometry.Sphere {
		s, err := geometry.NewSphere(id, center, radius, material.NewLambertian(albedo))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	sc := &scene.Scene{
		Spheres: []*geometry.Sphere{
			newSphere(1, core.NewVec3(10, 10, 5), 5, core.NewVec3(255, 0, 0)),
			newSphere(0, core.NewVec3(10, 10, 1), 3, core.NewVec3(0, 0, 0)),
		},
		LightDirection: core.NewVec3(0, 0, -1),
	}

	resp := inspectPixel(sc, 10, 10)
	if !resp.Hit || len(resp.Layers) != 2 {
		t.Fatalf("Expected two layers, got %+v", resp)
	}
	// The black sphere is hit last but does not overwrite the red one
	if resp.SphereID != 1 || resp.Color != "#ff0000" {
		t.Errorf("Expected red sphere 1 to own the pixel, got %d %s", resp.SphereID, resp.Color)
	}
	if resp.Layers[1].Written {
		t.Error("Black layer should not be written")
	}

	miss := inspectPixel(sc, 0, 0)
	if miss.Hit || miss.SphereID != -1 || miss.Color != "#000000" {
		t.Errorf("Expected background, got %+v", miss)
	}
}

func TestHandleInspect(t *testing.T) {
	rec := serve(t, "/api/inspect?scene=static&width=400&height=300&x=200&y=150")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d (%s)", rec.Code, rec.Body.String())
	}

	var resp InspectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.SphereID != 0 || resp.Color != "#809cff" {
		t.Errorf("Expected fully lit blue sphere at the center, got %+v", resp)
	}

	if rec := serve(t, "/api/inspect?width=100&x=100"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for x outside the image, got %d", rec.Code)
	}
}

func TestHandleRender_StreamsFrames(t *testing.T) {
	for _, mode := range []string{"batch", "pool"} {
		t.Run(mode, func(t *testing.T) {
			rec := serve(t, "/api/render?scene=single&start=1&end=5&width=48&height=32&maxConcurrency=2&mode="+mode)
			body := rec.Body.String()

			if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
				t.Errorf("Content-Type = %q", ct)
			}
			if n := strings.Count(body, "event: frame\n"); n != 5 {
				t.Errorf("Expected 5 frame events, got %d", n)
			}
			if !strings.Contains(body, "event: complete\n") {
				t.Error("Missing completion event")
			}
			if strings.Contains(body, "event: error\n") {
				t.Errorf("Unexpected error event in %q", body)
			}
		})
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	tests := []string{
		"mode=sliding",
		"start=10&end=5",
		"scene=nonexistent",
		"maxConcurrency=0",
	}

	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			body := serve(t, "/api/render?"+query+"&width=8&height=8").Body.String()
			if !strings.Contains(body, "event: error\n") {
				t.Errorf("Expected error event, got %q", body)
			}
			if strings.Contains(body, "event: frame\n") {
				t.Error("No frames should be streamed for an invalid request")
			}
		})
	}
}

func TestParseAnimationRequest_Defaults(t *testing.T) {
	req, err := parseAnimationRequest(url.Values{"start": {"5"}})
	if err != nil {
		t.Fatal(err)
	}
	if req.Start != 5 || req.End != 34 || req.MaxConcurrency != 8 || req.Mode != "batch" {
		t.Errorf("Unexpected defaults %+v", req)
	}
	if _, err := parseAnimationRequest(url.Values{"start": {"1"}, "end": {"1000"}}); err == nil {
		t.Error("Expected error for a range over the stream limit")
	}
}
