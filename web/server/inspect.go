package server

import (
	"fmt"
	"image/color"
	"net/http"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/material"
	"github.com/df07/go-sphere-animation/pkg/renderer"
)

// LayerHit describes what one sphere contributes to the inspected pixel
type LayerHit struct {
	SphereID int        `json:"sphereId"`
	Normal   [3]float64 `json:"normal"`
	Color    string     `json:"color"`
	Written  bool       `json:"written"` // False when the sphere shades to black
}

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit      bool       `json:"hit"`
	X        int        `json:"x"`
	Y        int        `json:"y"`
	SphereID int        `json:"sphereId"` // Sphere that owns the final pixel, -1 for background
	Color    string     `json:"color"`
	Layers   []LayerHit `json:"layers"` // Every sphere hit, in draw order
}

// inspectPixel casts the primary ray for a pixel against every sphere in draw
// order, reporting which sphere ends up owning the pixel
func inspectPixel(sc renderer.Scene, x, y int) InspectResponse {
	resp := InspectResponse{X: x, Y: y, SphereID: -1, Color: hexColor(color.RGBA{})}
	ray := core.NewRay(core.NewVec3(float64(x), float64(y), 0), core.NewVec3(0, 0, 1))
	lightDir := sc.GetLightDirection()

	for _, sphere := range sc.GetSpheres() {
		normal, hit := sphere.Intersect(ray)
		if !hit {
			continue
		}
		resp.Hit = true

		c := sphere.Material.Shade(normal, lightDir)
		layer := LayerHit{
			SphereID: sphere.ID,
			Normal:   [3]float64{normal.X, normal.Y, normal.Z},
			Color:    hexColor(c),
			Written:  !material.IsBlack(c),
		}
		resp.Layers = append(resp.Layers, layer)

		if layer.Written {
			resp.SphereID = sphere.ID
			resp.Color = layer.Color
		}
	}
	return resp
}

// handleInspect reports how a single pixel of a frame is composed
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := parseFrameRequest(values)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	x, err := parseIntParam(values, "x", 0, 0, req.Width-1)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	y, err := parseIntParam(values, "y", 0, 0, req.Height-1)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	sc, err := buildScene(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sc, x, y))
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
