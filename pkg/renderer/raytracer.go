package renderer

import (
	"image"
	"sync"
	"time"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/geometry"
	"github.com/df07/go-sphere-animation/pkg/material"
)

// viewDirection is shared by every primary ray: an orthographic view along +z
var viewDirection = core.NewVec3(0, 0, 1)

// RenderConfig contains configuration for rendering a single frame
type RenderConfig struct {
	TileSize   int // Size of each tile in pixels
	NumWorkers int // Tiles rendered in parallel (1 = serial)
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		TileSize:   64,
		NumWorkers: 1, // Frames already render concurrently
	}
}

// Scene interface to avoid circular imports
type Scene interface {
	GetSpheres() []*geometry.Sphere
	GetLightDirection() core.Vec3
}

// Raytracer renders one frame of a scene
type Raytracer struct {
	scene  Scene
	width  int
	height int
	config RenderConfig
	logger core.Logger
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene, width, height int) *Raytracer {
	return &Raytracer{
		scene:  scene,
		width:  width,
		height: height,
		config: DefaultRenderConfig(),
	}
}

// SetRenderConfig updates the render configuration
func (rt *Raytracer) SetRenderConfig(config RenderConfig) {
	rt.config = config
}

// SetLogger enables per-sphere diagnostics
func (rt *Raytracer) SetLogger(logger core.Logger) {
	rt.logger = logger
}

// Render casts one ray per pixel and composites the spheres in scene order.
// Spheres are drawn as layers: a later sphere overwrites an earlier one
// wherever it shades to a non-black color, with no depth comparison.
func (rt *Raytracer) Render() (*Frame, RenderStats) {
	startTime := time.Now()
	frame := NewFrame(rt.width, rt.height)
	tiles := NewTileGrid(rt.width, rt.height, rt.config.TileSize)
	lightDir := rt.scene.GetLightDirection()

	stats := RenderStats{TotalPixels: rt.width * rt.height}
	for _, sphere := range rt.scene.GetSpheres() {
		if rt.logger != nil {
			rt.logger.Printf("Render sphere %d\n", sphere.ID)
		}
		stats.add(rt.renderLayer(sphere, lightDir, frame, tiles))
		stats.Spheres++
	}

	stats.CoveredPixels = countCovered(frame)
	stats.Duration = time.Since(startTime)
	return frame, stats
}

// renderLayer draws one sphere over every tile, in parallel when configured
func (rt *Raytracer) renderLayer(sphere *geometry.Sphere, lightDir core.Vec3, frame *Frame, tiles []*Tile) RenderStats {
	workers := min(rt.config.NumWorkers, len(tiles))
	if workers <= 1 {
		var stats RenderStats
		for _, tile := range tiles {
			stats.add(RenderBounds(sphere, lightDir, tile.Bounds, frame))
		}
		return stats
	}

	// Tiles never overlap, so each worker writes a disjoint set of pixels
	tileStats := make([]RenderStats, len(tiles))
	taskQueue := make(chan *Tile, len(tiles))
	for _, tile := range tiles {
		taskQueue <- tile
	}
	close(taskQueue)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tile := range taskQueue {
				tileStats[tile.ID] = RenderBounds(sphere, lightDir, tile.Bounds, frame)
			}
		}()
	}
	wg.Wait()

	var stats RenderStats
	for _, s := range tileStats {
		stats.add(s)
	}
	return stats
}

// RenderBounds draws a single sphere into the pixels within bounds.
// Misses and hits that shade to black leave the existing pixel untouched.
func RenderBounds(sphere *geometry.Sphere, lightDir core.Vec3, bounds image.Rectangle, frame *Frame) RenderStats {
	var stats RenderStats
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ray := core.NewRay(core.NewVec3(float64(x), float64(y), 0), viewDirection)
			pixelColor, hit := sphere.Shade(ray, lightDir)
			if !hit {
				continue
			}
			stats.Hits++
			if material.IsBlack(pixelColor) {
				continue
			}
			frame.SetRGB(x, y, pixelColor)
			stats.PixelWrites++
		}
	}
	return stats
}

// countCovered counts pixels that differ from the black background
func countCovered(frame *Frame) int {
	covered := 0
	for i := 0; i < len(frame.Pix); i += 3 {
		if frame.Pix[i] != 0 || frame.Pix[i+1] != 0 || frame.Pix[i+2] != 0 {
			covered++
		}
	}
	return covered
}
