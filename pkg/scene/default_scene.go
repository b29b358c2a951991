package scene

import (
	"math"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/geometry"
)

// Sphere colors, in 0-255 per channel
var (
	sphereBlue   = core.NewVec3(128, 156, 255)
	sphereRed    = core.NewVec3(255, 0, 0)
	sphereYellow = core.NewVec3(255, 255, 0)
)

func sinf(f, period float64) float64 { return math.Sin(f / period) }
func cosf(f, period float64) float64 { return math.Cos(f / period) }

// NewThreeSphereScene creates the animated scene: a yellow sphere on the
// right, a large red sphere on the left and a small blue sphere in the middle,
// drawn in that order. Positions, radii and depths oscillate with the frame.
func NewThreeSphereScene(frame, width, height int) (*Scene, error) {
	f := float64(frame)
	w, h := float64(width), float64(height)

	s := &Scene{
		Spheres:        make([]*geometry.Sphere, 0, 3),
		LightDirection: animatedLight(f),
		Frame:          frame,
	}

	spheres := []struct {
		id     int
		center core.Vec3
		radius float64
		albedo core.Vec3
	}{
		{
			id:     2,
			center: core.NewVec3(w/1.2-cosf(f, 10)*80, h/2, 0.1+math.Abs(cosf(f, 160))),
			radius: 100 * (0.1 + math.Abs(cosf(f, 100))),
			albedo: sphereYellow,
		},
		{
			id:     1,
			center: core.NewVec3(w/5+sinf(f, 20)*30, h/2, 0.1+math.Abs(sinf(f, 100))),
			radius: 100 * (1.5 + math.Abs(sinf(f, 100))),
			albedo: sphereRed,
		},
		{
			id:     0,
			center: core.NewVec3(w/2+sinf(f, 10)*50, h/2, 0.1+math.Abs(cosf(f, 100))),
			radius: 100 * (0.1 + math.Abs(sinf(f, 100))),
			albedo: sphereBlue,
		},
	}

	for _, sp := range spheres {
		if err := s.AddSphere(sp.id, sp.center, sp.radius, sp.albedo); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewSingleSphereScene creates a single blue sphere drifting left and right
// under the same animated light
func NewSingleSphereScene(frame, width, height int) (*Scene, error) {
	f := float64(frame)
	s := &Scene{LightDirection: animatedLight(f), Frame: frame}

	center := core.NewVec3(float64(width)/2+sinf(f, 10)*50, float64(height)/2, 0.1)
	radius := 100 * (0.5 + math.Abs(sinf(f, 100)))
	if err := s.AddSphere(0, center, radius, sphereBlue); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticSphereScene creates a frame-independent scene: one blue sphere of
// radius 100 in the middle of the image, lit head-on
func NewStaticSphereScene(frame, width, height int) (*Scene, error) {
	light, err := core.NewVec3(0, 0, -1).TryNormalize()
	if err != nil {
		return nil, err
	}

	s := &Scene{LightDirection: light, Frame: frame}
	center := core.NewVec3(float64(width/2), float64(height/2), 0.1)
	if err := s.AddSphere(0, center, 100, sphereBlue); err != nil {
		return nil, err
	}
	return s, nil
}
