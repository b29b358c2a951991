package scene

import (
	"fmt"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/geometry"
	"github.com/df07/go-sphere-animation/pkg/material"
)

// Scene contains all the elements needed for rendering one frame
type Scene struct {
	Spheres        []*geometry.Sphere // Drawn in order; later spheres paint over earlier ones
	LightDirection core.Vec3          // Direction towards the light, not necessarily unit length
	Frame          int                // Frame index the scene was generated for
}

// Generator builds the scene for a frame index at the given image size
type Generator func(frame, width, height int) (*Scene, error)

// GetSpheres returns the spheres in draw order
func (s *Scene) GetSpheres() []*geometry.Sphere {
	return s.Spheres
}

// GetLightDirection returns the light direction used for shading
func (s *Scene) GetLightDirection() core.Vec3 {
	return s.LightDirection
}

// AddSphere appends a sphere to the end of the draw order
func (s *Scene) AddSphere(id int, center core.Vec3, radius float64, albedo core.Vec3) error {
	sphere, err := geometry.NewSphere(id, center, radius, material.NewLambertian(albedo))
	if err != nil {
		return fmt.Errorf("frame %d: sphere %d: %w", s.Frame, id, err)
	}
	s.Spheres = append(s.Spheres, sphere)
	return nil
}

// animatedLight returns the light direction for a frame. It swings around the
// scene over time and is left unnormalized, so its length varies per frame.
func animatedLight(f float64) core.Vec3 {
	return core.NewVec3(sinf(f, 15), sinf(f, 10), -cosf(f, 10))
}
