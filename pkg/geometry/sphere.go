package geometry

import (
	"fmt"
	"image/color"
	"math"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material *material.Lambertian
	ID       int // Diagnostic identifier, not used for ordering
}

// NewSphere creates a new sphere
func NewSphere(id int, center core.Vec3, radius float64, mat *material.Lambertian) (*Sphere, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("sphere %d: radius must be positive, got %f", id, radius)
	}
	if mat == nil {
		return nil, fmt.Errorf("sphere %d: material is required", id)
	}
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
		ID:       id,
	}, nil
}

// Intersect returns the surface normal where the ray first enters the sphere.
// The ray direction is expected to be unit length.
//
// A sphere whose center projects behind the ray origin is reported as a miss,
// even when part of its surface lies in front of the origin.
func (s *Sphere) Intersect(ray core.Ray) (core.Vec3, bool) {
	l := s.Center.Subtract(ray.Origin)
	angle := l.Dot(ray.Direction)
	if angle < 0 {
		return core.Vec3{}, false
	}

	// Squared distance from the center to the ray line
	d2 := l.LengthSquared() - angle*angle
	r2 := s.Radius * s.Radius
	if d2 > r2 {
		return core.Vec3{}, false
	}

	halfChord := math.Sqrt(r2 - d2)
	t0 := angle - halfChord

	hitPoint := ray.At(t0)
	return hitPoint.Subtract(s.Center).Normalize(), true
}

// Shade intersects the ray and shades the hit under lightDir
func (s *Sphere) Shade(ray core.Ray, lightDir core.Vec3) (color.RGBA, bool) {
	normal, ok := s.Intersect(ray)
	if !ok {
		return color.RGBA{}, false
	}
	return s.Material.Shade(normal, lightDir), true
}
