package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-animation/pkg/core"
	"github.com/df07/go-sphere-animation/pkg/material"
)

func newTestSphere(t *testing.T, center core.Vec3, radius float64) *Sphere {
	t.Helper()
	sphere, err := NewSphere(0, center, radius, material.NewLambertianRGB(255, 255, 255))
	if err != nil {
		t.Fatalf("NewSphere failed: %v", err)
	}
	return sphere
}

func TestNewSphere_InvalidRadius(t *testing.T) {
	mat := material.NewLambertianRGB(255, 0, 0)
	for _, radius := range []float64{0, -1, math.NaN()} {
		if _, err := NewSphere(3, core.NewVec3(0, 0, 0), radius, mat); err == nil {
			t.Errorf("Expected error for radius %f", radius)
		}
	}
	if _, err := NewSphere(3, core.NewVec3(0, 0, 0), 1, nil); err == nil {
		t.Error("Expected error for nil material")
	}
}

func TestSphere_Intersect_Miss(t *testing.T) {
	sphere := newTestSphere(t, core.NewVec3(0, 0, 10), 1.0)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{
			name: "passes beside the sphere",
			ray:  core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 1)),
		},
		{
			name: "points away from the sphere",
			ray:  core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)),
		},
		{
			name: "just outside the silhouette",
			ray:  core.NewRay(core.NewVec3(0, 1.0001, 0), core.NewVec3(0, 0, 1)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if normal, hit := sphere.Intersect(tt.ray); hit {
				t.Errorf("Expected miss, got hit with normal %v", normal)
			}
		})
	}
}

func TestSphere_Intersect_CenterBehindOrigin(t *testing.T) {
	// The origin sits inside the sphere but past its center, so the center
	// projects behind the ray. The surface in front is still not reported.
	sphere := newTestSphere(t, core.NewVec3(0, 0, 0), 5.0)
	origins := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.NewVec3(1, 1, 0.001),
		core.NewVec3(0, 0, 100),
	}

	for _, origin := range origins {
		ray := core.NewRay(origin, core.NewVec3(0, 0, 1))
		if ray.Origin.Subtract(sphere.Center).Dot(ray.Direction) <= 0 {
			t.Fatalf("Test setup: center should project behind origin %v", origin)
		}
		if _, hit := sphere.Intersect(ray); hit {
			t.Errorf("Expected miss for origin %v", origin)
		}
	}
}

func TestSphere_Intersect_HeadOn(t *testing.T) {
	sphere := newTestSphere(t, core.NewVec3(0, 0, 10), 2.0)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	normal, hit := sphere.Intersect(ray)
	if !hit {
		t.Fatal("Expected hit, but got miss")
	}

	const tolerance = 1e-9
	if math.Abs(normal.Length()-1) > tolerance {
		t.Errorf("Expected unit normal, got length %f", normal.Length())
	}

	expected := core.NewVec3(0, 0, -1)
	if normal.Subtract(expected).Length() > tolerance {
		t.Errorf("Expected normal %v, got %v", expected, normal)
	}

	// The nearest hit point is at t=8, and the normal points from the center through it
	hitPoint := ray.At(8)
	outward := hitPoint.Subtract(sphere.Center)
	if normal.Cross(outward).Length() > tolerance || normal.Dot(outward) <= 0 {
		t.Errorf("Normal %v does not point from center through %v", normal, hitPoint)
	}
}

func TestSphere_Intersect_OffAxis(t *testing.T) {
	sphere := newTestSphere(t, core.NewVec3(100, 100, 50), 10.0)

	tests := []struct {
		name           string
		x, y           float64
		expectedNormal core.Vec3
	}{
		{"center", 100, 100, core.NewVec3(0, 0, -1)},
		{"right half", 106, 100, core.NewVec3(0.6, 0, -0.8)},
		{"upper half", 100, 92, core.NewVec3(0, -0.8, -0.6)},
		{"silhouette edge", 110, 100, core.NewVec3(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(tt.x, tt.y, 0), core.NewVec3(0, 0, 1))
			normal, hit := sphere.Intersect(ray)
			if !hit {
				t.Fatal("Expected hit, but got miss")
			}

			const tolerance = 1e-9
			if normal.Subtract(tt.expectedNormal).Length() > tolerance {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, normal)
			}
		})
	}
}

func TestSphere_Shade(t *testing.T) {
	sphere, err := NewSphere(1, core.NewVec3(0, 0, 10), 1, material.NewLambertianRGB(255, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	light := core.NewVec3(0, 0, -1)

	c, hit := sphere.Shade(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1)), light)
	if !hit {
		t.Fatal("Expected hit, but got miss")
	}
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("Expected full red, got %v", c)
	}

	if _, hit := sphere.Shade(core.NewRay(core.NewVec3(5, 0, 0), core.NewVec3(0, 0, 1)), light); hit {
		t.Error("Expected miss, but got hit")
	}
}
