package material

import (
	"image/color"

	"github.com/df07/go-sphere-animation/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color, each channel in [0, 255]
}

// NewLambertian creates a new lambertian material with a solid base color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// NewLambertianRGB is NewLambertian with the channels spelled out
func NewLambertianRGB(r, g, b float64) *Lambertian {
	return NewLambertian(core.NewVec3(r, g, b))
}

// Intensity returns the cosine term for a surface normal lit from lightDir.
// Back-facing surfaces receive no light.
func Intensity(normal, lightDir core.Vec3) float64 {
	return max(0, lightDir.Dot(normal))
}

// Shade returns the color of a surface with the given normal under a directional light.
// Channels are truncated to 8 bits after clamping to [0, 255].
func (l *Lambertian) Shade(normal, lightDir core.Vec3) color.RGBA {
	intensity := Intensity(normal, lightDir)
	scaled := l.Albedo.Multiply(intensity)
	return color.RGBA{
		R: toByte(scaled.X),
		G: toByte(scaled.Y),
		B: toByte(scaled.Z),
		A: 255,
	}
}

// IsBlack reports whether all color channels are zero. Alpha is ignored.
func IsBlack(c color.RGBA) bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

func toByte(v float64) uint8 {
	return uint8(max(0, min(255, v)))
}
