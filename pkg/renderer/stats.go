package renderer

import (
	"image"
	"time"
)

// RenderStats contains statistics about rendering a single frame
type RenderStats struct {
	TotalPixels   int           // Pixels in the frame
	Spheres       int           // Spheres composited
	Hits          int           // Primary rays that hit a sphere, summed over spheres
	PixelWrites   int           // Hits that shaded non-black and overwrote the pixel
	CoveredPixels int           // Pixels left non-black after compositing
	Duration      time.Duration // Wall time for the frame
}

func (s *RenderStats) add(other RenderStats) {
	s.Hits += other.Hits
	s.PixelWrites += other.PixelWrites
}

// Coverage returns the fraction of pixels that are not background
func (s RenderStats) Coverage() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.CoveredPixels) / float64(s.TotalPixels)
}

// AnimationStats contains statistics about a whole scheduler run
type AnimationStats struct {
	FramesWritten int           // Frames handed to the writer successfully
	Batches       int           // Batch joins performed (batch mode only)
	PeakInFlight  int           // Most frame renders running at once
	Elapsed       time.Duration // Wall time for the run
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img in [0, 1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += 0.2126*float64(r)/0xffff + 0.7152*float64(g)/0xffff + 0.0722*float64(b)/0xffff
		}
	}
	return total / float64(pixels)
}
