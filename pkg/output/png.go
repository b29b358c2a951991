// Package output persists rendered frames as numbered PNG files.
package output

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

var (
	// ErrPersistence is returned when a frame cannot be written
	ErrPersistence = errors.New("failed to persist frame")
)

// FrameFilename returns the file name for a frame index, zero-padded to 3 digits
func FrameFilename(index int) string {
	return fmt.Sprintf("render%03d.png", index)
}

// FrameWriter accepts finished frames. Implementations must be safe for concurrent use.
type FrameWriter interface {
	WriteFrame(index int, img image.Image) error
}

// PNGWriter writes each frame to its own PNG file in a directory
type PNGWriter struct {
	dir string
}

// NewPNGWriter creates the output directory if needed
func NewPNGWriter(dir string) (*PNGWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory %s: %w", ErrPersistence, dir, err)
	}
	return &PNGWriter{dir: dir}, nil
}

// Dir returns the output directory
func (w *PNGWriter) Dir() string {
	return w.dir
}

// Path returns where the frame with the given index is written
func (w *PNGWriter) Path(index int) string {
	return filepath.Join(w.dir, FrameFilename(index))
}

// WriteFrame encodes img as PNG under the frame's file name
func (w *PNGWriter) WriteFrame(index int, img image.Image) error {
	path := w.Path(index)
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistence, path, err)
	}
	return nil
}

// LoadFrame reads back a PNG written by PNGWriter
func LoadFrame(path string) (image.Image, error) {
	img, err := gg.LoadPNG(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame %s: %w", path, err)
	}
	return img, nil
}

// EncodePNG writes img as PNG to w, for callers that stream frames instead of saving them
func EncodePNG(w io.Writer, img image.Image) error {
	if err := gg.NewContextForImage(img).EncodePNG(w); err != nil {
		return fmt.Errorf("%w: encoding PNG: %w", ErrPersistence, err)
	}
	return nil
}
