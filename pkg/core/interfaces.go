package core

// Logger receives progress lines from the scheduler and per-sphere lines
// from the raytracer. Frames render concurrently, so implementations must be
// safe for concurrent use.
type Logger interface {
	Printf(format string, args ...interface{})
}
