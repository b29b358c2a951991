package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-animation/pkg/output"
	"github.com/df07/go-sphere-animation/pkg/renderer"
	"github.com/df07/go-sphere-animation/pkg/scene"
)

// ffmpegCommand assembles the written frames into a video. It is printed
// after a run, never executed.
const ffmpegCommand = "ffmpeg -framerate 30 -pattern_type glob -i '*.png' -c:v libx264 -pix_fmt yuv420p out.mp4"

// options holds the parsed command line
type options struct {
	config    renderer.AnimationConfig
	sceneName string
	outputDir string
	verify    bool
	help      bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		opts.help = true
	} else if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	// Show help if requested
	if opts.help {
		printHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet registers every command line flag, writing parsed values into opts
func newFlagSet(opts *options, mode *string) *flag.FlagSet {
	defaults := renderer.DefaultAnimationConfig()

	fs := flag.NewFlagSet("sphere-animation", flag.ContinueOnError)
	fs.Usage = func() {} // main prints its own help
	fs.IntVar(&opts.config.Start, "start", defaults.Start, "First frame index (inclusive)")
	fs.IntVar(&opts.config.End, "end", defaults.End, "Last frame index (inclusive)")
	fs.IntVar(&opts.config.Width, "width", defaults.Width, "Frame width in pixels")
	fs.IntVar(&opts.config.Height, "height", defaults.Height, "Frame height in pixels")
	fs.IntVar(&opts.config.MaxConcurrency, "max-concurrency", defaults.MaxConcurrency, "Frames rendered at the same time")
	fs.IntVar(&opts.config.Render.NumWorkers, "tile-workers", defaults.Render.NumWorkers, "Tiles rendered in parallel within a frame")
	fs.IntVar(&opts.config.Render.TileSize, "tile-size", defaults.Render.TileSize, "Tile size in pixels")
	fs.StringVar(mode, "scheduler", string(defaults.Mode), "Scheduler: 'batch' or 'pool'")
	fs.StringVar(&opts.sceneName, "scene", scene.DefaultSceneName, "Scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.outputDir, "output", "output", "Base output directory")
	fs.BoolVar(&opts.verify, "verify", false, "Read back the first written frame after rendering")
	fs.BoolVar(&opts.help, "help", false, "Show help information")
	return fs
}

// parseFlags reads the command line into options, starting from the default config
func parseFlags(args []string) (options, error) {
	opts := options{config: renderer.DefaultAnimationConfig()}
	var mode string

	fs := newFlagSet(&opts, &mode)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.config.Mode = renderer.SchedulerMode(mode)
	return opts, nil
}

func printHelp() {
	fmt.Println("Sphere Animation Renderer")
	fmt.Println("Usage: sphere-animation [options]")
	fmt.Println()
	fmt.Println("Options:")
	var mode string
	fs := newFlagSet(&options{}, &mode)
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Printf("  %-8s - %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Frames are saved to <output>/<scene>/renderNNN.png")
	fmt.Println("Assemble them into a video with:")
	fmt.Printf("  %s\n", ffmpegCommand)
}

// run renders the whole animation described by opts
func run(ctx context.Context, opts options) error {
	generate, err := createGenerator(opts.sceneName, opts.config.Width, opts.config.Height)
	if err != nil {
		return err
	}

	outputDir := createOutputDir(opts.outputDir, opts.sceneName)
	writer, err := output.NewPNGWriter(outputDir)
	if err != nil {
		return err
	}

	fmt.Printf("Starting sphere animation (%s)...\n", scene.DisplayName(sceneID(opts.sceneName)))

	scheduler, err := renderer.NewScheduler(opts.config, generate, writer, renderer.NewDefaultLogger())
	if err != nil {
		return err
	}

	stats, err := scheduler.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Rendered %d frames in %v (%d batches, peak %d in flight)\n",
		stats.FramesWritten, stats.Elapsed, stats.Batches, stats.PeakInFlight)
	fmt.Printf("Frames saved in %s\n", outputDir)

	if opts.verify {
		if err := verifyFrame(writer.Path(opts.config.Start), opts.config.Width, opts.config.Height); err != nil {
			return err
		}
	}

	fmt.Println("To assemble the video, run in the output directory:")
	fmt.Printf("  %s\n", ffmpegCommand)
	return nil
}

// createGenerator adapts a registered scene to the scheduler's generator shape
func createGenerator(sceneName string, width, height int) (renderer.SceneGenerator, error) {
	gen, err := scene.Lookup(sceneName)
	if err != nil {
		return nil, err
	}
	return func(frame int) (renderer.Scene, error) {
		s, err := gen(frame, width, height)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, nil
}

// createOutputDir returns the per-scene output directory under base
func createOutputDir(base, sceneName string) string {
	return filepath.Join(base, sceneID(sceneName))
}

// sceneID normalizes a scene name the way scene.Lookup does
func sceneID(sceneName string) string {
	id := strings.ToLower(strings.TrimSpace(sceneName))
	if id == "" {
		return scene.DefaultSceneName
	}
	return id
}

// verifyFrame loads a written frame back and checks its size
func verifyFrame(path string, width, height int) error {
	img, err := output.LoadFrame(path)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	if bounds.Dx() != width || bounds.Dy() != height {
		return fmt.Errorf("%s: expected %dx%d, got %dx%d", path, width, height, bounds.Dx(), bounds.Dy())
	}
	fmt.Printf("Verified %s (average luminance %.3f)\n", path, renderer.CalculateAverageLuminance(img))
	return nil
}
