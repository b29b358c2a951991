package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultSceneName is the scene rendered when none is requested
const DefaultSceneName = "spheres"

// ErrUnknownScene is returned by Lookup for names that are not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          string    // Name used on the command line
	DisplayName string    // Human readable name
	Description string    // Optional description
	Animated    bool      // Whether the scene changes from frame to frame
	Generator   Generator // Builds the scene for a frame
}

var builtInScenes = []SceneInfo{
	{
		ID:          "spheres",
		DisplayName: "Three Spheres",
		Description: "Yellow, red and blue spheres drifting under a moving light",
		Animated:    true,
		Generator:   NewThreeSphereScene,
	},
	{
		ID:          "single",
		DisplayName: "Single Sphere",
		Description: "One blue sphere swaying under a moving light",
		Animated:    true,
		Generator:   NewSingleSphereScene,
	},
	{
		ID:          "static",
		DisplayName: "Static Sphere",
		Description: "Centered sphere of radius 100 lit head-on",
		Animated:    false,
		Generator:   NewStaticSphereScene,
	},
}

// ListScenes returns every built-in scene sorted by ID
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, len(builtInScenes))
	copy(scenes, builtInScenes)
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// Names returns the IDs of every built-in scene, sorted
func Names() []string {
	var names []string
	for _, info := range ListScenes() {
		names = append(names, info.ID)
	}
	return names
}

// Lookup returns the generator registered under name. An empty name selects
// the default scene; matching ignores case and surrounding spaces.
func Lookup(name string) (Generator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultSceneName
	}

	for _, info := range builtInScenes {
		if info.ID == name {
			return info.Generator, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// titleCase converts an identifier-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}

// DisplayName returns the human readable name for a scene ID, falling back to
// a title-cased ID for unregistered names
func DisplayName(name string) string {
	for _, info := range builtInScenes {
		if info.ID == name {
			return info.DisplayName
		}
	}
	return titleCase(name)
}
