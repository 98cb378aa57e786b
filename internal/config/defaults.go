package config

import "time"

const (
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory, relative to the workspace root
	DefaultOutputJSONDir = ".ktp"
	// DefaultBuildCommand is the build tool executable
	DefaultBuildCommand = "gradle"
	// DefaultShell runs the interactive session build commands are sent to
	DefaultShell = "sh"
	// DefaultNameMarker must appear in candidate file and class names
	DefaultNameMarker = "Test"
	// DefaultExtractor selects the regex based declaration scanner
	DefaultExtractor = ExtractorHeuristic
	// DefaultWatchDebounce coalesces bursts of events for one file
	DefaultWatchDebounce = 100 * time.Millisecond
	// ConfigFileName is looked up in the workspace root
	ConfigFileName = ".ktp.yaml"
)

const (
	ExtractorHeuristic = "heuristic"
	ExtractorSyntax    = "syntax"
)

// DefaultPathsToIgnore are build output directories pruned while scanning for tests
var DefaultPathsToIgnore = []string{
	"build",
	"out",
	"target",
	".gradle",
}

// DefaultExtensions are the recognized source file extensions
var DefaultExtensions = []string{".kt", ".kts"}

// DefaultManifests mark a workspace root as a Gradle project
var DefaultManifests = []string{"build.gradle", "build.gradle.kts"}
