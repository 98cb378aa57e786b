package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Workspace roots; the first one is where build commands run
	WorkspaceRoots []string `yaml:"workspace_roots"`

	// Discovery settings
	PathsToIgnore []string `yaml:"paths_to_ignore"`
	ExcludeGlobs  []string `yaml:"exclude_globs"`
	Extensions    []string `yaml:"extensions"`
	NameMarker    string   `yaml:"name_marker"`
	Extractor     string   `yaml:"extractor"`

	// Build tool settings
	BuildCommand  string   `yaml:"build_command"`
	PreferWrapper bool     `yaml:"prefer_wrapper"`
	Manifests     []string `yaml:"manifests"`
	Shell         string   `yaml:"shell"`

	// Output settings
	OutputJSONFile string `yaml:"output_json_file"`
	OutputJSONDir  string `yaml:"output_json_dir"`

	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	Verbose    bool
	Workspace  string
	NameFilter string
	TestCases  bool
	Exclude    []string
	Extractor  string
	NoWatch    bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		NameMarker:     DefaultNameMarker,
		Extractor:      DefaultExtractor,
		BuildCommand:   DefaultBuildCommand,
		PreferWrapper:  true,
		Shell:          DefaultShell,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		WatchDebounce:  DefaultWatchDebounce,
	}
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	cfg.Extensions = append([]string(nil), DefaultExtensions...)
	cfg.Manifests = append([]string(nil), DefaultManifests...)
	return cfg
}

// Load builds a config for the given workspace root: defaults, then <root>/.ktp.yaml,
// then environment (after loading <root>/.env), then flags.
func Load(root string, flags Flags) (*Config, error) {
	cfg := New()

	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve workspace %s: %w", root, err)
		}
		cfg.WorkspaceRoots = []string{abs}

		if err := cfg.loadFile(filepath.Join(abs, ConfigFileName)); err != nil {
			return nil, err
		}

		// .env file might not exist, that's okay - use environment variables
		_ = godotenv.Load(filepath.Join(abs, ".env"))
	}

	cfg.applyEnv()
	cfg.applyFlags(flags)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	roots := c.WorkspaceRoots
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	// relative roots in the file are relative to the file's directory
	base := filepath.Dir(path)
	for i, r := range c.WorkspaceRoots {
		if !filepath.IsAbs(r) {
			c.WorkspaceRoots[i] = filepath.Join(base, r)
		}
	}
	if len(c.WorkspaceRoots) == 0 {
		c.WorkspaceRoots = roots
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("KTP_BUILD_COMMAND"); v != "" {
		c.BuildCommand = v
	}
	if v := os.Getenv("KTP_SHELL"); v != "" {
		c.Shell = v
	}
	if v := os.Getenv("KTP_EXTRACTOR"); v != "" {
		c.Extractor = v
	}
}

func (c *Config) applyFlags(flags Flags) {
	c.Flags = flags
	if flags.Extractor != "" {
		c.Extractor = flags.Extractor
	}
}

// Validate reports settings that cannot work
func (c *Config) Validate() error {
	switch c.Extractor {
	case ExtractorHeuristic, ExtractorSyntax:
	default:
		return fmt.Errorf("unknown extractor %q (want %s or %s)", c.Extractor, ExtractorHeuristic, ExtractorSyntax)
	}
	if len(c.Extensions) == 0 {
		return errors.New("no source extensions configured")
	}
	if c.BuildCommand == "" {
		return errors.New("build command is empty")
	}
	return nil
}

// WorkspaceRoot returns the root build commands run in, or "" when no workspace is open
func (c *Config) WorkspaceRoot() string {
	if len(c.WorkspaceRoots) == 0 {
		return ""
	}
	return c.WorkspaceRoots[0]
}

// GetOutputPath returns the full path to the output JSON file under the workspace root
func (c *Config) GetOutputPath() string {
	return filepath.Join(c.WorkspaceRoot(), c.OutputJSONDir, c.OutputJSONFile)
}
