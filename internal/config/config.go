package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the packaging pipeline settings.
type Config struct {
	// EntryScript is the application's main source file handed to the bundler.
	EntryScript string `yaml:"entry_script"`
	// AppName is the name of the produced executable.
	AppName string `yaml:"app_name"`
	// Icon is an optional icon resource passed to the bundler when present.
	Icon string `yaml:"icon"`
	// Windowed disables the console window of the produced executable.
	Windowed bool `yaml:"windowed"`
	// Bundler is the external bundling tool invoked to produce the artifact.
	Bundler string `yaml:"bundler"`
	// PublishFolder is the fixed directory the final artifact is copied to.
	PublishFolder string `yaml:"publish_folder"`
	// BuildTimeout bounds a single bundler invocation.
	BuildTimeout time.Duration `yaml:"build_timeout"`
}

const (
	// DefaultConfigFilename is the default filename for pipeline settings.
	DefaultConfigFilename = "pdfcsv-packager-settings.yaml"

	// DefaultEntryScript is the bundler input used when none is configured.
	DefaultEntryScript = "app.py"

	// DefaultAppName is the executable name used when none is configured.
	DefaultAppName = "PDFCSVTool"

	// DefaultBundler is the bundling tool used when none is configured.
	DefaultBundler = "pyinstaller"

	// DefaultPublishFolder is where the final artifact lands by default.
	DefaultPublishFolder = "/home/dustin/public_html"

	// DefaultBuildTimeout is the default bound on a bundler invocation.
	DefaultBuildTimeout = 10 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errEntryScriptRequired is returned when the entry script is missing.
	errEntryScriptRequired = errors.New("entry script must be provided")
	// errAppNameRequired is returned when the application name is missing.
	errAppNameRequired = errors.New("application name must be provided")
	// errAppNameHasSeparator is returned when the application name contains path separators.
	errAppNameHasSeparator = errors.New("application name must not contain path separators")
	// errPublishFolderRequired is returned when the publish folder is missing.
	errPublishFolderRequired = errors.New("publish folder must be provided")
)

// Default returns a configuration with every field set to its default.
// The pipeline must run unconditionally with zero arguments and no settings file.
func Default() *Config {
	return &Config{
		EntryScript:   DefaultEntryScript,
		AppName:       DefaultAppName,
		Windowed:      true,
		Bundler:       DefaultBundler,
		PublishFolder: DefaultPublishFolder,
		BuildTimeout:  DefaultBuildTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing settings file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.EntryScript) == "" {
		return errEntryScriptRequired
	}

	if strings.TrimSpace(cfg.AppName) == "" {
		return errAppNameRequired
	}

	// The artifact is always written as dist/<app_name>.
	if strings.ContainsAny(cfg.AppName, `/\`) {
		return fmt.Errorf("%q: %w", cfg.AppName, errAppNameHasSeparator)
	}

	if strings.TrimSpace(cfg.PublishFolder) == "" {
		return errPublishFolderRequired
	}

	// Set default bundler if not specified
	if strings.TrimSpace(cfg.Bundler) == "" {
		cfg.Bundler = DefaultBundler
	}

	// Set default timeout if not specified
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}

	return nil
}
