package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil config.
	err := Validate(nil)
	require.Error(t, err)

	// Missing entry script.
	err = Validate(new(Config))
	require.Error(t, err)

	// App name with path separator.
	cfg := Default()
	cfg.AppName = "dist/PDFCSVTool"

	err = Validate(cfg)
	require.Error(t, err)

	// Defaults are valid and fill in bundler and timeout.
	cfg = Default()
	cfg.Bundler = ""
	cfg.BuildTimeout = 0

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultBundler, cfg.Bundler)
	require.Equal(t, DefaultBuildTimeout, cfg.BuildTimeout)
}

// TestLoadMissingFile ensures a missing settings file yields defaults, not an error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-settings.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := Default()
	cfg.EntryScript = "tool.py"
	cfg.Icon = "icon.ico"
	cfg.PublishFolder = filepath.Join(dir, "public_html")
	cfg.BuildTimeout = time.Minute

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
