package bundler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestArgs verifies flag assembly for windowed and console builds.
func TestArgs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	inv := &Invocation{
		Tool:        "pyinstaller",
		EntryScript: "app.py",
		AppName:     "PDFCSVTool",
		Windowed:    true,
	}
	require.Equal(t,
		[]string{"--noconfirm", "--onefile", "--windowed", "--name", "PDFCSVTool", "app.py"},
		inv.Args(ctx))

	inv.Windowed = false
	require.Equal(t,
		[]string{"--noconfirm", "--onefile", "--name", "PDFCSVTool", "app.py"},
		inv.Args(ctx))
}

// TestArgsIcon ensures the icon flag appears only when the resource exists.
func TestArgsIcon(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	icon := filepath.Join(dir, "icon.ico")
	require.NoError(t, os.WriteFile(icon, []byte{0}, 0o600))

	inv := &Invocation{
		Tool:        "pyinstaller",
		EntryScript: "app.py",
		AppName:     "PDFCSVTool",
		Icon:        icon,
	}
	require.Contains(t, inv.Args(ctx), "--icon")

	inv.Icon = filepath.Join(dir, "missing.ico")
	require.NotContains(t, inv.Args(ctx), "--icon")
}

// TestRunMissingEntry ensures the pipeline halts before the tool is invoked.
func TestRunMissingEntry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	inv := &Invocation{
		Tool:        writeStubTool(t, dir),
		EntryScript: filepath.Join(dir, "missing.py"),
		AppName:     "PDFCSVTool",
	}

	err := Run(context.Background(), inv)
	require.ErrorIs(t, err, errEntryMissing)
}

// TestRunStubTool runs a stand-in bundler end to end.
func TestRunStubTool(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	entry := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(entry, []byte("print('ok')\n"), 0o600))

	inv := &Invocation{
		Tool:        writeStubTool(t, dir),
		EntryScript: entry,
		AppName:     "PDFCSVTool",
		Windowed:    true,
		Timeout:     5 * time.Second,
	}

	require.NoError(t, Run(context.Background(), inv))
}

// TestRunUnknownTool ensures a tool missing from PATH fails fast.
func TestRunUnknownTool(t *testing.T) {
	t.Parallel()

	inv := &Invocation{
		Tool:        "definitely-not-a-real-bundler",
		EntryScript: "app.py",
		AppName:     "PDFCSVTool",
	}

	err := Run(context.Background(), inv)
	require.Error(t, err)
}

// writeStubTool creates an executable script that exits successfully.
func writeStubTool(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "stub-bundler")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	return path
}
