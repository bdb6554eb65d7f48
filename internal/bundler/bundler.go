package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/dustinops/pdfcsv-packager/internal/logger"
)

var (
	errToolNotSet    = errors.New("bundler tool is not set")
	errEntryMissing  = errors.New("entry script not found")
	errEntryNotFile  = errors.New("entry script is not a regular file")
	errNameRequired  = errors.New("application name must be provided")
	errEntryRequired = errors.New("entry script must be provided")
)

// Invocation describes a single bundler run.
type Invocation struct {
	// Tool is the bundler executable name or path (e.g. pyinstaller).
	Tool string
	// EntryScript is the application's main source file.
	EntryScript string
	// AppName names the produced executable.
	AppName string
	// Windowed disables the console window of the produced executable.
	Windowed bool
	// Icon is an optional icon resource; skipped with a warning when absent.
	Icon string
	// Timeout bounds the bundler process. Zero means no bound.
	Timeout time.Duration
}

// Args assembles the bundler argument list for this invocation.
// The icon flag is only included when the resource actually exists.
func (inv *Invocation) Args(ctx context.Context) []string {
	args := []string{"--noconfirm", "--onefile"}

	if inv.Windowed {
		args = append(args, "--windowed")
	}

	args = append(args, "--name", inv.AppName)

	if inv.Icon != "" {
		if _, err := os.Stat(inv.Icon); err != nil {
			// Optional input: the build proceeds without it.
			logger.WarnKV(ctx, "Icon resource not found, building without it", "icon", inv.Icon)
		} else {
			args = append(args, "--icon", inv.Icon)
		}
	}

	return append(args, inv.EntryScript)
}

// Run validates the invocation and executes the bundler, streaming its
// output through unchanged. A non-zero bundler exit is a hard failure.
func Run(ctx context.Context, inv *Invocation) error {
	if err := inv.validate(); err != nil {
		return err
	}

	toolPath, err := exec.LookPath(inv.Tool)
	if err != nil {
		return fmt.Errorf("locate bundler: %w", err)
	}

	// Fail before invoking the tool so a missing entry halts the pipeline early.
	info, err := os.Stat(inv.EntryScript)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", inv.EntryScript, errEntryMissing)
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", inv.EntryScript, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s: %w", inv.EntryScript, errEntryNotFile)
	}

	cmdCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc

		cmdCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	args := inv.Args(ctx)
	logger.InfoKV(ctx, "Invoking bundler", "tool", toolPath, "args", args)

	cmd := exec.CommandContext(cmdCtx, toolPath, args...)
	// The user sees exactly what the bundler emitted; no translation layer.
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err = cmd.Run(); err != nil {
		return fmt.Errorf("bundler %s: %w", inv.Tool, err)
	}

	return nil
}

// validate checks the invocation for required fields.
func (inv *Invocation) validate() error {
	if inv.Tool == "" {
		return errToolNotSet
	}

	if inv.EntryScript == "" {
		return errEntryRequired
	}

	if inv.AppName == "" {
		return errNameRequired
	}

	return nil
}
