package packager

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/dustinops/pdfcsv-packager/internal/bundler"
	"github.com/dustinops/pdfcsv-packager/internal/config"
	"github.com/dustinops/pdfcsv-packager/internal/logger"
	"github.com/dustinops/pdfcsv-packager/internal/release"
	"github.com/dustinops/pdfcsv-packager/internal/repository/history"
	"github.com/dustinops/pdfcsv-packager/internal/version"
)

var (
	errBuildAlreadyRunning = errors.New("another build is already running")
	errArtifactMissing     = errors.New("bundler finished but the artifact was not produced")
	errPublishFolderAbsent = errors.New("publish folder does not exist")
	errPublishFolderNotDir = errors.New("publish folder is not a directory")
)

// cleanTargets are the bundler leftovers removed by the clean step.
var cleanTargets = []string{"build", release.DistFolder, "__pycache__"}

// Options contains inputs for the packager entry points.
// Non-empty override fields take precedence over the settings file.
type Options struct {
	// ConfigPath is an optional path to the settings YAML file.
	ConfigPath string
	// EntryScript overrides the configured bundler input.
	EntryScript string
	// AppName overrides the configured executable name.
	AppName string
	// PublishFolder overrides the configured publish destination.
	PublishFolder string
	// Bundler overrides the configured bundling tool.
	Bundler string
}

// pipeline holds the state for a single clean→build→publish execution.
// It is unexported—callers should use Run and friends, which encapsulate
// setup, the concurrent-run guard, and history recording.
type pipeline struct {
	// cfg holds the effective settings for this run.
	cfg *config.Config
	// historyRepo records the outcome of every full run.
	historyRepo history.Repository
	// builder identifies who is running the pipeline.
	builder release.Builder
}

// Run executes the full clean→build→publish sequence.
// Every step is fatal-on-error: no retry, no rollback.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pdfcsv-packager")

	p, cleanup, err := newPipeline(ctx, opts, true)
	if err != nil {
		return err
	}

	defer cleanup(ctx)

	startedAt := time.Now().UTC()

	desc, err := p.runAll(ctx)
	p.recordOutcome(ctx, startedAt, desc, err)

	if err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// RunClean removes prior build artifacts and nothing else.
func RunClean(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pdfcsv-packager")

	p, cleanup, err := newPipeline(ctx, opts, false)
	if err != nil {
		return err
	}

	defer cleanup(ctx)

	return p.clean(ctx)
}

// RunBuild performs clean and build, leaving the artifact under dist.
func RunBuild(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pdfcsv-packager")

	p, cleanup, err := newPipeline(ctx, opts, true)
	if err != nil {
		return err
	}

	defer cleanup(ctx)

	if err = p.clean(ctx); err != nil {
		return err
	}

	return p.build(ctx)
}

// RunPublish copies an already-built artifact to the publish folder.
func RunPublish(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pdfcsv-packager")

	p, cleanup, err := newPipeline(ctx, opts, false)
	if err != nil {
		return err
	}

	defer cleanup(ctx)

	_, err = p.publish(ctx)

	return err
}

// newPipeline loads settings, applies overrides, and optionally takes the
// concurrent-run guard. The returned cleanup must run when the pipeline is done.
func newPipeline(ctx context.Context, opts *Options, guard bool) (*pipeline, func(context.Context), error) {
	noop := func(context.Context) {}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, noop, fmt.Errorf("load configuration: %w", err)
	}

	applyOverrides(cfg, opts)

	if err = config.Validate(cfg); err != nil {
		return nil, noop, err
	}

	builder, err := release.DetectBuilder()
	if err != nil {
		return nil, noop, err
	}

	p := &pipeline{
		cfg:         cfg,
		historyRepo: history.NewFileRepository(release.HistoryFilename),
		builder:     builder,
	}

	if !guard {
		return p, noop, nil
	}

	if IsBuildRunningNow(ctx) {
		return nil, noop, errBuildAlreadyRunning
	}

	marker, err := os.Create(release.MarkerFilename)
	if err != nil {
		return nil, noop, fmt.Errorf("create build marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, noop, err
	}

	return p, removeMarker, nil
}

// applyOverrides copies non-empty option fields over the loaded settings.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.EntryScript != "" {
		cfg.EntryScript = opts.EntryScript
	}

	if opts.AppName != "" {
		cfg.AppName = opts.AppName
	}

	if opts.PublishFolder != "" {
		cfg.PublishFolder = opts.PublishFolder
	}

	if opts.Bundler != "" {
		cfg.Bundler = opts.Bundler
	}
}

// runAll executes the three steps in strict sequence.
func (p *pipeline) runAll(ctx context.Context) (*release.Description, error) {
	if err := p.clean(ctx); err != nil {
		return nil, err
	}

	if err := p.build(ctx); err != nil {
		return nil, err
	}

	return p.publish(ctx)
}

// clean removes bundler leftovers from the working directory.
// It is a no-op when nothing exists to remove.
func (p *pipeline) clean(ctx context.Context) error {
	logger.Info(ctx, "Removing prior build artifacts")

	for _, target := range cleanTargets {
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("remove %s: %w", target, err)
		}
	}

	specFiles, err := filepath.Glob("*.spec")
	if err != nil {
		return fmt.Errorf("glob spec files: %w", err)
	}

	for _, specFile := range specFiles {
		logger.DebugKV(ctx, "Removing leftover spec file", "path", specFile)

		if err = os.Remove(specFile); err != nil {
			return fmt.Errorf("remove %s: %w", specFile, err)
		}
	}

	return nil
}

// build invokes the bundler and verifies the artifact appeared where expected.
func (p *pipeline) build(ctx context.Context) error {
	logger.InfoKV(ctx, "Building artifact",
		"entry_script", p.cfg.EntryScript, "app_name", p.cfg.AppName)

	invocation := &bundler.Invocation{
		Tool:        p.cfg.Bundler,
		EntryScript: p.cfg.EntryScript,
		AppName:     p.cfg.AppName,
		Windowed:    p.cfg.Windowed,
		Icon:        p.cfg.Icon,
		Timeout:     p.cfg.BuildTimeout,
	}

	if err := bundler.Run(ctx, invocation); err != nil {
		return err
	}

	artifact := release.ArtifactPath(p.cfg.AppName)
	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("%s: %w", artifact, errArtifactMissing)
	}

	logger.InfoKV(ctx, "Artifact built", "path", artifact)

	return nil
}

// publish applies the built artifact to the publish folder atomically with
// checksum verification and writes the release manifest next to it.
// The publish folder is never created here: a missing destination is a failure.
func (p *pipeline) publish(ctx context.Context) (*release.Description, error) {
	artifact := release.ArtifactPath(p.cfg.AppName)

	data, err := os.ReadFile(artifact)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	checksum, err := release.GetFileChecksum(artifact)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(p.cfg.PublishFolder)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p.cfg.PublishFolder, errPublishFolderAbsent)
	} else if err != nil {
		return nil, fmt.Errorf("stat publish folder: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", p.cfg.PublishFolder, errPublishFolderNotDir)
	}

	target := filepath.Join(p.cfg.PublishFolder, release.ArtifactName(p.cfg.AppName))

	if _, err = os.Stat(target); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(target); err != nil {
			return nil, fmt.Errorf("create publish target: %w", err)
		}
	}

	logger.InfoKV(ctx, "Publishing artifact", "target", target)

	applyOptions := goupdate.Options{
		TargetPath: target,
		TargetMode: release.DefaultFileMode,
		Checksum:   checksum,
		Hash:       release.DefaultChecksumFunction,
	}
	if err = goupdate.Apply(bytes.NewReader(data), applyOptions); err != nil {
		return nil, fmt.Errorf("publish artifact: %w", err)
	}

	oldTarget := target + ".old"
	if _, err = os.Stat(oldTarget); err == nil {
		_ = os.Remove(oldTarget)
	}

	desc := release.NewDescription(p.cfg.AppName, release.ArtifactName(p.cfg.AppName))
	desc.Checksum = base64.StdEncoding.EncodeToString(checksum)
	desc.BuiltBy = p.builder

	manifestPath := filepath.Join(p.cfg.PublishFolder, release.ManifestFilename)
	if err = desc.Save(manifestPath); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Published release", "manifest", manifestPath, "version", desc.VersionNumber)

	return desc, nil
}

// recordOutcome appends a history record for the run. History is an audit
// trail: failures to write it are logged, never escalated.
func (p *pipeline) recordOutcome(ctx context.Context, startedAt time.Time, desc *release.Description, runErr error) {
	record := &history.Record{
		Version:   version.Short(),
		AppName:   p.cfg.AppName,
		Artifact:  release.ArtifactName(p.cfg.AppName),
		BuiltBy:   p.builder,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   runErr == nil,
	}

	if desc != nil {
		record.Checksum = desc.Checksum
	}

	if runErr != nil {
		record.Error = runErr.Error()
	}

	if err := p.historyRepo.Append(ctx, record); err != nil {
		logger.WarnKV(ctx, "Unable to record build history", "error", err)
	}
}

// removeMarker deletes the concurrent-run marker, best-effort.
func removeMarker(ctx context.Context) {
	if _, err := os.Stat(release.MarkerFilename); err == nil {
		if err = os.Remove(release.MarkerFilename); err != nil {
			logger.WarnKV(ctx, "Unable to remove build marker", "error", err)
		}
	}
}
