package packager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/dustinops/pdfcsv-packager/internal/logger"
	"github.com/dustinops/pdfcsv-packager/internal/release"
)

// markerLifetime is the period after which a build marker is considered stale.
const markerLifetime = 30 * time.Second

// IsBuildRunningNow checks presence of the build marker and reclaims it when
// it is stale and no other packager process is alive.
func IsBuildRunningNow(ctx context.Context) bool {
	logger.Debug(ctx, "Checking for the presence of a build marker")

	fileInfo, err := os.Stat(release.MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The build marker is stale, checking for a live packager process")

		if isAnotherPackagerAlive(ctx) {
			return true
		}

		if err = os.Remove(release.MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read build marker: %v", err)

	return false
}

// isAnotherPackagerAlive reports whether a different process with our
// executable name is currently running.
func isAnotherPackagerAlive(ctx context.Context) bool {
	executableName := currentExecutableName()
	if executableName == "" {
		return false
	}

	processList, err := ps.Processes()
	if err != nil {
		logger.Infof(ctx, "Unable to list processes: %v", err)
		// Assume the marker is honest when we cannot tell.
		return true
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executableName {
			return true
		}
	}

	return false
}

// currentExecutableName returns the base name of the running binary.
func currentExecutableName() string {
	executablePath, err := os.Executable()
	if err != nil {
		if len(os.Args) == 0 {
			return ""
		}

		executablePath = os.Args[0]
	}

	return filepath.Base(executablePath)
}
