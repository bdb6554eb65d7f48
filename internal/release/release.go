package release

import (
	"crypto"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dustinops/pdfcsv-packager/internal/version"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// ManifestFilename stores the release description published next to the artifact.
	ManifestFilename = "pdfcsv-release.yaml"

	// MarkerFilename marks that a pipeline run is in progress to avoid parallel builds.
	MarkerFilename = "pdfcsv-build-marker.bin"

	// HistoryFilename stores the local build history.
	HistoryFilename = "pdfcsv-build-history.json"

	// DistFolder is the conventional bundler output directory.
	DistFolder = "dist"

	// DefaultFileMode is used when producing artifacts for distribution.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate artifact hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

// Description contains metadata about a published build.
type Description struct {
	// VersionNumber is the semantic version of the pipeline that produced the artifact.
	VersionNumber string `yaml:"version"`
	// AppName is the logical application name.
	AppName string `yaml:"app_name"`
	// Artifact is the published executable's filename.
	Artifact string `yaml:"artifact"`
	// Checksum is the base64-encoded SHA-512 checksum of the artifact.
	Checksum string `yaml:"checksum"`
	// BuiltAt is the UTC timestamp of the build.
	BuiltAt time.Time `yaml:"built_at"`
	// BuiltBy identifies the machine and user that ran the pipeline.
	BuiltBy Builder `yaml:"built_by"`
}

// Builder identifies who produced a build, for the manifest and history audit trail.
type Builder struct {
	// Hostname of the machine that ran the pipeline.
	Hostname string `yaml:"hostname" json:"hostname"`
	// Username of the account that ran the pipeline.
	Username string `yaml:"username" json:"username"`
}

// NewDescription produces a Description for the given artifact.
func NewDescription(appName, artifact string) *Description {
	return &Description{
		VersionNumber: version.Short(),
		AppName:       appName,
		Artifact:      artifact,
		BuiltAt:       time.Now().UTC(),
	}
}

// Save writes the manifest as YAML to the provided path.
func (d *Description) Save(path string) error {
	contents, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), contents, DefaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// LoadDescription reads a manifest back from disk.
func LoadDescription(path string) (*Description, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var desc Description
	if err = yaml.Unmarshal(contents, &desc); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	return &desc, nil
}

// DetectBuilder gathers host and user information for the audit trail.
func DetectBuilder() (Builder, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return Builder{}, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return Builder{}, fmt.Errorf("current user: %w", err)
	}

	return Builder{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// ArtifactName returns the executable filename the bundler produces for appName.
func ArtifactName(appName string) string {
	return appName + getExecutableExtension()
}

// ArtifactPath returns the conventional bundler output path for appName.
func ArtifactPath(appName string) string {
	return filepath.Join(DistFolder, ArtifactName(appName))
}

// getExecutableExtension returns ".exe" on Windows and "" elsewhere.
func getExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}
