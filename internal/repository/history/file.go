package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dustinops/pdfcsv-packager/internal/config"
	"github.com/dustinops/pdfcsv-packager/internal/release"
)

// MaxRecords caps the history file at the most recent builds.
const MaxRecords = 100

// Record describes one pipeline run, successful or not.
type Record struct {
	// ID is a unique identifier assigned when the record is appended.
	ID string `json:"id"`
	// Version is the pipeline version that produced the build.
	Version string `json:"version"`
	// AppName is the logical application name.
	AppName string `json:"app_name"`
	// Artifact is the published executable's filename.
	Artifact string `json:"artifact"`
	// Checksum is the base64-encoded SHA-512 checksum of the artifact.
	Checksum string `json:"checksum,omitempty"`
	// BuiltBy identifies the machine and user that ran the pipeline.
	BuiltBy release.Builder `json:"built_by"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
	// Success reports whether the full pipeline completed.
	Success bool `json:"success"`
	// Error holds the failure text for unsuccessful runs.
	Error string `json:"error,omitempty"`
}

// Repository defines persistence operations for the build history.
type Repository interface {
	Append(ctx context.Context, record *Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// FileRepository persists the build history to a JSON file on disk.
// Newest records come last in the file.
type FileRepository struct {
	// path is the filesystem location of the JSON history file.
	path string
	// mu protects concurrent access to the history file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Append stores a record, assigning it an ID and trimming old entries.
func (r *FileRepository) Append(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	records = append(records, *record)
	if len(records) > MaxRecords {
		records = records[len(records)-MaxRecords:]
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}

	return nil
}

// Recent returns up to limit records, newest first.
// A missing history file yields an empty slice.
func (r *FileRepository) Recent(_ context.Context, limit int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	result := make([]Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}

		result = append(result, records[i])
	}

	return result, nil
}

// load reads the history from disk; a missing file is an empty history.
func (r *FileRepository) load() ([]Record, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read history file: %w", err)
	}

	var records []Record
	if err = json.Unmarshal(contents, &records); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}

	return records, nil
}
