package index

import "github.com/starford/laguz/internal/models"

// WindowIndex defines the interface for window catalog operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type WindowIndex interface {
	UpsertWindow(row WindowRow) error
	DeleteWindow(path string) error
	GetWindow(path string) (*WindowRow, error)
	GetChecksum(path string) (string, error)
	PathByUUID(uuid string) (string, error)
	ListWindows(limit, offset int, tag, sort string) ([]WindowRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Sources() ([]*models.WindowSource, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies WindowIndex at compile time.
var _ WindowIndex = (*DB)(nil)
