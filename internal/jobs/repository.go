package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// collectionName is the collections-table row holding the job list.
const collectionName = "jobs"

// Repository defines the interface for job persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
//
// The whole job list is saved as one document; there is no per-job
// row. Collections are small and saved after every mutation.
type Repository interface {
	Load(ctx context.Context) ([]Job, error)
	Save(ctx context.Context, jobs []Job) error
}

// SQLiteRepository implements Repository using a collections-table row.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Load reads the job list document. A missing row is an empty list,
// not an error (first run).
func (r *SQLiteRepository) Load(ctx context.Context) ([]Job, error) {
	var document string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM collections WHERE name = ?", collectionName,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading jobs collection: %w", err)
	}

	var jobs []Job
	if err := json.Unmarshal([]byte(document), &jobs); err != nil {
		return nil, fmt.Errorf("decoding jobs collection: %w", err)
	}
	return jobs, nil
}

// Save writes the whole job list document, replacing any prior version.
func (r *SQLiteRepository) Save(ctx context.Context, jobs []Job) error {
	if jobs == nil {
		jobs = []Job{}
	}
	document, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encoding jobs collection: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO collections (name, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`, collectionName, string(document), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving jobs collection: %w", err)
	}
	return nil
}
