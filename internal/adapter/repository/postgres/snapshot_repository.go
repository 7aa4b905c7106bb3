package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srgjo27/cinema_client/internal/core/domain"
	"github.com/srgjo27/cinema_client/internal/core/ports"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS catalog_snapshots (
	resource   TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)
`

type SnapshotRepository struct {
	db     *sql.DB
	maxAge time.Duration
	now    func() time.Time
}

// NewSnapshotRepository stores snapshots in catalog_snapshots. Rows older
// than maxAge are treated as missing; zero keeps them forever.
func NewSnapshotRepository(db *sql.DB, maxAge time.Duration) *SnapshotRepository {
	return &SnapshotRepository{db: db, maxAge: maxAge, now: time.Now}
}

func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("failed to create catalog_snapshots: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, resource domain.Resource, data []byte) error {
	query := `
	INSERT INTO catalog_snapshots (resource, payload, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (resource) DO UPDATE
	SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, string(resource), data, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", resource, err)
	}

	return nil
}

func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, resource domain.Resource) ([]byte, error) {
	query := `
	SELECT payload, updated_at
	FROM catalog_snapshots
	WHERE resource = $1
	`

	var (
		payload   []byte
		updatedAt time.Time
	)

	err := r.db.QueryRowContext(ctx, query, string(resource)).Scan(&payload, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrSnapshotMiss
		}
		return nil, fmt.Errorf("failed to load %s snapshot: %w", resource, err)
	}

	if r.maxAge > 0 && r.now().Sub(updatedAt) > r.maxAge {
		return nil, ports.ErrSnapshotMiss
	}

	return payload, nil
}

// PruneSnapshots deletes rows past maxAge and returns how many went.
func (r *SnapshotRepository) PruneSnapshots(ctx context.Context) (int64, error) {
	if r.maxAge <= 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM catalog_snapshots WHERE updated_at < $1`, r.now().Add(-r.maxAge).UTC())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
