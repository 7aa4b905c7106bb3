package ports

import (
	"context"
	"errors"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

var ErrSnapshotMiss = errors.New("snapshot not found")

// SnapshotStore keeps the last successfully fetched list of a resource as
// raw JSON so the catalog can be shown before the backends answer.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, resource domain.Resource, data []byte) error
	LoadSnapshot(ctx context.Context, resource domain.Resource) ([]byte, error)
}
