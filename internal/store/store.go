// Package store defines the durable record store the processor writes its
// checkpoints to. Implementations must provide merge-update semantics: a
// patch that does not mention a field leaves the stored value unchanged.
package store

import (
	"context"

	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

// RecordStore persists one WorkItem per document id.
type RecordStore interface {
	// Get returns the stored item, or (nil, nil) when no record exists.
	Get(ctx context.Context, id string) (*entity.WorkItem, error)

	// MergeSet applies the patch to the record for id, creating it on first
	// write. CreatedAt is populated once, UpdatedAt on every write.
	MergeSet(ctx context.Context, id string, patch entity.WorkItemPatch) error

	// List returns all stored items, newest first.
	List(ctx context.Context) ([]*entity.WorkItem, error)
}
