package draft

import (
	"context"

	"github.com/google/uuid"
)

// DraftRepository defines the persistence contract for booking drafts.
type DraftRepository interface {
	// FindByID retrieves a draft by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Draft, error)

	// FindActiveByUserID retrieves a user's unfinished drafts with pagination.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Draft, int64, error)

	// ListAll retrieves all drafts with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Draft, int64, error)

	// CountByStep returns draft counts grouped by step name (admin funnel view).
	CountByStep(ctx context.Context) (map[string]int64, error)

	// Save persists a new draft.
	Save(ctx context.Context, d *Draft) error

	// Update persists changes to an existing draft with optimistic locking.
	Update(ctx context.Context, d *Draft) error

	// Delete removes a draft.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteActiveByUserID removes all of a user's unfinished drafts and
	// returns how many were removed. Finalized drafts are receipts and stay.
	DeleteActiveByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
