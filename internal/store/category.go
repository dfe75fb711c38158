package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
)

// CategoryStore defines the read side of categories used when creating and
// displaying notes, plus Create for seeding.
// Version: 1.0
type CategoryStore interface {
	// Create saves a new category.
	// Returns ErrDuplicate if the owner already has a category with that name.
	Create(ctx context.Context, category *domain.Category) error

	// GetByOwner retrieves a category owned by userID.
	// Returns ErrCategoryNotFound if it does not exist for the owner.
	GetByOwner(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error)

	// ListByOwner returns the owner's categories ordered by name.
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Category, error)

	// WithTx returns a new CategoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
