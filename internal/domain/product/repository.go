package product

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists products. Reads never fail: lookup errors are logged by
// the implementation and reported as absence. Writes return their errors.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, bool)
	FindAll(ctx context.Context) []*Product
	Save(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
