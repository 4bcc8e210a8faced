package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input carries the client-supplied fields of a product. Any field may be
// nil; ValidateInput decides whether the input is acceptable.
type Input struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
}

type View struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
}
