package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog row. ID is uuid.Nil until the first save assigns one;
// Created is set once and never rewritten by updates.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Created     time.Time
}

func (p *Product) IsNew() bool {
	return p.ID == uuid.Nil
}
