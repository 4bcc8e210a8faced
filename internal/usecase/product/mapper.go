package product

import (
	"github.com/shopspring/decimal"

	dom "example.com/product-catalog/internal/domain/product"
	"example.com/product-catalog/internal/pkg/clock"
)

type Mapper struct {
	clock clock.Clock
}

func NewMapper(c clock.Clock) *Mapper {
	if c == nil {
		c = clock.System{}
	}
	return &Mapper{clock: c}
}

// ToEntity builds an unsaved product. Created is stamped here, not at insert time.
func (m *Mapper) ToEntity(in *Input) *dom.Product {
	if in == nil {
		return nil
	}
	return &dom.Product{
		Name:        deref(in.Name),
		Description: deref(in.Description),
		Price:       derefPrice(in.Price),
		Created:     m.clock.Now(),
	}
}

func (m *Mapper) ToView(p *dom.Product) *View {
	if p == nil {
		return nil
	}
	return &View{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	}
}

// Merge overwrites the mutable fields of p from in and returns p itself.
// ID and Created are left as they are.
func (m *Mapper) Merge(p *dom.Product, in *Input) *dom.Product {
	if p == nil || in == nil {
		return nil
	}
	p.Name = deref(in.Name)
	p.Description = deref(in.Description)
	p.Price = derefPrice(in.Price)
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefPrice(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
