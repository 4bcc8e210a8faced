package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domproduct "example.com/product-catalog/internal/domain/product"
	"example.com/product-catalog/internal/pkg/clock"
)

const priceScale = 3

const (
	queryFindByID = `SELECT id, name, description, price, created FROM product WHERE id = ?`
	queryFindAll  = `SELECT id, name, description, price, created FROM product`
	queryLock     = `SELECT id, name, description, price, created FROM product WHERE id = ? FOR UPDATE`
	queryInsert   = `INSERT INTO product (id, name, description, price, created) VALUES (?, ?, ?, ?, ?)`
	queryUpdate   = `UPDATE product SET name = ?, description = ?, price = ? WHERE id = ?`
	queryDelete   = `DELETE FROM product WHERE id = ?`
)

type ProductRepository struct {
	session *Session
	logger  *slog.Logger
	tracer  trace.Tracer
	clock   clock.Clock
}

func NewProductRepository(session *Session, logger *slog.Logger) *ProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductRepository{
		session: session,
		logger:  logger,
		tracer:  otel.Tracer("example.com/product-catalog/internal/infra/persistence/sqldb"),
		clock:   clock.System{},
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domproduct.Product, bool) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID",
		trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	p, err := r.scanOne(ctx, queryFindByID, id)
	if err != nil {
		r.logSearchError(ctx, span, err)
		return nil, false
	}
	return p, p != nil
}

func (r *ProductRepository) FindAll(ctx context.Context) []*domproduct.Product {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	products, err := r.scanAll(ctx)
	if err != nil {
		r.logSearchError(ctx, span, err)
		return []*domproduct.Product{}
	}
	span.SetAttributes(attribute.Int("product.count", len(products)))
	return products
}

// Save inserts a new product, assigning its ID, or updates name, description
// and price of an existing one. Saving an ID that has no row changes nothing.
func (r *ProductRepository) Save(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: given product is nil", domproduct.ErrInvalidArgument)
	}

	ctx, span := r.tracer.Start(ctx, "ProductRepository.Save")
	defer span.End()

	err := r.session.WithTransaction(ctx, func(ctx context.Context) error {
		if p.IsNew() {
			return r.insert(ctx, p)
		}
		return r.update(ctx, p)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return nil, err
	}

	span.SetAttributes(attribute.String("product.id", p.ID.String()))
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete",
		trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	err := r.session.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := r.scanOne(ctx, queryLock, id)
		if err != nil {
			return fmt.Errorf("lock product %s: %w", id, err)
		}
		if existing == nil {
			return nil
		}
		if _, err := r.exec(ctx, queryDelete, id); err != nil {
			return fmt.Errorf("delete product %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

func (r *ProductRepository) insert(ctx context.Context, p *domproduct.Product) error {
	id := uuid.New()
	if p.Created.IsZero() {
		p.Created = r.clock.Now()
	}
	if _, err := r.exec(ctx, queryInsert,
		id, p.Name, p.Description, p.Price.Round(priceScale), p.Created,
	); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) update(ctx context.Context, p *domproduct.Product) error {
	existing, err := r.scanOne(ctx, queryLock, p.ID)
	if err != nil {
		return fmt.Errorf("lock product %s: %w", p.ID, err)
	}
	if existing == nil {
		r.logger.WarnContext(ctx, "Product to update not found, skipped",
			slog.String("product_id", p.ID.String()))
		return nil
	}

	existing.Name = p.Name
	existing.Description = p.Description
	existing.Price = p.Price
	if _, err := r.exec(ctx, queryUpdate,
		existing.Name, existing.Description, existing.Price.Round(priceScale), existing.ID,
	); err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	return nil
}

func (r *ProductRepository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.session.conn(ctx).ExecContext(ctx, r.session.dialect.Rebind(query), args...)
}

// scanOne returns nil, nil when no row matches.
func (r *ProductRepository) scanOne(ctx context.Context, query string, id uuid.UUID) (*domproduct.Product, error) {
	row := r.session.conn(ctx).QueryRowContext(ctx, r.session.dialect.Rebind(query), id)

	var p domproduct.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) scanAll(ctx context.Context) ([]*domproduct.Product, error) {
	rows, err := r.session.conn(ctx).QueryContext(ctx, r.session.dialect.Rebind(queryFindAll))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domproduct.Product{}
	for rows.Next() {
		var p domproduct.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Created); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) logSearchError(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "search failed")
	r.logger.ErrorContext(ctx, "Error when searching product(s)",
		slog.String("error", err.Error()))
}
