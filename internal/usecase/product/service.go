package product

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	dom "example.com/product-catalog/internal/domain/product"
)

const instrumentationName = "example.com/product-catalog/internal/usecase/product"

type Service struct {
	mapper     *Mapper
	repo       dom.Repository
	validator  *Validator
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	operations metric.Int64Counter
}

// Option configures a Service. A nil argument keeps the default.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func WithMeter(meter metric.Meter) Option {
	return func(s *Service) {
		if meter != nil {
			s.meter = meter
		}
	}
}

func NewService(mapper *Mapper, repo dom.Repository, opts ...Option) *Service {
	s := &Service{
		mapper: mapper,
		repo:   repo,
		logger: slog.Default(),
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.operations = s.operationsCounter()
	s.validator = NewValidator(s.logger)
	return s
}

// Get returns the stored product as a view. A row that fails output
// validation is reported as not found, with ErrProductInvalid as the cause.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Get",
		trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	p, ok := s.repo.FindByID(ctx, id)
	if !ok {
		err := dom.NewNotFoundError(id)
		s.fail(ctx, span, "get", "not_found", err)
		return nil, err
	}

	view := s.mapper.ToView(p)
	if !s.validator.Check(ctx, s.validator.ValidateView(view)) {
		err := dom.NewInvalidProductError(id)
		s.fail(ctx, span, "get", "invalid", err)
		return nil, err
	}

	s.record(ctx, "get", "success")
	return view, nil
}

func (s *Service) GetAll(ctx context.Context) []*View {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetAll")
	defer span.End()

	products := s.repo.FindAll(ctx)
	views := make([]*View, 0, len(products))
	for _, p := range products {
		view := s.mapper.ToView(p)
		if !s.validator.Check(ctx, s.validator.ValidateView(view)) {
			continue
		}
		views = append(views, view)
	}

	if dropped := len(products) - len(views); dropped > 0 {
		s.logger.WarnContext(ctx, "Invalid products skipped", slog.Int("count", dropped))
	}
	span.SetAttributes(attribute.Int("product.count", len(views)))
	s.record(ctx, "list", "success")
	return views
}

// Create stores a valid input and returns its new identifier. Nil or invalid
// input yields uuid.Nil without touching the repository.
func (s *Service) Create(ctx context.Context, in *Input) (uuid.UUID, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	if in == nil || !s.validator.Check(ctx, s.validator.ValidateInput(in)) {
		s.record(ctx, "create", "rejected")
		return uuid.Nil, nil
	}

	saved, err := s.repo.Save(ctx, s.mapper.ToEntity(in))
	if err != nil {
		s.fail(ctx, span, "create", "failure", err)
		return uuid.Nil, err
	}

	span.SetAttributes(attribute.String("product.id", saved.ID.String()))
	s.record(ctx, "create", "success")
	return saved.ID, nil
}

// Update overwrites name, description and price of the product with id.
// Nil id, nil input and invalid input are silently ignored.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Input) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update",
		trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	if id == uuid.Nil || in == nil || !s.validator.Check(ctx, s.validator.ValidateInput(in)) {
		s.record(ctx, "update", "rejected")
		return nil
	}

	if _, err := s.repo.Save(ctx, s.mapper.Merge(&dom.Product{ID: id}, in)); err != nil {
		s.fail(ctx, span, "update", "failure", err)
		return err
	}

	s.record(ctx, "update", "success")
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.Delete",
		trace.WithAttributes(attribute.String("product.id", id.String())))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		s.fail(ctx, span, "delete", "failure", err)
		return err
	}

	s.record(ctx, "delete", "success")
	return nil
}

func (s *Service) operationsCounter() metric.Int64Counter {
	counter, err := s.meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)
	if err != nil {
		s.logger.Warn("Product operations counter unavailable, not recording",
			slog.String("error", err.Error()))
		return noop.Int64Counter{}
	}
	return counter
}

func (s *Service) record(ctx context.Context, operation, result string) {
	s.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}

func (s *Service) fail(ctx context.Context, span trace.Span, operation, result string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.WarnContext(ctx, "Product operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	s.record(ctx, operation, result)
}
