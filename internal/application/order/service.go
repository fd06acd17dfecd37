package order

import (
	"context"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/observability/logctx"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/Zhima-Mochi/shopcore/internal/storage"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	orderService       = "order-workflow"
	useCaseOrderCreate = "order.create"
	useCaseOrderCancel = "order.cancel"
	spanPrefix         = "UC."
)

// Service owns order creation, status updates, and cancellation.
//
// Creation reserves stock through the inventory ledger line by line; each
// reservation commits before the next line is examined, so a failure on a
// later line leaves earlier reservations in place. That mirrors the behavior
// this workflow was specified from and is deliberately not "fixed" here.
type Service struct {
	store       storage.Store
	ledger      InventoryLedger
	idGenerator IDGenerator

	log        observability.Logger
	tracer     observability.Tracer
	reqCounter observability.Counter
	durHist    observability.Histogram
}

func NewService(store storage.Store, ledger InventoryLedger, idGen IDGenerator, tel observability.Observability) *Service {
	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metricsProvider := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metricsProvider = tel.Metrics()
	}
	baseLog = baseLog.With(observability.F("service", orderService))

	return &Service{
		store:       store,
		ledger:      ledger,
		idGenerator: idGen,
		log:         baseLog,
		tracer:      tracer,
		reqCounter:  metricsProvider.Counter(observability.MUsecaseRequests),
		durHist:     metricsProvider.Histogram(observability.MUsecaseDuration),
	}
}

type LineInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	UserID string
	Lines  []LineInput
}

// CreateOrder validates the user and every product, reserves stock per line,
// captures unit prices from the current catalog, and persists a PENDING order.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseOrderCreate),
		observability.F("user_id", input.UserID),
		observability.F("line_count", len(input.Lines)),
	)

	ctx, span := s.tracer.Start(ctx, spanPrefix+"CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.user_id", input.UserID),
		attribute.Int("order.line_count", len(input.Lines)),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderCreate),
			observability.L("outcome", outcome),
		)
		s.durHist.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseOrderCreate),
		)

		fields := []observability.Field{observability.F("outcome", outcome)}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if input.UserID == "" {
		return nil, newValidation("user id is required")
	}
	if len(input.Lines) == 0 {
		return nil, newValidation("at least one line is required")
	}
	for _, line := range input.Lines {
		if line.ProductID == "" {
			return nil, newValidation("product id is required")
		}
		if line.Quantity <= 0 {
			return nil, newValidation("quantity must be greater than zero")
		}
	}

	if err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Users().FindByID(ctx, input.UserID)
		return err
	}); err != nil {
		return nil, err
	}

	// Each iteration commits its reservation before the next line is looked
	// at: a mid-request failure surfaces to the caller with earlier lines
	// still reserved.
	lines := make([]domain.Line, 0, len(input.Lines))
	for _, in := range input.Lines {
		var unitPrice decimal.Decimal
		if err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
			p, err := tx.Products().FindByID(ctx, in.ProductID)
			if err != nil {
				return err
			}
			unitPrice = p.Price
			return nil
		}); err != nil {
			return nil, err
		}

		if _, err := s.ledger.Reserve(ctx, in.ProductID, in.Quantity); err != nil {
			return nil, err
		}

		lines = append(lines, domain.Line{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
		})
	}

	entity, err := domain.New(s.idGenerator.NewID(), input.UserID, lines)
	if err != nil {
		return nil, fmt.Errorf("order: construct: %w", err)
	}

	if err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Orders().Insert(ctx, entity)
	}); err != nil {
		logger.Error("order_save_failed", observability.F("order_id", entity.ID), observability.F("error", err.Error()))
		return nil, fmt.Errorf("order: save: %w", err)
	}

	span.SetAttributes(
		attribute.String("order.id", entity.ID),
		attribute.String("order.total_amount", entity.TotalAmount.String()),
	)
	logger.Info("order_created",
		observability.F("order_id", entity.ID),
		observability.F("total_amount", entity.TotalAmount.String()),
	)
	return entity, nil
}

// UpdateStatus overwrites the order status. No transition table applies at
// this layer; DELIVERED stamps the completion time.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus domain.Status) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("order_id", orderID))

	var updated *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		o.SetStatus(newStatus)
		if err := tx.Orders().Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order_status_updated", observability.F("status", string(newStatus)))
	return updated, nil
}

// Cancel releases every line's stock back to the catalog and marks the order
// CANCELLED. Only PENDING and CONFIRMED orders may be cancelled; the release
// and the status change commit together.
func (s *Service) Cancel(ctx context.Context, orderID string) (err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseOrderCancel),
		observability.F("order_id", orderID),
	)

	ctx, span := s.tracer.Start(ctx, spanPrefix+"CancelOrder",
		attribute.String("use_case", useCaseOrderCancel),
		attribute.String("order.id", orderID),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseOrderCancel),
			observability.L("outcome", outcome),
		)
		s.durHist.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseOrderCancel),
		)

		fields := []observability.Field{observability.F("outcome", outcome)}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	return s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.Cancel(); err != nil {
			return err
		}

		for _, line := range o.Lines {
			p, err := tx.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if err := p.Release(line.Quantity); err != nil {
				return err
			}
			if err := tx.Products().Update(ctx, p); err != nil {
				return err
			}
		}

		return tx.Orders().Update(ctx, o)
	})
}

func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, newValidation("order id is required")
	}
	var found *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		found = o
		return nil
	})
	return found, err
}

func (s *Service) List(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		orders, err := tx.Orders().FindAll(ctx)
		if err != nil {
			return err
		}
		out = orders
		return nil
	})
	return out, err
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if userID == "" {
		return nil, newValidation("user id is required")
	}
	var out []*domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		orders, err := tx.Orders().FindByUserID(ctx, userID)
		if err != nil {
			return err
		}
		out = orders
		return nil
	})
	return out, err
}

func (s *Service) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	var out []*domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		orders, err := tx.Orders().FindByStatus(ctx, status)
		if err != nil {
			return err
		}
		out = orders
		return nil
	})
	return out, err
}

func newValidation(msg string) error {
	return apperr.Validation(msg)
}
