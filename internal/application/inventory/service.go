package inventory

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/observability/logctx"
	"github.com/Zhima-Mochi/shopcore/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	inventoryService = "inventory-ledger"
	useCaseReserve   = "inventory.reserve"
	useCaseRelease   = "inventory.release"
	spanPrefix       = "UC."
)

// Service is the inventory ledger: it owns per-product stock counts.
// Reserve and Release each run inside one storage transaction, so the
// sufficiency check and the decrement are atomic per product.
type Service struct {
	store      storage.Store
	log        observability.Logger
	tracer     observability.Tracer
	reqCounter observability.Counter
	durHist    observability.Histogram
}

func NewService(store storage.Store, tel observability.Observability) *Service {
	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metricsProvider := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metricsProvider = tel.Metrics()
	}
	baseLog = baseLog.With(observability.F("service", inventoryService))

	return &Service{
		store:      store,
		log:        baseLog,
		tracer:     tracer,
		reqCounter: metricsProvider.Counter(observability.MUsecaseRequests),
		durHist:    metricsProvider.Histogram(observability.MUsecaseDuration),
	}
}

// Reserve decrements stock for productID by quantity, failing with
// InsufficientStock when the product cannot cover it. Returns the remaining
// stock after the reservation.
func (s *Service) Reserve(ctx context.Context, productID string, quantity int) (int, error) {
	return s.adjust(ctx, useCaseReserve, productID, quantity, func(p stockAdjuster) error {
		return p.Reserve(quantity)
	})
}

// Release returns quantity units to productID unconditionally. Used as
// compensation when an order is cancelled.
func (s *Service) Release(ctx context.Context, productID string, quantity int) (int, error) {
	return s.adjust(ctx, useCaseRelease, productID, quantity, func(p stockAdjuster) error {
		return p.Release(quantity)
	})
}

type stockAdjuster interface {
	Reserve(quantity int) error
	Release(quantity int) error
}

func (s *Service) adjust(ctx context.Context, useCase, productID string, quantity int, apply func(stockAdjuster) error) (remaining int, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCase),
		observability.F("product_id", productID),
		observability.F("quantity", quantity),
	)

	ctx, span := s.tracer.Start(ctx, spanPrefix+useCase,
		attribute.String("use_case", useCase),
		attribute.String("product.id", productID),
		attribute.Int("inventory.quantity", quantity),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("inventory.remaining", remaining))
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
		s.durHist.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCase),
		)

		fields := []observability.Field{observability.F("outcome", outcome)}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		} else {
			fields = append(fields, observability.F("remaining", remaining))
		}
		logger.Info("use_case_done", fields...)
	}()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		if err := apply(p); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		remaining = p.StockQuantity
		return nil
	})
	return remaining, err
}
