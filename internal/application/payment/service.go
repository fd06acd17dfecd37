package payment

import (
	"context"
	"errors"
	"time"

	domorder "github.com/Zhima-Mochi/shopcore/internal/domain/order"
	domain "github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/observability/logctx"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/Zhima-Mochi/shopcore/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	paymentService        = "payment-workflow"
	useCasePaymentProcess = "payment.process"
	spanPrefix            = "UC."
	gatewayPeer           = "payment-gateway"
	gatewayEndpoint       = "charge"

	defaultGatewayTimeout = 5 * time.Second
)

type IDGenerator interface {
	NewID() string
}

// Service owns the payment lifecycle for orders.
//
// A successful charge confirms the order. A refund moves the order to
// CANCELLED through the plain status update path, which performs no stock
// compensation: refunds do not restore stock, matching the workflow this was
// specified from. Only a direct order cancellation releases stock.
type Service struct {
	store          storage.Store
	gateway        domain.Gateway
	idGenerator    IDGenerator
	transactionID  func() string
	gatewayTimeout time.Duration

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHist      observability.Histogram
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewService(
	store storage.Store,
	gateway domain.Gateway,
	idGen IDGenerator,
	transactionID func() string,
	gatewayTimeout time.Duration,
	tel observability.Observability,
) *Service {
	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metricsProvider := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metricsProvider = tel.Metrics()
	}
	baseLog = baseLog.With(observability.F("service", paymentService))

	if gatewayTimeout <= 0 {
		gatewayTimeout = defaultGatewayTimeout
	}

	return &Service{
		store:          store,
		gateway:        gateway,
		idGenerator:    idGen,
		transactionID:  transactionID,
		gatewayTimeout: gatewayTimeout,
		log:            baseLog,
		tracer:         tracer,
		reqCounter:     metricsProvider.Counter(observability.MUsecaseRequests),
		durHist:        metricsProvider.Histogram(observability.MUsecaseDuration),
		extCounter:     metricsProvider.Counter(observability.MExternalRequests),
		extHistogram:   metricsProvider.Histogram(observability.MExternalRequestDuration),
	}
}

// Create opens a PENDING payment for the order, copying the amount from the
// order total. At most one payment may exist per order.
func (s *Service) Create(ctx context.Context, orderID string, method domain.Method) (*domain.Payment, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("order_id", orderID))

	if orderID == "" {
		return nil, newValidation("order id is required")
	}

	var created *domain.Payment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		switch _, err := tx.Payments().FindByOrderID(ctx, orderID); {
		case err == nil:
			return apperr.AlreadyExists("payment", orderID)
		case apperr.IsNotFound(err):
			// no payment yet, proceed
		default:
			return err
		}

		p, err := domain.New(s.idGenerator.NewID(), orderID, o.TotalAmount, method)
		if err != nil {
			return err
		}
		if err := tx.Payments().Insert(ctx, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment_created",
		observability.F("payment_id", created.ID),
		observability.F("amount", created.Amount.String()),
	)
	return created, nil
}

// Process drives a PENDING payment through the gateway. The payment is moved
// to PROCESSING first; the gateway call runs outside any transaction and is
// bounded by the configured timeout, with expiry treated as a declined
// charge. Success completes the payment and confirms the order in one
// transaction; failure marks the payment FAILED and leaves the order alone.
func (s *Service) Process(ctx context.Context, paymentID string) (_ *domain.Payment, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCasePaymentProcess),
		observability.F("payment_id", paymentID),
	)

	ctx, span := s.tracer.Start(ctx, spanPrefix+"ProcessPayment",
		attribute.String("use_case", useCasePaymentProcess),
		attribute.String("payment.id", paymentID),
	)
	start := time.Now()
	outcome := "success"
	var finalStatus domain.Status

	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("payment.status", string(finalStatus)))
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCasePaymentProcess),
			observability.L("outcome", outcome),
		)
		s.durHist.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCasePaymentProcess),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("payment_status", string(finalStatus)),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	var processing *domain.Payment
	if err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := p.BeginProcessing(); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		processing = p
		return nil
	}); err != nil {
		return nil, err
	}

	approved := s.charge(ctx, processing)

	var final *domain.Payment
	if err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}

		if !approved {
			if err := p.Fail(); err != nil {
				return err
			}
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
			final = p
			return nil
		}

		if err := p.Complete(s.transactionID()); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}

		o, err := tx.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		o.SetStatus(domorder.StatusConfirmed)
		if err := tx.Orders().Update(ctx, o); err != nil {
			return err
		}

		final = p
		return nil
	}); err != nil {
		return nil, err
	}

	finalStatus = final.Status
	return final, nil
}

// Refund reverses a COMPLETED payment and cancels the order. Stock is not
// restored on this path.
func (s *Service) Refund(ctx context.Context, paymentID string) (*domain.Payment, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("payment_id", paymentID))

	var refunded *domain.Payment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := p.Refund(); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}

		o, err := tx.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return err
		}
		o.SetStatus(domorder.StatusCancelled)
		if err := tx.Orders().Update(ctx, o); err != nil {
			return err
		}

		refunded = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("payment_refunded", observability.F("order_id", refunded.OrderID))
	return refunded, nil
}

func (s *Service) Get(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, newValidation("payment id is required")
	}
	var found *domain.Payment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Payments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		found = p
		return nil
	})
	return found, err
}

func (s *Service) GetByOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	if orderID == "" {
		return nil, newValidation("order id is required")
	}
	var found *domain.Payment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Payments().FindByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		found = p
		return nil
	})
	return found, err
}

// charge calls the external gateway with a bounded deadline. Gateway errors
// and timeouts both count as a declined charge; the decision to fail the
// payment rather than retry lives here.
func (s *Service) charge(ctx context.Context, p *domain.Payment) bool {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("payment_id", p.ID),
		observability.F("order_id", p.OrderID),
	)

	chargeCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	start := time.Now()
	approved, err := s.gateway.Charge(chargeCtx, p.OrderID, p.Amount, p.Method)

	extOutcome := "success"
	switch {
	case err != nil:
		approved = false
		if errors.Is(err, context.DeadlineExceeded) {
			extOutcome = "timeout"
		} else {
			extOutcome = "error"
		}
		logger.Warn("gateway_charge_failed", observability.F("error", err.Error()))
	case !approved:
		extOutcome = "declined"
	}

	s.extCounter.Add(1,
		observability.L("peer", gatewayPeer),
		observability.L("endpoint", gatewayEndpoint),
		observability.L("outcome", extOutcome),
	)
	s.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", gatewayPeer),
		observability.L("endpoint", gatewayEndpoint),
	)

	return approved
}

func newValidation(msg string) error {
	return apperr.Validation(msg)
}
