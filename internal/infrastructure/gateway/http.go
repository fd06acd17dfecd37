package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// HTTP charges through an external provider's REST endpoint.
type HTTP struct {
	client *resty.Client
}

type chargeRequest struct {
	OrderID string `json:"order_id"`
	Amount  string `json:"amount"`
	Method  string `json:"method"`
}

type chargeResponse struct {
	Approved bool `json:"approved"`
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &HTTP{client: client}
}

func (g *HTTP) Charge(ctx context.Context, orderID string, amount decimal.Decimal, method payment.Method) (bool, error) {
	var result chargeResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(chargeRequest{
			OrderID: orderID,
			Amount:  amount.String(),
			Method:  string(method),
		}).
		SetResult(&result).
		Post("/charge")
	if err != nil {
		return false, fmt.Errorf("gateway: charge request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("gateway: charge returned status %d", resp.StatusCode())
	}
	return result.Approved, nil
}
