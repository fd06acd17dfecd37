package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/domain/user"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/observability/logctx"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

var badInputSentinels = []error{
	order.ErrUserRequired,
	order.ErrNoLines,
	order.ErrInvalidQuantity,
	payment.ErrOrderRequired,
	catalog.ErrSKURequired,
	catalog.ErrNameRequired,
	catalog.ErrNegativePrice,
	catalog.ErrNegativeStock,
	catalog.ErrInvalidQuantity,
	user.ErrUsernameRequired,
	user.ErrEmailRequired,
}

func statusFor(err error) int {
	switch {
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	case apperr.IsAlreadyExists(err), apperr.IsInvalidState(err), apperr.IsInsufficientStock(err):
		return http.StatusConflict
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	}
	for _, sentinel := range badInputSentinels {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger := logctx.FromOr(c.Request.Context(), observability.NopLogger())
		logger.Error("request_failed", observability.F("error", err.Error()))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
