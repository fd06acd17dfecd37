package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentapp "github.com/Zhima-Mochi/shopcore/internal/application/payment"
	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type PaymentHandler struct {
	payments *paymentapp.Service
}

func NewPaymentHandler(payments *paymentapp.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Register(api *gin.RouterGroup) {
	g := api.Group("/payments")
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.GET("/order/:orderID", h.getByOrder)
	g.POST("/:id/process", h.process)
	g.POST("/:id/refund", h.refund)
}

func (h *PaymentHandler) create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	p, err := h.payments.Create(c.Request.Context(), req.OrderID, method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPaymentResponse(p))
}

func (h *PaymentHandler) get(c *gin.Context) {
	p, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) getByOrder(c *gin.Context) {
	p, err := h.payments.GetByOrder(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) process(c *gin.Context) {
	p, err := h.payments.Process(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) refund(c *gin.Context) {
	p, err := h.payments.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(p))
}
