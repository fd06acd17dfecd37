package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Zhima-Mochi/shopcore/internal/application/order"
	"github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type OrderHandler struct {
	orders *orderapp.Service
}

func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Register(api *gin.RouterGroup) {
	g := api.Group("/orders")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id/status", h.updateStatus)
	g.POST("/:id/cancel", h.cancel)
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	lines := make([]orderapp.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, orderapp.LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	o, err := h.orders.CreateOrder(c.Request.Context(), orderapp.CreateOrderInput{
		UserID: req.UserID,
		Lines:  lines,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) list(c *gin.Context) {
	ctx := c.Request.Context()

	if userID := c.Query("user_id"); userID != "" {
		orders, err := h.orders.ListByUser(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponses(orders))
		return
	}

	if raw := c.Query("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			respondError(c, apperr.Validation(err.Error()))
			return
		}
		orders, err := h.orders.ListByStatus(ctx, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponses(orders))
		return
	}

	orders, err := h.orders.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) updateStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) cancel(c *gin.Context) {
	if err := h.orders.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
