package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/Zhima-Mochi/shopcore/internal/application/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type ProductHandler struct {
	products *catalogapp.Service
}

func NewProductHandler(products *catalogapp.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) Register(api *gin.RouterGroup) {
	g := api.Group("/products")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/sku/:sku", h.getBySKU)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PATCH("/:id/stock", h.adjustStock)
}

func (h *ProductHandler) create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	p, err := h.products.Create(c.Request.Context(), catalogapp.CreateProductInput{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) list(c *gin.Context) {
	ctx := c.Request.Context()

	var products []*catalog.Product
	var err error
	switch {
	case c.Query("category") != "":
		products, err = h.products.ListByCategory(ctx, c.Query("category"))
	case c.Query("search") != "":
		products, err = h.products.Search(ctx, c.Query("search"))
	case c.Query("active") == "true":
		products, err = h.products.ListActive(ctx)
	default:
		products, err = h.products.List(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *ProductHandler) get(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) getBySKU(c *gin.Context) {
	p, err := h.products.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) update(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	p, err := h.products.Update(c.Request.Context(), c.Param("id"), catalogapp.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Active:        req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) adjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation(err.Error()))
		return
	}

	p, err := h.products.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}
