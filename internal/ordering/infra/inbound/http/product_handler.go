package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
)

// ProductHandler encapsula los endpoints HTTP del catálogo.
type ProductHandler struct {
	bus *application.MessageBus
}

func NewProductHandler(bus *application.MessageBus) *ProductHandler {
	return &ProductHandler{bus: bus}
}

// ---------------- Productos ----------------

// CreateProduct endpoint POST /products (solo gestores)
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req struct {
		Name        string                  `json:"name" binding:"required"`
		Description string                  `json:"description"`
		Price       float64                 `json:"price" binding:"required,gt=0"`
		Variations  []domain.VariationInput `json:"variations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.CreateProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Variations:  req.Variations,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetProduct endpoint GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.GetProduct{ProductID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListProducts endpoint GET /products (solo gestores)
func (h *ProductHandler) ListProducts(c *gin.Context) {
	result, err := h.bus.Handle(c.Request.Context(), domain.GetAllProducts{
		Page: queryInt(c, "page", 1),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCatalog endpoint GET /catalog (público, cacheado)
func (h *ProductHandler) GetCatalog(c *gin.Context) {
	result, err := h.bus.Handle(c.Request.Context(), domain.GetCatalog{
		Page: queryInt(c, "page", 1),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateProduct endpoint PUT /products/:id (solo gestores)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		Name        *string  `json:"name,omitempty"`
		Description *string  `json:"description,omitempty"`
		Price       *float64 `json:"price,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.UpdateProduct{
		ProductID:   id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteProduct endpoint DELETE /products/:id (solo gestores)
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if _, err := h.bus.Handle(c.Request.Context(), domain.DeleteProduct{ProductID: id}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------------- Variaciones ----------------

// CreateVariation endpoint POST /products/:id/variations (solo gestores)
func (h *ProductHandler) CreateVariation(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		Name  string  `json:"name" binding:"required"`
		Price float64 `json:"price" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.CreateVariation{
		ProductID: productID,
		Name:      req.Name,
		Price:     req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateVariation endpoint PUT /products/:id/variations/:variationId
func (h *ProductHandler) UpdateVariation(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	variationID, err := uuid.Parse(c.Param("variationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid variation id"})
		return
	}

	var req struct {
		Name  *string  `json:"name,omitempty"`
		Price *float64 `json:"price,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.UpdateVariation{
		ProductID:   productID,
		VariationID: variationID,
		Name:        req.Name,
		Price:       req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteVariation endpoint DELETE /products/:id/variations/:variationId
func (h *ProductHandler) DeleteVariation(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	variationID, err := uuid.Parse(c.Param("variationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid variation id"})
		return
	}

	if _, err := h.bus.Handle(c.Request.Context(), domain.DeleteVariation{
		ProductID:   productID,
		VariationID: variationID,
	}); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
