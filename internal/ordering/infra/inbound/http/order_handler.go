package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
)

// OrderHandler encapsula los endpoints HTTP relacionados con pedidos.
// Todos despachan comandos al bus; el handler solo traduce HTTP <-> comandos.
type OrderHandler struct {
	bus   *application.MessageBus
	views domain.OrderViews // puede ser nil si no hay read model configurado
}

func NewOrderHandler(bus *application.MessageBus, views domain.OrderViews) *OrderHandler {
	return &OrderHandler{bus: bus, views: views}
}

// ---------------- Handlers ----------------

// CreateOrder endpoint POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req struct {
		ConsumeLocation string                  `json:"consume_location" binding:"required"`
		Items           []domain.OrderItemInput `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.CreateOrder{
		UserID:          currentUserID(c),
		ConsumeLocation: domain.ConsumeLocation(req.ConsumeLocation),
		Items:           req.Items,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetOrder endpoint GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.GetOrder{OrderID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListOrders endpoint GET /orders (solo gestores)
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filters := map[string]any{}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if userStr := c.Query("user_id"); userStr != "" {
		if id, err := uuid.Parse(userStr); err == nil {
			filters["user_id"] = id
		}
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.GetOrders{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 0),
		Filters:  filters,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMyOrders endpoint GET /orders/mine
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	result, err := h.bus.Handle(c.Request.Context(), domain.GetOrdersForCustomer{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 0),
		UserID:   currentUserID(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateStatus endpoint PUT /orders/:id/status (solo gestores)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.UpdateOrderStatus{
		OrderID: id,
		Status:  domain.OrderStatus(req.Status),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelOrder endpoint POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.CancelOrder{
		OrderID: id,
		UserID:  currentUserID(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrderView endpoint GET /orders/:id/view
// Lee la proyección de MongoDB en vez del modelo de escritura.
func (h *OrderHandler) GetOrderView(c *gin.Context) {
	if h.views == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order views not available"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	view, err := h.views.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order view not found"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
