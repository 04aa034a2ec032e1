package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
)

// NewRouter monta todas las rutas de la API sobre un engine de gin.
func NewRouter(bus *application.MessageBus, views domain.OrderViews, issuer *TokenIssuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	orders := NewOrderHandler(bus, views)
	products := NewProductHandler(bus)
	users := NewUserHandler(bus, issuer)

	// Público
	r.GET("/health", func(c *gin.Context) {
		result, err := bus.Handle(c.Request.Context(), domain.HealthCheck{})
		if err != nil || result != true {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/catalog", products.GetCatalog)
	auth := r.Group("/auth")
	{
		auth.POST("/register", users.Register)
		auth.POST("/login", users.Login)
	}

	// Autenticado
	authed := r.Group("/", issuer.AuthRequired())
	{
		authed.GET("/users/me", users.Me)

		authed.POST("/orders", orders.CreateOrder)
		authed.GET("/orders/mine", orders.ListMyOrders)
		authed.GET("/orders/:id", orders.GetOrder)
		authed.GET("/orders/:id/view", orders.GetOrderView)
		authed.POST("/orders/:id/cancel", orders.CancelOrder)

		authed.GET("/products/:id", products.GetProduct)
	}

	// Solo gestores
	manager := r.Group("/", issuer.AuthRequired(), ManagerOnly())
	{
		manager.GET("/orders", orders.ListOrders)
		manager.PUT("/orders/:id/status", orders.UpdateStatus)

		manager.GET("/products", products.ListProducts)
		manager.POST("/products", products.CreateProduct)
		manager.PUT("/products/:id", products.UpdateProduct)
		manager.DELETE("/products/:id", products.DeleteProduct)
		manager.POST("/products/:id/variations", products.CreateVariation)
		manager.PUT("/products/:id/variations/:variationId", products.UpdateVariation)
		manager.DELETE("/products/:id/variations/:variationId", products.DeleteVariation)
	}

	return r
}
