package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
)

// UserHandler encapsula registro, login y perfil.
type UserHandler struct {
	bus    *application.MessageBus
	issuer *TokenIssuer
}

func NewUserHandler(bus *application.MessageBus, issuer *TokenIssuer) *UserHandler {
	return &UserHandler{bus: bus, issuer: issuer}
}

// Register endpoint POST /auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := domain.RoleCustomer
	if req.Role == string(domain.RoleManager) {
		role = domain.RoleManager
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.CreateUser{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login endpoint POST /auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bus.Handle(c.Request.Context(), domain.AuthenticateUser{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	user, ok := result.(*domain.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	token, err := h.issuer.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me endpoint GET /users/me
// Devuelve la identidad extraída del token, sin tocar la base de datos.
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": currentUserID(c),
		"role":    c.MustGet(ctxRole),
	})
}
