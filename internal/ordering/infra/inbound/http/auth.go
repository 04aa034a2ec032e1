package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/comanda/internal/ordering/domain"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// TokenIssuer firma y verifica tokens JWT (HS256) para la API.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

func NewTokenIssuer(secret string, ttl time.Duration, logger *zap.Logger) *TokenIssuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, log: logger}
}

// Issue emite un token con user_id y role como claims.
func (t *TokenIssuer) Issue(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"exp":     time.Now().Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// AuthRequired valida el bearer token y deja user_id y role en el contexto.
func (t *TokenIssuer) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return t.secret, nil
		})
		if err != nil || !token.Valid {
			t.log.Warn("invalid jwt token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		rawID, _ := claims["user_id"].(string)
		id, err := uuid.Parse(rawID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ctxUserID, id)
		c.Set(ctxRole, domain.Role(role))
		c.Next()
	}
}

// ManagerOnly corta la petición si el token no pertenece a un gestor.
// Debe ir siempre detrás de AuthRequired.
func ManagerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, ok := c.Get(ctxRole); !ok || role.(domain.Role) != domain.RoleManager {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserID); ok {
		return v.(uuid.UUID)
	}
	return uuid.Nil
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
