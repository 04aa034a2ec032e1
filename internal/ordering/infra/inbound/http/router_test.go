package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/comanda/internal/ordering/application"
	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/davicafu/comanda/tests/mocks"
)

func newTestServer(t *testing.T) (*gin.Engine, *mocks.Factory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	factory := mocks.NewFactory()
	bus := application.Bootstrap(application.Deps{
		Factory:  factory,
		Notifier: &mocks.FakeNotifier{},
		Hasher:   mocks.FakeHasher{},
		Logger:   zap.NewNop(),
	})
	issuer := NewTokenIssuer("test-secret", time.Hour, zap.NewNop())
	return NewRouter(bus, mocks.NewFakeViews(), issuer), factory
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, email, role string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/auth/register", "", gin.H{
		"email":    email,
		"password": "secreto123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    email,
		"password": "secreto123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestRouter_LoginInvalido(t *testing.T) {
	r, _ := newTestServer(t)
	registerAndLogin(t, r, "ana@example.com", "CUSTOMER")

	w := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "ana@example.com",
		"password": "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RutasProtegidas(t *testing.T) {
	r, _ := newTestServer(t)

	// Sin token.
	w := doJSON(r, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token basura.
	w = doJSON(r, http.MethodGet, "/users/me", "no-es-un-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Cliente no entra en rutas de gestor.
	customer := registerAndLogin(t, r, "cliente@example.com", "CUSTOMER")
	w = doJSON(r, http.MethodGet, "/orders", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Gestor sí.
	manager := registerAndLogin(t, r, "gestor@example.com", "MANAGER")
	w = doJSON(r, http.MethodGet, "/orders", manager, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_FlujoDePedido(t *testing.T) {
	r, _ := newTestServer(t)
	manager := registerAndLogin(t, r, "gestor@example.com", "MANAGER")
	customer := registerAndLogin(t, r, "cliente@example.com", "CUSTOMER")

	// El gestor da de alta un producto.
	w := doJSON(r, http.MethodPost, "/products", manager, gin.H{
		"name":  "Café",
		"price": 2.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	// El cliente pide dos cafés.
	w = doJSON(r, http.MethodPost, "/orders", customer, gin.H{
		"consume_location": "In-House",
		"items": []gin.H{
			{"product_id": product.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.InDelta(t, 5.0, order.TotalCost, 0.001)

	// El gestor lo avanza a preparación.
	w = doJSON(r, http.MethodPut, fmt.Sprintf("/orders/%s/status", order.ID), manager, gin.H{
		"status": "Preparation",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Transición ilegal → 400.
	w = doJSON(r, http.MethodPut, fmt.Sprintf("/orders/%s/status", order.ID), manager, gin.H{
		"status": "Delivered",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Cancelación fuera de plazo (ya en preparación se puede; tras ready no).
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/orders/%s/cancel", order.ID), customer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var outcome domain.CancelOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.True(t, outcome.Cancelled)

	// Pedido inexistente → 404.
	w = doJSON(r, http.MethodGet, "/orders/00000000-0000-0000-0000-000000000001", customer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CatalogoPublico(t *testing.T) {
	r, _ := newTestServer(t)
	manager := registerAndLogin(t, r, "gestor@example.com", "MANAGER")

	w := doJSON(r, http.MethodPost, "/products", manager, gin.H{
		"name":  "Té",
		"price": 2.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Sin token: el catálogo es público.
	w = doJSON(r, http.MethodGet, "/catalog", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Té")
}
