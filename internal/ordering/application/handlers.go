package application

import (
	"context"
	"time"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPageSize = 10

// Handlers agrupa los colaboradores que los handlers necesitan además del
// Unit of Work del scope. Se resuelven una vez en el bootstrap; nada de
// inyección por reflexión en tiempo de dispatch.
type Handlers struct {
	notifier  domain.Notifier
	transport domain.TransportPublisher
	analytics domain.OrderAnalytics // opcional
	views     domain.OrderViews     // opcional
	cache     domain.CatalogCache   // opcional
	hasher    domain.PasswordHasher
	log       *zap.Logger
}

// publishTransport difunde por el transporte pub/sub. Fire-and-forget: los
// fallos de entrega se loggean y no tocan el flujo de control del comando.
func (h *Handlers) publishTransport(ctx context.Context, channel, eventName string, payload any) {
	if h.transport == nil {
		return
	}
	if err := h.transport.Publish(ctx, channel, eventName, payload); err != nil {
		h.log.Warn("⚠️ transport publish failed",
			zap.String("channel", channel),
			zap.String("event", eventName),
			zap.Error(err),
		)
	}
}

// ---------------- Pedidos ----------------

// CreateOrder resuelve precios contra el catálogo, construye el pedido y lo
// persiste. El OrderCreated lo encola el repositorio en el Add.
func (h *Handlers) CreateOrder(ctx context.Context, uow UnitOfWork, cmd domain.CreateOrder) (any, error) {
	orderID := uuid.New()
	now := time.Now().UTC()

	var items []domain.OrderItem
	var totalCost float64
	for _, in := range cmd.Items {
		product, err := uow.Products().Get(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.NewNotFound("product", in.ProductID.String())
		}

		unitPrice := product.Price
		if in.VariationID != nil {
			variation, err := uow.Variations().Get(ctx, *in.VariationID)
			if err != nil {
				return nil, err
			}
			if variation == nil {
				return nil, domain.NewNotFound("variation", in.VariationID.String())
			}
			unitPrice += variation.Price
		}

		totalCost += unitPrice * float64(in.Quantity)
		items = append(items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   in.ProductID,
			VariationID: in.VariationID,
			Quantity:    in.Quantity,
			UnitPrice:   unitPrice,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	order := domain.NewOrder(orderID, cmd.UserID, cmd.ConsumeLocation, items, totalCost)
	if err := uow.Orders().Add(ctx, order); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus aplica una transición del ciclo de vida y difunde el
// cambio por el transporte.
func (h *Handlers) UpdateOrderStatus(ctx context.Context, uow UnitOfWork, cmd domain.UpdateOrderStatus) (any, error) {
	order, err := uow.Orders().Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFound("order", cmd.OrderID.String())
	}

	if err := order.ChangeStatus(cmd.Status, order.Items); err != nil {
		return nil, err
	}
	if err := uow.Orders().Update(ctx, order); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publishTransport(ctx, domain.ChannelOrders, "OrderStatusUpdated", order)
	return order, nil
}

// CancelOrder cancela el pedido del propio usuario. Un pedido ya entregado
// o ya cancelado no es un error: se devuelve un CancelOutcome negativo,
// camino distinto al ValidationError de UpdateOrderStatus.
func (h *Handlers) CancelOrder(ctx context.Context, uow UnitOfWork, cmd domain.CancelOrder) (any, error) {
	order, err := uow.Orders().Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFound("order", cmd.OrderID.String())
	}
	if order.UserID != cmd.UserID {
		return nil, domain.ErrUnauthorized
	}

	switch order.Status {
	case domain.StatusCancelled:
		return domain.CancelOutcome{Cancelled: false, Reason: "order already cancelled"}, nil
	case domain.StatusDelivered:
		return domain.CancelOutcome{Cancelled: false, Reason: "order already delivered"}, nil
	}

	if err := order.ChangeStatus(domain.StatusCancelled, order.Items); err != nil {
		return nil, err
	}
	if err := uow.Orders().Update(ctx, order); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publishTransport(ctx, domain.ChannelOrders, "OrderCancelled", order)
	return domain.CancelOutcome{Cancelled: true, Reason: "order cancelled successfully"}, nil
}

func (h *Handlers) GetOrder(ctx context.Context, uow UnitOfWork, cmd domain.GetOrder) (any, error) {
	order, err := uow.Orders().Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFound("order", cmd.OrderID.String())
	}
	return order, nil
}

func (h *Handlers) GetOrders(ctx context.Context, uow UnitOfWork, cmd domain.GetOrders) (any, error) {
	pageSize := cmd.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return uow.Orders().GetAll(ctx, cmd.Page, pageSize, cmd.Filters)
}

func (h *Handlers) GetOrdersForCustomer(ctx context.Context, uow UnitOfWork, cmd domain.GetOrdersForCustomer) (any, error) {
	pageSize := cmd.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return uow.Orders().GetAll(ctx, cmd.Page, pageSize, map[string]any{"user_id": cmd.UserID})
}

// ---------------- Catálogo ----------------

func (h *Handlers) CreateProduct(ctx context.Context, uow UnitOfWork, cmd domain.CreateProduct) (any, error) {
	product := domain.NewProduct(cmd.Name, cmd.Description, cmd.Price)
	now := time.Now().UTC()
	for _, in := range cmd.Variations {
		v := domain.Variation{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      in.Name,
			Price:     in.Price,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := product.AddVariation(v); err != nil {
			return nil, err
		}
	}

	if err := uow.Products().Add(ctx, product); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct intenta primero la cache y cae al repositorio en el miss.
func (h *Handlers) GetProduct(ctx context.Context, uow UnitOfWork, cmd domain.GetProduct) (any, error) {
	if h.cache != nil {
		var cached domain.Product
		if ok, _ := h.cache.Get(ctx, domain.CacheKeyProduct(cmd.ProductID), &cached); ok {
			return &cached, nil
		}
	}

	product, err := uow.Products().Get(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("product", cmd.ProductID.String())
	}

	if h.cache != nil {
		// Actualizar cache en background sin bloquear la respuesta.
		go func(p *domain.Product) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = h.cache.Set(ctxCache, domain.CacheKeyProduct(p.ID), p, 60)
		}(product)
	}
	return product, nil
}

func (h *Handlers) GetAllProducts(ctx context.Context, uow UnitOfWork, cmd domain.GetAllProducts) (any, error) {
	return uow.Products().GetAll(ctx, cmd.Page, defaultPageSize, nil)
}

// GetCatalog es la vista pública del catálogo; misma consulta que
// GetAllProducts pero cacheada por página.
func (h *Handlers) GetCatalog(ctx context.Context, uow UnitOfWork, cmd domain.GetCatalog) (any, error) {
	key := domain.CacheKeyCatalogPage(cmd.Page)
	if h.cache != nil {
		var cached []*domain.Product
		if ok, _ := h.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	products, err := uow.Products().GetAll(ctx, cmd.Page, defaultPageSize, nil)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		go func(ps []*domain.Product) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = h.cache.Set(ctxCache, key, ps, 30)
		}(products)
	}
	return products, nil
}

func (h *Handlers) UpdateProduct(ctx context.Context, uow UnitOfWork, cmd domain.UpdateProduct) (any, error) {
	product, err := uow.Products().Get(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("product", cmd.ProductID.String())
	}

	originalPrice := product.Price
	if cmd.Name != nil {
		product.Name = *cmd.Name
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Price != nil {
		product.Price = *cmd.Price
	}
	product.UpdatedAt = time.Now().UTC()

	if err := uow.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	// Si el precio cae a menos de la mitad avisamos del descuento.
	if product.Price*2 < originalPrice {
		h.publishTransport(ctx, domain.ChannelProducts, "ProductDiscount", product)
	}
	if h.cache != nil {
		_ = h.cache.Delete(ctx, domain.CacheKeyProduct(product.ID))
	}
	return product, nil
}

func (h *Handlers) DeleteProduct(ctx context.Context, uow UnitOfWork, cmd domain.DeleteProduct) (any, error) {
	product, err := uow.Products().Get(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("product", cmd.ProductID.String())
	}
	if err := uow.Products().Delete(ctx, product); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	if h.cache != nil {
		_ = h.cache.Delete(ctx, domain.CacheKeyProduct(product.ID))
	}
	return product, nil
}

// ---------------- Variaciones ----------------

func (h *Handlers) CreateVariation(ctx context.Context, uow UnitOfWork, cmd domain.CreateVariation) (any, error) {
	product, err := uow.Products().Get(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("product", cmd.ProductID.String())
	}

	now := time.Now().UTC()
	variation := domain.Variation{
		ID:        uuid.New(),
		ProductID: cmd.ProductID,
		Name:      cmd.Name,
		Price:     cmd.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := product.AddVariation(variation); err != nil {
		return nil, err
	}
	if err := uow.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return &variation, nil
}

func (h *Handlers) UpdateVariation(ctx context.Context, uow UnitOfWork, cmd domain.UpdateVariation) (any, error) {
	product, err := uow.Products().Get(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("product", cmd.ProductID.String())
	}
	variation := product.VariationByID(cmd.VariationID)
	if variation == nil {
		return nil, domain.NewNotFound("variation", cmd.VariationID.String())
	}

	if cmd.Name != nil {
		for _, v := range product.ActiveVariations() {
			if v.Name == *cmd.Name && v.ID != cmd.VariationID {
				return nil, domain.NewValidation("variation name %q already exists with id %s", *cmd.Name, v.ID)
			}
		}
		variation.Name = *cmd.Name
	}
	if cmd.Price != nil {
		variation.Price = *cmd.Price
	}
	variation.UpdatedAt = time.Now().UTC()

	if err := uow.Variations().Update(ctx, variation); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return variation, nil
}

func (h *Handlers) DeleteVariation(ctx context.Context, uow UnitOfWork, cmd domain.DeleteVariation) (any, error) {
	product, err := uow.Products().Get(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("product", cmd.ProductID.String())
	}
	if err := product.RemoveVariation(cmd.VariationID); err != nil {
		return nil, err
	}
	if err := uow.Products().Update(ctx, product); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return product, nil
}

// ---------------- Usuarios ----------------

func (h *Handlers) CreateUser(ctx context.Context, uow UnitOfWork, cmd domain.CreateUser) (any, error) {
	hash, err := h.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}
	user := domain.NewUser(cmd.Email, hash, cmd.Role)
	if err := uow.Users().Add(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (h *Handlers) GetUserByEmail(ctx context.Context, uow UnitOfWork, cmd domain.GetUserByEmail) (any, error) {
	user, err := uow.Users().GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("user", cmd.Email)
	}
	return user, nil
}

func (h *Handlers) AuthenticateUser(ctx context.Context, uow UnitOfWork, cmd domain.AuthenticateUser) (any, error) {
	user, err := uow.Users().GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("user", cmd.Email)
	}
	if !h.hasher.Verify(cmd.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ---------------- General ----------------

// HealthCheckCmd sondea el almacenamiento. El fallo no se propaga como
// error del comando: el resultado booleano es lo que decide el endpoint.
func (h *Handlers) HealthCheckCmd(ctx context.Context, uow UnitOfWork, cmd domain.HealthCheck) (any, error) {
	if err := uow.HealthCheck(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return false, nil
	}
	return true, nil
}

// ---------------- Event handlers ----------------

// SendOrderCreatedEmail notifica al dueño del pedido recién creado.
func (h *Handlers) SendOrderCreatedEmail(ctx context.Context, uow UnitOfWork, e domain.OrderCreated) error {
	user, err := uow.Users().Get(ctx, e.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return h.notifier.Publish(ctx, user.Email, e)
}

// SendOrderStatusEmail notifica cada cambio de estado.
func (h *Handlers) SendOrderStatusEmail(ctx context.Context, uow UnitOfWork, e domain.OrderStatusChanged) error {
	user, err := uow.Users().Get(ctx, e.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return h.notifier.Publish(ctx, user.Email, e)
}

// PushOrderStatusNotification es el hueco para push a móvil.
// TODO(push): conectar con el proveedor APNs cuando tengamos credenciales.
func (h *Handlers) PushOrderStatusNotification(ctx context.Context, uow UnitOfWork, e domain.OrderStatusChanged) error {
	return nil
}

// RecordOrderCreatedAnalytics vuelca el hecho a la tabla de analítica.
func (h *Handlers) RecordOrderCreatedAnalytics(ctx context.Context, uow UnitOfWork, e domain.OrderCreated) error {
	if h.analytics == nil {
		return nil
	}
	return h.analytics.RecordCreated(ctx, e)
}

func (h *Handlers) RecordOrderStatusAnalytics(ctx context.Context, uow UnitOfWork, e domain.OrderStatusChanged) error {
	if h.analytics == nil {
		return nil
	}
	return h.analytics.RecordStatusChanged(ctx, e)
}

// ProjectOrderCreatedView actualiza el read model de pedidos.
func (h *Handlers) ProjectOrderCreatedView(ctx context.Context, uow UnitOfWork, e domain.OrderCreated) error {
	if h.views == nil {
		return nil
	}
	return h.views.ProjectCreated(ctx, e)
}

func (h *Handlers) ProjectOrderStatusView(ctx context.Context, uow UnitOfWork, e domain.OrderStatusChanged) error {
	if h.views == nil {
		return nil
	}
	return h.views.ProjectStatusChanged(ctx, e)
}
