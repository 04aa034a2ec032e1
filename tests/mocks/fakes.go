package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/davicafu/comanda/internal/ordering/domain"
)

// Notification es un envío capturado por el FakeNotifier.
type Notification struct {
	Destination string
	Event       domain.Event
}

// FakeNotifier captura las notificaciones en vez de enviarlas.
type FakeNotifier struct {
	Sent []Notification
	Err  error
}

func (n *FakeNotifier) Publish(ctx context.Context, destination string, event domain.Event) error {
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, Notification{Destination: destination, Event: event})
	return nil
}

// Published es un mensaje capturado por el FakePublisher.
type Published struct {
	Channel   string
	EventName string
	Payload   any
}

// FakePublisher captura lo publicado al transporte.
type FakePublisher struct {
	Messages []Published
	Err      error
}

func (p *FakePublisher) Publish(ctx context.Context, channel, eventName string, payload any) error {
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, Published{Channel: channel, EventName: eventName, Payload: payload})
	return nil
}

// FakeHasher hashea de forma reversible para poder asertar en tests.
type FakeHasher struct{}

func (FakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (FakeHasher) Verify(password, hash string) bool {
	return hash == "hashed:"+password
}

// FakeAnalytics cuenta los hechos registrados.
type FakeAnalytics struct {
	Created       []domain.OrderCreated
	StatusChanged []domain.OrderStatusChanged
	Err           error
}

func (a *FakeAnalytics) RecordCreated(ctx context.Context, e domain.OrderCreated) error {
	if a.Err != nil {
		return a.Err
	}
	a.Created = append(a.Created, e)
	return nil
}

func (a *FakeAnalytics) RecordStatusChanged(ctx context.Context, e domain.OrderStatusChanged) error {
	if a.Err != nil {
		return a.Err
	}
	a.StatusChanged = append(a.StatusChanged, e)
	return nil
}

// FakeViews mantiene el read model en un mapa.
type FakeViews struct {
	Views map[uuid.UUID]*domain.OrderView
}

func NewFakeViews() *FakeViews {
	return &FakeViews{Views: make(map[uuid.UUID]*domain.OrderView)}
}

func (v *FakeViews) ProjectCreated(ctx context.Context, e domain.OrderCreated) error {
	v.Views[e.OrderID] = &domain.OrderView{
		OrderID:         e.OrderID,
		UserID:          e.UserID,
		Status:          e.Status,
		TotalCost:       e.TotalCost,
		ConsumeLocation: e.ConsumeLocation,
		ItemCount:       len(e.Items),
		UpdatedAt:       e.UpdatedAt,
	}
	return nil
}

func (v *FakeViews) ProjectStatusChanged(ctx context.Context, e domain.OrderStatusChanged) error {
	v.Views[e.OrderID] = &domain.OrderView{
		OrderID:         e.OrderID,
		UserID:          e.UserID,
		Status:          e.Status,
		TotalCost:       e.TotalCost,
		ConsumeLocation: e.ConsumeLocation,
		ItemCount:       len(e.Items),
		UpdatedAt:       e.UpdatedAt,
	}
	return nil
}

func (v *FakeViews) Get(ctx context.Context, orderID uuid.UUID) (*domain.OrderView, error) {
	return v.Views[orderID], nil
}

// DummyCache implementa CatalogCache sobre un mapa, sin TTL.
type DummyCache struct {
	Entries map[string]any
	Deleted []string
}

func NewDummyCache() *DummyCache {
	return &DummyCache{Entries: make(map[string]any)}
}

// Get siempre devuelve miss: poblar dest exigiría reflexión y los tests
// solo comprueban Set/Delete.
func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	c.Entries[key] = val
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.Deleted = append(c.Deleted, key)
	delete(c.Entries, key)
	return nil
}

var _ domain.Notifier = (*FakeNotifier)(nil)
var _ domain.TransportPublisher = (*FakePublisher)(nil)
var _ domain.PasswordHasher = (FakeHasher{})
var _ domain.OrderAnalytics = (*FakeAnalytics)(nil)
var _ domain.OrderViews = (*FakeViews)(nil)
var _ domain.CatalogCache = (*DummyCache)(nil)
