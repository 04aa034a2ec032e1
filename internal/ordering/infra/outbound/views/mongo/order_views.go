// Package mongo implementa el read model de pedidos sobre MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/davicafu/comanda/internal/ordering/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// OrderViewRepo proyecta eventos de pedido a una colección de vistas que
// la capa HTTP puede consultar sin tocar el modelo de escritura.
type OrderViewRepo struct {
	coll *mongo.Collection
}

func NewOrderViewRepo(ctx context.Context, client *mongo.Client, dbName string) (*OrderViewRepo, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}
	return &OrderViewRepo{
		coll: client.Database(dbName).Collection("order_views"),
	}, nil
}

func (r *OrderViewRepo) ProjectCreated(ctx context.Context, e domain.OrderCreated) error {
	view := domain.OrderView{
		OrderID:         e.OrderID,
		UserID:          e.UserID,
		Status:          e.Status,
		TotalCost:       e.TotalCost,
		ConsumeLocation: e.ConsumeLocation,
		ItemCount:       len(e.Items),
		UpdatedAt:       e.UpdatedAt,
	}
	return r.upsert(ctx, e.OrderID, view)
}

func (r *OrderViewRepo) ProjectStatusChanged(ctx context.Context, e domain.OrderStatusChanged) error {
	view := domain.OrderView{
		OrderID:         e.OrderID,
		UserID:          e.UserID,
		Status:          e.Status,
		TotalCost:       e.TotalCost,
		ConsumeLocation: e.ConsumeLocation,
		ItemCount:       len(e.Items),
		UpdatedAt:       e.UpdatedAt,
	}
	return r.upsert(ctx, e.OrderID, view)
}

func (r *OrderViewRepo) upsert(ctx context.Context, id uuid.UUID, view domain.OrderView) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id}, view, opts); err != nil {
		return fmt.Errorf("failed to upsert order view %s: %w", id, err)
	}
	return nil
}

func (r *OrderViewRepo) Get(ctx context.Context, orderID uuid.UUID) (*domain.OrderView, error) {
	var view domain.OrderView
	err := r.coll.FindOne(ctx, bson.M{"_id": orderID}).Decode(&view)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order view %s: %w", orderID, err)
	}
	return &view, nil
}

var _ domain.OrderViews = (*OrderViewRepo)(nil)
