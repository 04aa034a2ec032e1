// Package clickhouse implementa el sink de analítica de pedidos.
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/davicafu/comanda/internal/ordering/domain"
)

// OrderAnalyticsRepo vuelca hechos de pedido a ClickHouse para que el
// equipo de analítica construya sus dashboards encima.
type OrderAnalyticsRepo struct {
	db *sql.DB
}

// NewOrderAnalyticsRepo abre la conexión y asegura la tabla de hechos.
func NewOrderAnalyticsRepo(addr, dbName string) (*OrderAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	ddl := `CREATE TABLE IF NOT EXISTS orders_log (
		order_id String,
		user_id String,
		event_type String,
		status String,
		consume_location String,
		total_cost Float64,
		item_count UInt32,
		event_time DateTime
	) ENGINE = MergeTree() ORDER BY (event_time, order_id)`
	if _, err := conn.Exec(ddl); err != nil {
		return nil, fmt.Errorf("could not create orders_log: %w", err)
	}

	return &OrderAnalyticsRepo{db: conn}, nil
}

func (r *OrderAnalyticsRepo) RecordCreated(ctx context.Context, e domain.OrderCreated) error {
	return r.insert(ctx, e.OrderID.String(), e.UserID.String(), "order.created",
		string(e.Status), string(e.ConsumeLocation), e.TotalCost, len(e.Items))
}

func (r *OrderAnalyticsRepo) RecordStatusChanged(ctx context.Context, e domain.OrderStatusChanged) error {
	return r.insert(ctx, e.OrderID.String(), e.UserID.String(), "order.status_changed",
		string(e.Status), string(e.ConsumeLocation), e.TotalCost, len(e.Items))
}

func (r *OrderAnalyticsRepo) insert(ctx context.Context, orderID, userID, eventType, status, location string, totalCost float64, itemCount int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO orders_log (order_id, user_id, event_type, status, consume_location, total_cost, item_count, event_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		orderID, userID, eventType, status, location, totalCost, uint32(itemCount), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order fact: %w", err)
	}
	return nil
}

// DailyOrderTrend agrega pedidos creados y entregados por día.
type DailyOrderTrend struct {
	Day       time.Time
	Created   uint64
	Delivered uint64
}

// GetDailyTrend devuelve la serie diaria entre dos fechas.
func (r *OrderAnalyticsRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyOrderTrend, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			countIf(event_type = 'order.created') AS created,
			countIf(status = 'Delivered') AS delivered
		FROM orders_log
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []DailyOrderTrend
	for rows.Next() {
		var t DailyOrderTrend
		if err := rows.Scan(&t.Day, &t.Created, &t.Delivered); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

var _ domain.OrderAnalytics = (*OrderAnalyticsRepo)(nil)
