package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"souksync/internal/domain/model"
	"souksync/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*PostgresOrderRepo)(nil)

type PostgresOrderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{pool: pool}
}

type orderLine struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Save inserts a placed order with its lines as jsonb. Callers treat a
// failure here as non-fatal; the user already has their confirmation.
func (r *PostgresOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	lines := make([]orderLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLine{Name: l.Name, UnitPrice: l.UnitPrice.String(), Quantity: l.Quantity}
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal order lines: %w", err)
	}

	const q = `
INSERT INTO orders (id, chat_id, lines, total, payment_method, placed_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO NOTHING;
`
	return pickExec(ctx, r.pool, tx, q, o.ID, o.ChatID, payload, o.Total.String(), string(o.PaymentMethod), o.PlacedAt)
}
