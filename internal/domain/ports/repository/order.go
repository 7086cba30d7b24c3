package repository

import (
	"context"

	"souksync/internal/domain/model"
)

// OrderRepository records orders placed through the bot. Writes are
// best-effort: callers log failures and continue.
type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Order) error
}
