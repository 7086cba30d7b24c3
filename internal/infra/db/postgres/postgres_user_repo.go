package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"souksync/internal/domain"
	"souksync/internal/domain/model"
	"souksync/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

// Save upserts by id. A unique-violation on phone surfaces as
// domain.ErrAlreadyExists so the caller can refetch the winning row
// (first-write-wins on the phone constraint).
func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, phone, role, created_at, last_seen_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET role=$3, last_seen_at=$5;
`
	err := pickExec(ctx, r.pool, tx, q, u.ID, u.Phone, string(u.Role), u.CreatedAt, u.LastSeenAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *PostgresUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	const q = `
SELECT id, phone, role, created_at, last_seen_at
  FROM users WHERE phone=$1;
`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, phone))
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `
SELECT id, phone, role, created_at, last_seen_at
  FROM users WHERE id=$1;
`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, id))
}

func (r *PostgresUserRepo) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	var role string
	if err := row.Scan(&u.ID, &u.Phone, &role, &u.CreatedAt, &u.LastSeenAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
