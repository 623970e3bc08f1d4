package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository persists notifications so users can read them in-app later.
type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Save(ctx context.Context, userID, orderID, title, message string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, user_id, order_id, title, message, type, is_read)
		 VALUES ($1, $2, $3, $4, $5, 'order', false)`,
		uuid.NewString(), userID, orderID, title, message)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
