package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status, payment PaymentStatus) error
	// UpdateStatusFrom applies the transition only if the order is still in
	// from; reports whether a row was updated.
	UpdateStatusFrom(ctx context.Context, orderID string, from, to Status) (bool, error)
	Delete(ctx context.Context, orderID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, txOptions)
}

func (r *PostgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO orders (id, buyer_id, seller_id, order_date, delivery_address,
		                     estimated_delivery, order_status, payment_status, total_amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.BuyerID, o.SellerID, o.OrderDate, o.DeliveryAddress,
		o.EstimatedDelivery, o.Status, o.PaymentStatus, o.TotalAmount,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, seller_id)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), o.ID, it.ProductID, it.Quantity, it.UnitPrice, it.SellerID,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, buyer_id, seller_id, order_date, delivery_address,
	estimated_delivery, order_status, payment_status, total_amount`

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE seller_id = $1 ORDER BY order_date DESC`, sellerID)
}

func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE buyer_id = $1 ORDER BY order_date DESC`, buyerID)
}

func (r *PostgresRepository) list(ctx context.Context, query, id string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orderID string) ([]LineItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT oi.product_id, p.product_name, oi.quantity, oi.unit_price, oi.seller_id
		 FROM order_items oi
		 JOIN products p ON p.product_id = oi.product_id
		 WHERE oi.order_id = $1`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.SellerID); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, status Status, payment PaymentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET order_status=$2, payment_status=$3, updated_at=now() WHERE id=$1`,
		orderID, status, payment)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateStatusFrom(ctx context.Context, orderID string, from, to Status) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET order_status=$3, updated_at=now() WHERE id=$1 AND order_status=$2`,
		orderID, from, to)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, orderID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.OrderDate, &o.DeliveryAddress,
		&o.EstimatedDelivery, &o.Status, &o.PaymentStatus, &o.TotalAmount)
}
