package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("product not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	Get(ctx context.Context, productID string) (Product, error)
	SetStock(ctx context.Context, productID string, stock int) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, productID string) (Product, error)
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `product_id, product_name, price, stock, store_id, seller_id`

func (r *PostgresRepository) Get(ctx context.Context, productID string) (Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_id=$1`, productID)
	return scanProduct(row)
}

// GetForUpdate reads the product inside the caller's transaction, locking the
// row until commit. Callers re-check stock against this read, not an earlier one.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, productID string) (Product, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_id=$1 FOR UPDATE`, productID)
	return scanProduct(row)
}

func (r *PostgresRepository) SetStock(ctx context.Context, productID string, stock int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE products SET stock=$2, updated_at=now()
		WHERE product_id=$1
	`, productID, stock)
	return err
}

// DecrementStock assumes the caller already holds the row lock via GetForUpdate
// and has verified quantity <= stock.
func (r *PostgresRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	_, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at=now()
		WHERE product_id=$1
	`, productID, quantity)
	return err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var storeID, sellerID *string
	if err := row.Scan(&p.ProductID, &p.Name, &p.Price, &p.Stock, &storeID, &sellerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if storeID != nil {
		p.StoreID = *storeID
	}
	if sellerID != nil {
		p.SellerID = *sellerID
	}
	return p, nil
}
