package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
)

// OrderRepo implements OrderRepository using PostgreSQL.
type OrderRepo struct{ db *DB }

// NewOrderRepo constructs an order repository.
func NewOrderRepo(db *DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateFromCart converts the user's cart into an order inside one
// transaction. Subtotals and the total are computed in SQL from the current
// product prices, so no decimal arithmetic happens on the Go side.
func (r *OrderRepo) CreateFromCart(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insOrder = `
INSERT INTO orders (id, user_id, order_date, total_price)
VALUES ($1, $2, now(), 0)`
	if _, err := tx.Exec(ctx, insOrder, orderID, userID); err != nil {
		return nil, err
	}

	const insDetails = `
INSERT INTO order_details (id, order_id, product_id, quantity, sub_total)
SELECT gen_random_uuid(), $1, c.product_id, c.quantity, p.price * c.quantity
FROM cart_items c
JOIN products p ON p.id = c.product_id
WHERE c.user_id = $2`
	tag, err := tx.Exec(ctx, insDetails, orderID, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, errs.ErrEmptyCart
	}

	const updTotal = `
UPDATE orders
SET total_price = (SELECT SUM(sub_total) FROM order_details WHERE order_id=$1)
WHERE id = $1
RETURNING order_date, total_price::text`
	o := model.Order{ID: orderID, UserID: userID}
	if err := tx.QueryRow(ctx, updTotal, orderID).Scan(&o.Date, &o.TotalPrice); err != nil {
		return nil, err
	}

	const clearCart = `DELETE FROM cart_items WHERE user_id=$1`
	if _, err := tx.Exec(ctx, clearCart, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	const q = `
SELECT id, user_id, order_date, total_price::text
FROM orders WHERE user_id=$1 ORDER BY order_date DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Date, &o.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetByID loads one order with its detail lines, scoped to the owner.
func (r *OrderRepo) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, []model.OrderDetail, error) {
	const q = `
SELECT id, user_id, order_date, total_price::text
FROM orders WHERE id=$1 AND user_id=$2`
	var o model.Order
	row := r.db.Pool.QueryRow(ctx, q, orderID, userID)
	if err := row.Scan(&o.ID, &o.UserID, &o.Date, &o.TotalPrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, errs.ErrNotFound
		}
		return nil, nil, err
	}

	const qd = `
SELECT id, order_id, product_id, quantity, sub_total::text
FROM order_details WHERE order_id=$1`
	rows, err := r.db.Pool.Query(ctx, qd, orderID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var details []model.OrderDetail
	for rows.Next() {
		var d model.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.SubTotal); err != nil {
			return nil, nil, err
		}
		details = append(details, d)
	}
	return &o, details, rows.Err()
}
