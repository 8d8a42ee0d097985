package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
)

// CartRepo implements CartRepository using PostgreSQL.
type CartRepo struct{ db *DB }

// NewCartRepo constructs a cart repository.
func NewCartRepo(db *DB) *CartRepo { return &CartRepo{db: db} }

// Add inserts a cart line; a second add of the same product accumulates
// quantity on the existing (user_id, product_id) row. The item is updated
// in place with the persisted id and quantity.
func (r *CartRepo) Add(ctx context.Context, item *model.CartItem) error {
	const q = `
INSERT INTO cart_items (id, user_id, product_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING id, quantity`
	row := r.db.Pool.QueryRow(ctx, q, item.ID, item.UserID, item.ProductID, item.Quantity)
	return row.Scan(&item.ID, &item.Quantity)
}

// ListByUser returns every cart line of the user.
func (r *CartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	const q = `
SELECT id, user_id, product_id, quantity
FROM cart_items WHERE user_id=$1`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartItem
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateQuantity sets the quantity of one cart line, scoped to the owner.
func (r *CartRepo) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	const q = `UPDATE cart_items SET quantity=$3 WHERE id=$2 AND user_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, userID, itemID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes one cart line, scoped to the owner.
func (r *CartRepo) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	const q = `DELETE FROM cart_items WHERE id=$2 AND user_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, userID, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
