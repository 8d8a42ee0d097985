// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents a registered account. The password is stored only as a
// one-way adaptive hash; the plaintext never leaves the request that carried it.
type User struct {
	ID           uuid.UUID // PK
	Name         string    // display name
	UserName     string    // unique login name, token subject
	Mail         string    // unique
	PasswordHash string    // bcrypt
	RegisterDate time.Time
}

// Product is a catalog entry.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       string // decimal string, stored as NUMERIC(10,2)
	Stock       int
}

// CartItem is one product line in a user's shopping cart.
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID // FK -> users.id
	ProductID uuid.UUID // FK -> products.id
	Quantity  int
}

// Order is a placed order with its precomputed total.
type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Date       time.Time
	TotalPrice string // decimal string, SUM of detail subtotals
}

// OrderDetail is one line of a placed order. Subtotals are computed at
// placement time from the then-current product price.
type OrderDetail struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	SubTotal  string
}
