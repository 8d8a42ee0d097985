package httpserver

import (
	"errors"
	"net/http"

	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
)

type cartAddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type cartUpdateRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func toCartItemResponse(it model.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:        it.ID.String(),
		ProductID: it.ProductID.String(),
		Quantity:  it.Quantity,
	}
}

// ListCart handles GET /api/cart.
func (s *Server) ListCart(w http.ResponseWriter, r *http.Request) {
	u, _ := PrincipalFromCtx(r.Context())

	items, err := s.cart.List(r.Context(), u.ID)
	if err != nil {
		s.requestOrServerError(w, "list cart", err)
		return
	}
	out := make([]cartItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toCartItemResponse(it))
	}
	writeJSON(w, http.StatusOK, out)
}

// AddToCart handles POST /api/cart. Adding a product already in the cart
// accumulates its quantity.
func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	u, _ := PrincipalFromCtx(r.Context())

	req, ok := decodeJSON[cartAddRequest](w, r)
	if !ok {
		return
	}
	productID, err := parseID(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed product id")
		return
	}

	item, err := s.cart.Add(r.Context(), u.ID, productID, req.Quantity)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.requestOrServerError(w, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartItemResponse(*item))
}

// UpdateCartItem handles PUT /api/cart/{id}.
func (s *Server) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	u, _ := PrincipalFromCtx(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed id")
		return
	}
	req, ok := decodeJSON[cartUpdateRequest](w, r)
	if !ok {
		return
	}

	if err := s.cart.UpdateQuantity(r.Context(), u.ID, id, req.Quantity); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		s.requestOrServerError(w, "update cart item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveCartItem handles DELETE /api/cart/{id}.
func (s *Server) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	u, _ := PrincipalFromCtx(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed id")
		return
	}

	if err := s.cart.Remove(r.Context(), u.ID, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		s.requestOrServerError(w, "remove cart item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
