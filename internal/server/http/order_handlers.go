package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
)

type orderResponse struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	TotalPrice string `json:"total_price"`
}

type orderDetailResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	SubTotal  string `json:"sub_total"`
}

type orderWithDetailsResponse struct {
	orderResponse
	Details []orderDetailResponse `json:"details"`
}

func toOrderResponse(o model.Order) orderResponse {
	return orderResponse{
		ID:         o.ID.String(),
		Date:       o.Date.Format(time.RFC3339),
		TotalPrice: o.TotalPrice,
	}
}

// PlaceOrder handles POST /api/orders: it converts the caller's cart into an
// order in one shot. An empty cart is a caller mistake, not a server fault.
func (s *Server) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := PrincipalFromCtx(r.Context())

	o, err := s.orders.Place(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, errs.ErrEmptyCart) {
			writeError(w, http.StatusConflict, "cart is empty")
			return
		}
		s.requestOrServerError(w, "place order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(*o))
}

// ListOrders handles GET /api/orders.
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	u, _ := PrincipalFromCtx(r.Context())

	os, err := s.orders.List(r.Context(), u.ID)
	if err != nil {
		s.requestOrServerError(w, "list orders", err)
		return
	}
	out := make([]orderResponse, 0, len(os))
	for _, o := range os {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetOrder handles GET /api/orders/{id}. Orders belonging to other users are
// indistinguishable from missing ones.
func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := PrincipalFromCtx(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed id")
		return
	}

	o, details, err := s.orders.Get(r.Context(), u.ID, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		s.requestOrServerError(w, "get order", err)
		return
	}

	resp := orderWithDetailsResponse{orderResponse: toOrderResponse(*o)}
	resp.Details = make([]orderDetailResponse, 0, len(details))
	for _, d := range details {
		resp.Details = append(resp.Details, orderDetailResponse{
			ID:        d.ID.String(),
			ProductID: d.ProductID.String(),
			Quantity:  d.Quantity,
			SubTotal:  d.SubTotal,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
