// Package httpserver exposes the storefront over a JSON REST API.
//
// Every request passes through the authentication middleware, which resolves
// a bearer token into a principal when it can. Protected route groups then
// apply RequireAuth; the public surface is the auth endpoints and the health
// probe.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/repository"
	"github.com/mlozanov/storefront/internal/service"
	"github.com/mlozanov/storefront/internal/token"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	auth    service.AuthService
	catalog service.CatalogService
	cart    service.CartService
	orders  service.OrderService

	codec *token.Codec
	users repository.UserRepository
	log   *zap.Logger
}

func NewServer(
	auth service.AuthService,
	catalog service.CatalogService,
	cart service.CartService,
	orders service.OrderService,
	codec *token.Codec,
	users repository.UserRepository,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:    auth,
		catalog: catalog,
		cart:    cart,
		orders:  orders,
		codec:   codec,
		users:   users,
		log:     log,
	}
}

// Router assembles the route tree with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(Recover(s.log))
	r.Use(Logging(s.log))
	r.Use(Authenticate(s.codec, s.users, s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.Login)
		r.Post("/auth/register", s.Register)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", s.ListProducts)
				r.Post("/", s.CreateProduct)
				r.Get("/{id}", s.GetProduct)
				r.Put("/{id}", s.UpdateProduct)
				r.Delete("/{id}", s.DeleteProduct)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.ListCart)
				r.Post("/", s.AddToCart)
				r.Put("/{id}", s.UpdateCartItem)
				r.Delete("/{id}", s.RemoveCartItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.ListOrders)
				r.Post("/", s.PlaceOrder)
				r.Get("/{id}", s.GetOrder)
			})
		})
	})

	return r
}

// serverError logs the failure and answers with an opaque 500.
func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// requestOrServerError distinguishes caller mistakes from server faults.
func (s *Server) requestOrServerError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, errs.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.serverError(w, op, err)
}
