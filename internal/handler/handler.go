// Package handler exposes the order store and the catalog over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/justcoffee/internal/domain/catalog"
	"github.com/xenking/justcoffee/internal/domain/order"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler serves the JSON API under /api.
type Handler struct {
	orders   *order.Service
	coffees  catalog.CoffeeRepository
	toppings catalog.ToppingRepository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	coffees catalog.CoffeeRepository,
	toppings catalog.ToppingRepository,
) *Handler {
	return &Handler{
		orders:   orders,
		coffees:  coffees,
		toppings: toppings,
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
			r.Delete("/", h.deleteAllOrders)
			r.Get("/batch", h.getOrdersBatch)
			r.Get("/{id}", h.getOrder)
			r.Put("/{id}", h.updateOrder)
			r.Delete("/{id}", h.deleteOrder)
		})
		r.Get("/coffees", h.listCoffees)
		r.Get("/toppings", h.listToppings)
	})
}

// Router returns a chi router with the API routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	h.Register(r)
	return r
}
