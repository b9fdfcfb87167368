package handler

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type catalogItemResponse struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Price string `json:"price"`
}

func catalogItem(id int64, typ string, price decimal.Decimal) catalogItemResponse {
	return catalogItemResponse{ID: id, Type: typ, Price: formatPrice(price)}
}

func (h *Handler) listCoffees(w http.ResponseWriter, r *http.Request) {
	coffees, err := h.coffees.ListCoffees(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	resp := make([]catalogItemResponse, len(coffees))
	for i, c := range coffees {
		resp[i] = catalogItem(c.ID, c.Type, c.Price)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listToppings(w http.ResponseWriter, r *http.Request) {
	toppings, err := h.toppings.ListToppings(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	resp := make([]catalogItemResponse, len(toppings))
	for i, t := range toppings {
		resp[i] = catalogItem(t.ID, t.Type, t.Price)
	}
	writeJSON(w, http.StatusOK, resp)
}
