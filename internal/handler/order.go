package handler

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/justcoffee/internal/domain/order"
)

// orderResponse is the wire form of a stored order.
type orderResponse struct {
	ID          int64   `json:"id"`
	CoffeeID    int64   `json:"coffeeId"`
	ToppingIDs  []int64 `json:"toppingIds"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
}

type createOrderRequest struct {
	CoffeeID   *int64  `json:"coffeeId"`
	ToppingIDs []int64 `json:"toppingIds"`
}

type createOrderResponse struct {
	ID int64 `json:"id"`
}

// updateOrderRequest is a full record. The id in the path wins over any id in
// the body.
type updateOrderRequest struct {
	CoffeeID    int64           `json:"coffeeId"`
	ToppingIDs  []int64         `json:"toppingIds"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func toResponse(o *order.CoffeeOrder) *orderResponse {
	if o == nil {
		return nil
	}
	toppings := o.ToppingIDs
	if toppings == nil {
		toppings = []int64{}
	}
	return &orderResponse{
		ID:          o.ID,
		CoffeeID:    o.CoffeeID,
		ToppingIDs:  toppings,
		Description: o.Description,
		Price:       formatPrice(o.Price),
	}
}

// formatPrice keeps at least two decimal places and never drops precision.
func formatPrice(p decimal.Decimal) string {
	if p.Exponent() >= -2 {
		return p.StringFixed(2)
	}
	return p.String()
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	slices.SortFunc(orders, func(a, b order.CoffeeOrder) int { return cmp.Compare(a.ID, b.ID) })

	resp := make([]*orderResponse, len(orders))
	for i := range orders {
		resp[i] = toResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.CoffeeID == nil {
		fail(w, r, invalidInput("coffeeId is required"))
		return
	}

	id, err := h.orders.Create(r.Context(), *req.CoffeeID, req.ToppingIDs)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/orders/"+strconv.FormatInt(id, 10))
	writeJSON(w, http.StatusCreated, createOrderResponse{ID: id})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	o, ok, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "order "+strconv.FormatInt(id, 10)+" not found")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) getOrdersBatch(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		fail(w, r, err)
		return
	}
	orders, err := h.orders.GetManyByID(r.Context(), ids)
	if err != nil {
		fail(w, r, err)
		return
	}
	resp := make([]*orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req updateOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	stored, err := h.orders.Update(r.Context(), order.CoffeeOrder{
		ID:          id,
		CoffeeID:    req.CoffeeID,
		ToppingIDs:  req.ToppingIDs,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(stored))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := h.orders.DeleteByID(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteAllOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteAll(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return invalidInput("malformed request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidInput("order id %q is not an integer", raw)
	}
	return id, nil
}

// parseIDs reads a comma separated id list. An empty list is valid.
func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return []int64{}, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, invalidInput("order id %q is not an integer", p)
		}
		ids[i] = id
	}
	return ids, nil
}
