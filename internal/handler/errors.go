package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/justcoffee/internal/domain/catalog"
	"github.com/xenking/justcoffee/internal/domain/order"
)

// ErrInvalidInput marks requests rejected before reaching the order service.
var ErrInvalidInput = errors.New("invalid input")

type invalidInputError struct {
	msg string
}

func (e *invalidInputError) Error() string { return e.msg }

func (e *invalidInputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(format string, args ...any) error {
	return &invalidInputError{msg: fmt.Sprintf(format, args...)}
}

// errorResponse mirrors the {code, message} error body of the API.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Code: code, Message: msg})
}

// fail maps err to a status code. Unexpected errors are logged and hidden
// from the client.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cnf *order.CoffeeNotFoundError
		tnf *order.ToppingNotFoundError
	)
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &cnf), errors.As(err, &tnf), errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
