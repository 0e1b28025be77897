package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/rotikasir/bakery-pos/app/store"
	"github.com/rotikasir/bakery-pos/models"
)

// OKResponse writes data as a 200 JSON response.
func OKResponse(w http.ResponseWriter, data any) {
	JSONResponse(w, http.StatusOK, data)
}

func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, map[string]string{"error": message})
}

// StoreError maps a persistence error onto a status code. Unknown errors are
// logged and reported with fallback as the message.
func StoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInsufficientPayment):
		ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrProductNotFound), errors.Is(err, models.ErrTransactionNotFound):
		ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrRemoteFailed):
		log.Printf("[http] %s: %v", fallback, err)
		ErrorResponse(w, http.StatusBadGateway, fallback)
	default:
		log.Printf("[http] %s: %v", fallback, err)
		ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}
