package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/DongHyun925/RulePilot/internal/contracts"
	"github.com/DongHyun925/RulePilot/internal/risk"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// StatusFor maps engine errors onto HTTP status codes.
func StatusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, contracts.ErrEmptyPortfolio):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInvalidWeights),
		errors.Is(err, contracts.ErrInvalidPeriod),
		errors.Is(err, contracts.ErrUnsupportedInterval),
		errors.Is(err, risk.ErrInvalidInput),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
