package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/grupoalpa/eventos-ops/internal/pricing"
)

// PricingHandler exposes reference price revisions and history
type PricingHandler struct {
	service *pricing.Service
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(service *pricing.Service) *PricingHandler {
	return &PricingHandler{service: service}
}

type revisePriceRequest struct {
	ResourceID string  `json:"resource_id"`
	NewPrice   float64 `json:"new_price"`
}

// Revise handles POST of a reference price revision.
func (h *PricingHandler) Revise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req revisePriceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ResourceID == "" {
		http.Error(w, "resource_id is required", http.StatusBadRequest)
		return
	}

	created, err := h.service.ReviseReferencePrice(r.Context(), req.ResourceID, req.NewPrice)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrResourceNotFound):
			http.Error(w, "Resource not found", http.StatusNotFound)
		case errors.Is(err, pricing.ErrInvalidPrice):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "Failed to revise price", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// History handles GET of a resource's price history.
func (h *PricingHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resourceID := r.URL.Query().Get("resource_id")
	if resourceID == "" {
		http.Error(w, "resource_id is required", http.StatusBadRequest)
		return
	}

	history, err := h.service.History(r.Context(), resourceID)
	if err != nil {
		http.Error(w, "Failed to load price history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
