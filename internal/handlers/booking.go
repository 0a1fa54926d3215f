package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/grupoalpa/eventos-ops/internal/booking"
	"github.com/grupoalpa/eventos-ops/internal/db"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

// BookingHandler exposes availability checks and assignation CRUD
type BookingHandler struct {
	service *booking.Service
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service *booking.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

type createAssignationRequest struct {
	EventID           string  `json:"event_id"`
	ResourceID        string  `json:"resource_id"`
	AvailableFrom     string  `json:"available_from"` // RFC 3339
	AvailableTo       string  `json:"available_to"`
	PaymentPercentage float64 `json:"payment_percentage"`
	RequiredWorkers   int     `json:"required_workers"`
}

// Assignations routes POST (create) and DELETE (supersession) requests.
func (h *BookingHandler) Assignations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createAssignation(w, r)
	case http.MethodDelete:
		h.deleteAssignation(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BookingHandler) createAssignation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req createAssignationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	from, err := time.Parse(time.RFC3339, req.AvailableFrom)
	if err != nil {
		http.Error(w, "available_from must be RFC 3339", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, req.AvailableTo)
	if err != nil {
		http.Error(w, "available_to must be RFC 3339", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateAssignation(r.Context(), booking.CreateAssignationInput{
		EventID:           req.EventID,
		ResourceID:        req.ResourceID,
		From:              from,
		To:                to,
		PaymentPercentage: req.PaymentPercentage,
		RequiredWorkers:   req.RequiredWorkers,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *BookingHandler) deleteAssignation(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteAssignation(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Assignation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete assignation", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Availability handles GET availability probes.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	resourceID := q.Get("resource_id")
	if resourceID == "" {
		http.Error(w, "resource_id is required", http.StatusBadRequest)
		return
	}

	from, err := time.Parse(time.RFC3339, q.Get("from"))
	if err != nil {
		http.Error(w, "from must be RFC 3339", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, q.Get("to"))
	if err != nil {
		http.Error(w, "to must be RFC 3339", http.StatusBadRequest)
		return
	}

	available, err := h.service.IsAvailable(r.Context(), resourceID, from, to, q.Get("exclude_code"))
	if err != nil {
		if errors.Is(err, booking.ErrInvalidWindow) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to check availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"available": available})
}

type reconcileWorkersRequest struct {
	AssignationID string                    `json:"assignation_id"`
	Workers       []models.WorkerAssignment `json:"workers"`
}

// ReconcileWorkers handles PATCH of the assigned worker list.
func (h *BookingHandler) ReconcileWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req reconcileWorkersRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.AssignationID == "" {
		http.Error(w, "assignation_id is required", http.StatusBadRequest)
		return
	}

	updated, err := h.service.ReconcileWorkers(r.Context(), req.AssignationID, req.Workers)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			http.Error(w, "Assignation not found", http.StatusNotFound)
		case errors.Is(err, booking.ErrNotWorkerAssignation),
			errors.Is(err, booking.ErrWorkerCountExceeded):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to reconcile workers", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func writeBookingError(w http.ResponseWriter, err error) {
	var conflict *booking.ResourceAlreadyAssignedError
	switch {
	case errors.Is(err, booking.ErrEventNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
	case errors.Is(err, booking.ErrResourceNotFound):
		http.Error(w, "Resource not found", http.StatusNotFound)
	case errors.Is(err, booking.ErrInvalidWindow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &conflict):
		http.Error(w, conflict.Error(), http.StatusConflict)
	default:
		http.Error(w, "Failed to create assignation", http.StatusInternalServerError)
	}
}
