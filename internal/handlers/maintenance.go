package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/grupoalpa/eventos-ops/internal/maintenance"
	"github.com/grupoalpa/eventos-ops/internal/models"
)

// MaintenanceHandler exposes maintenance creation and state transitions
type MaintenanceHandler struct {
	service *maintenance.Service
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(service *maintenance.Service) *MaintenanceHandler {
	return &MaintenanceHandler{service: service}
}

type createMaintenanceRequest struct {
	ResourceID  string `json:"resource_id"`
	Date        string `json:"date"` // RFC 3339
	Description string `json:"description"`
}

// Create handles POST of a corrective maintenance. Preventive records are
// produced by the daily scheduler, not through this endpoint.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req createMaintenanceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ResourceID == "" {
		http.Error(w, "resource_id is required", http.StatusBadRequest)
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		http.Error(w, "date must be RFC 3339", http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateCorrective(r.Context(), maintenance.CreateCorrectiveInput{
		ResourceID:  req.ResourceID,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		writeMaintenanceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

type updateStatusRequest struct {
	MaintenanceID string `json:"maintenance_id"`
	Status        string `json:"status"`
	NewDate       string `json:"new_date,omitempty"` // RFC 3339, REAGENDADO only
	Reason        string `json:"reason,omitempty"`
}

// UpdateStatus handles PATCH of a maintenance state transition.
func (h *MaintenanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.MaintenanceID == "" {
		http.Error(w, "maintenance_id is required", http.StatusBadRequest)
		return
	}

	status := models.MaintenanceStatus(req.Status)
	if !models.IsValidMaintenanceStatus(status) {
		http.Error(w, "Invalid maintenance status", http.StatusBadRequest)
		return
	}

	opts := maintenance.TransitionOptions{Reason: req.Reason}
	if req.NewDate != "" {
		newDate, err := time.Parse(time.RFC3339, req.NewDate)
		if err != nil {
			http.Error(w, "new_date must be RFC 3339", http.StatusBadRequest)
			return
		}
		opts.NewDate = &newDate
	}

	updated, err := h.service.UpdateStatus(r.Context(), req.MaintenanceID, status, opts)
	if err != nil {
		writeMaintenanceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func writeMaintenanceError(w http.ResponseWriter, err error) {
	var invalid *maintenance.InvalidTransitionError
	switch {
	case errors.Is(err, maintenance.ErrResourceNotFound):
		http.Error(w, "Resource not found", http.StatusNotFound)
	case errors.Is(err, maintenance.ErrMaintenanceNotFound):
		http.Error(w, "Maintenance not found", http.StatusNotFound)
	case errors.Is(err, maintenance.ErrRescheduleDateRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, maintenance.ErrResourceUnderMaintenance),
		errors.Is(err, maintenance.ErrResourceNotDamaged),
		errors.Is(err, maintenance.ErrMaintenanceAlreadyFinished),
		errors.Is(err, maintenance.ErrPreviousMaintenanceNotFinalized),
		errors.Is(err, maintenance.ErrCorrectiveMaintenanceNotFinalized),
		errors.Is(err, maintenance.ErrMaintenanceDateNotToday):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &invalid):
		http.Error(w, invalid.Error(), http.StatusConflict)
	default:
		http.Error(w, "Failed to update maintenance", http.StatusInternalServerError)
	}
}
