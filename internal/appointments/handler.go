package appointments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clinicore/clinicore/internal/platform/httpx"
	"github.com/clinicore/clinicore/internal/rbac"
	"github.com/clinicore/clinicore/internal/shared"
)

var validate = validator.New()

// Handler serves scheduling endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs an appointments handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers scheduling endpoints.
func (h *Handler) MountRoutes(r chi.Router, m rbac.Middleware) {
	r.Group(func(gr chi.Router) {
		gr.Use(m.Require(rbac.OpViewAppointments))
		gr.Get("/", h.handleList)
		gr.Get("/{id}", h.handleGet)
	})
	r.Group(func(gr chi.Router) {
		gr.Use(m.Require(rbac.OpEditAppointments))
		gr.Post("/", h.handleCreate)
		gr.Put("/{id}/reschedule", h.handleReschedule)
		gr.Put("/{id}/cancel", h.handleCancel)
	})
}

type appointmentResponse struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	DoctorID    int64     `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(appt Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          appt.ID,
		PatientID:   appt.PatientID,
		DoctorID:    appt.DoctorID,
		ScheduledAt: appt.ScheduledAt,
		Reason:      appt.Reason,
		Status:      string(appt.Status),
		CreatedAt:   appt.CreatedAt,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	var f Filter
	f.PatientID, _ = strconv.ParseInt(q.Get("patient_id"), 10, 64)
	f.DoctorID, _ = strconv.ParseInt(q.Get("doctor_id"), 10, 64)
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from must be RFC 3339")
			return
		}
		f.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must be RFC 3339")
			return
		}
		f.To = &t
	}

	list, total, err := h.service.List(r.Context(), f, page, perPage)
	if err != nil {
		h.logger.Error("list appointments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	rows := make([]appointmentResponse, 0, len(list))
	for _, appt := range list {
		rows = append(rows, toResponse(appt))
	}
	pagination := shared.NewPagination(page, perPage, total)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":        rows,
		"total":       pagination.Total,
		"total_pages": pagination.TotalPages,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("get appointment", slog.Int64("appointment_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*appt))
}

type createRequest struct {
	PatientID   int64     `json:"patient_id" validate:"required,gt=0"`
	DoctorID    int64     `json:"doctor_id" validate:"required,gt=0"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Reason      string    `json:"reason" validate:"max=500"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	appt, err := h.service.Create(r.Context(), CreateParams{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: req.ScheduledAt,
		Reason:      req.Reason,
	})
	if err != nil {
		if errors.Is(err, ErrPastTime) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "scheduled time must be in the future")
			return
		}
		h.logger.Error("create appointment", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*appt))
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

func (h *Handler) handleReschedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	var req rescheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "scheduled_at is required")
		return
	}
	if err := h.service.Reschedule(r.Context(), id, req.ScheduledAt); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		case errors.Is(err, ErrPastTime):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "scheduled time must be in the future")
		case errors.Is(err, ErrCancelled):
			httpx.Problem(w, http.StatusConflict, "Conflict", "appointment is cancelled")
		default:
			h.logger.Error("reschedule appointment", slog.Int64("appointment_id", id), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid appointment id")
		return
	}
	if err := h.service.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("cancel appointment", slog.Int64("appointment_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
