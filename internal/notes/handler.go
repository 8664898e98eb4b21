package notes

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

// Handler serves doctor note endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a notes handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers note endpoints. Mount inside the patients
// subtree so notes share the {id} parameter.
func (h *Handler) MountRoutes(r chi.Router, m rbac.Middleware) {
	r.With(m.Require(rbac.OpViewDoctorNotes)).Get("/{id}/notes", h.handleList)
	r.With(m.Require(rbac.OpCreateDoctorNote)).Post("/{id}/notes", h.handleCreate)
}

type noteResponse struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patient_id"`
	AppointmentID *int64    `json:"appointment_id,omitempty"`
	DoctorID      int64     `json:"doctor_id"`
	DoctorName    string    `json:"doctor_name"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

func toResponse(note DoctorNote) noteResponse {
	return noteResponse{
		ID:            note.ID,
		PatientID:     note.PatientID,
		AppointmentID: note.AppointmentID,
		DoctorID:      note.DoctorID,
		DoctorName:    note.DoctorName,
		Content:       note.Content,
		CreatedAt:     note.CreatedAt,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid patient id")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	list, total, err := h.service.ListByPatient(r.Context(), patientID, page, perPage)
	if err != nil {
		h.logger.Error("list notes", slog.Int64("patient_id", patientID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	rows := make([]noteResponse, 0, len(list))
	for _, note := range list {
		rows = append(rows, toResponse(note))
	}
	pagination := shared.NewPagination(page, perPage, total)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":        rows,
		"total":       pagination.Total,
		"total_pages": pagination.TotalPages,
	})
}

type createRequest struct {
	AppointmentID *int64 `json:"appointment_id" validate:"omitempty,gt=0"`
	Content       string `json:"content" validate:"required,max=10000"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid patient id")
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doctorID := shared.UserIDFromContext(r.Context())
	if doctorID == 0 {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	note, err := h.service.Create(r.Context(), CreateParams{
		PatientID:     patientID,
		AppointmentID: req.AppointmentID,
		DoctorID:      doctorID,
		Content:       req.Content,
	})
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "content must not be empty")
			return
		}
		h.logger.Error("create note", slog.Int64("patient_id", patientID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*note))
}
