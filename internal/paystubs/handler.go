package paystubs

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

// Handler serves paystub endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a paystubs handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers paystub endpoints. Staff see only their own
// stubs; administration manages everyone's.
func (h *Handler) MountRoutes(r chi.Router, m rbac.Middleware) {
	r.With(m.Require(rbac.OpViewOwnPaystubs)).Get("/mine", h.handleListMine)
	r.Group(func(gr chi.Router) {
		gr.Use(m.Require(rbac.OpManagePaystubs))
		gr.Get("/", h.handleList)
		gr.Post("/", h.handleCreate)
	})
}

type paystubResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name"`
	Period     string    `json:"period"`
	FilePath   string    `json:"file_path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toResponse(stub Paystub) paystubResponse {
	return paystubResponse{
		ID:         stub.ID,
		UserID:     stub.UserID,
		UserName:   stub.UserName,
		Period:     stub.Period,
		FilePath:   stub.FilePath,
		UploadedAt: stub.UploadedAt,
	}
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, userID int64) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	list, total, err := h.service.List(r.Context(), userID, page, perPage)
	if err != nil {
		h.logger.Error("list paystubs", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	rows := make([]paystubResponse, 0, len(list))
	for _, stub := range list {
		rows = append(rows, toResponse(stub))
	}
	pagination := shared.NewPagination(page, perPage, total)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":        rows,
		"total":       pagination.Total,
		"total_pages": pagination.TotalPages,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	h.respondList(w, r, userID)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	userID := shared.UserIDFromContext(r.Context())
	if userID == 0 {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	h.respondList(w, r, userID)
}

type createRequest struct {
	UserID   int64  `json:"user_id" validate:"required,gt=0"`
	Period   string `json:"period" validate:"required"`
	FilePath string `json:"file_path" validate:"required,max=500"`
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
	stub, err := h.service.Create(r.Context(), req.UserID, req.Period, req.FilePath)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPeriod):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "period must be YYYY-MM")
		case errors.Is(err, ErrDuplicate):
			httpx.Problem(w, http.StatusConflict, "Duplicate", "stub already recorded for that period")
		default:
			h.logger.Error("create paystub", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*stub))
}
