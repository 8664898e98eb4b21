package telephony

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/clinicore/clinicore/internal/platform/httpx"
	"github.com/clinicore/clinicore/internal/rbac"
	"github.com/clinicore/clinicore/internal/shared"
)

const webhookTokenHeader = "X-Webhook-Token"

const webhookRateLimit = 120

// Handler serves the provider webhook and the event listing.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	webhookToken string
}

// NewHandler constructs a telephony handler. webhookToken authenticates
// the provider; an empty token disables the webhook entirely.
func NewHandler(logger *slog.Logger, service *Service, webhookToken string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, webhookToken: webhookToken}
}

// MountRoutes registers telephony endpoints. The webhook authenticates
// by shared token, not by session.
func (h *Handler) MountRoutes(r chi.Router, m rbac.Middleware) {
	limiter := httprate.Limit(webhookRateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	r.With(limiter).Post("/webhook", h.handleWebhook)
	r.With(m.Require(rbac.OpViewTelephonyLogs)).Get("/", h.handleList)
}

type webhookRequest struct {
	Kind       string    `json:"kind"`
	Direction  string    `json:"direction"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Status     string    `json:"status"`
	Body       string    `json:"body"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.webhookToken == "" || !tokenMatches(r.Header.Get(webhookTokenHeader), h.webhookToken) {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid webhook token")
		return
	}
	var req webhookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	err := h.service.Ingest(r.Context(), Event{
		Kind:       req.Kind,
		Direction:  req.Direction,
		FromNumber: req.From,
		ToNumber:   req.To,
		Status:     req.Status,
		Body:       req.Body,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown kind or direction")
			return
		}
		h.logger.Error("ingest telephony event", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type logResponse struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	Direction  string    `json:"direction"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Status     string    `json:"status"`
	Body       string    `json:"body"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	f := Filter{
		Kind:      q.Get("kind"),
		Direction: q.Get("direction"),
		Number:    q.Get("number"),
	}
	if f.Kind != "" && !Kind(f.Kind).Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "kind must be sms, call or fax")
		return
	}
	if f.Direction != "" && !Direction(f.Direction).Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "direction must be inbound or outbound")
		return
	}
	list, total, err := h.service.List(r.Context(), f, page, perPage)
	if err != nil {
		h.logger.Error("list telephony events", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	rows := make([]logResponse, 0, len(list))
	for _, entry := range list {
		rows = append(rows, logResponse{
			ID:         entry.ID,
			Kind:       string(entry.Kind),
			Direction:  string(entry.Direction),
			From:       entry.FromNumber,
			To:         entry.ToNumber,
			Status:     entry.Status,
			Body:       entry.Body,
			OccurredAt: entry.OccurredAt,
		})
	}
	pagination := shared.NewPagination(page, perPage, total)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":        rows,
		"total":       pagination.Total,
		"total_pages": pagination.TotalPages,
	})
}

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
