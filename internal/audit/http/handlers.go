package audithttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/platform/httpx"
)

const (
	defaultDateRange = 7 * 24 * time.Hour
	maxDateRangeDays = 90
)

// ListService defines the business contract for audit queries.
type ListService interface {
	List(ctx context.Context, f audit.Filter, page, pageSize int) (audit.Result, error)
	Export(ctx context.Context, f audit.Filter) ([]audit.Record, error)
}

// PDFRenderer renders records into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, rows []audit.Record, f audit.Filter) ([]byte, error)
}

// Handler serves the audit listing and export endpoints. Authorization
// happens in the route middleware; by the time a handler runs the
// permit decision is already recorded.
type Handler struct {
	logger  *slog.Logger
	service ListService
	pdf     PDFRenderer
	now     func() time.Time
}

// NewHandler constructs an audit handler.
func NewHandler(logger *slog.Logger, service ListService, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, pdf: pdf, now: time.Now}
}

type listResponse struct {
	Rows   []audit.ExportRow `json:"rows"`
	Paging pagingResponse    `json:"paging"`
}

type pagingResponse struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters, page, pageSize, err := h.parseQuery(r)
	if err != nil {
		h.respondFilterError(w, err)
		return
	}
	result, err := h.service.List(r.Context(), filters, page, pageSize)
	if err != nil {
		h.respondServerError(w, "list audit records", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Rows: audit.ExportRows(result.Rows),
		Paging: pagingResponse{
			Page:     result.Paging.Page,
			PageSize: result.Paging.PageSize,
			HasNext:  result.Paging.HasNext,
		},
	})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filters, _, _, err := h.parseQuery(r)
	if err != nil {
		h.respondFilterError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.respondServerError(w, "export audit csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-log.csv"`)
	if err := audit.WriteCSV(w, rows); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	filters, _, _, err := h.parseQuery(r)
	if err != nil {
		h.respondFilterError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.respondServerError(w, "export audit json", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-log.json"`)
	if err := audit.WriteJSON(w, rows); err != nil {
		h.logger.Warn("write json", slog.Any("error", err))
	}
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusNotImplemented, "Not Implemented", "pdf export not configured")
		return
	}
	filters, _, _, err := h.parseQuery(r)
	if err != nil {
		h.respondFilterError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.respondServerError(w, "export audit pdf data", err)
		return
	}
	pdfBytes, err := h.pdf.Render(r.Context(), rows, filters)
	if err != nil {
		if errors.Is(err, audit.ErrPDFUnavailable) {
			httpx.Problem(w, http.StatusNotImplemented, "Not Implemented", "pdf export not configured")
			return
		}
		h.respondServerError(w, "render audit pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-log.pdf"`)
	if _, err := w.Write(pdfBytes); err != nil {
		h.logger.Warn("write pdf", slog.Any("error", err))
	}
}

func (h *Handler) parseQuery(r *http.Request) (audit.Filter, int, int, error) {
	query := r.URL.Query()
	now := h.now().UTC()

	toStr := strings.TrimSpace(query.Get("to"))
	if toStr == "" {
		toStr = now.Format("2006-01-02")
	}
	toDate, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return audit.Filter{}, 0, 0, validationError{field: "to"}
	}
	fromStr := strings.TrimSpace(query.Get("from"))
	if fromStr == "" {
		fromStr = toDate.Add(-defaultDateRange).Format("2006-01-02")
	}
	fromDate, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return audit.Filter{}, 0, 0, validationError{field: "from"}
	}
	if fromDate.After(toDate) {
		return audit.Filter{}, 0, 0, validationError{field: "range"}
	}
	if toDate.Sub(fromDate) > maxDateRangeDays*24*time.Hour {
		return audit.Filter{}, 0, 0, validationError{field: "range"}
	}
	// Include the whole "to" day.
	toEnd := toDate.Add(24*time.Hour - time.Nanosecond)

	var outcome audit.Outcome
	if v := strings.TrimSpace(query.Get("outcome")); v != "" {
		outcome = audit.Outcome(strings.ToLower(v))
		if !outcome.Valid() {
			return audit.Filter{}, 0, 0, validationError{field: "outcome"}
		}
	}

	page := 1
	if v := strings.TrimSpace(query.Get("page")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filter{}, 0, 0, validationError{field: "page"}
		}
		page = parsed
	}
	pageSize := 0
	if v := strings.TrimSpace(query.Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.Filter{}, 0, 0, validationError{field: "page_size"}
		}
		pageSize = parsed
	}

	return audit.Filter{
		Actor:   strings.TrimSpace(query.Get("actor")),
		Action:  strings.TrimSpace(query.Get("action")),
		Outcome: outcome,
		From:    fromDate,
		To:      toEnd,
	}, page, pageSize, nil
}

func (h *Handler) respondFilterError(w http.ResponseWriter, err error) {
	var v validationError
	if errors.As(err, &v) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+v.field)
		return
	}
	h.respondServerError(w, "validate filters", err)
}

func (h *Handler) respondServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

type validationError struct {
	field string
}

func (validationError) Error() string {
	return "validation failed"
}
