package audithttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinicore/internal/audit"
)

type stubService struct {
	rows       []audit.Record
	lastFilter audit.Filter
}

func (s *stubService) List(ctx context.Context, f audit.Filter, page, pageSize int) (audit.Result, error) {
	s.lastFilter = f
	if pageSize <= 0 {
		pageSize = 20
	}
	return audit.Result{
		Rows:   s.rows,
		Paging: audit.PagingInfo{Page: page, PageSize: pageSize},
	}, nil
}

func (s *stubService) Export(ctx context.Context, f audit.Filter) ([]audit.Record, error) {
	s.lastFilter = f
	return s.rows, nil
}

type stubPDF struct {
	out []byte
	err error
}

func (p *stubPDF) Render(ctx context.Context, rows []audit.Record, f audit.Filter) ([]byte, error) {
	return p.out, p.err
}

func fixedHandler(service ListService, pdf PDFRenderer) *Handler {
	h := NewHandler(nil, service, pdf)
	h.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return h
}

func TestHandleListReturnsRowsAndPaging(t *testing.T) {
	actor := int64(2)
	service := &stubService{rows: []audit.Record{{
		ID:         9,
		ActorID:    &actor,
		ActorName:  "Clinic Admin",
		Action:     "view_audit_logs",
		Outcome:    audit.OutcomePermit,
		OccurredAt: time.Date(2026, 3, 13, 8, 0, 0, 0, time.UTC),
	}}}
	h := fixedHandler(service, nil)

	rr := httptest.NewRecorder()
	h.handleList(rr, httptest.NewRequest(http.MethodGet, "/audit", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Rows []audit.ExportRow `json:"rows"`
		Paging struct {
			Page int `json:"page"`
		} `json:"paging"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 1)
	require.Equal(t, "Clinic Admin", resp.Rows[0].Actor)
	require.Equal(t, 1, resp.Paging.Page)
}

func TestHandleListDefaultsDateRange(t *testing.T) {
	service := &stubService{}
	h := fixedHandler(service, nil)

	rr := httptest.NewRecorder()
	h.handleList(rr, httptest.NewRequest(http.MethodGet, "/audit", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "2026-03-07", service.lastFilter.From.Format("2006-01-02"))
	require.Equal(t, "2026-03-14", service.lastFilter.To.Format("2006-01-02"))
}

func TestHandleListRejectsBadFilters(t *testing.T) {
	h := fixedHandler(&stubService{}, nil)

	cases := map[string]string{
		"bad outcome":  "/audit?outcome=maybe",
		"bad to":       "/audit?to=yesterday",
		"bad page":     "/audit?page=-1",
		"range flip":   "/audit?from=2026-03-14&to=2026-03-01",
		"range too so": "/audit?from=2025-01-01&to=2026-03-14",
	}
	for name, target := range cases {
		rr := httptest.NewRecorder()
		h.handleList(rr, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

func TestHandleExportCSVSetsAttachment(t *testing.T) {
	h := fixedHandler(&stubService{}, nil)

	rr := httptest.NewRecorder()
	h.handleExportCSV(rr, httptest.NewRequest(http.MethodGet, "/audit/export.csv", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `attachment; filename="audit-log.csv"`, rr.Header().Get("Content-Disposition"))
	require.True(t, strings.HasPrefix(rr.Body.String(), "Actor,Action,Detail,Timestamp"))
}

func TestHandleExportJSONZeroRows(t *testing.T) {
	h := fixedHandler(&stubService{}, nil)

	rr := httptest.NewRecorder()
	h.handleExportJSON(rr, httptest.NewRequest(http.MethodGet, "/audit/export.json", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, `attachment; filename="audit-log.json"`, rr.Header().Get("Content-Disposition"))
	require.JSONEq(t, "[]", rr.Body.String())
}

func TestHandleExportPDFWithoutRenderer(t *testing.T) {
	h := fixedHandler(&stubService{}, nil)

	rr := httptest.NewRecorder()
	h.handleExportPDF(rr, httptest.NewRequest(http.MethodGet, "/audit/export.pdf", nil))

	require.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestHandleExportPDFUnavailableConverter(t *testing.T) {
	h := fixedHandler(&stubService{}, &stubPDF{err: audit.ErrPDFUnavailable})

	rr := httptest.NewRecorder()
	h.handleExportPDF(rr, httptest.NewRequest(http.MethodGet, "/audit/export.pdf", nil))

	require.Equal(t, http.StatusNotImplemented, rr.Code)
}

func TestHandleExportPDFSuccess(t *testing.T) {
	h := fixedHandler(&stubService{}, &stubPDF{out: []byte("%PDF-1.7")})

	rr := httptest.NewRecorder()
	h.handleExportPDF(rr, httptest.NewRequest(http.MethodGet, "/audit/export.pdf", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Equal(t, "%PDF-1.7", rr.Body.String())
}
