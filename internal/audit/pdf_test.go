package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type captureConverter struct {
	html  string
	calls int
	out   []byte
	err   error
}

func (c *captureConverter) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	c.calls++
	c.html = html
	return c.out, c.err
}

func TestRenderWithoutConverter(t *testing.T) {
	exporter, err := NewPDFExporter(nil)
	if err != nil {
		t.Fatalf("NewPDFExporter: %v", err)
	}
	if _, err := exporter.Render(context.Background(), nil, Filter{}); !errors.Is(err, ErrPDFUnavailable) {
		t.Fatalf("expected ErrPDFUnavailable, got %v", err)
	}
}

func TestRenderBuildsReportHTML(t *testing.T) {
	conv := &captureConverter{out: []byte("%PDF")}
	exporter, err := NewPDFExporter(conv)
	if err != nil {
		t.Fatalf("NewPDFExporter: %v", err)
	}
	exporter.now = func() time.Time {
		return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	}

	actor := int64(2)
	rows := []Record{{
		ID:         5,
		ActorID:    &actor,
		ActorName:  "Clinic Admin",
		Action:     "export_audit_logs",
		Outcome:    OutcomePermit,
		OccurredAt: time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC),
	}}
	filter := Filter{
		From: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	out, err := exporter.Render(context.Background(), rows, filter)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != "%PDF" {
		t.Fatalf("unexpected output: %q", out)
	}
	for _, want := range []string{"Clinic Admin", "export_audit_logs", "2026-03-07 to 2026-03-14", "Generated 2026-03-14 10:00:00"} {
		if !strings.Contains(conv.html, want) {
			t.Fatalf("html missing %q:\n%s", want, conv.html)
		}
	}
}

func TestRenderZeroRowsShowsEmptyMessage(t *testing.T) {
	conv := &captureConverter{out: []byte("%PDF")}
	exporter, err := NewPDFExporter(conv)
	if err != nil {
		t.Fatalf("NewPDFExporter: %v", err)
	}

	if _, err := exporter.Render(context.Background(), nil, Filter{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(conv.html, "No records match the selected filters.") {
		t.Fatalf("missing empty message:\n%s", conv.html)
	}
}
