package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrPDFUnavailable signals that no PDF renderer is configured.
var ErrPDFUnavailable = errors.New("audit: pdf renderer unavailable")

// HTMLConverter turns rendered HTML into PDF bytes (Gotenberg in
// production).
type HTMLConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 11px; color: #1a1a1a; }
  h1 { font-size: 16px; margin-bottom: 2px; }
  .meta { color: #666; margin-bottom: 12px; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; border-bottom: 2px solid #333; padding: 4px 6px; }
  td { border-bottom: 1px solid #ddd; padding: 4px 6px; vertical-align: top; }
  td.deny { color: #a40000; }
  .empty { color: #666; padding: 16px 6px; font-style: italic; }
</style>
</head>
<body>
<h1>Audit Log</h1>
<div class="meta">Generated {{.GeneratedAt}} UTC{{if .RangeLabel}} &middot; {{.RangeLabel}}{{end}}</div>
<table>
  <thead>
    <tr><th>Actor</th><th>Action</th><th>Detail</th><th>Outcome</th><th>Timestamp</th></tr>
  </thead>
  <tbody>
    {{range .Rows}}
    <tr>
      <td>{{.Actor}}</td>
      <td>{{.Action}}</td>
      <td>{{.Detail}}</td>
      <td{{if eq .Outcome "deny"}} class="deny"{{end}}>{{.Outcome}}</td>
      <td>{{.Timestamp}}</td>
    </tr>
    {{else}}
    <tr><td colspan="5" class="empty">No records match the selected filters.</td></tr>
    {{end}}
  </tbody>
</table>
</body>
</html>`

type reportData struct {
	GeneratedAt string
	RangeLabel  string
	Rows        []ExportRow
}

// PDFExporter renders the audit report HTML and converts it through a
// Gotenberg-compatible service. Concurrent identical renders are
// deduplicated with singleflight.
type PDFExporter struct {
	converter HTMLConverter
	tpl       *template.Template
	group     singleflight.Group
	now       func() time.Time
}

// NewPDFExporter parses the report template.
func NewPDFExporter(converter HTMLConverter) (*PDFExporter, error) {
	tpl, err := template.New("audit_report").Parse(reportHTML)
	if err != nil {
		return nil, fmt.Errorf("audit: parse report template: %w", err)
	}
	return &PDFExporter{converter: converter, tpl: tpl, now: time.Now}, nil
}

// Render produces PDF bytes for the given rows. Zero rows renders an
// empty table, not an error.
func (p *PDFExporter) Render(ctx context.Context, rows []Record, f Filter) ([]byte, error) {
	if p == nil || p.converter == nil {
		return nil, ErrPDFUnavailable
	}
	key := renderKey(rows, f)
	result, err, _ := p.group.Do(key, func() (any, error) {
		html, err := p.buildHTML(rows, f)
		if err != nil {
			return nil, err
		}
		return p.converter.RenderHTML(ctx, html)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (p *PDFExporter) buildHTML(rows []Record, f Filter) (string, error) {
	data := reportData{
		GeneratedAt: p.now().UTC().Format(TimestampLayout),
		RangeLabel:  rangeLabel(f),
		Rows:        ExportRows(rows),
	}
	buf := &bytes.Buffer{}
	if err := p.tpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("audit: render report html: %w", err)
	}
	return buf.String(), nil
}

func rangeLabel(f Filter) string {
	switch {
	case !f.From.IsZero() && !f.To.IsZero():
		return f.From.UTC().Format("2006-01-02") + " to " + f.To.UTC().Format("2006-01-02")
	case !f.From.IsZero():
		return "from " + f.From.UTC().Format("2006-01-02")
	case !f.To.IsZero():
		return "until " + f.To.UTC().Format("2006-01-02")
	default:
		return ""
	}
}

func renderKey(rows []Record, f Filter) string {
	var newest int64
	if len(rows) > 0 {
		newest = rows[0].ID
	}
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d|%d",
		f.Actor, f.Action, f.Outcome,
		f.From.Unix(), f.To.Unix(), len(rows), newest)
}
