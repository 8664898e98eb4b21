package audit

import (
	"encoding/csv"
	"encoding/json"
	"io"
)

// csvHeader is the fixed export column set.
var csvHeader = []string{"Actor", "Action", "Detail", "Timestamp"}

// WriteCSV serialises records to CSV. Zero records yields a header-only
// document, never an error.
func WriteCSV(w io.Writer, rows []Record) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range rows {
		if err := writer.Write([]string{
			rec.ActorLabel(),
			rec.Action,
			rec.DetailLabel(),
			rec.TimestampLabel(),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportRow is the structured JSON export shape, mirroring the CSV
// column set plus identifiers.
type ExportRow struct {
	ID        int64  `json:"id"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	Outcome   string `json:"outcome"`
	Timestamp string `json:"timestamp"`
}

// ExportRows converts records to their export representation.
func ExportRows(rows []Record) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, rec := range rows {
		out = append(out, ExportRow{
			ID:        rec.ID,
			Actor:     rec.ActorLabel(),
			Action:    rec.Action,
			Detail:    rec.DetailLabel(),
			Outcome:   string(rec.Outcome),
			Timestamp: rec.TimestampLabel(),
		})
	}
	return out
}

// WriteJSON serialises records to the structured JSON export format.
func WriteJSON(w io.Writer, rows []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportRows(rows))
}
