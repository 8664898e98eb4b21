package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink is the append-only audit store. The contract deliberately
// exposes no update or delete operation.
type Sink interface {
	Append(ctx context.Context, rec Record) (int64, error)
	Query(ctx context.Context, f Filter, limit, offset int) ([]Record, error)
}

// PGSink implements Sink on PostgreSQL. Each append is a single
// INSERT, atomic per record; ordering is defined by the stored
// timestamp and identifier, not request arrival.
type PGSink struct {
	pool *pgxpool.Pool
}

// NewPGSink constructs a PostgreSQL backed sink.
func NewPGSink(pool *pgxpool.Pool) *PGSink {
	return &PGSink{pool: pool}
}

// Append persists the record and returns its identifier. A failure is
// always surfaced to the caller; the guard treats it as fatal.
func (s *PGSink) Append(ctx context.Context, rec Record) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, errors.New("audit: sink not initialised")
	}
	if rec.Action == "" {
		return 0, errors.New("audit: record requires action")
	}
	if !rec.Outcome.Valid() {
		return 0, fmt.Errorf("audit: invalid outcome %q", rec.Outcome)
	}
	occurredAt := rec.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	var actorID pgtype.Int8
	if rec.ActorID != nil {
		actorID = pgtype.Int8{Int64: *rec.ActorID, Valid: true}
	}
	var detail pgtype.Text
	if rec.Detail != "" {
		detail = pgtype.Text{String: rec.Detail, Valid: true}
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO audit_logs (actor_id, actor_name, action, detail, outcome, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		actorID, rec.ActorName, rec.Action, detail, string(rec.Outcome), occurredAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("audit: append: %w", err)
	}
	return id, nil
}

// Query returns matching records, newest first.
func (s *PGSink) Query(ctx context.Context, f Filter, limit, offset int) ([]Record, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("audit: sink not initialised")
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var from, to pgtype.Timestamptz
	if !f.From.IsZero() {
		from = pgtype.Timestamptz{Time: f.From.UTC(), Valid: true}
	}
	if !f.To.IsZero() {
		to = pgtype.Timestamptz{Time: f.To.UTC(), Valid: true}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, actor_id, actor_name, action, detail, outcome, occurred_at
		 FROM audit_logs
		 WHERE ($1 = '' OR actor_name ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR action ILIKE '%' || $2 || '%')
		   AND ($3 = '' OR outcome = $3)
		   AND ($4::timestamptz IS NULL OR occurred_at >= $4)
		   AND ($5::timestamptz IS NULL OR occurred_at <= $5)
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $6 OFFSET $7`,
		escapeLike(f.Actor), escapeLike(f.Action), string(f.Outcome), from, to, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			actorID  pgtype.Int8
			detail   pgtype.Text
			outcome  string
			occurred pgtype.Timestamptz
		)
		if err := rows.Scan(&rec.ID, &actorID, &rec.ActorName, &rec.Action, &detail, &outcome, &occurred); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		if actorID.Valid {
			id := actorID.Int64
			rec.ActorID = &id
		}
		if detail.Valid {
			rec.Detail = detail.String
		}
		rec.Outcome = Outcome(outcome)
		if occurred.Valid {
			rec.OccurredAt = occurred.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: query rows: %w", err)
	}
	return records, nil
}

// escapeLike neutralises LIKE metacharacters in user-supplied filter
// text so "%" or "_" match literally instead of acting as wildcards.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

var _ Sink = (*PGSink)(nil)
