package telephony

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter narrows telephony log listings.
type Filter struct {
	Kind      string
	Direction string
	Number    string
}

// RepositoryPort defines data access methods for telephony logs.
type RepositoryPort interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]Log, int, error)
	Insert(ctx context.Context, log Log) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listWhere = `
 WHERE ($1 = '' OR kind = $1)
   AND ($2 = '' OR direction = $2)
   AND ($3 = '' OR from_number LIKE '%' || $3 || '%' OR to_number LIKE '%' || $3 || '%')`

// List returns one page of events, newest first.
func (r *Repository) List(ctx context.Context, f Filter, limit, offset int) ([]Log, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM telephony_logs`+listWhere,
		f.Kind, f.Direction, f.Number).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, direction, from_number, to_number, status, body, occurred_at, created_at
		 FROM telephony_logs`+listWhere+`
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $4 OFFSET $5`,
		f.Kind, f.Direction, f.Number, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Log
	for rows.Next() {
		var (
			entry     Log
			kind      string
			direction string
		)
		if err := rows.Scan(&entry.ID, &kind, &direction, &entry.FromNumber, &entry.ToNumber,
			&entry.Status, &entry.Body, &entry.OccurredAt, &entry.CreatedAt); err != nil {
			return nil, 0, err
		}
		entry.Kind = Kind(kind)
		entry.Direction = Direction(direction)
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Insert stores one event.
func (r *Repository) Insert(ctx context.Context, log Log) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO telephony_logs (kind, direction, from_number, to_number, status, body, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		string(log.Kind), string(log.Direction), log.FromNumber, log.ToNumber,
		log.Status, log.Body, log.OccurredAt).Scan(&id)
	return id, err
}

var _ RepositoryPort = (*Repository)(nil)
