package paystubs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for paystubs.
type RepositoryPort interface {
	List(ctx context.Context, userID int64, limit, offset int) ([]Paystub, int, error)
	Create(ctx context.Context, stub Paystub) (*Paystub, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of stubs, newest period first. userID zero
// lists everyone's.
func (r *Repository) List(ctx context.Context, userID int64, limit, offset int) ([]Paystub, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM paystubs WHERE ($1 = 0 OR user_id = $1)`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.user_id, COALESCE(u.name, ''), p.period, p.file_path, p.uploaded_at
		 FROM paystubs p
		 LEFT JOIN users u ON u.id = p.user_id
		 WHERE ($1 = 0 OR p.user_id = $1)
		 ORDER BY p.period DESC, p.id DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Paystub
	for rows.Next() {
		var stub Paystub
		if err := rows.Scan(&stub.ID, &stub.UserID, &stub.UserName, &stub.Period, &stub.FilePath, &stub.UploadedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, stub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Create inserts a stub record.
func (r *Repository) Create(ctx context.Context, stub Paystub) (*Paystub, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO paystubs (user_id, period, file_path)
		 VALUES ($1, $2, $3)
		 RETURNING id, uploaded_at`,
		stub.UserID, stub.Period, stub.FilePath)
	created := stub
	if err := row.Scan(&created.ID, &created.UploadedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &created, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ RepositoryPort = (*Repository)(nil)
