package patients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for patients.
type RepositoryPort interface {
	List(ctx context.Context, search string, limit, offset int) ([]Patient, int, error)
	Get(ctx context.Context, id int64) (*Patient, error)
	Create(ctx context.Context, patient Patient) (*Patient, error)
	Update(ctx context.Context, patient Patient) error
	Deactivate(ctx context.Context, id int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns one page of patients matching an optional name search.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients
		 WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')`,
		search).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, date_of_birth, email, phone, is_active, created_at, updated_at
		 FROM patients
		 WHERE ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%')
		 ORDER BY last_name, first_name, id
		 LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Get fetches a patient by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Patient, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, date_of_birth, email, phone, is_active, created_at, updated_at
		 FROM patients WHERE id = $1`, id)
	patient, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

// Create inserts a new patient record.
func (r *Repository) Create(ctx context.Context, patient Patient) (*Patient, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO patients (first_name, last_name, date_of_birth, email, phone, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING id, first_name, last_name, date_of_birth, email, phone, is_active, created_at, updated_at`,
		patient.FirstName, patient.LastName, patient.DateOfBirth, patient.Email, patient.Phone)
	created, err := scanPatient(row)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites the mutable fields.
func (r *Repository) Update(ctx context.Context, patient Patient) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE patients
		 SET first_name = $2, last_name = $3, date_of_birth = $4, email = $5, phone = $6, updated_at = NOW()
		 WHERE id = $1`,
		patient.ID, patient.FirstName, patient.LastName, patient.DateOfBirth, patient.Email, patient.Phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes the patient record.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE patients SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPatient(row pgx.Row) (Patient, error) {
	var patient Patient
	if err := row.Scan(&patient.ID, &patient.FirstName, &patient.LastName, &patient.DateOfBirth,
		&patient.Email, &patient.Phone, &patient.IsActive, &patient.CreatedAt, &patient.UpdatedAt); err != nil {
		return Patient{}, err
	}
	return patient, nil
}

var _ RepositoryPort = (*Repository)(nil)
