package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter narrows appointment listings.
type Filter struct {
	PatientID int64
	DoctorID  int64
	From      *time.Time
	To        *time.Time
}

// RepositoryPort defines data access methods for appointments.
type RepositoryPort interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]Appointment, int, error)
	Get(ctx context.Context, id int64) (*Appointment, error)
	Create(ctx context.Context, appt Appointment) (*Appointment, error)
	UpdateSchedule(ctx context.Context, id int64, scheduledAt time.Time, status Status) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
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
 WHERE ($1 = 0 OR patient_id = $1)
   AND ($2 = 0 OR doctor_id = $2)
   AND ($3::timestamptz IS NULL OR scheduled_at >= $3)
   AND ($4::timestamptz IS NULL OR scheduled_at <= $4)`

// List returns one page of appointments, soonest first.
func (r *Repository) List(ctx context.Context, f Filter, limit, offset int) ([]Appointment, int, error) {
	from := tsOrNull(f.From)
	to := tsOrNull(f.To)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments`+listWhere,
		f.PatientID, f.DoctorID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, patient_id, doctor_id, scheduled_at, reason, status, created_at, updated_at
		 FROM appointments`+listWhere+`
		 ORDER BY scheduled_at, id
		 LIMIT $5 OFFSET $6`,
		f.PatientID, f.DoctorID, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Get fetches an appointment by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, patient_id, doctor_id, scheduled_at, reason, status, created_at, updated_at
		 FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

// Create books an appointment.
func (r *Repository) Create(ctx context.Context, appt Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO appointments (patient_id, doctor_id, scheduled_at, reason, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, patient_id, doctor_id, scheduled_at, reason, status, created_at, updated_at`,
		appt.PatientID, appt.DoctorID, appt.ScheduledAt, appt.Reason, string(appt.Status))
	created, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSchedule moves the appointment to a new time.
func (r *Repository) UpdateSchedule(ctx context.Context, id int64, scheduledAt time.Time, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET scheduled_at = $2, status = $3, updated_at = NOW() WHERE id = $1`,
		id, scheduledAt, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus transitions the lifecycle state.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (Appointment, error) {
	var (
		appt   Appointment
		status string
	)
	if err := row.Scan(&appt.ID, &appt.PatientID, &appt.DoctorID, &appt.ScheduledAt,
		&appt.Reason, &status, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return Appointment{}, err
	}
	appt.Status = Status(status)
	return appt, nil
}

func tsOrNull(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

var _ RepositoryPort = (*Repository)(nil)
