package notes

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access methods for doctor notes.
type RepositoryPort interface {
	ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]DoctorNote, int, error)
	Create(ctx context.Context, note DoctorNote) (*DoctorNote, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByPatient returns a patient's notes, newest first, with the
// author's display name joined in.
func (r *Repository) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]DoctorNote, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM doctor_notes WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT n.id, n.patient_id, n.appointment_id, n.doctor_id, COALESCE(u.name, ''), n.content, n.created_at
		 FROM doctor_notes n
		 LEFT JOIN users u ON u.id = n.doctor_id
		 WHERE n.patient_id = $1
		 ORDER BY n.created_at DESC, n.id DESC
		 LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []DoctorNote
	for rows.Next() {
		var (
			note   DoctorNote
			apptID pgtype.Int8
		)
		if err := rows.Scan(&note.ID, &note.PatientID, &apptID, &note.DoctorID,
			&note.DoctorName, &note.Content, &note.CreatedAt); err != nil {
			return nil, 0, err
		}
		if apptID.Valid {
			v := apptID.Int64
			note.AppointmentID = &v
		}
		result = append(result, note)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Create inserts a new note.
func (r *Repository) Create(ctx context.Context, note DoctorNote) (*DoctorNote, error) {
	apptID := pgtype.Int8{}
	if note.AppointmentID != nil {
		apptID = pgtype.Int8{Int64: *note.AppointmentID, Valid: true}
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO doctor_notes (patient_id, appointment_id, doctor_id, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		note.PatientID, apptID, note.DoctorID, note.Content)
	created := note
	if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

var _ RepositoryPort = (*Repository)(nil)
