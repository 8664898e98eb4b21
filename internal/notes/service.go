package notes

import (
	"context"
	"strings"
)

// Service handles doctor note business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateParams carries a new note. DoctorID comes from the session,
// never from the request body.
type CreateParams struct {
	PatientID     int64
	AppointmentID *int64
	DoctorID      int64
	Content       string
}

// ListByPatient returns one page of a patient's notes.
func (s *Service) ListByPatient(ctx context.Context, patientID int64, page, perPage int) ([]DoctorNote, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.ListByPatient(ctx, patientID, perPage, (page-1)*perPage)
}

// Create writes an immutable note.
func (s *Service) Create(ctx context.Context, params CreateParams) (*DoctorNote, error) {
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	return s.repo.Create(ctx, DoctorNote{
		PatientID:     params.PatientID,
		AppointmentID: params.AppointmentID,
		DoctorID:      params.DoctorID,
		Content:       content,
	})
}
