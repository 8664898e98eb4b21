package patients

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service handles patient registry business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Params carries a create or update request.
type Params struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Email       string
	Phone       string
}

const dobLayout = "2006-01-02"

func (p Params) parse() (Patient, error) {
	dob, err := time.Parse(dobLayout, p.DateOfBirth)
	if err != nil {
		return Patient{}, fmt.Errorf("patients: invalid date_of_birth %q", p.DateOfBirth)
	}
	if dob.After(time.Now()) {
		return Patient{}, fmt.Errorf("patients: date_of_birth in the future")
	}
	return Patient{
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		DateOfBirth: dob,
		Email:       strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:       strings.TrimSpace(p.Phone),
	}, nil
}

// List returns one page of patients matching an optional name search.
func (s *Service) List(ctx context.Context, search string, page, perPage int) ([]Patient, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.List(ctx, strings.TrimSpace(search), perPage, (page-1)*perPage)
}

// Get fetches a single patient.
func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new patient.
func (s *Service) Create(ctx context.Context, params Params) (*Patient, error) {
	patient, err := params.parse()
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, patient)
}

// Update rewrites a patient's demographic fields.
func (s *Service) Update(ctx context.Context, id int64, params Params) error {
	patient, err := params.parse()
	if err != nil {
		return err
	}
	patient.ID = id
	return s.repo.Update(ctx, patient)
}

// Deactivate archives the patient record.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
