package paystubs

import (
	"context"
	"strings"
)

// Service handles paystub business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns one page of stubs for a user, or all users when userID is zero.
func (s *Service) List(ctx context.Context, userID int64, page, perPage int) ([]Paystub, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.List(ctx, userID, perPage, (page-1)*perPage)
}

// Create records a stub document for a user and period.
func (s *Service) Create(ctx context.Context, userID int64, period, filePath string) (*Paystub, error) {
	period = strings.TrimSpace(period)
	if !ValidPeriod(period) {
		return nil, ErrInvalidPeriod
	}
	return s.repo.Create(ctx, Paystub{
		UserID:   userID,
		Period:   period,
		FilePath: strings.TrimSpace(filePath),
	})
}
