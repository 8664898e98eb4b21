package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinicore/internal/audit"
	"github.com/clinicore/clinicore/internal/shared"
)

// Service wraps authentication business rules. Login attempts are
// recorded to the audit trail either way; a failed audit write blocks
// the login.
type Service struct {
	repo Repository
	sink audit.Sink
}

// NewService constructs a new Service.
func NewService(repo Repository, sink audit.Sink) *Service {
	return &Service{repo: repo, sink: sink}
}

// Authenticate validates login/password credentials and records the
// attempt.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return nil, s.denyLogin(ctx, login)
	}
	if !user.IsActive {
		return nil, s.denyLogin(ctx, login)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, s.denyLogin(ctx, login)
	}

	actorID := user.ID
	if _, err := s.sink.Append(ctx, audit.Record{
		ActorID:   &actorID,
		ActorName: user.Name,
		Action:    "login",
		Outcome:   audit.OutcomePermit,
	}); err != nil {
		return nil, fmt.Errorf("auth: record login: %w", err)
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record and logs the logout. The
// session cookie only carries the user ID, so the display name for the
// audit record is resolved here.
func (s *Service) RemoveSession(ctx context.Context, id string, userID int64) error {
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return err
	}
	if userID <= 0 {
		return nil
	}
	var name string
	if user, err := s.repo.FindByID(ctx, userID); err == nil {
		name = user.Name
	}
	_, err := s.sink.Append(ctx, audit.Record{
		ActorID:   &userID,
		ActorName: name,
		Action:    "logout",
		Outcome:   audit.OutcomePermit,
	})
	return err
}

// denyLogin records the failed attempt without an actor reference. The
// attempted login name goes into the detail, never the password.
func (s *Service) denyLogin(ctx context.Context, login string) error {
	if _, err := s.sink.Append(ctx, audit.Record{
		Action:  "login:failed",
		Detail:  fmt.Sprintf("login %q rejected", login),
		Outcome: audit.OutcomeDeny,
	}); err != nil {
		return fmt.Errorf("auth: record failed login: %w", err)
	}
	return shared.ErrInvalidCredentials
}
