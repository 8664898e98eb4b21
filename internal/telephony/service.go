package telephony

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Enqueuer hands ingestion off to the background worker. A nil Enqueuer
// makes Ingest write synchronously instead.
type Enqueuer interface {
	EnqueueTelephonyIngest(ctx context.Context, log Log) error
}

// Service handles telephony event business logic.
type Service struct {
	repo     RepositoryPort
	enqueuer Enqueuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, enqueuer Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger, now: time.Now}
}

// Event is a raw webhook payload after authentication.
type Event struct {
	Kind       string
	Direction  string
	FromNumber string
	ToNumber   string
	Status     string
	Body       string
	OccurredAt time.Time
}

// List returns one page of events.
func (s *Service) List(ctx context.Context, f Filter, page, perPage int) ([]Log, int, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	return s.repo.List(ctx, f, perPage, (page-1)*perPage)
}

// Ingest validates a provider event and stores it, via the worker queue
// when one is wired.
func (s *Service) Ingest(ctx context.Context, event Event) error {
	entry := Log{
		Kind:       Kind(strings.ToLower(strings.TrimSpace(event.Kind))),
		Direction:  Direction(strings.ToLower(strings.TrimSpace(event.Direction))),
		FromNumber: strings.TrimSpace(event.FromNumber),
		ToNumber:   strings.TrimSpace(event.ToNumber),
		Status:     strings.TrimSpace(event.Status),
		Body:       event.Body,
		OccurredAt: event.OccurredAt,
	}
	if !entry.Kind.Valid() || !entry.Direction.Valid() {
		return ErrInvalidEvent
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = s.now().UTC()
	}
	if s.enqueuer != nil {
		err := s.enqueuer.EnqueueTelephonyIngest(ctx, entry)
		if err == nil {
			return nil
		}
		s.logger.Warn("enqueue telephony event, falling back to direct insert", slog.Any("error", err))
	}
	_, err := s.repo.Insert(ctx, entry)
	return err
}

// Store writes an event directly. The worker calls this when it picks
// up a queued ingest task.
func (s *Service) Store(ctx context.Context, entry Log) error {
	_, err := s.repo.Insert(ctx, entry)
	return err
}
