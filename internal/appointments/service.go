package appointments

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Enqueuer schedules appointment reminders. A nil Enqueuer disables
// reminders without blocking bookings.
type Enqueuer interface {
	EnqueueAppointmentReminder(ctx context.Context, appointmentID int64, scheduledAt time.Time) error
}

// Service handles scheduling business logic.
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

// CreateParams carries a booking request.
type CreateParams struct {
	PatientID   int64
	DoctorID    int64
	ScheduledAt time.Time
	Reason      string
}

// List returns one page of appointments.
func (s *Service) List(ctx context.Context, f Filter, page, perPage int) ([]Appointment, int, error) {
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

// Get fetches a single appointment.
func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Create books a future appointment and schedules its reminder.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	if !params.ScheduledAt.After(s.now()) {
		return nil, ErrPastTime
	}
	appt, err := s.repo.Create(ctx, Appointment{
		PatientID:   params.PatientID,
		DoctorID:    params.DoctorID,
		ScheduledAt: params.ScheduledAt.UTC(),
		Reason:      strings.TrimSpace(params.Reason),
		Status:      StatusScheduled,
	})
	if err != nil {
		return nil, err
	}
	s.scheduleReminder(ctx, appt.ID, appt.ScheduledAt)
	return appt, nil
}

// Reschedule moves an appointment to a new future time.
func (s *Service) Reschedule(ctx context.Context, id int64, scheduledAt time.Time) error {
	if !scheduledAt.After(s.now()) {
		return ErrPastTime
	}
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if appt.Status == StatusCancelled {
		return ErrCancelled
	}
	if err := s.repo.UpdateSchedule(ctx, id, scheduledAt.UTC(), StatusRescheduled); err != nil {
		return err
	}
	s.scheduleReminder(ctx, id, scheduledAt.UTC())
	return nil
}

// Cancel marks the appointment cancelled. Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if appt.Status == StatusCancelled {
		return nil
	}
	return s.repo.UpdateStatus(ctx, id, StatusCancelled)
}

// scheduleReminder enqueues best effort. A booking never fails because
// the queue is down.
func (s *Service) scheduleReminder(ctx context.Context, id int64, scheduledAt time.Time) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueAppointmentReminder(ctx, id, scheduledAt); err != nil {
		s.logger.Warn("enqueue reminder", slog.Int64("appointment_id", id), slog.Any("error", err))
	}
}
