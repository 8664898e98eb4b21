package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clinicore/clinicore/internal/appointments"
)

type stubApptRepo struct {
	appt *appointments.Appointment
	err  error
}

func (r *stubApptRepo) List(ctx context.Context, f appointments.Filter, limit, offset int) ([]appointments.Appointment, int, error) {
	return nil, 0, nil
}

func (r *stubApptRepo) Get(ctx context.Context, id int64) (*appointments.Appointment, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.appt, nil
}

func (r *stubApptRepo) Create(ctx context.Context, appt appointments.Appointment) (*appointments.Appointment, error) {
	return &appt, nil
}

func (r *stubApptRepo) UpdateSchedule(ctx context.Context, id int64, scheduledAt time.Time, status appointments.Status) error {
	return nil
}

func (r *stubApptRepo) UpdateStatus(ctx context.Context, id int64, status appointments.Status) error {
	return nil
}

func reminderTask(t *testing.T, payload AppointmentReminderPayload) *asynq.Task {
	t.Helper()
	task, err := NewAppointmentReminderTask(payload)
	if err != nil {
		t.Fatalf("NewAppointmentReminderTask: %v", err)
	}
	return task
}

func TestReminderDeliversForCurrentSchedule(t *testing.T) {
	when := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	job := NewAppointmentReminderJob(&stubApptRepo{appt: &appointments.Appointment{
		ID: 5, PatientID: 1, DoctorID: 2, ScheduledAt: when, Status: appointments.StatusScheduled,
	}}, nil)

	task := reminderTask(t, AppointmentReminderPayload{AppointmentID: 5, ScheduledAt: when})
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestReminderSkipsMissingAppointment(t *testing.T) {
	job := NewAppointmentReminderJob(&stubApptRepo{err: appointments.ErrNotFound}, nil)

	task := reminderTask(t, AppointmentReminderPayload{AppointmentID: 99})
	if err := job.Handle(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestReminderDropsCancelledAppointment(t *testing.T) {
	when := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	job := NewAppointmentReminderJob(&stubApptRepo{appt: &appointments.Appointment{
		ID: 5, ScheduledAt: when, Status: appointments.StatusCancelled,
	}}, nil)

	task := reminderTask(t, AppointmentReminderPayload{AppointmentID: 5, ScheduledAt: when})
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestReminderDropsStaleSchedule(t *testing.T) {
	job := NewAppointmentReminderJob(&stubApptRepo{appt: &appointments.Appointment{
		ID:          5,
		ScheduledAt: time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC),
		Status:      appointments.StatusRescheduled,
	}}, nil)

	task := reminderTask(t, AppointmentReminderPayload{
		AppointmentID: 5,
		ScheduledAt:   time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC),
	})
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestReminderRetriesTransientRepoError(t *testing.T) {
	job := NewAppointmentReminderJob(&stubApptRepo{err: errors.New("connection reset")}, nil)

	task := reminderTask(t, AppointmentReminderPayload{AppointmentID: 5})
	err := job.Handle(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
