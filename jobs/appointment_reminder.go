package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/clinicore/clinicore/internal/appointments"
)

// AppointmentReminderJob notifies patients about upcoming visits. The
// delivery channel is the structured log for now; an SMS gateway can be
// slotted in behind the same handler.
type AppointmentReminderJob struct {
	repo   appointments.RepositoryPort
	logger *slog.Logger
}

// NewAppointmentReminderJob constructs the reminder handler.
func NewAppointmentReminderJob(repo appointments.RepositoryPort, logger *slog.Logger) *AppointmentReminderJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppointmentReminderJob{repo: repo, logger: logger}
}

// Handle processes TaskAppointmentReminder tasks. Cancelled or
// rescheduled-away appointments are dropped silently.
func (j *AppointmentReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	appt, err := j.repo.Get(ctx, payload.AppointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			return asynq.SkipRetry
		}
		return err
	}
	if appt.Status == appointments.StatusCancelled {
		return nil
	}
	if !appt.ScheduledAt.Equal(payload.ScheduledAt) {
		// A newer reminder was enqueued when the appointment moved.
		return nil
	}
	j.logger.Info("appointment reminder",
		slog.Int64("appointment_id", appt.ID),
		slog.Int64("patient_id", appt.PatientID),
		slog.Int64("doctor_id", appt.DoctorID),
		slog.Time("scheduled_at", appt.ScheduledAt))
	return nil
}
