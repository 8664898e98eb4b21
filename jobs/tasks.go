package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/clinicore/clinicore/internal/telephony"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAppointmentReminder is the task type for patient reminders.
	TaskAppointmentReminder = "appointment:reminder"
	// TaskTelephonyIngest is the task type for storing provider events.
	TaskTelephonyIngest = "telephony:ingest"
)

// AppointmentReminderPayload identifies the appointment to remind for.
type AppointmentReminderPayload struct {
	AppointmentID int64     `json:"appointment_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// NewAppointmentReminderTask constructs an Asynq task.
func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentReminder, data), nil
}

// TelephonyIngestPayload carries a validated provider event.
type TelephonyIngestPayload struct {
	Kind       string    `json:"kind"`
	Direction  string    `json:"direction"`
	FromNumber string    `json:"from_number"`
	ToNumber   string    `json:"to_number"`
	Status     string    `json:"status"`
	Body       string    `json:"body"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTelephonyIngestTask constructs an Asynq task.
func NewTelephonyIngestTask(payload TelephonyIngestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTelephonyIngest, data), nil
}

// Log converts the payload back into the domain type.
func (p TelephonyIngestPayload) Log() telephony.Log {
	return telephony.Log{
		Kind:       telephony.Kind(p.Kind),
		Direction:  telephony.Direction(p.Direction),
		FromNumber: p.FromNumber,
		ToNumber:   p.ToNumber,
		Status:     p.Status,
		Body:       p.Body,
		OccurredAt: p.OccurredAt,
	}
}
