package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/clinicore/clinicore/internal/telephony"
)

// TelephonyIngestJob persists provider events picked up from the queue.
type TelephonyIngestJob struct {
	service *telephony.Service
	logger  *slog.Logger
}

// NewTelephonyIngestJob constructs the ingest handler.
func NewTelephonyIngestJob(service *telephony.Service, logger *slog.Logger) *TelephonyIngestJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelephonyIngestJob{service: service, logger: logger}
}

// Handle processes TaskTelephonyIngest tasks.
func (j *TelephonyIngestJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload TelephonyIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.service.Store(ctx, payload.Log()); err != nil {
		j.logger.Warn("store telephony event", slog.Any("error", err))
		return err
	}
	return nil
}
