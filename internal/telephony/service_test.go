package telephony

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	logs   []Log
	nextID int64
}

func (r *memoryRepo) List(ctx context.Context, f Filter, limit, offset int) ([]Log, int, error) {
	return append([]Log(nil), r.logs...), len(r.logs), nil
}

func (r *memoryRepo) Insert(ctx context.Context, log Log) (int64, error) {
	r.nextID++
	log.ID = r.nextID
	r.logs = append(r.logs, log)
	return log.ID, nil
}

type recordingEnqueuer struct {
	events []Log
	err    error
}

func (e *recordingEnqueuer) EnqueueTelephonyIngest(ctx context.Context, log Log) error {
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, log)
	return nil
}

func TestIngestQueuesValidEvent(t *testing.T) {
	repo := &memoryRepo{}
	enq := &recordingEnqueuer{}
	service := NewService(repo, enq, nil)

	err := service.Ingest(context.Background(), Event{
		Kind:       " SMS ",
		Direction:  "Inbound",
		FromNumber: "+15550100",
		ToNumber:   "+15550111",
		Status:     "received",
		Body:       "Running late",
		OccurredAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, enq.events, 1)
	require.Empty(t, repo.logs)
	require.Equal(t, KindSMS, enq.events[0].Kind)
	require.Equal(t, DirectionInbound, enq.events[0].Direction)
}

func TestIngestRejectsUnknownKind(t *testing.T) {
	service := NewService(&memoryRepo{}, nil, nil)

	err := service.Ingest(context.Background(), Event{Kind: "pigeon", Direction: "inbound"})
	require.ErrorIs(t, err, ErrInvalidEvent)

	err = service.Ingest(context.Background(), Event{Kind: "sms", Direction: "sideways"})
	require.ErrorIs(t, err, ErrInvalidEvent)
}

func TestIngestFallsBackToDirectInsert(t *testing.T) {
	repo := &memoryRepo{}
	service := NewService(repo, &recordingEnqueuer{err: errors.New("queue down")}, nil)

	err := service.Ingest(context.Background(), Event{
		Kind:      "call",
		Direction: "outbound",
	})
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	require.Equal(t, KindCall, repo.logs[0].Kind)
}

func TestIngestWithoutEnqueuerWritesDirectly(t *testing.T) {
	repo := &memoryRepo{}
	service := NewService(repo, nil, nil)

	require.NoError(t, service.Ingest(context.Background(), Event{Kind: "fax", Direction: "inbound"}))
	require.Len(t, repo.logs, 1)
	require.False(t, repo.logs[0].OccurredAt.IsZero())
}

func TestStorePersistsQueuedEvent(t *testing.T) {
	repo := &memoryRepo{}
	service := NewService(repo, nil, nil)

	entry := Log{
		Kind:       KindSMS,
		Direction:  DirectionInbound,
		FromNumber: "+15550100",
		OccurredAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, service.Store(context.Background(), entry))
	require.Len(t, repo.logs, 1)
}
