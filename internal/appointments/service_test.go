package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	appts  map[int64]Appointment
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{appts: make(map[int64]Appointment)}
}

func (r *memoryRepo) List(ctx context.Context, f Filter, limit, offset int) ([]Appointment, int, error) {
	var all []Appointment
	for _, a := range r.appts {
		if f.PatientID != 0 && a.PatientID != f.PatientID {
			continue
		}
		all = append(all, a)
	}
	return all, len(all), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *memoryRepo) Create(ctx context.Context, appt Appointment) (*Appointment, error) {
	r.nextID++
	appt.ID = r.nextID
	r.appts[appt.ID] = appt
	return &appt, nil
}

func (r *memoryRepo) UpdateSchedule(ctx context.Context, id int64, scheduledAt time.Time, status Status) error {
	a, ok := r.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.ScheduledAt = scheduledAt
	a.Status = status
	r.appts[id] = a
	return nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	a, ok := r.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	r.appts[id] = a
	return nil
}

type recordingEnqueuer struct {
	calls []int64
	err   error
}

func (e *recordingEnqueuer) EnqueueAppointmentReminder(ctx context.Context, id int64, scheduledAt time.Time) error {
	if e.err != nil {
		return e.err
	}
	e.calls = append(e.calls, id)
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo RepositoryPort, enq Enqueuer) *Service {
	s := NewService(repo, enq, nil)
	s.now = fixedNow
	return s
}

func TestCreateBooksAndSchedulesReminder(t *testing.T) {
	repo := newMemoryRepo()
	enq := &recordingEnqueuer{}
	service := newTestService(repo, enq)

	appt, err := service.Create(context.Background(), CreateParams{
		PatientID:   1,
		DoctorID:    2,
		ScheduledAt: fixedNow().Add(48 * time.Hour),
		Reason:      "  Annual check-up  ",
	})
	require.NoError(t, err)
	require.Equal(t, StatusScheduled, appt.Status)
	require.Equal(t, "Annual check-up", appt.Reason)
	require.Equal(t, []int64{appt.ID}, enq.calls)
}

func TestCreateRejectsPastTime(t *testing.T) {
	service := newTestService(newMemoryRepo(), nil)

	_, err := service.Create(context.Background(), CreateParams{
		PatientID:   1,
		DoctorID:    2,
		ScheduledAt: fixedNow().Add(-time.Hour),
	})
	require.ErrorIs(t, err, ErrPastTime)
}

func TestCreateSurvivesEnqueueFailure(t *testing.T) {
	repo := newMemoryRepo()
	service := newTestService(repo, &recordingEnqueuer{err: errors.New("queue down")})

	appt, err := service.Create(context.Background(), CreateParams{
		PatientID:   1,
		DoctorID:    2,
		ScheduledAt: fixedNow().Add(time.Hour),
	})
	require.NoError(t, err)
	require.NotZero(t, appt.ID)
}

func TestReschedule(t *testing.T) {
	repo := newMemoryRepo()
	enq := &recordingEnqueuer{}
	service := newTestService(repo, enq)

	appt, err := service.Create(context.Background(), CreateParams{
		PatientID: 1, DoctorID: 2, ScheduledAt: fixedNow().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	newTime := fixedNow().Add(72 * time.Hour)
	require.NoError(t, service.Reschedule(context.Background(), appt.ID, newTime))

	updated, err := service.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Equal(t, StatusRescheduled, updated.Status)
	require.True(t, updated.ScheduledAt.Equal(newTime))
	require.Len(t, enq.calls, 2)

	require.ErrorIs(t, service.Reschedule(context.Background(), appt.ID, fixedNow().Add(-time.Hour)), ErrPastTime)
	require.ErrorIs(t, service.Reschedule(context.Background(), 999, newTime), ErrNotFound)
}

func TestRescheduleCancelledFails(t *testing.T) {
	repo := newMemoryRepo()
	service := newTestService(repo, nil)

	appt, err := service.Create(context.Background(), CreateParams{
		PatientID: 1, DoctorID: 2, ScheduledAt: fixedNow().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, service.Cancel(context.Background(), appt.ID))

	err = service.Reschedule(context.Background(), appt.ID, fixedNow().Add(48*time.Hour))
	require.ErrorIs(t, err, ErrCancelled)
}

func TestCancelIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	service := newTestService(repo, nil)

	appt, err := service.Create(context.Background(), CreateParams{
		PatientID: 1, DoctorID: 2, ScheduledAt: fixedNow().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, service.Cancel(context.Background(), appt.ID))
	require.NoError(t, service.Cancel(context.Background(), appt.ID))

	got, err := service.Get(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
}
