package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	notes  []DoctorNote
	nextID int64
}

func (r *memoryRepo) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]DoctorNote, int, error) {
	var out []DoctorNote
	for _, n := range r.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, note DoctorNote) (*DoctorNote, error) {
	r.nextID++
	note.ID = r.nextID
	note.CreatedAt = time.Now().UTC()
	r.notes = append(r.notes, note)
	return &note, nil
}

func TestCreateTrimsContent(t *testing.T) {
	repo := &memoryRepo{}
	service := NewService(repo)

	apptID := int64(7)
	note, err := service.Create(context.Background(), CreateParams{
		PatientID:     1,
		AppointmentID: &apptID,
		DoctorID:      2,
		Content:       "  Patient reports improvement.  ",
	})
	require.NoError(t, err)
	require.Equal(t, "Patient reports improvement.", note.Content)
	require.Equal(t, int64(2), note.DoctorID)
	require.NotNil(t, note.AppointmentID)
	require.Equal(t, int64(7), *note.AppointmentID)
}

func TestCreateRejectsBlankContent(t *testing.T) {
	service := NewService(&memoryRepo{})

	for _, blank := range []string{"", "   ", "\n\t"} {
		_, err := service.Create(context.Background(), CreateParams{
			PatientID: 1, DoctorID: 2, Content: blank,
		})
		require.ErrorIs(t, err, ErrEmptyContent)
	}
}

func TestListByPatientScopesToPatient(t *testing.T) {
	repo := &memoryRepo{}
	service := NewService(repo)

	_, err := service.Create(context.Background(), CreateParams{PatientID: 1, DoctorID: 2, Content: "first"})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), CreateParams{PatientID: 9, DoctorID: 2, Content: "other"})
	require.NoError(t, err)

	notes, total, err := service.ListByPatient(context.Background(), 1, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, notes, 1)
	require.Equal(t, "first", notes[0].Content)
}
