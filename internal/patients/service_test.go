package patients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	patients map[int64]Patient
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{patients: make(map[int64]Patient)}
}

func (r *memoryRepo) List(ctx context.Context, search string, limit, offset int) ([]Patient, int, error) {
	var all []Patient
	for _, p := range r.patients {
		all = append(all, p)
	}
	return all, len(all), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Create(ctx context.Context, patient Patient) (*Patient, error) {
	r.nextID++
	patient.ID = r.nextID
	patient.IsActive = true
	r.patients[patient.ID] = patient
	return &patient, nil
}

func (r *memoryRepo) Update(ctx context.Context, patient Patient) error {
	existing, ok := r.patients[patient.ID]
	if !ok {
		return ErrNotFound
	}
	patient.IsActive = existing.IsActive
	r.patients[patient.ID] = patient
	return nil
}

func (r *memoryRepo) Deactivate(ctx context.Context, id int64) error {
	p, ok := r.patients[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = false
	r.patients[id] = p
	return nil
}

func TestCreateParsesAndNormalises(t *testing.T) {
	service := NewService(newMemoryRepo())

	patient, err := service.Create(context.Background(), Params{
		FirstName:   " Alice ",
		LastName:    "Brown",
		DateOfBirth: "1985-04-12",
		Email:       "Alice.Brown@Example.com",
		Phone:       " +1 555 0100 ",
	})
	require.NoError(t, err)
	require.Equal(t, "Alice", patient.FirstName)
	require.Equal(t, "alice.brown@example.com", patient.Email)
	require.Equal(t, "+1 555 0100", patient.Phone)
	require.Equal(t, "1985-04-12", patient.DateOfBirth.Format("2006-01-02"))
	require.Equal(t, "Alice Brown", patient.FullName())
}

func TestCreateRejectsBadDateOfBirth(t *testing.T) {
	service := NewService(newMemoryRepo())

	_, err := service.Create(context.Background(), Params{
		FirstName: "A", LastName: "B", DateOfBirth: "12/04/1985",
	})
	require.ErrorContains(t, err, "date_of_birth")

	_, err = service.Create(context.Background(), Params{
		FirstName: "A", LastName: "B", DateOfBirth: "2999-01-01",
	})
	require.ErrorContains(t, err, "future")
}

func TestUpdateAndDeactivate(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo)

	patient, err := service.Create(context.Background(), Params{
		FirstName: "Robert", LastName: "Green", DateOfBirth: "1972-11-03",
	})
	require.NoError(t, err)

	require.NoError(t, service.Update(context.Background(), patient.ID, Params{
		FirstName: "Bob", LastName: "Green", DateOfBirth: "1972-11-03",
	}))
	got, err := service.Get(context.Background(), patient.ID)
	require.NoError(t, err)
	require.Equal(t, "Bob", got.FirstName)

	require.NoError(t, service.Deactivate(context.Background(), patient.ID))
	got, err = service.Get(context.Background(), patient.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.ErrorIs(t, service.Deactivate(context.Background(), 999), ErrNotFound)
}
