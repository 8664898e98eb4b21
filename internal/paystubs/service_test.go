package paystubs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	stubs  []Paystub
	nextID int64
}

func (r *memoryRepo) List(ctx context.Context, userID int64, limit, offset int) ([]Paystub, int, error) {
	var out []Paystub
	for _, s := range r.stubs {
		if userID != 0 && s.UserID != userID {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Create(ctx context.Context, stub Paystub) (*Paystub, error) {
	for _, existing := range r.stubs {
		if existing.UserID == stub.UserID && existing.Period == stub.Period {
			return nil, ErrDuplicate
		}
	}
	r.nextID++
	stub.ID = r.nextID
	r.stubs = append(r.stubs, stub)
	return &stub, nil
}

func TestCreateValidatesPeriod(t *testing.T) {
	service := NewService(&memoryRepo{})

	stub, err := service.Create(context.Background(), 3, " 2026-03 ", "/stubs/2026-03/jane.pdf")
	require.NoError(t, err)
	require.Equal(t, "2026-03", stub.Period)

	for _, bad := range []string{"2026-13", "2026-3", "march 2026", "2026/03", ""} {
		_, err := service.Create(context.Background(), 3, bad, "/stubs/x.pdf")
		require.ErrorIs(t, err, ErrInvalidPeriod, bad)
	}
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	service := NewService(&memoryRepo{})

	_, err := service.Create(context.Background(), 3, "2026-03", "/stubs/a.pdf")
	require.NoError(t, err)
	_, err = service.Create(context.Background(), 3, "2026-03", "/stubs/b.pdf")
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = service.Create(context.Background(), 4, "2026-03", "/stubs/c.pdf")
	require.NoError(t, err)
}

func TestListFiltersByUser(t *testing.T) {
	repo := &memoryRepo{}
	service := NewService(repo)

	_, err := service.Create(context.Background(), 3, "2026-02", "/stubs/a.pdf")
	require.NoError(t, err)
	_, err = service.Create(context.Background(), 4, "2026-02", "/stubs/b.pdf")
	require.NoError(t, err)

	mine, total, err := service.List(context.Background(), 3, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, mine, 1)
	require.Equal(t, int64(3), mine[0].UserID)

	all, total, err := service.List(context.Background(), 0, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 2)
}
