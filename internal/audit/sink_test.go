package audit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"admin", "admin"},
		{"%", `\%`},
		{"_", `\_`},
		{`\`, `\\`},
		{"100%_done", `100\%\_done`},
		{`C:\records`, `C:\\records`},
	}
	for _, tc := range cases {
		if got := escapeLike(tc.in); got != tc.want {
			t.Fatalf("escapeLike(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// testPool connects to the database named by PG_DSN, or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPGSinkQueryOrderingAndFilters(t *testing.T) {
	pool := testPool(t)
	sink := NewPGSink(pool)
	ctx := context.Background()

	// The trail is append-only, so the test isolates its own rows with
	// a unique action marker instead of truncating.
	marker := fmt.Sprintf("query-ordering-check-%d", time.Now().UnixNano())
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	actor := int64(1)

	appendRecord := func(rec Record) int64 {
		rec.Action = marker
		id, err := sink.Append(ctx, rec)
		require.NoError(t, err)
		return id
	}

	// Appended out of chronological order on purpose.
	oldest := appendRecord(Record{ActorID: &actor, ActorName: "Ordering Alice", Outcome: OutcomePermit, OccurredAt: base})
	newest := appendRecord(Record{ActorID: &actor, ActorName: "Ordering Alice", Outcome: OutcomePermit, OccurredAt: base.Add(2 * time.Hour)})
	middle := appendRecord(Record{Outcome: OutcomeDeny, OccurredAt: base.Add(time.Hour)})

	rows, err := sink.Query(ctx, Filter{Action: marker}, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, newest, rows[0].ID)
	require.Equal(t, middle, rows[1].ID)
	require.Equal(t, oldest, rows[2].ID)

	// The empty actor filter is a no-op: the middle record has no actor
	// and still comes back.
	require.Nil(t, rows[1].ActorID)

	// Same timestamp breaks the tie on id, newest insert first.
	tieFirst := appendRecord(Record{ActorID: &actor, ActorName: "Ordering Alice", Outcome: OutcomePermit, OccurredAt: base.Add(3 * time.Hour)})
	tieSecond := appendRecord(Record{ActorID: &actor, ActorName: "Ordering Alice", Outcome: OutcomePermit, OccurredAt: base.Add(3 * time.Hour)})

	rows, err = sink.Query(ctx, Filter{Action: marker}, 2, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, tieSecond, rows[0].ID)
	require.Equal(t, tieFirst, rows[1].ID)

	// A "%" actor filter matches literally, not as a wildcard.
	rows, err = sink.Query(ctx, Filter{Action: marker, Actor: "%"}, 10, 0)
	require.NoError(t, err)
	require.Empty(t, rows)

	// Substring actor filtering still works on the escaped value.
	rows, err = sink.Query(ctx, Filter{Action: marker, Actor: "ordering al"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)
}
