package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbus/fleet-admin/internal/models"
)

func TestParseSerialID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"64f1c0ffee", 0, false},
	}

	for _, tt := range tests {
		n, ok := parseSerialID(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, n, "input %q", tt.in)
	}
}

func TestPatchClausesSkipsNilPointers(t *testing.T) {
	number := "B-1"
	status := models.BusBreakdown

	set, args := patchClauses(nil, nil,
		clause{"number", &number},
		clause{"route_id", (*string)(nil)},
		clause{"status", &status})

	require.Len(t, set, 2)
	assert.Equal(t, "number = $1", set[0])
	assert.Equal(t, "status = $2", set[1])
	require.Len(t, args, 2)
	assert.Equal(t, "B-1", args[0])
	assert.Equal(t, models.BusBreakdown, args[1])
}

func TestPatchClausesEmpty(t *testing.T) {
	set, args := patchClauses(nil, nil, clause{"number", (*string)(nil)})
	assert.Empty(t, set)
	assert.Empty(t, args)
}

// openTestPostgres connects to the database named by POSTGRES_TEST_URL,
// skipping the test when the variable is unset.
func openTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping integration test")
	}
	st, err := OpenPostgres(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close(context.Background()) })
	return st
}

func TestPostgresBusRoundTrip(t *testing.T) {
	st := openTestPostgres(t)
	ctx := context.Background()

	id, err := st.CreateBus(ctx, BusFields{Number: "IT-BUS-1"})
	require.NoError(t, err)
	defer st.DeleteBus(ctx, id)

	bus, err := st.GetBus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "IT-BUS-1", bus.Number)
	assert.Equal(t, models.BusActive, bus.Status)

	status := models.BusInDepot
	require.NoError(t, st.UpdateBus(ctx, id, BusPatch{Status: &status}))
	bus, err = st.GetBus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.BusInDepot, bus.Status)
	assert.Equal(t, "IT-BUS-1", bus.Number)

	require.NoError(t, st.DeleteBus(ctx, id))
	_, err = st.GetBus(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresMalformedIDIsNotFound(t *testing.T) {
	st := openTestPostgres(t)
	ctx := context.Background()

	_, err := st.GetBus(ctx, "not-a-serial")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.UpdateBus(ctx, "not-a-serial", BusPatch{}), ErrNotFound)
	assert.ErrorIs(t, st.DeleteBus(ctx, "not-a-serial"), ErrNotFound)
}

func TestPostgresLiveLocationUpsertMerge(t *testing.T) {
	st := openTestPostgres(t)
	ctx := context.Background()

	busID := "it-loc-bus"
	require.NoError(t, st.UpsertLiveLocation(ctx, busID, LiveLocationPatch{
		Lat: 21.76, Lng: 72.15, Speed: floatPtr(30), Occupancy: floatPtr(55),
	}))
	require.NoError(t, st.UpsertLiveLocation(ctx, busID, LiveLocationPatch{
		Lat: 21.77, Lng: 72.16, Speed: floatPtr(25),
	}))

	loc, err := st.GetLiveLocation(ctx, busID)
	require.NoError(t, err)
	assert.Equal(t, 21.77, loc.Lat)
	assert.Equal(t, 25.0, loc.Speed)
	assert.Equal(t, 55.0, loc.Occupancy, "omitted occupancy keeps stored value")
}
