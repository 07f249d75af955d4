package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/flagle/internal/daily"
	"github.com/robalobadob/flagle/internal/store"
	"github.com/robalobadob/flagle/internal/testhelpers"
)

func TestStores(t *testing.T) {
	impls := []struct {
		name string
		new  func(t *testing.T) store.Store
	}{
		{name: "memory", new: func(*testing.T) store.Store { return store.NewMemoryStore() }},
		{name: "sqlite", new: func(t *testing.T) store.Store { return store.NewSQLite(testhelpers.NewDB(t)) }},
	}
	for _, impl := range impls {
		t.Run(impl.name, func(t *testing.T) {
			ctx := context.Background()
			s := impl.new(t)
			day := daily.Date{Year: 2025, Month: time.March, Day: 4}
			key := store.Key{Player: "p1", Date: day}

			got, err := s.Get(ctx, key)
			require.NoError(t, err)
			assert.Nil(t, got)

			guesses := []string{"AA"}
			require.NoError(t, s.Set(ctx, key, store.Snapshot{Guesses: guesses}))
			guesses[0] = "mutated"

			got, err = s.Get(ctx, key)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, store.Snapshot{Guesses: []string{"AA"}, Solved: false}, *got)

			require.NoError(t, s.Set(ctx, key, store.Snapshot{Guesses: []string{"AA", "BB"}, Solved: true}))
			got, err = s.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []string{"AA", "BB"}, got.Guesses)
			assert.True(t, got.Solved)

			// A new day is a fresh session; another player is independent.
			next, err := s.Get(ctx, store.Key{Player: "p1", Date: daily.Date{Year: 2025, Month: time.March, Day: 5}})
			require.NoError(t, err)
			assert.Nil(t, next)
			other, err := s.Get(ctx, store.Key{Player: "p2", Date: day})
			require.NoError(t, err)
			assert.Nil(t, other)
		})
	}
}

func TestSQLiteCorruptSnapshotIsAbsent(t *testing.T) {
	db := testhelpers.NewDB(t)
	s := store.NewSQLite(db)
	_, err := db.Exec(`INSERT INTO daily_sessions (player_id, date, snapshot, updated_at)
	                   VALUES ('p1', '2025-03-04', '{"guesses": [1,', 'now')`)
	require.NoError(t, err)

	got, err := s.Get(context.Background(), store.Key{Player: "p1", Date: daily.Date{Year: 2025, Month: time.March, Day: 4}})
	require.NoError(t, err)
	assert.Nil(t, got)
}
