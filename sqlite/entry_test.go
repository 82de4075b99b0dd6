package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns stored entry", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "abc", URL: "https://www.ics.uci.edu/"}))

		entry, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, &wordcrawl.Entry{Hash: "abc", URL: "https://www.ics.uci.edu/"}, entry)
	})

	t.Run("returns ENOTFOUND for unknown hash", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))

		_, err := store.Get(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, wordcrawl.ENOTFOUND, wordcrawl.ErrorCode(err))
	})
}

func TestEntryStore_Put(t *testing.T) {
	t.Parallel()

	t.Run("marks entry completed", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "abc", URL: "https://a.ics.uci.edu/"}))
		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "abc", URL: "https://a.ics.uci.edu/", Completed: true}))

		entry, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, entry.Completed)
	})

	t.Run("never reverts completed entry", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "abc", URL: "https://a.ics.uci.edu/", Completed: true}))
		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "abc", URL: "https://a.ics.uci.edu/"}))

		entry, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, entry.Completed)
	})

	t.Run("rejects entry without hash or URL", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()

		err := store.Put(ctx, &wordcrawl.Entry{URL: "https://a.ics.uci.edu/"})
		assert.Equal(t, wordcrawl.EINVALID, wordcrawl.ErrorCode(err))

		err = store.Put(ctx, &wordcrawl.Entry{Hash: "abc"})
		assert.Equal(t, wordcrawl.EINVALID, wordcrawl.ErrorCode(err))

		err = store.Put(ctx, nil)
		assert.Equal(t, wordcrawl.EINVALID, wordcrawl.ErrorCode(err))
	})

	t.Run("returns error once the database is closed", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open())
		store := sqlite.NewEntryStore(db)
		require.NoError(t, store.Close())

		err := store.Put(context.Background(), &wordcrawl.Entry{Hash: "abc", URL: "https://a.ics.uci.edu/"})
		require.Error(t, err)
	})
}

func TestEntryStore_Iterate(t *testing.T) {
	t.Parallel()

	t.Run("visits every entry in insertion order across batches", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()

		const n = 2500
		for i := range n {
			require.NoError(t, store.Put(ctx, &wordcrawl.Entry{
				Hash:      fmt.Sprintf("h%05d", n-i),
				URL:       fmt.Sprintf("https://www.ics.uci.edu/p/%d", i),
				Completed: i%2 == 0,
			}))
		}

		var urls []string
		completed := 0
		err := store.Iterate(ctx, func(e *wordcrawl.Entry) error {
			urls = append(urls, e.URL)
			if e.Completed {
				completed++
			}
			return nil
		})
		require.NoError(t, err)

		require.Len(t, urls, n)
		assert.Equal(t, "https://www.ics.uci.edu/p/0", urls[0])
		assert.Equal(t, fmt.Sprintf("https://www.ics.uci.edu/p/%d", n-1), urls[n-1])
		assert.Equal(t, n/2, completed)
	})

	t.Run("stops at first callback error", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()
		for i := range 5 {
			require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: fmt.Sprint(i), URL: fmt.Sprint("https://ics.uci.edu/", i)}))
		}

		stop := errors.New("stop")
		calls := 0
		err := store.Iterate(ctx, func(*wordcrawl.Entry) error {
			calls++
			if calls == 2 {
				return stop
			}
			return nil
		})

		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 2, calls)
	})

	t.Run("callback may write to the store", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()
		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "a", URL: "https://ics.uci.edu/a"}))

		err := store.Iterate(ctx, func(e *wordcrawl.Entry) error {
			return store.Put(ctx, &wordcrawl.Entry{Hash: e.Hash, URL: e.URL, Completed: true})
		})
		require.NoError(t, err)

		entry, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, entry.Completed)
	})
}

func TestEntryStore_Count(t *testing.T) {
	t.Parallel()

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))

		counts, err := store.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sqlite.EntryCounts{}, counts)
	})

	t.Run("counts total, completed and pending", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewEntryStore(setupTestDB(t))
		ctx := context.Background()
		before := time.Now().Add(-time.Second)

		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "a", URL: "https://ics.uci.edu/a", Completed: true}))
		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "b", URL: "https://ics.uci.edu/b"}))
		require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "c", URL: "https://ics.uci.edu/c"}))

		counts, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, counts.Total)
		assert.Equal(t, 1, counts.Completed)
		assert.Equal(t, 2, counts.Pending())
		assert.True(t, counts.LastUpdated.After(before))
	})
}

func TestEntryStore_Flush(t *testing.T) {
	t.Parallel()

	db := sqlite.NewDB(t.TempDir() + "/frontier.db")
	require.NoError(t, db.Open())
	store := sqlite.NewEntryStore(db)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &wordcrawl.Entry{Hash: "a", URL: "https://ics.uci.edu/a"}))
	require.NoError(t, store.Flush(ctx))
}
