package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type comment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

func TestView_LatestVersionWins(t *testing.T) {
	ctx := mockContext()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	fetches := 0
	view := NewView(func(context.Context) ([]Item, error) {
		fetches++
		return []Item{{ID: "1", Version: base.UnixNano(), Record: map[string]any{"content": "a"}}}, nil
	})
	view.now = func() time.Time { return base.Add(time.Minute) }

	require.NoError(t, view.Load(ctx))
	require.Equal(t, []string{"1"}, view.IDs())

	newer := NewEvent(CommentEntity, "1", base.Add(time.Second), comment{ID: "1", Content: "b"})
	older := NewEvent(CommentEntity, "1", base.Add(-time.Second), comment{ID: "1", Content: "z"})

	require.NoError(t, view.Apply(ctx, newer))
	require.NoError(t, view.Apply(ctx, older))

	record, ok := view.Get("1")
	require.True(t, ok)
	require.Equal(t, "b", record["content"])
	require.Equal(t, 1, fetches)
}

func TestView_Tombstone(t *testing.T) {
	ctx := mockContext()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	view := NewView(func(context.Context) ([]Item, error) { return nil, nil })

	require.NoError(t, view.Apply(ctx, NewEvent(CommentEntity, "1", base, comment{ID: "1"})))
	require.NoError(t, view.Apply(ctx, NewDeleteEvent(CommentEntity, "1", base.Add(time.Second))))

	// An upsert delivered late must not resurrect the record.
	require.NoError(t, view.Apply(ctx, NewEvent(CommentEntity, "1", base, comment{ID: "1"})))

	_, ok := view.Get("1")
	require.False(t, ok)
	require.Equal(t, 0, view.Len())
}

func TestView_Refetch(t *testing.T) {
	ctx := mockContext()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	items := []Item{
		{ID: "1", Version: base.UnixNano(), Record: map[string]any{"content": "a"}},
		{ID: "2", Version: base.UnixNano(), Record: map[string]any{"content": "b"}},
	}
	var fetchErr error
	view := NewView(func(context.Context) ([]Item, error) { return items, fetchErr })
	view.now = func() time.Time { return base.Add(time.Minute) }

	require.NoError(t, view.Load(ctx))
	require.Equal(t, []string{"1", "2"}, view.IDs())

	// An event without record makes the view read again, record 2 is gone.
	items = items[:1]
	require.NoError(t, view.Apply(ctx, NewEvent(CommentEntity, "2", base.Add(time.Second), nil)))
	require.Equal(t, []string{"1"}, view.IDs())

	fetchErr = errors.New("store unavailable")
	require.Error(t, view.Apply(ctx, Resync(CommentEntity)))
	require.Equal(t, []string{"1"}, view.IDs())
}
