package statistic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	tests := []struct {
		name     string
		entries  []Entry
		previous map[string]int
		want     []Standing
	}{
		{
			name: "equal scores are broken by earliest start",
			entries: []Entry{
				{UserID: "late", Score: 90, StartedAt: t2},
				{UserID: "third", Score: 70, StartedAt: t1},
				{UserID: "early", Score: 90, StartedAt: t1},
			},
			want: []Standing{
				{UserID: "early", Score: 90, Rank: 1},
				{UserID: "late", Score: 90, Rank: 2},
				{UserID: "third", Score: 70, Rank: 3},
			},
		},
		{
			name: "user id breaks full ties",
			entries: []Entry{
				{UserID: "b", Score: 10, StartedAt: t1},
				{UserID: "a", Score: 10, StartedAt: t1},
			},
			want: []Standing{
				{UserID: "a", Score: 10, Rank: 1},
				{UserID: "b", Score: 10, Rank: 2},
			},
		},
		{
			name: "change against previous ranks",
			entries: []Entry{
				{UserID: "a", Score: 50, StartedAt: t1},
				{UserID: "b", Score: 40, StartedAt: t1},
				{UserID: "c", Score: 30, StartedAt: t1},
			},
			previous: map[string]int{"a": 3, "b": 1},
			want: []Standing{
				{UserID: "a", Score: 50, Rank: 1, Change: 2},
				{UserID: "b", Score: 40, Rank: 2, Change: -1},
				{UserID: "c", Score: 30, Rank: 3, Change: 0},
			},
		},
		{
			name:    "empty",
			entries: nil,
			want:    []Standing{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Rank(tt.entries, tt.previous))
		})
	}
}

func TestRank_OrderIndependent(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{UserID: "u1", Score: 90, StartedAt: base},
		{UserID: "u2", Score: 90, StartedAt: base.Add(time.Minute)},
		{UserID: "u3", Score: 70, StartedAt: base},
		{UserID: "u4", Score: 70, StartedAt: base},
		{UserID: "u5", Score: 100, StartedAt: base.Add(time.Hour)},
		{UserID: "u6", Score: 0, StartedAt: base},
	}
	previous := map[string]int{"u1": 2, "u5": 6, "u6": 1}

	want := Rank(entries, previous)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := append([]Entry(nil), entries...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		require.Equal(t, want, Rank(shuffled, previous))
	}
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	entries := []Entry{
		{UserID: "b", Score: 1},
		{UserID: "a", Score: 2},
	}

	Rank(entries, nil)
	require.Equal(t, "b", entries[0].UserID)
	require.Equal(t, "a", entries[1].UserID)
}

func TestRankMap(t *testing.T) {
	standings := []Standing{{UserID: "a", Rank: 1}, {UserID: "b", Rank: 2}}
	require.Equal(t, map[string]int{"a": 1, "b": 2}, RankMap(standings))
}
