package statistic

import (
	"time"

	"golang.org/x/exp/slices"
)

type Entry struct {
	UserID    string
	Score     float64
	StartedAt time.Time
}

type Standing struct {
	UserID string
	Score  float64
	Rank   int

	// Change is previous rank minus current rank, positive when the user moved up. Users without
	// a previous rank have no change.
	Change int
}

// Rank orders entries by score descending, then by earliest start, then by user id, and assigns
// 1-based ranks. The result depends only on the set of entries, the input is not modified.
func Rank(entries []Entry, previous map[string]int) []Standing {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, less)

	standings := make([]Standing, 0, len(sorted))
	for i, e := range sorted {
		rank := i + 1
		change := 0
		if prev, ok := previous[e.UserID]; ok && prev > 0 {
			change = prev - rank
		}

		standings = append(standings, Standing{
			UserID: e.UserID,
			Score:  e.Score,
			Rank:   rank,
			Change: change,
		})
	}

	return standings
}

func less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}

	if !a.StartedAt.Equal(b.StartedAt) {
		return a.StartedAt.Before(b.StartedAt)
	}

	return a.UserID < b.UserID
}

// RankMap returns user id to rank of standings, the form stored by snapshots.
func RankMap(standings []Standing) map[string]int {
	result := make(map[string]int, len(standings))
	for _, s := range standings {
		result[s.UserID] = s.Rank
	}
	return result
}
