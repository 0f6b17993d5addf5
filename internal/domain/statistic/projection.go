package statistic

import (
	"fmt"
	"math"
	"time"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/enum"
)

func ToLeaderboardType(s string) (entity.LeaderboardType, error) {
	if s == "" {
		return entity.GlobalLeaderboard, nil
	}

	t, err := enum.ToEnum[entity.LeaderboardType](s)
	if err != nil {
		return "", fmt.Errorf("invalid leaderboard type %s", s)
	}

	return t, nil
}

// Project converts participations into the entries of board. Abandoned participations never
// score.
func Project(board entity.LeaderboardType, participations []entity.Participation) []Entry {
	switch board {
	case entity.StreakLeaderboard:
		return project(participations, streakScore, math.Max)
	case entity.ChallengeLeaderboard:
		return project(participations, progressScore, math.Max)
	default:
		return project(participations, pointScore, func(a, b float64) float64 { return a + b })
	}
}

// PointScore is the reward earned by a participation: the full reward once completed, the
// reward share of the progress while active.
func PointScore(p entity.Participation) float64 {
	switch p.Status {
	case entity.ParticipationCompleted:
		return float64(p.Challenge.PointsReward)
	case entity.ParticipationActive:
		return math.Floor(p.Progress / 100 * float64(p.Challenge.PointsReward))
	}

	return 0
}

func pointScore(p entity.Participation) (float64, bool) {
	if p.Status == entity.ParticipationAbandoned {
		return 0, false
	}

	return PointScore(p), true
}

func streakScore(p entity.Participation) (float64, bool) {
	if p.Status != entity.ParticipationActive {
		return 0, false
	}

	return float64(p.CheckInStreak), true
}

func progressScore(p entity.Participation) (float64, bool) {
	if p.Status == entity.ParticipationAbandoned {
		return 0, false
	}

	return p.Progress, true
}

func project(
	participations []entity.Participation,
	score func(entity.Participation) (float64, bool),
	merge func(a, b float64) float64,
) []Entry {
	byUser := map[string]*Entry{}
	var order []string

	for _, p := range participations {
		s, ok := score(p)
		if !ok {
			continue
		}

		e, ok := byUser[p.UserID]
		if !ok {
			byUser[p.UserID] = &Entry{UserID: p.UserID, Score: s, StartedAt: p.StartedAt}
			order = append(order, p.UserID)
			continue
		}

		e.Score = merge(e.Score, s)
		e.StartedAt = earliest(e.StartedAt, p.StartedAt)
	}

	entries := make([]Entry, 0, len(order))
	for _, userID := range order {
		entries = append(entries, *byUser[userID])
	}

	return entries
}

func earliest(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
