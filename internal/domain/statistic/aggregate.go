package statistic

import "github.com/questx-lab/habit/internal/entity"

type ChallengeStats struct {
	ParticipantCount int
	CompletedCount   int
	AverageProgress  float64
}

// Aggregate reduces all participations of one challenge, whatever their status.
func Aggregate(participations []entity.Participation) ChallengeStats {
	stats := ChallengeStats{ParticipantCount: len(participations)}
	if len(participations) == 0 {
		return stats
	}

	total := 0.0
	for _, p := range participations {
		if p.Status == entity.ParticipationCompleted {
			stats.CompletedCount++
		}
		total += p.Progress
	}

	stats.AverageProgress = total / float64(len(participations))
	return stats
}
