package entity

import (
	"fmt"

	"github.com/questx-lab/habit/pkg/enum"
)

type LeaderboardType string

var (
	GlobalLeaderboard    = enum.New(LeaderboardType("global"))
	StreakLeaderboard    = enum.New(LeaderboardType("streak"))
	ChallengeLeaderboard = enum.New(LeaderboardType("challenge"))
)

// LeaderboardScope names one concrete board. Scope is empty for global and streak boards and is
// the challenge id for challenge boards.
type LeaderboardScope struct {
	Type  LeaderboardType
	Scope string
}

func (s LeaderboardScope) String() string {
	if s.Scope == "" {
		return string(s.Type)
	}

	return fmt.Sprintf("%s:%s", s.Type, s.Scope)
}
