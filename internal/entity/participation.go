package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/habit/pkg/enum"
)

type ParticipationStatus string

var (
	ParticipationActive    = enum.New(ParticipationStatus("active"))
	ParticipationCompleted = enum.New(ParticipationStatus("completed"))
	ParticipationAbandoned = enum.New(ParticipationStatus("abandoned"))
)

type Participation struct {
	Base
	ChallengeID string    `gorm:"uniqueIndex:idx_participations_challenge_user"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID"`
	UserID      string    `gorm:"uniqueIndex:idx_participations_challenge_user;index"`

	Progress    float64
	Status      ParticipationStatus `gorm:"index"`
	StartedAt   time.Time
	CompletedAt sql.NullTime

	LastCheckIn sql.NullTime
	// LastCheckInDay is the calendar day of LastCheckIn in the check-in time zone, empty if the
	// user never checked in.
	LastCheckInDay string
	CheckInStreak  int
	LongestStreak  int
	CheckInCount   int
}

type CheckIn struct {
	ParticipationID string `gorm:"primaryKey"`
	Day             string `gorm:"primaryKey"`
	Note            string
	CreatedAt       time.Time
}
