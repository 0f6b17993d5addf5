package entity

import "github.com/questx-lab/habit/pkg/enum"

type ChallengeDifficulty string

var (
	DifficultyEasy    = enum.New(ChallengeDifficulty("easy"))
	DifficultyMedium  = enum.New(ChallengeDifficulty("medium"))
	DifficultyHard    = enum.New(ChallengeDifficulty("hard"))
	DifficultyExtreme = enum.New(ChallengeDifficulty("extreme"))
)

type Challenge struct {
	Base
	Title        string
	Description  string
	DurationDays int
	PointsReward int
	Difficulty   ChallengeDifficulty
	Category     string `gorm:"index"`
	CreatedBy    string `gorm:"index"`
	IsPublic     bool
	Tags         Array[string]
}
