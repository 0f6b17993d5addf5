package testutil

import (
	"context"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/repository"
)

var (
	User1 = entity.User{Base: entity.Base{ID: "user1"}, Username: "alice", DisplayName: "Alice"}
	User2 = entity.User{Base: entity.Base{ID: "user2"}, Username: "bob", DisplayName: "Bob"}
	User3 = entity.User{Base: entity.Base{ID: "user3"}, Username: "carol", DisplayName: "Carol"}
	User4 = entity.User{Base: entity.Base{ID: "user4"}, Username: "dave", DisplayName: "Dave"}
	Users = []entity.User{User1, User2, User3, User4}

	// Challenge1 is created by User1 and lasts 10 days.
	Challenge1 = entity.Challenge{
		Base:         entity.Base{ID: "challenge1"},
		Title:        "Read every day",
		DurationDays: 10,
		PointsReward: 100,
		Difficulty:   entity.DifficultyEasy,
		Category:     "learning",
		CreatedBy:    User1.ID,
		IsPublic:     true,
		Tags:         entity.Array[string]{"reading"},
	}

	// Challenge2 is created by User2 and lasts 3 days.
	Challenge2 = entity.Challenge{
		Base:         entity.Base{ID: "challenge2"},
		Title:        "No sugar",
		DurationDays: 3,
		PointsReward: 30,
		Difficulty:   entity.DifficultyHard,
		Category:     "health",
		CreatedBy:    User2.ID,
		IsPublic:     true,
		Tags:         entity.Array[string]{"food", "health"},
	}

	Challenges = []entity.Challenge{Challenge1, Challenge2}
)

// CreateFixture inserts users and challenges of the fixture.
func CreateFixture(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, u := range Users {
		u := u
		if err := userRepo.Upsert(ctx, &u); err != nil {
			panic(err)
		}
	}

	challengeRepo := repository.NewChallengeRepository()
	for _, c := range Challenges {
		c := c
		if err := challengeRepo.Create(ctx, &c); err != nil {
			panic(err)
		}
	}
}

// MockContextWithFixture is MockContext with the fixture inserted and userID as requesting user.
func MockContextWithFixture(userID string) context.Context {
	ctx := MockContext()
	CreateFixture(ctx)
	return WithUserID(ctx, userID)
}
