package statistic

import (
	"context"

	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Leaderboard interface {
	// GetStandings computes the current standings of board, annotated with the change since the
	// last snapshot.
	GetStandings(ctx context.Context, board entity.LeaderboardScope) ([]Standing, error)

	// Snapshot stores the current ranks of board as the base of future changes.
	Snapshot(ctx context.Context, board entity.LeaderboardScope) error

	// Boards lists the global, streak and every challenge board having participants.
	Boards(ctx context.Context) ([]entity.LeaderboardScope, error)
}

type leaderboard struct {
	participationRepo repository.ParticipationRepository
	rankSnapshotRepo  repository.RankSnapshotRepository
}

func New(
	participationRepo repository.ParticipationRepository,
	rankSnapshotRepo repository.RankSnapshotRepository,
) *leaderboard {
	return &leaderboard{
		participationRepo: participationRepo,
		rankSnapshotRepo:  rankSnapshotRepo,
	}
}

func (l *leaderboard) GetStandings(ctx context.Context, board entity.LeaderboardScope) ([]Standing, error) {
	entries, err := l.entries(ctx, board)
	if err != nil {
		return nil, err
	}

	previous, err := l.rankSnapshotRepo.Get(ctx, board)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get rank snapshot of %s: %v", board, err)
		previous = nil
	}

	return Rank(entries, previous), nil
}

func (l *leaderboard) Snapshot(ctx context.Context, board entity.LeaderboardScope) error {
	entries, err := l.entries(ctx, board)
	if err != nil {
		return err
	}

	if err := l.rankSnapshotRepo.Save(ctx, board, RankMap(Rank(entries, nil))); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save rank snapshot of %s: %v", board, err)
		return errorx.Unknown
	}

	return nil
}

func (l *leaderboard) Boards(ctx context.Context) ([]entity.LeaderboardScope, error) {
	participations, err := l.participationRepo.GetList(ctx, repository.ParticipationFilter{
		Status: []entity.ParticipationStatus{entity.ParticipationActive, entity.ParticipationCompleted},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participations: %v", err)
		return nil, errorx.Unknown
	}

	challengeIDs := map[string]struct{}{}
	for _, p := range participations {
		challengeIDs[p.ChallengeID] = struct{}{}
	}

	ids := maps.Keys(challengeIDs)
	slices.Sort(ids)

	boards := []entity.LeaderboardScope{
		{Type: entity.GlobalLeaderboard},
		{Type: entity.StreakLeaderboard},
	}
	for _, id := range ids {
		boards = append(boards, entity.LeaderboardScope{Type: entity.ChallengeLeaderboard, Scope: id})
	}

	return boards, nil
}

func (l *leaderboard) entries(ctx context.Context, board entity.LeaderboardScope) ([]Entry, error) {
	filter := repository.ParticipationFilter{}
	switch board.Type {
	case entity.ChallengeLeaderboard:
		if board.Scope == "" {
			return nil, errorx.New(errorx.BadRequest, "Challenge leaderboard requires a challenge")
		}
		filter.ChallengeID = board.Scope
	case entity.StreakLeaderboard:
		filter.Status = []entity.ParticipationStatus{entity.ParticipationActive}
	default:
		filter.Status = []entity.ParticipationStatus{entity.ParticipationActive, entity.ParticipationCompleted}
	}

	participations, err := common.RetryRead(ctx, func() ([]entity.Participation, error) {
		return l.participationRepo.GetList(ctx, filter)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participations of %s: %v", board, err)
		return nil, errorx.Unknown
	}

	return Project(board.Type, participations), nil
}
