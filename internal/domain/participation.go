package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/habit/internal/common"
	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/internal/repository"
	"github.com/questx-lab/habit/pkg/dateutil"
	"github.com/questx-lab/habit/pkg/enum"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
)

const maxCheckInNote = 500

type ParticipationDomain interface {
	Join(context.Context, *model.JoinChallengeRequest) (*model.JoinChallengeResponse, error)
	CheckIn(context.Context, *model.CheckInRequest) (*model.CheckInResponse, error)
	Leave(context.Context, *model.LeaveChallengeRequest) (*model.LeaveChallengeResponse, error)
	Get(context.Context, *model.GetParticipationRequest) (*model.GetParticipationResponse, error)
	GetMyList(context.Context, *model.GetMyParticipationsRequest) (*model.GetMyParticipationsResponse, error)
}

type participationDomain struct {
	challengeRepo     repository.ChallengeRepository
	participationRepo repository.ParticipationRepository
	notifier          realtime.Notifier
	now               func() time.Time
}

func NewParticipationDomain(
	challengeRepo repository.ChallengeRepository,
	participationRepo repository.ParticipationRepository,
	notifier realtime.Notifier,
) *participationDomain {
	return &participationDomain{
		challengeRepo:     challengeRepo,
		participationRepo: participationRepo,
		notifier:          notifier,
		now:               time.Now,
	}
}

func (d *participationDomain) Join(
	ctx context.Context, req *model.JoinChallengeRequest,
) (*model.JoinChallengeResponse, error) {
	challenge, err := getChallenge(ctx, d.challengeRepo, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	if err := d.ensureNotJoined(ctx, challenge.ID, userID); err != nil {
		return nil, err
	}

	participation := &entity.Participation{
		Base:        entity.Base{ID: uuid.NewString()},
		ChallengeID: challenge.ID,
		UserID:      userID,
		Progress:    0,
		Status:      entity.ParticipationActive,
		StartedAt:   d.now(),
	}

	if err := d.participationRepo.Create(ctx, participation); err != nil {
		// The unique index rejects a concurrent join of the same user.
		if err := d.ensureNotJoined(ctx, challenge.ID, userID); err != nil {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot create participation: %v", err)
		return nil, errorx.Unknown
	}

	clientParticipation := model.ConvertParticipation(participation)
	d.notify(ctx, participation, clientParticipation)
	return &model.JoinChallengeResponse{Participation: clientParticipation}, nil
}

// ensureNotJoined fails if the user has any participation in the challenge, a challenge can be
// joined once in a lifetime.
func (d *participationDomain) ensureNotJoined(ctx context.Context, challengeID, userID string) error {
	p, err := d.participationRepo.Get(ctx, challengeID, userID)
	if err == nil {
		return errorx.New(errorx.AlreadyJoined, "You already joined this challenge (%s)", p.Status)
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get participation: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *participationDomain) CheckIn(
	ctx context.Context, req *model.CheckInRequest,
) (*model.CheckInResponse, error) {
	if len(req.Note) > maxCheckInNote {
		return nil, errorx.New(errorx.BadRequest, "Note is too long")
	}

	challenge, err := getChallenge(ctx, d.challengeRepo, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	participation, err := d.getParticipation(ctx, challenge.ID)
	if err != nil {
		return nil, err
	}

	if participation.Status != entity.ParticipationActive {
		return nil, errorx.New(errorx.NotActive, "The challenge is %s", participation.Status)
	}

	now := d.now()
	loc := xcontext.Configs(ctx).Participation.Location()
	today := dateutil.Day(now, loc)
	if participation.LastCheckInDay == today {
		countCheckIn("already_checked_in")
		return nil, errorx.New(errorx.AlreadyCheckedInToday, "You already checked in today")
	}

	update := nextCheckIn(participation, challenge.DurationDays, now, loc)

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	err = d.participationRepo.CheckIn(txCtx, participation.ID, participation.LastCheckInDay, update)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			countCheckIn("already_checked_in")
			return nil, errorx.New(errorx.AlreadyCheckedInToday, "You already checked in today")
		}

		xcontext.Logger(ctx).Errorf("Cannot update participation: %v", err)
		return nil, errorx.Unknown
	}

	err = d.participationRepo.CreateCheckIn(txCtx, &entity.CheckIn{
		ParticipationID: participation.ID,
		Day:             today,
		Note:            req.Note,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create check-in: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit check-in: %v", err)
		return nil, errorx.Unknown
	}

	applyCheckIn(participation, update)
	participation = d.reload(ctx, participation)

	completed := participation.Status == entity.ParticipationCompleted
	if completed {
		countCheckIn("completed")
	} else {
		countCheckIn("ok")
	}

	clientParticipation := model.ConvertParticipation(participation)
	d.notify(ctx, participation, clientParticipation)
	return &model.CheckInResponse{Participation: clientParticipation, Completed: completed}, nil
}

// nextCheckIn computes the state after a check-in at now. Progress derives from the number of
// check-ins instead of adding increments, so it never accumulates rounding error.
func nextCheckIn(
	p *entity.Participation, durationDays int, now time.Time, loc *time.Location,
) repository.CheckInUpdate {
	streak := 1
	if p.LastCheckIn.Valid && dateutil.DaysBetween(p.LastCheckIn.Time, now, loc) == 1 {
		streak = p.CheckInStreak + 1
	}

	longest := p.LongestStreak
	if streak > longest {
		longest = streak
	}

	count := p.CheckInCount + 1
	update := repository.CheckInUpdate{
		Progress:       Progress(count, durationDays),
		Status:         entity.ParticipationActive,
		LastCheckIn:    now,
		LastCheckInDay: dateutil.Day(now, loc),
		CheckInStreak:  streak,
		LongestStreak:  longest,
		CheckInCount:   count,
	}

	if update.Progress >= 100 {
		update.Status = entity.ParticipationCompleted
		update.CompletedAt = sql.NullTime{Time: now, Valid: true}
	}

	return update
}

// Progress is the percentage of a challenge of durationDays done after count check-ins, clamped
// to [0, 100].
func Progress(count, durationDays int) float64 {
	if durationDays <= 0 || count >= durationDays {
		return 100
	}

	if count <= 0 {
		return 0
	}

	return float64(count) * 100 / float64(durationDays)
}

func applyCheckIn(p *entity.Participation, update repository.CheckInUpdate) {
	p.Progress = update.Progress
	p.Status = update.Status
	p.CompletedAt = update.CompletedAt
	p.LastCheckIn = sql.NullTime{Time: update.LastCheckIn, Valid: true}
	p.LastCheckInDay = update.LastCheckInDay
	p.CheckInStreak = update.CheckInStreak
	p.LongestStreak = update.LongestStreak
	p.CheckInCount = update.CheckInCount
}

// reload returns the stored participation, which carries the version of the last write. The
// local copy is used if the store cannot be read.
func (d *participationDomain) reload(ctx context.Context, p *entity.Participation) *entity.Participation {
	stored, err := d.participationRepo.GetByID(ctx, p.ID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot reload participation %s: %v", p.ID, err)
		return p
	}

	return stored
}

func (d *participationDomain) Leave(
	ctx context.Context, req *model.LeaveChallengeRequest,
) (*model.LeaveChallengeResponse, error) {
	participation, err := d.getParticipation(ctx, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	if participation.Status != entity.ParticipationActive {
		return nil, errorx.New(errorx.NotActive, "The challenge is %s", participation.Status)
	}

	if err := d.participationRepo.Abandon(ctx, participation.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotActive, "The challenge is not active anymore")
		}

		xcontext.Logger(ctx).Errorf("Cannot abandon participation: %v", err)
		return nil, errorx.Unknown
	}

	participation.Status = entity.ParticipationAbandoned
	participation = d.reload(ctx, participation)

	clientParticipation := model.ConvertParticipation(participation)
	d.notify(ctx, participation, clientParticipation)
	return &model.LeaveChallengeResponse{Participation: clientParticipation}, nil
}

func (d *participationDomain) Get(
	ctx context.Context, req *model.GetParticipationRequest,
) (*model.GetParticipationResponse, error) {
	participation, err := d.getParticipation(ctx, req.ChallengeID)
	if err != nil {
		return nil, err
	}

	return &model.GetParticipationResponse{
		Participation: model.ConvertParticipation(participation),
	}, nil
}

func (d *participationDomain) GetMyList(
	ctx context.Context, req *model.GetMyParticipationsRequest,
) (*model.GetMyParticipationsResponse, error) {
	filter := repository.ParticipationFilter{UserID: xcontext.RequestUserID(ctx)}
	if req.Status != "" {
		status, err := enum.ToEnum[entity.ParticipationStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
		}
		filter.Status = []entity.ParticipationStatus{status}
	}

	participations, err := common.RetryRead(ctx, func() ([]entity.Participation, error) {
		return d.participationRepo.GetList(ctx, filter)
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participations: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Participation{}
	for i := range participations {
		result = append(result, model.ConvertParticipation(&participations[i]))
	}

	return &model.GetMyParticipationsResponse{Participations: result}, nil
}

func (d *participationDomain) getParticipation(ctx context.Context, challengeID string) (*entity.Participation, error) {
	if challengeID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a challenge")
	}

	userID := xcontext.RequestUserID(ctx)
	participation, err := common.RetryRead(ctx, func() (*entity.Participation, error) {
		return d.participationRepo.Get(ctx, challengeID, userID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "You have not joined this challenge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get participation: %v", err)
		return nil, errorx.Unknown
	}

	return participation, nil
}

func (d *participationDomain) notify(ctx context.Context, p *entity.Participation, client model.Participation) {
	d.notifier.Notify(ctx, realtime.NewEvent(realtime.ParticipationEntity, p.ID, p.UpdatedAt, client).
		WithChallenge(p.ChallengeID).
		WithUsers(p.UserID))
}

func countCheckIn(result string) {
	common.PromCounters[common.CheckInTotal].WithLabelValues(result).Inc()
}
