package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
)

type ParticipationFilter struct {
	UserID      string
	ChallengeID string
	Status      []entity.ParticipationStatus
}

// CheckInUpdate is the state of a participation after one check-in.
type CheckInUpdate struct {
	Progress       float64
	Status         entity.ParticipationStatus
	CompletedAt    sql.NullTime
	LastCheckIn    time.Time
	LastCheckInDay string
	CheckInStreak  int
	LongestStreak  int
	CheckInCount   int
}

type ParticipationRepository interface {
	Create(ctx context.Context, data *entity.Participation) error
	Get(ctx context.Context, challengeID, userID string) (*entity.Participation, error)
	GetByID(ctx context.Context, id string) (*entity.Participation, error)
	GetList(ctx context.Context, filter ParticipationFilter) ([]entity.Participation, error)
	CheckIn(ctx context.Context, id, previousDay string, update CheckInUpdate) error
	Abandon(ctx context.Context, id string) error
	CreateCheckIn(ctx context.Context, data *entity.CheckIn) error
}

type participationRepository struct{}

func NewParticipationRepository() *participationRepository {
	return &participationRepository{}
}

func (r *participationRepository) Create(ctx context.Context, data *entity.Participation) error {
	return xcontext.DB(ctx).Omit("Challenge").Create(data).Error
}

func (r *participationRepository) Get(ctx context.Context, challengeID, userID string) (*entity.Participation, error) {
	var result entity.Participation
	err := xcontext.DB(ctx).
		Where("challenge_id=? AND user_id=?", challengeID, userID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *participationRepository) GetByID(ctx context.Context, id string) (*entity.Participation, error) {
	var result entity.Participation
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetList loads participations with their challenge, oldest first.
func (r *participationRepository) GetList(ctx context.Context, filter ParticipationFilter) ([]entity.Participation, error) {
	tx := xcontext.DB(ctx).Model(&entity.Participation{}).Preload("Challenge")

	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.ChallengeID != "" {
		tx = tx.Where("challenge_id=?", filter.ChallengeID)
	}

	if len(filter.Status) > 0 {
		tx = tx.Where("status IN (?)", filter.Status)
	}

	var result []entity.Participation
	if err := tx.Order("started_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// CheckIn applies update only if the participation is still active and its last check-in day is
// previousDay. It returns gorm.ErrRecordNotFound when another check-in won the race.
func (r *participationRepository) CheckIn(
	ctx context.Context, id, previousDay string, update CheckInUpdate,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Participation{}).
		Where("id=? AND status=? AND last_check_in_day=?", id, entity.ParticipationActive, previousDay).
		Updates(map[string]any{
			"progress":          update.Progress,
			"status":            update.Status,
			"completed_at":      update.CompletedAt,
			"last_check_in":     sql.NullTime{Time: update.LastCheckIn, Valid: true},
			"last_check_in_day": update.LastCheckInDay,
			"check_in_streak":   update.CheckInStreak,
			"longest_streak":    update.LongestStreak,
			"check_in_count":    update.CheckInCount,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Abandon returns gorm.ErrRecordNotFound if the participation is not active.
func (r *participationRepository) Abandon(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Participation{}).
		Where("id=? AND status=?", id, entity.ParticipationActive).
		Update("status", entity.ParticipationAbandoned)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *participationRepository) CreateCheckIn(ctx context.Context, data *entity.CheckIn) error {
	return xcontext.DB(ctx).Create(data).Error
}
