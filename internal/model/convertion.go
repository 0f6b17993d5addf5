package model

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/questx-lab/habit/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Bio:         user.Bio,
	}
}

// ConvertShortUser is used when only the id of a user is known.
func ConvertShortUser(id string, users map[string]entity.User) User {
	if user, ok := users[id]; ok {
		return ConvertUser(&user)
	}

	return User{ID: id}
}

func ConvertFriendRequest(req *entity.FriendRequest, users map[string]entity.User) FriendRequest {
	return FriendRequest{
		ID:          req.ID,
		Sender:      ConvertShortUser(req.SenderID, users),
		Recipient:   ConvertShortUser(req.RecipientID, users),
		Status:      string(req.Status),
		Message:     req.Message,
		CreatedAt:   req.CreatedAt.Format(DefaultTimeLayout),
		RespondedAt: formatNullTime(req.RespondedAt),
	}
}

func ConvertChallenge(challenge *entity.Challenge, stats ChallengeStats) Challenge {
	tags := []string(challenge.Tags)
	if tags == nil {
		tags = []string{}
	}

	return Challenge{
		ID:           challenge.ID,
		Title:        challenge.Title,
		Description:  challenge.Description,
		DurationDays: challenge.DurationDays,
		PointsReward: challenge.PointsReward,
		Difficulty:   string(challenge.Difficulty),
		Category:     challenge.Category,
		CreatedBy:    challenge.CreatedBy,
		IsPublic:     challenge.IsPublic,
		Tags:         tags,
		CreatedAt:    challenge.CreatedAt.Format(DefaultTimeLayout),
		Stats:        stats,
	}
}

func ConvertParticipation(p *entity.Participation) Participation {
	return Participation{
		ID:            p.ID,
		ChallengeID:   p.ChallengeID,
		UserID:        p.UserID,
		Progress:      p.Progress,
		Status:        string(p.Status),
		StartedAt:     p.StartedAt.Format(DefaultTimeLayout),
		CompletedAt:   formatNullTime(p.CompletedAt),
		LastCheckIn:   formatNullTime(p.LastCheckIn),
		CheckInStreak: p.CheckInStreak,
		LongestStreak: p.LongestStreak,
		CheckInCount:  p.CheckInCount,
		UpdatedAt:     p.UpdatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertTopLevelComment(
	comment *entity.Comment, users map[string]entity.User, likedByMe bool, replies []Reply,
) TopLevelComment {
	if replies == nil {
		replies = []Reply{}
	}

	return TopLevelComment{
		ID:          strconv.FormatInt(comment.ID, 10),
		ChallengeID: comment.ChallengeID,
		User:        ConvertShortUser(comment.UserID, users),
		Content:     comment.Content,
		LikesCount:  comment.LikesCount,
		LikedByMe:   likedByMe,
		IsPinned:    comment.IsPinned,
		CreatedAt:   comment.CreatedAt.Format(DefaultTimeLayout),
		Replies:     replies,
	}
}

func ConvertReply(comment *entity.Comment, users map[string]entity.User, likedByMe bool) Reply {
	return Reply{
		ID:          strconv.FormatInt(comment.ID, 10),
		ParentID:    strconv.FormatInt(comment.ParentID.Int64, 10),
		ChallengeID: comment.ChallengeID,
		User:        ConvertShortUser(comment.UserID, users),
		Content:     comment.Content,
		LikesCount:  comment.LikesCount,
		LikedByMe:   likedByMe,
		CreatedAt:   comment.CreatedAt.Format(DefaultTimeLayout),
	}
}

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.Format(DefaultTimeLayout)
}
