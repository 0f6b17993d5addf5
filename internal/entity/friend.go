package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/habit/pkg/enum"
)

type FriendRequestStatus string

var (
	FriendRequestPending  = enum.New(FriendRequestStatus("pending"))
	FriendRequestAccepted = enum.New(FriendRequestStatus("accepted"))
	FriendRequestRejected = enum.New(FriendRequestStatus("rejected"))
)

type FriendRequest struct {
	Base
	SenderID    string `gorm:"index"`
	RecipientID string `gorm:"index"`
	Status      FriendRequestStatus
	Message     string

	// PendingKey holds PairKey(sender, recipient) while the request is pending and NULL
	// afterwards. The unique index allows one pending request per unordered pair.
	PendingKey  sql.NullString `gorm:"unique"`
	RespondedAt sql.NullTime
}

// Friendship is stored once per direction.
type Friendship struct {
	UserID    string `gorm:"primaryKey"`
	FriendID  string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// PairKey returns the same key for (a, b) and (b, a).
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}

	return a + ":" + b
}
