package entity

import (
	"database/sql"
	"time"
)

type Comment struct {
	SnowFlakeBase
	ChallengeID string `gorm:"index"`
	UserID      string `gorm:"index"`
	Content     string
	ParentID    sql.NullInt64 `gorm:"index"`
	LikesCount  int
	IsPinned    bool
}

type CommentLike struct {
	CommentID int64  `gorm:"primaryKey;autoIncrement:false"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}
