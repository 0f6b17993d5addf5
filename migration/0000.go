package migration

import (
	"context"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
)

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.Challenge{},
		&entity.FriendRequest{},
		&entity.Friendship{},
		&entity.Participation{},
		&entity.CheckIn{},
		&entity.Comment{},
		&entity.CommentLike{},
	)
}
