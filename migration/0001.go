package migration

import (
	"context"

	"github.com/questx-lab/habit/pkg/xcontext"
)

// migrate0001 adds the index used to build a comment thread in display order.
func migrate0001(ctx context.Context) error {
	return xcontext.DB(ctx).Exec(
		"CREATE INDEX idx_comments_challenge_created ON comments (challenge_id, created_at)",
	).Error
}
