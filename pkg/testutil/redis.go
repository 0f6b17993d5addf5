package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/questx-lab/habit/pkg/xcontext"
	"github.com/questx-lab/habit/pkg/xredis"
)

// NewMiniRedisClient starts an in-memory redis server living as long as the test and returns a
// client connected to it.
func NewMiniRedisClient(t *testing.T, ctx context.Context) (xredis.Client, *miniredis.Miniredis) {
	s := miniredis.RunT(t)

	cfg := xcontext.Configs(ctx)
	cfg.Redis.Addr = s.Addr()

	c, err := xredis.NewClient(xcontext.WithConfigs(ctx, cfg))
	if err != nil {
		t.Fatalf("cannot connect to miniredis: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return c, s
}
