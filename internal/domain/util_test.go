package domain

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/questx-lab/habit/internal/domain/realtime"
	"github.com/questx-lab/habit/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mutex  sync.Mutex
	events []realtime.Event
}

func (n *mockNotifier) Notify(_ context.Context, e realtime.Event) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.events = append(n.events, e)
}

func (n *mockNotifier) last() realtime.Event {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if len(n.events) == 0 {
		return realtime.Event{}
	}
	return n.events[len(n.events)-1]
}

func (n *mockNotifier) count() int {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return len(n.events)
}

// failCommitAfter makes every transaction which runs op (INSERT, DELETE) on table fail at commit.
// The trigger writes a row violating a deferred foreign key, which is only checked by COMMIT.
func failCommitAfter(t *testing.T, ctx context.Context, op, table string) {
	guard := fmt.Sprintf("%s_%s_guard", table, op)
	for _, stmt := range []string{
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("CREATE TABLE %s_owners (id INTEGER PRIMARY KEY)", guard),
		fmt.Sprintf("CREATE TABLE %s_claims (owner_id INTEGER REFERENCES %s_owners(id) DEFERRABLE INITIALLY DEFERRED)", guard, guard),
		fmt.Sprintf("CREATE TRIGGER %s AFTER %s ON %s BEGIN INSERT INTO %s_claims (owner_id) VALUES (1); END", guard, op, table, guard),
	} {
		require.NoError(t, xcontext.DB(ctx).Exec(stmt).Error)
	}
}

func dropCommitFailure(t *testing.T, ctx context.Context, op, table string) {
	guard := fmt.Sprintf("%s_%s_guard", table, op)
	require.NoError(t, xcontext.DB(ctx).Exec("DROP TRIGGER "+guard).Error)
}
