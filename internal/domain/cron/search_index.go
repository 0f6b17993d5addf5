package cron

import (
	"context"
	"time"

	"github.com/questx-lab/habit/internal/domain"
	"github.com/questx-lab/habit/pkg/xcontext"
)

const searchIndexInterval = time.Hour

// SearchIndexCronJob rebuilds the user search index, picking up users written by other nodes.
type SearchIndexCronJob struct {
	userDomain domain.UserDomain
}

func NewSearchIndexCronJob(userDomain domain.UserDomain) *SearchIndexCronJob {
	return &SearchIndexCronJob{userDomain: userDomain}
}

func (job *SearchIndexCronJob) Do(ctx context.Context) {
	if err := job.userDomain.BuildIndex(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build user index: %v", err)
	}
}

func (job *SearchIndexCronJob) RunNow() bool {
	return true
}

func (job *SearchIndexCronJob) Next() time.Time {
	return time.Now().Add(searchIndexInterval)
}
