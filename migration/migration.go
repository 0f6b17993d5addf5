package migration

import (
	"context"

	"github.com/questx-lab/habit/internal/entity"
	"github.com/questx-lab/habit/pkg/xcontext"
)

// migrators are applied in order, the index is the version stored in the migrations table.
// Append new migrators, never reorder or remove one.
var migrators = []func(context.Context) error{
	migrate0000,
	migrate0001,
}

// Migrate applies every migrator which has not been recorded yet. Each migrator runs in its own
// transaction together with its version record.
func Migrate(ctx context.Context) error {
	if err := xcontext.DB(ctx).AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	var applied []int
	if err := xcontext.DB(ctx).Model(&entity.Migration{}).Pluck("version", &applied).Error; err != nil {
		return err
	}

	done := map[int]bool{}
	for _, v := range applied {
		done[v] = true
	}

	for version, migrator := range migrators {
		if done[version] {
			continue
		}

		if err := apply(ctx, version, migrator); err != nil {
			return err
		}

		xcontext.Logger(ctx).Infof("Applied migration %04d", version)
	}

	return nil
}

func apply(ctx context.Context, version int, migrator func(context.Context) error) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := migrator(ctx); err != nil {
		return err
	}

	if err := xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error; err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}
