package common

import (
	"context"
	"errors"

	"github.com/pkg/math"
	"github.com/questx-lab/habit/pkg/xcontext"
	"gorm.io/gorm"
)

// ToMap indexes values by key.
func ToMap[K comparable, V any](values []V, key func(V) K) map[K]V {
	result := make(map[K]V, len(values))
	for _, v := range values {
		result[key(v)] = v
	}
	return result
}

// ClampLimit returns def if limit is not positive and never more than max.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}

	return math.MinInt(math.MaxInt(limit, 1), max)
}

// RetryRead calls read again once if it fails for another reason than a missing record. It must
// only wrap reads, mutations are never retried.
func RetryRead[T any](ctx context.Context, read func() (T, error)) (T, error) {
	result, err := read()
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return result, err
	}

	xcontext.Logger(ctx).Warnf("Read failed, retrying once: %v", err)
	return read()
}
