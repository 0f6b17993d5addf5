package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/router"
	"github.com/questx-lab/habit/pkg/xcontext"
)

// Logger writes one line per request, it is the audit log of every procedure call.
func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		info := fmt.Sprintf("%s | %s | %s", req.Method, req.URL.Path, xcontext.RequestUserID(ctx))
		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) && errx.Code != errorx.Unknown.Code {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d", info, -1)
			}
		} else {
			xcontext.Logger(ctx).Infof(info)
		}
	}
}
