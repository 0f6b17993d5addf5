package middleware

import (
	"context"
	"strings"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/habit/internal/domain"
	"github.com/questx-lab/habit/internal/model"
	"github.com/questx-lab/habit/pkg/authenticator"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/router"
	"github.com/questx-lab/habit/pkg/xcontext"
)

// AuthVerifier reads the access token of a request, from the Authorization header or from the
// access token cookie, and stores the user id in the context.
type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
	userDomain  domain.UserDomain
	synced      *xsync.MapOf[string, struct{}]
}

func NewAuthVerifier(tokenEngine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	return &AuthVerifier{tokenEngine: tokenEngine}
}

// WithUserSync stores the profile of a token the first time this process sees its user.
func (a *AuthVerifier) WithUserSync(userDomain domain.UserDomain) *AuthVerifier {
	a.userDomain = userDomain
	a.synced = xsync.NewMapOf[struct{}]()
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := accessToken(ctx)
		if token == "" {
			return ctx, nil
		}

		info, err := a.tokenEngine.Verify(token)
		if err != nil {
			return ctx, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		if info.ID == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		if a.userDomain != nil {
			if _, ok := a.synced.Load(info.ID); !ok {
				if err := a.userDomain.Sync(ctx, &info); err != nil {
					return ctx, err
				}
				a.synced.Store(info.ID, struct{}{})
			}
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

// Authenticate rejects requests without a verified user.
func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestUserID(ctx) == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}
		return ctx, nil
	}
}

func accessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	name := xcontext.Configs(ctx).Auth.AccessTokenName
	if cookie, err := req.Cookie(name); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// Browsers cannot set headers on websocket handshakes.
	return req.URL.Query().Get(name)
}
