package authenticator_test

import (
	"testing"
	"time"

	"github.com/questx-lab/habit/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

type accessToken struct {
	ID string `json:"id"`
}

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine[accessToken]("secret", time.Minute)
	token, err := engine.Generate("abc", accessToken{ID: "abc"})
	require.NoError(t, err)

	info, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "abc", info.ID)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine[accessToken]("secret", -time.Minute)
	token, err := engine.Generate("abc", accessToken{ID: "abc"})
	require.NoError(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := authenticator.NewTokenEngine[accessToken]("secret", time.Minute).
		Generate("abc", accessToken{ID: "abc"})
	require.NoError(t, err)

	_, err = authenticator.NewTokenEngine[accessToken]("other", time.Minute).Verify(token)
	require.Error(t, err)
}
