package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/testutil"
	"github.com/questx-lab/habit/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

type echoResponse struct {
	Name   string `json:"name"`
	Limit  int    `json:"limit"`
	UserID string `json:"user_id"`
}

func echo(ctx context.Context, req *echoRequest) (*echoResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a name")
	}

	return &echoResponse{Name: req.Name, Limit: req.Limit, UserID: xcontext.RequestUserID(ctx)}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	ctx := testutil.MockContext()
	r := New(ctx)

	GET(r, "/public", echo)

	authRouter := r.Branch()
	authRouter.Before(func(ctx context.Context) (context.Context, error) {
		userID := xcontext.HTTPRequest(ctx).Header.Get("X-User")
		if userID == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "Require a user")
		}
		return xcontext.WithRequestUserID(ctx, userID), nil
	})
	POST(authRouter, "/private", echo)

	s := httptest.NewServer(r.Handler())
	t.Cleanup(s.Close)
	return s
}

func decode(t *testing.T, resp *http.Response) response {
	t.Helper()
	defer resp.Body.Close()

	var result response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func TestRouter_GET(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get(s.URL + "/public?name=alice&limit=5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	require.Equal(t, int64(0), body.Code)
	require.Equal(t, map[string]any{"name": "alice", "limit": float64(5), "user_id": ""}, body.Data)

	resp, err = http.Get(s.URL + "/public")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, int64(errorx.BadRequest), body.Code)
	require.Equal(t, "Require a name", body.Error)

	resp, err = http.Post(s.URL+"/public", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRouter_POST(t *testing.T) {
	s := newTestServer(t)

	send := func(userID, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, s.URL+"/private", bytes.NewBufferString(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			req.Header.Set("X-User", userID)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := send("user1", `{"name":"bob","limit":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	require.Equal(t, map[string]any{"name": "bob", "limit": float64(3), "user_id": "user1"}, body.Data)

	resp = send("", `{"name":"bob"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = send("user1", `{"name":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decode(t, resp)
	require.Equal(t, "Invalid request", body.Error)
}
