package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"
)

type response struct {
	Code  int64  `json:"code"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) (int, response) {
	errx := errorx.Error{}
	if !errors.As(err, &errx) {
		errx = errorx.Unknown
	}

	return httpStatus(errx), response{
		Code:  int64(errx.Code),
		Kind:  errorx.KindOf(errx).String(),
		Error: errx.Message,
	}
}

func httpStatus(errx errorx.Error) int {
	if errx.Code == errorx.TooManyRequests {
		return http.StatusTooManyRequests
	}

	if errx.Code == errorx.Unauthenticated {
		return http.StatusUnauthorized
	}

	switch errorx.KindOf(errx) {
	case errorx.KindValidation:
		return http.StatusBadRequest
	case errorx.KindConflict:
		return http.StatusConflict
	case errorx.KindAuthorization:
		return http.StatusForbidden
	case errorx.KindNotFound:
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, resp := newErrorResponse(err)
	if err := writeJSON(w, status, resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}
