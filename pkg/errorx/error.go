package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) Kind() Kind {
	return e.Code.Kind()
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var errx Error
	if errors.As(err, &errx) {
		return errx.Code == code
	}

	return false
}

// KindOf returns the category of err, KindTransport for errors which are not an Error.
func KindOf(err error) Kind {
	var errx Error
	if errors.As(err, &errx) {
		if errx.Code == Unknown.Code {
			return KindTransport
		}
		return errx.Kind()
	}

	return KindTransport
}
