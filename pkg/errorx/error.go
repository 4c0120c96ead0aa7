package errorx

import "fmt"

type Error struct {
	Code    Code
	Message string
}

func New(code Code, msg string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(msg, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// Is reports whether target is an Error with the same code, so callers can
// match with errors.Is(err, errorx.New(errorx.NoActiveChallenge, "")).
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}

	return e.Code == t.Code
}

// HasCode returns true if any error in err's chain is an Error with code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(Error); ok && e.Code == code {
			return true
		}

		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}

	return false
}
