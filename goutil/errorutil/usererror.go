package errorutil

import (
	"fmt"

	"github.com/pkg/errors"
)

// combinedError pairs an internal error with a message meant for the person
// running the CLI. Error() renders both so logs keep the full cause, while
// GetUserErrorMessage() returns only the friendly part.
//
//	return errorutil.CombinedError(err, errUserNotLoggedIn)
//
// errors.Is matches either side, so callers can still test for sentinel
// user errors after wrapping.
type combinedError struct {
	original  error
	userError *userError
}

// userError is an error whose message can be shown to the user as is. An
// optional hint is appended on its own line when displayed.
type userError struct {
	error
	hint string
}

type formatted interface {
	error
	Format(s fmt.State, verb rune)
}

func NewUserError(msg string) *userError {
	return &userError{error: errors.New(msg)}
}

func NewUserErrorf(msg string, args ...any) *userError {
	return &userError{error: errors.Errorf(msg, args...)}
}

// WithHint returns a copy of the user error carrying a follow-up suggestion,
// for example "Run `mlpad login` first".
func (e *userError) WithHint(hint string) *userError {
	return &userError{error: e.error, hint: hint}
}

func (e *userError) Hint() string {
	return e.hint
}

func CombinedError(original error, userErr *userError) error {
	if original == nil || IsUserError(original) {
		return original
	}
	return &combinedError{original, userErr}
}

func AddUserMessagef(original error, msg string, args ...any) error {
	if original == nil || IsUserError(original) {
		return original
	}
	return &combinedError{original, NewUserErrorf(msg, args...)}
}

// GetUserErrorMessage returns the user facing message of err (including the
// hint, if any) or "" when err carries none.
func GetUserErrorMessage(err error) string {
	ue := userErrorOf(err)
	if ue == nil {
		return ""
	}
	if ue.hint == "" {
		return ue.Error()
	}
	return ue.Error() + "\n" + ue.hint
}

func userErrorOf(err error) *userError {
	ce := &combinedError{}
	if errors.As(err, &ce) {
		return ce.userError
	}
	us := &userError{}
	if errors.As(err, &us) {
		return us
	}
	return nil
}

func (err *combinedError) Error() string {
	return err.Combine().Error()
}

func (err *combinedError) UserError() error {
	return err.userError
}

func (err *combinedError) Combine() formatted {
	var f formatted
	errors.As(errors.Wrap(err.original, err.userError.Error()), &f)
	return f
}

// Is equals to either the cause or the user error
func (err *combinedError) Is(target error) bool {
	return errors.Is(err.original, target) || errors.Is(err.userError, target)
}

func (err *combinedError) Unwrap() error { return err.Cause() }

func (err *combinedError) Cause() error { return errors.Cause(err.original) }

// Format allows us to use %+v as implemented by github.com/pkg/errors.
func (err *combinedError) Format(s fmt.State, verb rune) {
	err.Combine().Format(s, verb)
}

// IsUserError returns true if the error is a user error or combined
func IsUserError(err error) bool {
	return userErrorOf(err) != nil
}
