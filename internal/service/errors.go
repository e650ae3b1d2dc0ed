package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Kind classifies every failure a write can end with.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindPermission Kind = "permission"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
)

// Error is the typed failure returned by every service operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Kind)
	case e.Message != "":
		return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
	case e.Op != "":
		return fmt.Sprintf("%s (%s)", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(kind Kind, op, message string, cause error) error {
	return &Error{
		Kind:    kind,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func newSentinel(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind carried by err, or "" when err is untyped.
func KindOf(err error) Kind {
	var se *Error
	if !errors.As(err, &se) {
		return ""
	}
	return se.Kind
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrParamInvalid       = newSentinel(KindValidation, "invalid parameter")
	ErrRatingOutOfRange   = newSentinel(KindValidation, "rating must be between 1 and 5")
	ErrDurationInvalid    = newSentinel(KindValidation, "duration must be a non-negative ISO-8601 duration")
	ErrReviewTextEmpty    = newSentinel(KindValidation, "review text must not be empty")
	ErrUserFollowSelf     = newSentinel(KindValidation, "users cannot follow themselves")
	ErrReviewLikeSelf     = newSentinel(KindValidation, "users cannot like their own review")
	ErrTargetUserInvalid  = newSentinel(KindValidation, "target user has been deleted")
	ErrMissingCredentials = newSentinel(KindAuth, "missing login credentials")
	ErrAuthFailed         = newSentinel(KindAuth, "invalid user id or password")
	UnauthorizedError     = newSentinel(KindPermission, "caller does not own this resource")
	ErrUserNotFound       = newSentinel(KindNotFound, "user not found")
	ErrRecipeNotFound     = newSentinel(KindNotFound, "recipe not found")
	ErrReviewNotFound     = newSentinel(KindNotFound, "review not found")
	ErrUserExist          = newSentinel(KindConflict, "user already exists")
	UnExpectedError       = newSentinel(KindStorage, "unexpected storage failure")
)

const (
	mysqlDuplicateEntry = 1062
	mysqlLockTimeout    = 1205
	mysqlDeadlock       = 1213
)

// MapError converts err into an *Error tagged with op. Typed errors keep their
// kind; driver failures are classified, and anything unknown is a storage error.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		if se.Op != "" {
			return err
		}
		return &Error{Kind: se.Kind, Op: op, Message: se.Message, Cause: err}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewError(KindNotFound, op, err.Error(), err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewError(KindConflict, op, err.Error(), err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewError(KindStorage, op, err.Error(), err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return NewError(KindConflict, op, myErr.Message, err)
		case mysqlDeadlock, mysqlLockTimeout:
			return NewError(KindStorage, op, myErr.Message, err)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate entry") {
		return NewError(KindConflict, op, err.Error(), err)
	}
	return NewError(KindStorage, op, err.Error(), err)
}
