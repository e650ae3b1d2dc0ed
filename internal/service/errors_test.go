package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2' for key 'PRIMARY'"}, KindConflict},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, KindStorage},
		{"sqlite unique", errors.New("UNIQUE constraint failed: user_follows.follower_id"), KindConflict},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, KindConflict},
		{"record not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), KindNotFound},
		{"cancelled", context.Canceled, KindStorage},
		{"unknown", errors.New("connection reset"), KindStorage},
		{"sentinel", ErrReviewLikeSelf, KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapError("test.op", tc.err)
			assert.Equal(t, tc.kind, KindOf(mapped))
			assert.ErrorIs(t, mapped, tc.err)

			var se *Error
			assert.True(t, errors.As(mapped, &se))
			assert.Equal(t, "test.op", se.Op)
		})
	}
}

func TestMapErrorKeepsTaggedErrors(t *testing.T) {
	tagged := NewError(KindPermission, "first.op", "nope", nil)
	assert.Same(t, tagged, MapError("second.op", tagged))
	assert.Nil(t, MapError("op", nil))
}

func TestErrorMessage(t *testing.T) {
	err := MapError("review.edit", UnauthorizedError)
	assert.Equal(t, "review.edit: caller does not own this resource (permission)", err.Error())
	assert.Equal(t, "invalid parameter (validation)", ErrParamInvalid.Error())
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindStorage))
}
