package loans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     Code
	}{
		{StatusPending, StatusIssued, ""},
		{StatusPending, StatusRejected, ""},
		{StatusPending, StatusReturned, CodeInvalidTransition},
		{StatusIssued, StatusReturned, ""},
		{StatusIssued, StatusIssued, CodeInvalidTransition},
		{StatusIssued, StatusRejected, CodeInvalidTransition},
		{StatusRejected, StatusIssued, CodeInvalidTransition},
		{StatusRejected, StatusReturned, CodeInvalidTransition},
		{StatusReturned, StatusReturned, CodeAlreadyReturned},
		{StatusReturned, StatusIssued, CodeInvalidTransition},
		{Status("lost"), StatusReturned, CodeInternal},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			err := CheckTransition(tc.from, tc.to)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, CodeOf(err))
		})
	}
}

func TestStatus_ScanRejectsUnknown(t *testing.T) {
	var s Status
	require.NoError(t, s.Scan([]byte("issued")))
	assert.Equal(t, StatusIssued, s)

	assert.Error(t, s.Scan("lost"))
	assert.Error(t, s.Scan(42))

	_, err := Status("lost").Value()
	assert.Error(t, err)
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ToHTTPStatus(ErrInvalid("x")))
	assert.Equal(t, 401, ToHTTPStatus(&APIError{Code: CodeUnauthenticated}))
	assert.Equal(t, 403, ToHTTPStatus(ErrForbidden("x")))
	assert.Equal(t, 404, ToHTTPStatus(ErrNotFound("x")))
	assert.Equal(t, 409, ToHTTPStatus(ErrOutOfStock()))
	assert.Equal(t, 409, ToHTTPStatus(ErrAlreadyReturned()))
	assert.Equal(t, 500, ToHTTPStatus(ErrPersistence(assert.AnError)))
	assert.Equal(t, 500, ToHTTPStatus(assert.AnError))
}

func TestSystemClockIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, SystemClock{}.Now().Location())
}
