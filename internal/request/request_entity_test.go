package request_test

import (
	"testing"
	"time"

	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
	"github.com/TaiVuViet-153/HR-Portal/internal/request"

	"github.com/stretchr/testify/assert"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func boolPtr(v bool) *bool { return &v }

func newTestRequest() request.LeaveRequest {
	return request.NewLeaveRequest(
		1,
		leave.TypePaid,
		datePtr(2026, time.March, 2),
		datePtr(2026, time.March, 6),
		boolPtr(false),
		"family trip",
	)
}

func TestNewLeaveRequest(t *testing.T) {
	r := newTestRequest()

	assert.Equal(t, leave.StatusPending, r.Status)
	assert.True(t, r.IsActive)
	assert.Nil(t, r.UpdatedAt)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestLeaveRequest_UpdateSchedule(t *testing.T) {
	t.Run("only provided fields change", func(t *testing.T) {
		r := newTestRequest()
		r.UpdateSchedule(nil, datePtr(2026, time.March, 9), nil)

		assert.Equal(t, *datePtr(2026, time.March, 2), *r.StartDate)
		assert.Equal(t, *datePtr(2026, time.March, 9), *r.EndDate)
		assert.False(t, *r.IsHalfDayOff)
		assert.NotNil(t, r.UpdatedAt)
	})

	t.Run("identical values do not stamp update time", func(t *testing.T) {
		r := newTestRequest()
		r.UpdateSchedule(datePtr(2026, time.March, 2), datePtr(2026, time.March, 6), boolPtr(false))

		assert.Nil(t, r.UpdatedAt)
	})
}

func TestLeaveRequest_UpdateStatus(t *testing.T) {
	r := newTestRequest()

	r.UpdateStatus(leave.StatusApproved)
	assert.Equal(t, leave.StatusApproved, r.Status)
	assert.NotNil(t, r.UpdatedAt)

	r.UpdatedAt = nil
	r.UpdateStatus(leave.StatusApproved)
	assert.Nil(t, r.UpdatedAt)
}

func TestLeaveRequest_UpdateTypeAndReason(t *testing.T) {
	r := newTestRequest()

	r.UpdateType(leave.TypeWedding)
	assert.Equal(t, leave.TypeWedding, r.Type)

	r.UpdateReason("wedding leave")
	assert.Equal(t, "wedding leave", r.Reason)
}

func TestLeaveRequest_MarkAsDeleted(t *testing.T) {
	r := newTestRequest()
	r.UpdateStatus(leave.StatusCancelled)
	statusBefore := r.Status

	r.MarkAsDeleted()

	assert.False(t, r.IsActive)
	assert.Equal(t, statusBefore, r.Status, "soft delete must not touch the status")

	r.UpdatedAt = nil
	r.MarkAsDeleted()
	assert.Nil(t, r.UpdatedAt, "second delete is a no-op")
}
