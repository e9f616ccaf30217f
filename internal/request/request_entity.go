package request

import (
	"time"

	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
)

// LeaveRequest is a time-off request. Requests are never hard-deleted:
// IsActive=false hides them from every listing while the row stays
// behind for audit. Status moves only through the workflow service.
type LeaveRequest struct {
	ID           int          `gorm:"primaryKey;column:id" json:"id"`
	UserID       int          `gorm:"column:user_id" json:"userId"`
	Type         leave.Type   `gorm:"column:type" json:"type"`
	StartDate    *time.Time   `gorm:"column:start_date" json:"startDate"`
	EndDate      *time.Time   `gorm:"column:end_date" json:"endDate"`
	IsHalfDayOff *bool        `gorm:"column:is_half_day_off" json:"isHalfDayOff"`
	Reason       string       `gorm:"column:reason" json:"reason"`
	Status       leave.Status `gorm:"column:status" json:"status"`
	IsActive     bool         `gorm:"column:is_active" json:"isActive"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    *time.Time   `gorm:"column:updated_at" json:"updatedAt"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

func NewLeaveRequest(userID int, leaveType leave.Type, start, end *time.Time, halfDay *bool, reason string) LeaveRequest {
	return LeaveRequest{
		UserID:       userID,
		Type:         leaveType,
		StartDate:    start,
		EndDate:      end,
		IsHalfDayOff: halfDay,
		Reason:       reason,
		Status:       leave.StatusPending,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

func (r *LeaveRequest) UpdateType(leaveType leave.Type) {
	if r.Type == leaveType {
		return
	}
	r.Type = leaveType
	r.touch()
}

// UpdateSchedule overwrites only the date fields that are provided.
func (r *LeaveRequest) UpdateSchedule(start, end *time.Time, halfDay *bool) {
	changed := false
	if start != nil && !equalDate(r.StartDate, start) {
		r.StartDate = start
		changed = true
	}
	if end != nil && !equalDate(r.EndDate, end) {
		r.EndDate = end
		changed = true
	}
	if halfDay != nil && (r.IsHalfDayOff == nil || *r.IsHalfDayOff != *halfDay) {
		r.IsHalfDayOff = halfDay
		changed = true
	}
	if changed {
		r.touch()
	}
}

func (r *LeaveRequest) UpdateReason(reason string) {
	if r.Reason == reason {
		return
	}
	r.Reason = reason
	r.touch()
}

func (r *LeaveRequest) UpdateStatus(status leave.Status) {
	if r.Status == status {
		return
	}
	r.Status = status
	r.touch()
}

// MarkAsDeleted soft-deletes the request. Only the active flag changes;
// the status keeps whatever value it had, matching the audit trail shape
// downstream consumers rely on.
func (r *LeaveRequest) MarkAsDeleted() {
	if !r.IsActive {
		return
	}
	r.IsActive = false
	r.touch()
}

func (r *LeaveRequest) touch() {
	now := time.Now().UTC()
	r.UpdatedAt = &now
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
