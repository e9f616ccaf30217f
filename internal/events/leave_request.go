package events

import "time"

const LeaveRequestTopic = "hr.leave.request.v1"

// Event kinds carried on LeaveRequestTopic. The consumer picks the mail
// template from this value.
const (
	LeaveRequestCreated       = "leave_request_created"
	LeaveRequestUpdated       = "leave_request_updated"
	LeaveRequestStatusChanged = "leave_request_status_changed"
	LeaveRequestDeleted       = "leave_request_deleted"
)

type LeaveRequestEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      int       `json:"request_id"`
	UserID         int       `json:"user_id"`
	UserName       string    `json:"user_name"`
	Email          string    `json:"email"`
	LeaveType      string    `json:"leave_type"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	StartDate      string    `json:"start_date,omitempty"`
	EndDate        string    `json:"end_date,omitempty"`
	IsHalfDayOff   bool      `json:"is_half_day_off"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
