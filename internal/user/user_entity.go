package user

import (
	"encoding/json"
	"time"
)

// LeaveUser is the read-only projection of a user owned by the
// user-management service. This core only joins it for display fields;
// it never writes the users table.
type LeaveUser struct {
	UserID    int       `gorm:"column:user_id;primaryKey"`
	UserName  string    `gorm:"column:user_name"`
	Email     string    `gorm:"column:email"`
	Detail    string    `gorm:"column:detail"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (LeaveUser) TableName() string {
	return "users"
}

// Detail is a free-form JSON blob owned by user management. Only the
// profile fields shown in balance listings are pulled out; everything
// else is left opaque.
type UserDetail struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
}

// ParseDetail extracts profile fields from the detail blob. A missing or
// malformed blob yields the zero value; listing must not fail on bad
// profile data.
func ParseDetail(detail string) UserDetail {
	if detail == "" {
		return UserDetail{}
	}

	var d UserDetail
	if err := json.Unmarshal([]byte(detail), &d); err != nil {
		return UserDetail{}
	}
	return d
}
