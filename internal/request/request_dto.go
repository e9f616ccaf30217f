package request

import (
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/paging"
)

type CreateRequest struct {
	UserID       int    `json:"userId" binding:"required"`
	Type         string `json:"type" binding:"required"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	IsHalfDayOff *bool  `json:"isHalfDayOff"`
	Reason       string `json:"reason"`
}

// UpdateRequest carries a partial mutation: nil fields keep the stored
// value.
type UpdateRequest struct {
	Type         *string `json:"type"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	IsHalfDayOff *bool   `json:"isHalfDayOff"`
	Reason       *string `json:"reason"`
	Status       *string `json:"status"`
}

// GetRequestsQuery composes the optional list filters with AND
// semantics. Sort fields: id, type, startDate, endDate, createdAt
// (default, descending).
type GetRequestsQuery struct {
	UserID    *int    `form:"userId"`
	Type      *string `form:"type"`
	Status    *string `form:"status"`
	StartFrom *string `form:"startFrom"`
	EndTo     *string `form:"endTo"`
	HalfDay   *bool   `form:"halfDay"`
	Reason    string  `form:"reason"`
	SortBy    string  `form:"sortBy"`
	SortDir   string  `form:"sortDir"`
	paging.Query
}

type RequestResponse struct {
	ID           int     `json:"id"`
	UserID       int     `json:"userId"`
	UserName     string  `json:"userName"`
	Email        string  `json:"email"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	IsHalfDayOff bool    `json:"isHalfDayOff"`
	Reason       string  `json:"reason"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    *string `json:"updatedAt"`
}
