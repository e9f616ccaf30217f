package balance

import (
	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/paging"
)

type CreateBalanceRequest struct {
	UserName string  `json:"userName" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	Year     int     `json:"year"`
	Balance  float64 `json:"balance" binding:"min=0"`
}

type UpdateBalanceRequest struct {
	Balance float64 `json:"balance" binding:"min=0"`
}

// GetBalancesQuery filters the grouped balance listing. Search matches
// the user name, Type and Year narrow to a single leave type or
// calendar year when set.
type GetBalancesQuery struct {
	Search string  `form:"search"`
	Type   *string `form:"type"`
	Year   *int    `form:"year"`
	paging.Query
}

// BalanceEntry is one (type, year) balance inside a user's group.
type BalanceEntry struct {
	Type    leave.Type `json:"type"`
	Year    int        `json:"year"`
	Balance float64    `json:"balance"`
}

// UserBalancesResponse groups all balance rows of one user. The
// listing paginates over these groups, not over the underlying rows.
type UserBalancesResponse struct {
	UserID    int            `json:"userId"`
	UserName  string         `json:"userName"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Balances  []BalanceEntry `json:"balances"`
}

type BalanceResponse struct {
	UserID   int        `json:"userId"`
	UserName string     `json:"userName"`
	Type     leave.Type `json:"type"`
	Year     int        `json:"year"`
	Balance  float64    `json:"balance"`
}
