package balance

import (
	"math"
	"time"

	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
)

// MaxSingleAdjustment caps how many days a single debit or credit may
// move. Larger amounts indicate a calculation bug upstream and are
// ignored rather than applied.
const MaxSingleAdjustment = 12.0

// LeaveBalance tracks remaining leave days per user, leave type and
// calendar year.
type LeaveBalance struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"userId"`
	Type      leave.Type `gorm:"primaryKey;column:type" json:"type"`
	Year      int        `gorm:"primaryKey;column:year" json:"year"`
	Balance   float64    `gorm:"column:balance" json:"balance"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// NewLeaveBalance builds a balance row. A zero year defaults to the
// current calendar year.
func NewLeaveBalance(userID int, leaveType leave.Type, year int, days float64) LeaveBalance {
	if year == 0 {
		year = time.Now().Year()
	}
	return LeaveBalance{
		UserID:    userID,
		Type:      leaveType,
		Year:      year,
		Balance:   days,
		CreatedAt: time.Now().UTC(),
	}
}

// SetBalance overwrites the balance with a well-formed non-negative
// value. Malformed or negative values are silently ignored.
func (b *LeaveBalance) SetBalance(days float64) {
	if math.IsNaN(days) || math.IsInf(days, 0) || days < 0 {
		return
	}
	b.Balance = days
	b.touch()
}

func (b *LeaveBalance) HasEnoughDays(amount float64) bool {
	return b.Balance-amount >= 0
}

// Decrease debits amount from the balance. The debit is silently
// skipped when the amount is not a usable number, exceeds
// MaxSingleAdjustment, or would push the balance negative; callers must
// check HasEnoughDays first if they need to report that to the user.
func (b *LeaveBalance) Decrease(amount float64) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	if amount == 0 || math.Abs(amount) > MaxSingleAdjustment {
		return
	}
	if b.Balance-amount < 0 {
		return
	}
	b.Balance -= amount
	b.touch()
}

func (b *LeaveBalance) touch() {
	now := time.Now().UTC()
	b.UpdatedAt = &now
}
