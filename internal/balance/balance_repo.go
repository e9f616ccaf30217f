package balance

import (
	"context"
	"database/sql"

	"github.com/TaiVuViet-153/HR-Portal/internal/leave"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BalanceUserRow is one balance joined with its owner, used by the
// grouped listing.
type BalanceUserRow struct {
	UserID   int        `gorm:"column:user_id"`
	UserName string     `gorm:"column:user_name"`
	Detail   string     `gorm:"column:detail"`
	Type     leave.Type `gorm:"column:type"`
	Year     int        `gorm:"column:year"`
	Balance  float64    `gorm:"column:balance"`
}

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByKey(ctx context.Context, userID int, leaveType leave.Type, year int) (*LeaveBalance, error)
	FindByKeyForUpdate(ctx context.Context, userID int, leaveType leave.Type, year int) (*LeaveBalance, error)
	FindAllWithUsers(ctx context.Context, q GetBalancesQuery) ([]BalanceUserRow, error)
	Create(ctx context.Context, b *LeaveBalance) error
	Update(ctx context.Context, b *LeaveBalance) error
	Delete(ctx context.Context, userID int, leaveType leave.Type, year int) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn routes statements through the pending transaction when one is
// bound via WithTx, otherwise through the shared pool.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) FindByKey(ctx context.Context, userID int, leaveType leave.Type, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.conn(ctx).
		Where("user_id = ? AND type = ? AND year = ?", userID, uint8(leaveType), year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByKeyForUpdate locks the balance row for the rest of the
// transaction so concurrent debits serialize instead of both reading
// the same starting balance.
func (r *repository) FindByKeyForUpdate(ctx context.Context, userID int, leaveType leave.Type, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND type = ? AND year = ?", userID, uint8(leaveType), year).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindAllWithUsers(ctx context.Context, q GetBalancesQuery) ([]BalanceUserRow, error) {
	db := r.conn(ctx).
		Table("leave_balances AS lb").
		Select("lb.user_id, u.user_name, u.detail, lb.type, lb.year, lb.balance").
		Joins("JOIN users u ON u.user_id = lb.user_id")

	if q.Search != "" {
		db = db.Where("u.user_name ILIKE ?", "%"+q.Search+"%")
	}
	if q.Type != nil {
		leaveType, err := leave.ParseType(*q.Type)
		if err != nil {
			return nil, err
		}
		db = db.Where("lb.type = ?", uint8(leaveType))
	}
	if q.Year != nil {
		db = db.Where("lb.year = ?", *q.Year)
	}

	var rows []BalanceUserRow
	err := db.
		Order("u.user_name ASC, lb.type ASC, lb.year ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return r.conn(ctx).Create(b).Error
}

func (r *repository) Update(ctx context.Context, b *LeaveBalance) error {
	return r.conn(ctx).
		Model(&LeaveBalance{}).
		Where("user_id = ? AND type = ? AND year = ?", b.UserID, uint8(b.Type), b.Year).
		Updates(map[string]any{"balance": b.Balance, "updated_at": b.UpdatedAt}).Error
}

func (r *repository) Delete(ctx context.Context, userID int, leaveType leave.Type, year int) error {
	res := r.conn(ctx).
		Where("user_id = ? AND type = ? AND year = ?", userID, uint8(leaveType), year).
		Delete(&LeaveBalance{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
