package request

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/paging"

	"gorm.io/gorm"
)

// RequestUserRow is a request joined with its owner's directory fields,
// the shape every listing and notification works from.
type RequestUserRow struct {
	ID           int          `gorm:"column:id"`
	UserID       int          `gorm:"column:user_id"`
	UserName     string       `gorm:"column:user_name"`
	Email        string       `gorm:"column:email"`
	Type         leave.Type   `gorm:"column:type"`
	Status       leave.Status `gorm:"column:status"`
	StartDate    *time.Time   `gorm:"column:start_date"`
	EndDate      *time.Time   `gorm:"column:end_date"`
	IsHalfDayOff *bool        `gorm:"column:is_half_day_off"`
	Reason       string       `gorm:"column:reason"`
	CreatedAt    time.Time    `gorm:"column:created_at"`
	UpdatedAt    *time.Time   `gorm:"column:updated_at"`
}

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id int) (*LeaveRequest, error)
	FindProjectionByID(ctx context.Context, id int) (*RequestUserRow, error)
	FindPage(ctx context.Context, q GetRequestsQuery) (paging.PagedResult[RequestUserRow], error)
	Create(ctx context.Context, r *LeaveRequest) error
	Update(ctx context.Context, r *LeaveRequest) error
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

func (r *repository) FindByID(ctx context.Context, id int) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.conn(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindProjectionByID(ctx context.Context, id int) (*RequestUserRow, error) {
	var row RequestUserRow
	err := r.projection(ctx).
		Where("lr.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindPage lists active requests, filtered and sorted per the query.
// Soft-deleted rows never show up here.
func (r *repository) FindPage(ctx context.Context, q GetRequestsQuery) (paging.PagedResult[RequestUserRow], error) {
	db := r.projection(ctx).Where("lr.is_active = ?", true)

	if q.UserID != nil {
		db = db.Where("lr.user_id = ?", *q.UserID)
	}
	if q.Type != nil {
		leaveType, err := leave.ParseType(*q.Type)
		if err != nil {
			return paging.PagedResult[RequestUserRow]{}, err
		}
		db = db.Where("lr.type = ?", uint8(leaveType))
	}
	if q.Status != nil {
		status, err := leave.ParseStatus(*q.Status)
		if err != nil {
			return paging.PagedResult[RequestUserRow]{}, err
		}
		db = db.Where("lr.status = ?", uint8(status))
	}
	if q.StartFrom != nil {
		from, err := time.Parse("2006-01-02", *q.StartFrom)
		if err != nil {
			return paging.PagedResult[RequestUserRow]{}, err
		}
		db = db.Where("lr.start_date >= ?", from)
	}
	if q.EndTo != nil {
		to, err := time.Parse("2006-01-02", *q.EndTo)
		if err != nil {
			return paging.PagedResult[RequestUserRow]{}, err
		}
		db = db.Where("lr.end_date <= ?", to)
	}
	if q.HalfDay != nil {
		db = db.Where("lr.is_half_day_off = ?", *q.HalfDay)
	}
	if q.Reason != "" {
		db = db.Where("lr.reason ILIKE ?", "%"+q.Reason+"%")
	}

	db = db.Order(orderClause(q.SortBy, q.SortDir))

	return paging.ToPagedResult[RequestUserRow](ctx, db, q.Query)
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	return r.conn(ctx).Create(req).Error
}

func (r *repository) Update(ctx context.Context, req *LeaveRequest) error {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"type":            uint8(req.Type),
			"start_date":      req.StartDate,
			"end_date":        req.EndDate,
			"is_half_day_off": req.IsHalfDayOff,
			"reason":          req.Reason,
			"status":          uint8(req.Status),
			"is_active":       req.IsActive,
			"updated_at":      req.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) projection(ctx context.Context) *gorm.DB {
	return r.conn(ctx).
		Table("leave_requests AS lr").
		Select("lr.id, lr.user_id, u.user_name, u.email, lr.type, lr.status, lr.start_date, lr.end_date, lr.is_half_day_off, lr.reason, lr.created_at, lr.updated_at").
		Joins("JOIN users u ON u.user_id = lr.user_id")
}

var sortColumns = map[string]string{
	"id":        "lr.id",
	"type":      "lr.type",
	"startDate": "lr.start_date",
	"endDate":   "lr.end_date",
	"createdAt": "lr.created_at",
}

func orderClause(sortBy, sortDir string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "lr.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", column, dir)
}
