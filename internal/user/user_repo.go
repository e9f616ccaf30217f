package user

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, userID int) (*LeaveUser, error)
	FindByUserName(ctx context.Context, userName string) (*LeaveUser, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, userID int) (*LeaveUser, error) {
	var u LeaveUser
	err := r.db.WithContext(ctx).First(&u, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByUserName(ctx context.Context, userName string) (*LeaveUser, error) {
	var u LeaveUser
	err := r.db.WithContext(ctx).First(&u, "user_name = ?", userName).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
