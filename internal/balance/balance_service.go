package balance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	balanceerrors "github.com/TaiVuViet-153/HR-Portal/internal/balance/errors"
	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/cache"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/paging"
	"github.com/TaiVuViet-153/HR-Portal/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const balancesCacheTTL = 30 * time.Minute

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, q GetBalancesQuery) (paging.PagedResult[UserBalancesResponse], error)
	Create(ctx context.Context, req CreateBalanceRequest) (BalanceResponse, error)
	Update(ctx context.Context, userID int, leaveType string, year int, req UpdateBalanceRequest) (BalanceResponse, error)
	Delete(ctx context.Context, userID int, leaveType string, year int) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	userRepo user.Repository
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, userRepo user.Repository, c *cache.Cache, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, userRepo: userRepo, cache: c, logger: l}
}

func (s *service) GetAll(ctx context.Context, q GetBalancesQuery) (paging.PagedResult[UserBalancesResponse], error) {
	if q.Type != nil {
		if _, err := leave.ParseType(*q.Type); err != nil {
			return paging.PagedResult[UserBalancesResponse]{}, balanceerrors.ErrInvalidLeaveType
		}
	}

	key := cache.Fingerprint(q)
	return cache.GetOrCreate(ctx, s.cache, cache.PrefixLeaveBalances, key, balancesCacheTTL,
		func(ctx context.Context) (paging.PagedResult[UserBalancesResponse], error) {
			rows, err := s.repo.FindAllWithUsers(ctx, q)
			if err != nil {
				s.logger.Error("get balances query failed", zap.Error(err))
				return paging.PagedResult[UserBalancesResponse]{}, mapRepositoryError(err)
			}

			result := paging.GroupPage(rows, q.Query,
				func(row BalanceUserRow) int { return row.UserID },
				groupByUser,
			)
			return result, nil
		})
}

// groupByUser folds balance rows into one response per user, preserving
// the row order produced by the repository.
func groupByUser(rows []BalanceUserRow) []UserBalancesResponse {
	grouped := make([]UserBalancesResponse, 0)
	index := make(map[int]int)

	for _, row := range rows {
		i, ok := index[row.UserID]
		if !ok {
			detail := user.ParseDetail(row.Detail)
			grouped = append(grouped, UserBalancesResponse{
				UserID:    row.UserID,
				UserName:  row.UserName,
				FirstName: detail.FirstName,
				LastName:  detail.LastName,
				Balances:  []BalanceEntry{},
			})
			i = len(grouped) - 1
			index[row.UserID] = i
		}
		grouped[i].Balances = append(grouped[i].Balances, BalanceEntry{
			Type:    row.Type,
			Year:    row.Year,
			Balance: row.Balance,
		})
	}
	return grouped
}

func (s *service) Create(ctx context.Context, req CreateBalanceRequest) (BalanceResponse, error) {
	s.logger.Debug("create balance requested",
		zap.String("user_name", req.UserName),
		zap.String("type", req.Type),
		zap.Int("year", req.Year),
	)

	leaveType, err := leave.ParseType(req.Type)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidLeaveType
	}

	owner, err := s.userRepo.FindByUserName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, balanceerrors.ErrUserNotFound
		}
		return BalanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create balance begin tx failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b := NewLeaveBalance(owner.UserID, leaveType, req.Year, req.Balance)
	if err := qtx.Create(ctx, &b); err != nil {
		s.logger.Error("create balance persist failed", zap.Error(err))
		return BalanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("create balance success",
		zap.Int("user_id", owner.UserID),
		zap.String("type", b.Type.String()),
		zap.Int("year", b.Year),
	)

	return mapToResponse(b, owner.UserName), nil
}

func (s *service) Update(ctx context.Context, userID int, leaveTypeName string, year int, req UpdateBalanceRequest) (BalanceResponse, error) {
	leaveType, err := leave.ParseType(leaveTypeName)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidLeaveType
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update balance begin tx failed", zap.Error(err))
		return BalanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindByKeyForUpdate(ctx, userID, leaveType, year)
	if err != nil {
		return BalanceResponse{}, mapRepositoryError(err)
	}

	b.SetBalance(req.Balance)
	if err := qtx.Update(ctx, b); err != nil {
		s.logger.Error("update balance persist failed",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return BalanceResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update balance commit failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("update balance success",
		zap.Int("user_id", userID),
		zap.String("type", leaveType.String()),
		zap.Int("year", year),
		zap.Float64("balance", req.Balance),
	)

	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return mapToResponse(*b, ""), nil
	}
	return mapToResponse(*b, owner.UserName), nil
}

func (s *service) Delete(ctx context.Context, userID int, leaveTypeName string, year int) error {
	leaveType, err := leave.ParseType(leaveTypeName)
	if err != nil {
		return balanceerrors.ErrInvalidLeaveType
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Delete(ctx, userID, leaveType, year); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("delete balance success",
		zap.Int("user_id", userID),
		zap.String("type", leaveType.String()),
		zap.Int("year", year),
	)
	return nil
}

func (s *service) invalidateCache(ctx context.Context) {
	if err := s.cache.InvalidateByPrefix(ctx, cache.PrefixLeaveBalances); err != nil {
		s.logger.Error("invalidate balances cache failed", zap.Error(err))
	}
}

func mapToResponse(b LeaveBalance, userName string) BalanceResponse {
	return BalanceResponse{
		UserID:   b.UserID,
		UserName: userName,
		Type:     b.Type,
		Year:     b.Year,
		Balance:  b.Balance,
	}
}
