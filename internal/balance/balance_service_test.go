package balance_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/TaiVuViet-153/HR-Portal/internal/balance"
	balanceerrors "github.com/TaiVuViet-153/HR-Portal/internal/balance/errors"
	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/cache"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/paging"
	"github.com/TaiVuViet-153/HR-Portal/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeBalanceRepository struct {
	withTxFn             func(tx *sql.Tx) balance.Repository
	findByKeyFn          func(ctx context.Context, userID int, leaveType leave.Type, year int) (*balance.LeaveBalance, error)
	findByKeyForUpdateFn func(ctx context.Context, userID int, leaveType leave.Type, year int) (*balance.LeaveBalance, error)
	findAllWithUsersFn   func(ctx context.Context, q balance.GetBalancesQuery) ([]balance.BalanceUserRow, error)
	createFn             func(ctx context.Context, b *balance.LeaveBalance) error
	updateFn             func(ctx context.Context, b *balance.LeaveBalance) error
	deleteFn             func(ctx context.Context, userID int, leaveType leave.Type, year int) error
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeBalanceRepository) FindByKey(ctx context.Context, userID int, leaveType leave.Type, year int) (*balance.LeaveBalance, error) {
	if f.findByKeyFn != nil {
		return f.findByKeyFn(ctx, userID, leaveType, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) FindByKeyForUpdate(ctx context.Context, userID int, leaveType leave.Type, year int) (*balance.LeaveBalance, error) {
	if f.findByKeyForUpdateFn != nil {
		return f.findByKeyForUpdateFn(ctx, userID, leaveType, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) FindAllWithUsers(ctx context.Context, q balance.GetBalancesQuery) ([]balance.BalanceUserRow, error) {
	if f.findAllWithUsersFn != nil {
		return f.findAllWithUsersFn(ctx, q)
	}
	return nil, nil
}

func (f *fakeBalanceRepository) Create(ctx context.Context, b *balance.LeaveBalance) error {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) Update(ctx context.Context, b *balance.LeaveBalance) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, b)
	}
	return nil
}

func (f *fakeBalanceRepository) Delete(ctx context.Context, userID int, leaveType leave.Type, year int) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, leaveType, year)
	}
	return nil
}

type fakeUserRepository struct {
	findByIDFn       func(ctx context.Context, id int) (*user.LeaveUser, error)
	findByUserNameFn func(ctx context.Context, userName string) (*user.LeaveUser, error)
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id int) (*user.LeaveUser, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindByUserName(ctx context.Context, userName string) (*user.LeaveUser, error) {
	if f.findByUserNameFn != nil {
		return f.findByUserNameFn(ctx, userName)
	}
	return nil, gorm.ErrRecordNotFound
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	redisMock redismock.ClientMock
	repo      *fakeBalanceRepository
	users     *fakeUserRepository
	service   balance.Service
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()

	repo := &fakeBalanceRepository{}
	users := &fakeUserRepository{}
	svc := balance.NewService(db, repo, users, cache.New(rdb))

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		redisMock: redisMock,
		repo:      repo,
		users:     users,
		service:   svc,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestBalanceService_GetAll(t *testing.T) {
	ctx := context.Background()

	rows := []balance.BalanceUserRow{
		{UserID: 1, UserName: "alice", Detail: `{"FirstName":"Alice","LastName":"Nguyen"}`, Type: leave.TypePaid, Year: 2026, Balance: 15},
		{UserID: 1, UserName: "alice", Detail: `{"FirstName":"Alice","LastName":"Nguyen"}`, Type: leave.TypeUnpaid, Year: 2026, Balance: 0},
		{UserID: 2, UserName: "bob", Detail: `{"FirstName":"Bob","LastName":"Tran"}`, Type: leave.TypePaid, Year: 2026, Balance: 9.5},
	}

	t.Run("cache miss groups rows per user", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		q := balance.GetBalancesQuery{}
		fullKey := "LeaveBalances:v1:" + cache.Fingerprint(q)

		deps.redisMock.ExpectGet("version:LeaveBalances").RedisNil()
		deps.redisMock.ExpectSet("version:LeaveBalances", 1, 0).SetVal("OK")
		deps.redisMock.ExpectGet(fullKey).RedisNil()
		deps.redisMock.Regexp().ExpectSet(fullKey, `.*`, 30*time.Minute).SetVal("OK")

		deps.repo.findAllWithUsersFn = func(ctx context.Context, got balance.GetBalancesQuery) ([]balance.BalanceUserRow, error) {
			return rows, nil
		}

		result, err := deps.service.GetAll(ctx, q)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalItems)
		assert.Len(t, result.Items, 2)
		assert.Equal(t, "alice", result.Items[0].UserName)
		assert.Equal(t, "Alice", result.Items[0].FirstName)
		assert.Equal(t, "Nguyen", result.Items[0].LastName)
		assert.Len(t, result.Items[0].Balances, 2)
		assert.Equal(t, "bob", result.Items[1].UserName)
		assert.Len(t, result.Items[1].Balances, 1)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		q := balance.GetBalancesQuery{}
		fullKey := "LeaveBalances:v1:" + cache.Fingerprint(q)

		cached := paging.PagedResult[balance.UserBalancesResponse]{
			Items: []balance.UserBalancesResponse{
				{UserID: 1, UserName: "alice", Balances: []balance.BalanceEntry{{Type: leave.TypePaid, Year: 2026, Balance: 15}}},
			},
			Page:       1,
			PageSize:   20,
			TotalItems: 1,
		}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet("version:LeaveBalances").SetVal("1")
		deps.redisMock.ExpectGet(fullKey).SetVal(string(payload))

		deps.repo.findAllWithUsersFn = func(ctx context.Context, q balance.GetBalancesQuery) ([]balance.BalanceUserRow, error) {
			t.Fatal("repository must not be hit on a cache hit")
			return nil, nil
		}

		result, err := deps.service.GetAll(ctx, q)

		assert.NoError(t, err)
		assert.Equal(t, cached, result)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("groups paginate by user not by row", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		q := balance.GetBalancesQuery{Query: paging.Query{Page: 2, PageSize: 1}}

		deps.redisMock.ExpectGet("version:LeaveBalances").SetErr(errors.New("redis down"))

		deps.repo.findAllWithUsersFn = func(ctx context.Context, q balance.GetBalancesQuery) ([]balance.BalanceUserRow, error) {
			return rows, nil
		}

		result, err := deps.service.GetAll(ctx, q)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalItems)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, "bob", result.Items[0].UserName)
	})

	t.Run("redis down degrades to the repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redisMock.ExpectGet("version:LeaveBalances").SetErr(errors.New("redis down"))

		deps.repo.findAllWithUsersFn = func(ctx context.Context, q balance.GetBalancesQuery) ([]balance.BalanceUserRow, error) {
			return rows, nil
		}

		result, err := deps.service.GetAll(ctx, balance.GetBalancesQuery{})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), result.TotalItems)
	})

	t.Run("repo error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.redisMock.ExpectGet("version:LeaveBalances").SetErr(errors.New("redis down"))

		deps.repo.findAllWithUsersFn = func(ctx context.Context, q balance.GetBalancesQuery) ([]balance.BalanceUserRow, error) {
			return nil, errors.New("db error")
		}

		_, err := deps.service.GetAll(ctx, balance.GetBalancesQuery{})

		assert.Error(t, err)
	})

	t.Run("invalid type filter rejected before cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllWithUsersFn = func(ctx context.Context, q balance.GetBalancesQuery) ([]balance.BalanceUserRow, error) {
			t.Fatal("repository must not be hit for an invalid filter")
			return nil, nil
		}

		badType := "Sabbatical"
		_, err := deps.service.GetAll(ctx, balance.GetBalancesQuery{Type: &badType})

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidLeaveType)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})
}

func TestBalanceService_Create(t *testing.T) {
	ctx := context.Background()

	alice := &user.LeaveUser{UserID: 1, UserName: "alice", Email: "alice@example.com"}

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := balance.CreateBalanceRequest{UserName: "alice", Type: "Paid", Year: 2026, Balance: 20}

		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectIncr("version:LeaveBalances").SetVal(2)

		deps.users.findByUserNameFn = func(ctx context.Context, userName string) (*user.LeaveUser, error) {
			assert.Equal(t, "alice", userName)
			return alice, nil
		}
		deps.repo.createFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			assert.Equal(t, 1, b.UserID)
			assert.Equal(t, leave.TypePaid, b.Type)
			assert.Equal(t, 2026, b.Year)
			assert.Equal(t, 20.0, b.Balance)
			return nil
		}

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "alice", resp.UserName)
		assert.Equal(t, leave.TypePaid, resp.Type)
		assert.Equal(t, 20.0, resp.Balance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("year defaults to current", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectIncr("version:LeaveBalances").SetVal(2)

		deps.users.findByUserNameFn = func(ctx context.Context, userName string) (*user.LeaveUser, error) {
			return alice, nil
		}
		deps.repo.createFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			assert.Equal(t, time.Now().Year(), b.Year)
			return nil
		}

		_, err := deps.service.Create(ctx, balance.CreateBalanceRequest{UserName: "alice", Type: "Paid", Balance: 20})

		assert.NoError(t, err)
	})

	t.Run("invalid leave type", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, balance.CreateBalanceRequest{UserName: "alice", Type: "Sabbatical", Balance: 20})

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidLeaveType)
	})

	t.Run("unknown user", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.users.findByUserNameFn = func(ctx context.Context, userName string) (*user.LeaveUser, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Create(ctx, balance.CreateBalanceRequest{UserName: "ghost", Type: "Paid", Balance: 20})

		assert.ErrorIs(t, err, balanceerrors.ErrUserNotFound)
	})

	t.Run("duplicate key maps to conflict", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.users.findByUserNameFn = func(ctx context.Context, userName string) (*user.LeaveUser, error) {
			return alice, nil
		}
		deps.repo.createFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			return &pgconn.PgError{Code: "23505"}
		}

		_, err := deps.service.Create(ctx, balance.CreateBalanceRequest{UserName: "alice", Type: "Paid", Year: 2026, Balance: 20})

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestBalanceService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectIncr("version:LeaveBalances").SetVal(2)

		deps.repo.findByKeyForUpdateFn = func(ctx context.Context, userID int, leaveType leave.Type, year int) (*balance.LeaveBalance, error) {
			assert.Equal(t, 1, userID)
			assert.Equal(t, leave.TypePaid, leaveType)
			assert.Equal(t, 2026, year)
			b := balance.NewLeaveBalance(userID, leaveType, year, 10)
			return &b, nil
		}
		deps.repo.updateFn = func(ctx context.Context, b *balance.LeaveBalance) error {
			assert.Equal(t, 25.0, b.Balance)
			return nil
		}
		deps.users.findByIDFn = func(ctx context.Context, id int) (*user.LeaveUser, error) {
			return &user.LeaveUser{UserID: 1, UserName: "alice"}, nil
		}

		resp, err := deps.service.Update(ctx, 1, "Paid", 2026, balance.UpdateBalanceRequest{Balance: 25})

		assert.NoError(t, err)
		assert.Equal(t, 25.0, resp.Balance)
		assert.Equal(t, "alice", resp.UserName)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByKeyForUpdateFn = func(ctx context.Context, userID int, leaveType leave.Type, year int) (*balance.LeaveBalance, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Update(ctx, 9, "Paid", 2026, balance.UpdateBalanceRequest{Balance: 25})

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid type", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Update(ctx, 1, "Vacation", 2026, balance.UpdateBalanceRequest{Balance: 25})

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidLeaveType)
	})
}

func TestBalanceService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectIncr("version:LeaveBalances").SetVal(2)

		deps.repo.deleteFn = func(ctx context.Context, userID int, leaveType leave.Type, year int) error {
			assert.Equal(t, 1, userID)
			assert.Equal(t, leave.TypeWedding, leaveType)
			assert.Equal(t, 2026, year)
			return nil
		}

		err := deps.service.Delete(ctx, 1, "Wedding", 2026)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.deleteFn = func(ctx context.Context, userID int, leaveType leave.Type, year int) error {
			return gorm.ErrRecordNotFound
		}

		err := deps.service.Delete(ctx, 1, "Paid", 2026)

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
