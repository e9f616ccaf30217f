package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/TaiVuViet-153/HR-Portal/internal/balance"
	"github.com/TaiVuViet-153/HR-Portal/internal/events"
	"github.com/TaiVuViet-153/HR-Portal/internal/leave"
	"github.com/TaiVuViet-153/HR-Portal/internal/messaging/kafka"
	requesterrors "github.com/TaiVuViet-153/HR-Portal/internal/request/errors"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/cache"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/contextutil"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/paging"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const requestsCacheTTL = 5 * time.Minute

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateRequest) (RequestResponse, error)
	GetAll(ctx context.Context, q GetRequestsQuery) (paging.PagedResult[RequestResponse], error)
	Update(ctx context.Context, id int, req UpdateRequest) (RequestResponse, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances balance.Repository
	outbox   kafka.OutboxRepository
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	outbox kafka.OutboxRepository,
	c *cache.Cache,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{db: db, repo: repo, balances: balances, outbox: outbox, cache: c, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (RequestResponse, error) {
	s.logger.Debug("create request requested",
		zap.Int("user_id", req.UserID),
		zap.String("type", req.Type),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	leaveType, err := leave.ParseType(req.Type)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidLeaveType
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qBalances := s.balances.WithTx(tx)

	debited, err := s.debitBalance(ctx, qBalances, req.UserID, leaveType, start, end, req.IsHalfDayOff)
	if err != nil {
		return RequestResponse{}, err
	}

	entity := NewLeaveRequest(req.UserID, leaveType, &start, &end, req.IsHalfDayOff, req.Reason)
	if err := qtx.Create(ctx, &entity); err != nil {
		s.logger.Error("create request persist failed", zap.Error(err))
		return RequestResponse{}, err
	}

	projection, err := qtx.FindProjectionByID(ctx, entity.ID)
	if err != nil {
		s.logger.Error("create request projection read failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestCreated, projection, ""); err != nil {
		s.logger.Error("create request enqueue event failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.invalidateCache(ctx, debited)
	s.logger.Info("create request success",
		zap.Int("request_id", entity.ID),
		zap.Int("user_id", entity.UserID),
		zap.String("type", entity.Type.String()),
	)

	return mapToResponse(*projection), nil
}

func (s *service) GetAll(ctx context.Context, q GetRequestsQuery) (paging.PagedResult[RequestResponse], error) {
	if err := validateQuery(q); err != nil {
		return paging.PagedResult[RequestResponse]{}, err
	}

	key := cache.Fingerprint(q)
	return cache.GetOrCreate(ctx, s.cache, cache.PrefixLeaveRequests, key, requestsCacheTTL,
		func(ctx context.Context) (paging.PagedResult[RequestResponse], error) {
			page, err := s.repo.FindPage(ctx, q)
			if err != nil {
				s.logger.Error("get requests query failed", zap.Error(err))
				return paging.PagedResult[RequestResponse]{}, err
			}

			items := make([]RequestResponse, len(page.Items))
			for i, row := range page.Items {
				items[i] = mapToResponse(row)
			}
			return paging.PagedResult[RequestResponse]{
				Items:      items,
				Page:       page.Page,
				PageSize:   page.PageSize,
				TotalItems: page.TotalItems,
			}, nil
		})
}

func (s *service) Update(ctx context.Context, id int, req UpdateRequest) (RequestResponse, error) {
	s.logger.Debug("update request requested", zap.Int("request_id", id))

	var leaveType *leave.Type
	if req.Type != nil {
		t, err := leave.ParseType(*req.Type)
		if err != nil {
			return RequestResponse{}, requesterrors.ErrInvalidLeaveType
		}
		leaveType = &t
	}
	var status *leave.Status
	if req.Status != nil {
		st, err := leave.ParseStatus(*req.Status)
		if err != nil {
			return RequestResponse{}, requesterrors.ErrInvalidStatus
		}
		status = &st
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return RequestResponse{}, err
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qBalances := s.balances.WithTx(tx)

	entity, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	previousStatus := entity.Status

	if leaveType != nil {
		entity.UpdateType(*leaveType)
	}
	entity.UpdateSchedule(start, end, req.IsHalfDayOff)
	if req.Reason != nil {
		entity.UpdateReason(*req.Reason)
	}
	if status != nil {
		entity.UpdateStatus(*status)
	}

	if entity.StartDate == nil || entity.EndDate == nil {
		return RequestResponse{}, requesterrors.ErrMissingDateRange
	}
	if entity.EndDate.Before(*entity.StartDate) {
		return RequestResponse{}, requesterrors.ErrInvalidDateRange
	}

	debited, err := s.debitBalance(ctx, qBalances, entity.UserID, entity.Type, *entity.StartDate, *entity.EndDate, entity.IsHalfDayOff)
	if err != nil {
		return RequestResponse{}, err
	}

	if err := qtx.Update(ctx, entity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		s.logger.Error("update request persist failed", zap.Int("request_id", id), zap.Error(err))
		return RequestResponse{}, err
	}

	projection, err := qtx.FindProjectionByID(ctx, id)
	if err != nil {
		s.logger.Error("update request projection read failed", zap.Error(err))
		return RequestResponse{}, err
	}

	eventType := events.LeaveRequestUpdated
	prev := ""
	if entity.Status != previousStatus {
		eventType = events.LeaveRequestStatusChanged
		prev = previousStatus.String()
	}
	if err := s.enqueueEvent(ctx, tx, eventType, projection, prev); err != nil {
		s.logger.Error("update request enqueue event failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update request commit failed", zap.Int("request_id", id), zap.Error(err))
		return RequestResponse{}, err
	}

	s.invalidateCache(ctx, debited)
	s.logger.Info("update request success",
		zap.Int("request_id", id),
		zap.String("status", entity.Status.String()),
	)

	return mapToResponse(*projection), nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	s.logger.Debug("delete request requested", zap.Int("request_id", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entity, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return requesterrors.ErrRequestNotFound
		}
		return err
	}
	if entity.Status == leave.StatusApproved {
		return requesterrors.ErrApprovedRequestDelete
	}

	// The debited days deliberately stay spent: deleting a request is an
	// audit hide, not a cancellation refund.
	entity.MarkAsDeleted()
	if err := qtx.Update(ctx, entity); err != nil {
		s.logger.Error("delete request persist failed", zap.Int("request_id", id), zap.Error(err))
		return err
	}

	projection, err := qtx.FindProjectionByID(ctx, id)
	if err != nil {
		s.logger.Error("delete request projection read failed", zap.Error(err))
		return err
	}
	if err := s.enqueueEvent(ctx, tx, events.LeaveRequestDeleted, projection, ""); err != nil {
		s.logger.Error("delete request enqueue event failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	// No debit happens on delete, so only the request listing is stale.
	s.invalidateCache(ctx, false)
	s.logger.Info("delete request success", zap.Int("request_id", id))
	return nil
}

// debitBalance applies the leave-day cost to the (user, type, current
// year) balance and reports whether the ledger was written. Unpaid
// leave never touches the ledger. The row is locked for the rest of the
// transaction so concurrent debits against the same balance serialize.
func (s *service) debitBalance(
	ctx context.Context,
	balances balance.Repository,
	userID int,
	leaveType leave.Type,
	start, end time.Time,
	halfDay *bool,
) (bool, error) {
	if leaveType == leave.TypeUnpaid {
		return false, nil
	}

	b, err := balances.FindByKeyForUpdate(ctx, userID, leaveType, time.Now().Year())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, requesterrors.ErrBalanceNotFound
		}
		s.logger.Error("balance lookup failed", zap.Int("user_id", userID), zap.Error(err))
		return false, err
	}

	cost := leave.CalculateDays(start, end, halfDay != nil && *halfDay)
	if !b.HasEnoughDays(cost) {
		s.logger.Warn("insufficient leave balance",
			zap.Int("user_id", userID),
			zap.String("type", leaveType.String()),
			zap.Float64("cost", cost),
			zap.Float64("balance", b.Balance),
		)
		return false, requesterrors.ErrBalanceNotEnough
	}

	b.Decrease(cost)
	if err := balances.Update(ctx, b); err != nil {
		s.logger.Error("balance debit persist failed", zap.Int("user_id", userID), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, eventType string, row *RequestUserRow, previousStatus string) error {
	event := events.LeaveRequestEvent{
		EventType:      eventType,
		RequestID:      row.ID,
		UserID:         row.UserID,
		UserName:       row.UserName,
		Email:          row.Email,
		LeaveType:      row.Type.String(),
		Status:         row.Status.String(),
		PreviousStatus: previousStatus,
		IsHalfDayOff:   row.IsHalfDayOff != nil && *row.IsHalfDayOff,
		Reason:         row.Reason,
		OccurredAt:     time.Now().UTC(),
	}
	if row.StartDate != nil {
		event.StartDate = row.StartDate.Format("2006-01-02")
	}
	if row.EndDate != nil {
		event.EndDate = row.EndDate.Format("2006-01-02")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   strconv.Itoa(row.ID),
		EventType:     eventType,
		Topic:         events.LeaveRequestTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// invalidateCache bumps the request-listing version, and the
// balance-listing version too when the ledger was debited, so neither
// listing serves pre-write data for its full TTL.
func (s *service) invalidateCache(ctx context.Context, balancesToo bool) {
	if err := s.cache.InvalidateByPrefix(ctx, cache.PrefixLeaveRequests); err != nil {
		s.logger.Error("invalidate requests cache failed", zap.Error(err))
	}
	if !balancesToo {
		return
	}
	if err := s.cache.InvalidateByPrefix(ctx, cache.PrefixLeaveBalances); err != nil {
		s.logger.Error("invalidate balances cache failed", zap.Error(err))
	}
}

func parseDateRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, requesterrors.ErrMissingDateRange
	}
	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, requesterrors.ErrInvalidDateRange
	}
	return start, end, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, requesterrors.ErrInvalidDateFormat
	}
	return &t, nil
}

// validateQuery rejects unparsable filter values before they reach the
// cache fingerprint or the database.
func validateQuery(q GetRequestsQuery) error {
	if q.Type != nil {
		if _, err := leave.ParseType(*q.Type); err != nil {
			return requesterrors.ErrInvalidLeaveType
		}
	}
	if q.Status != nil {
		if _, err := leave.ParseStatus(*q.Status); err != nil {
			return requesterrors.ErrInvalidStatus
		}
	}
	if q.StartFrom != nil {
		if _, err := time.Parse("2006-01-02", *q.StartFrom); err != nil {
			return requesterrors.ErrInvalidDateFormat
		}
	}
	if q.EndTo != nil {
		if _, err := time.Parse("2006-01-02", *q.EndTo); err != nil {
			return requesterrors.ErrInvalidDateFormat
		}
	}
	return nil
}

func mapToResponse(row RequestUserRow) RequestResponse {
	resp := RequestResponse{
		ID:           row.ID,
		UserID:       row.UserID,
		UserName:     row.UserName,
		Email:        row.Email,
		Type:         row.Type.String(),
		Status:       row.Status.String(),
		IsHalfDayOff: row.IsHalfDayOff != nil && *row.IsHalfDayOff,
		Reason:       row.Reason,
		CreatedAt:    row.CreatedAt.Format(time.RFC3339),
	}
	if row.StartDate != nil {
		v := row.StartDate.Format("2006-01-02")
		resp.StartDate = &v
	}
	if row.EndDate != nil {
		v := row.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	if row.UpdatedAt != nil {
		v := row.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &v
	}
	return resp
}
