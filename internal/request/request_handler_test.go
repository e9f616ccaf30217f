package request_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TaiVuViet-153/HR-Portal/internal/request"
	requesterrors "github.com/TaiVuViet-153/HR-Portal/internal/request/errors"
	"github.com/TaiVuViet-153/HR-Portal/internal/shared/paging"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeRequestService struct {
	createFn func(ctx context.Context, req request.CreateRequest) (request.RequestResponse, error)
	getAllFn func(ctx context.Context, q request.GetRequestsQuery) (paging.PagedResult[request.RequestResponse], error)
	updateFn func(ctx context.Context, id int, req request.UpdateRequest) (request.RequestResponse, error)
	deleteFn func(ctx context.Context, id int) error
}

func (f *fakeRequestService) Create(ctx context.Context, req request.CreateRequest) (request.RequestResponse, error) {
	return f.createFn(ctx, req)
}

func (f *fakeRequestService) GetAll(ctx context.Context, q request.GetRequestsQuery) (paging.PagedResult[request.RequestResponse], error) {
	return f.getAllFn(ctx, q)
}

func (f *fakeRequestService) Update(ctx context.Context, id int, req request.UpdateRequest) (request.RequestResponse, error) {
	return f.updateFn(ctx, id, req)
}

func (f *fakeRequestService) Delete(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

func TestRequestHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, req request.CreateRequest) (request.RequestResponse, error) {
				assert.Equal(t, 1, req.UserID)
				assert.Equal(t, "Paid", req.Type)
				return request.RequestResponse{ID: 42, UserID: 1, UserName: "alice", Type: "Paid", Status: "Pending"}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"userId":1,"type":"Paid","startDate":"2026-03-02","endDate":"2026-03-06","reason":"family trip"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got request.RequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 42, got.ID)
		assert.Equal(t, "Pending", got.Status)
	})

	t.Run("missing required field", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, req request.CreateRequest) (request.RequestResponse, error) {
				t.Fatal("service must not be called on invalid input")
				return request.RequestResponse{}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(`{"type":"Paid"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		// Details must be a readable sentence, not a marshalled error struct.
		var details string
		assert.NoError(t, json.Unmarshal(env.Error.Details, &details))
		assert.Contains(t, details, "is required")
	})

	t.Run("insufficient balance maps to 422", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, req request.CreateRequest) (request.RequestResponse, error) {
				return request.RequestResponse{}, requesterrors.ErrBalanceNotEnough
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := `{"userId":1,"type":"Paid","startDate":"2026-03-02","endDate":"2026-03-06"}`
		c.Request = httptest.NewRequest(http.MethodPost, "/leave-requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
		assert.Equal(t, "Leave balance is not enough", env.Error.Message)
	})
}

func TestRequestHandler_GetAll(t *testing.T) {
	t.Run("binds query and returns pagination meta", func(t *testing.T) {
		svc := &fakeRequestService{
			getAllFn: func(ctx context.Context, q request.GetRequestsQuery) (paging.PagedResult[request.RequestResponse], error) {
				assert.NotNil(t, q.Type)
				assert.Equal(t, "Paid", *q.Type)
				assert.Equal(t, 2, q.Page)
				return paging.PagedResult[request.RequestResponse]{
					Items:      []request.RequestResponse{{ID: 1}},
					Page:       2,
					PageSize:   10,
					TotalItems: 25,
				}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leave-requests?type=Paid&page=2&pageSize=10", nil)

		h.GetAll(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var envelope struct {
			Ok   bool `json:"ok"`
			Meta struct {
				Total       int64 `json:"total"`
				TotalPages  int   `json:"totalPages"`
				Page        int   `json:"page"`
				HasNext     bool  `json:"hasNext"`
				HasPrevious bool  `json:"hasPrevious"`
			} `json:"meta"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.True(t, envelope.Ok)
		assert.Equal(t, int64(25), envelope.Meta.Total)
		assert.Equal(t, 3, envelope.Meta.TotalPages)
		assert.True(t, envelope.Meta.HasNext)
		assert.True(t, envelope.Meta.HasPrevious)
	})
}

func TestRequestHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			deleteFn: func(ctx context.Context, id int) error {
				assert.Equal(t, 42, id)
				return nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/leave-requests/42", nil)
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		h.Delete(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		svc := &fakeRequestService{
			deleteFn: func(ctx context.Context, id int) error {
				t.Fatal("service must not be called")
				return nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/leave-requests/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		h.Delete(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("approved request rejection", func(t *testing.T) {
		svc := &fakeRequestService{
			deleteFn: func(ctx context.Context, id int) error {
				return requesterrors.ErrApprovedRequestDelete
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/leave-requests/42", nil)
		c.Params = gin.Params{{Key: "id", Value: "42"}}

		h.Delete(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})
}
