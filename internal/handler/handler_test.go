package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaigo-records/care-records/backend/internal/config"
	"github.com/kaigo-records/care-records/backend/internal/domain"
	"github.com/kaigo-records/care-records/backend/internal/repository"
)

type testEnv struct {
	h    *Handler
	mock sqlmock.Sqlmock
	mr   *miniredis.Miniredis
}

func setupHandler(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Redis.OperationExpiration = 5
	cfg.RabbitMQ.PublishTimeout = 5
	cfg.BulkSession.Expiration = 60
	cfg.BulkSession.KeyPrefix = "bulk_session_"
	cfg.Facility.Timezone = "UTC"

	h, err := NewHandler(cfg, repository.NewRepository(cfg, db), nil, rdb)
	require.NoError(t, err)
	h.RegisterRoutes()

	return &testEnv{h: h, mock: mock, mr: mr}
}

var createdAt = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

func (e *testEnv) expectStaff(id int64, isAdmin bool) {
	rows := sqlmock.NewRows([]string{"name", "name_reading", "pin_hash", "is_admin", "is_active", "last_login_at", "created_at"}).
		AddRow("职员", "zhi yuan", nil, isAdmin, true, nil, createdAt)
	e.mock.ExpectQuery(`FROM staff WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(rows)
}

func (e *testEnv) expectResidents(ids ...int64) {
	rows := sqlmock.NewRows([]string{"id", "name", "name_reading", "room_number", "floor", "gender", "is_active", "created_at", "version"})
	for _, id := range ids {
		rows.AddRow(id, "入住者", "", "101", "1F", "女", true, createdAt, 1)
	}
	e.mock.ExpectQuery(`FROM residents`).WillReturnRows(rows)
}

func (e *testEnv) do(t *testing.T, staffID int64, method, path string, body any) (int, Response, json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if staffID != 0 {
		ss, _, err := e.h.signToken(&domain.Staff{ID: staffID})
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: ss})
	}

	rec := httptest.NewRecorder()
	e.h.Mux.ServeHTTP(rec, req)

	var resp struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return rec.Code, resp.Response, resp.Data
}

func TestAuth_NotLoggedIn(t *testing.T) {
	env := setupHandler(t)

	_, resp, _ := env.do(t, 0, http.MethodGet, "/residents", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "职员未登录", resp.Message)
}

func TestUnknownCategory(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)

	code, resp, _ := env.do(t, 7, http.MethodGet, "/records/bath?date=2024-05-01", nil)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "未知的记录类别", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateCategoryRecord_Meal(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)

	env.mock.ExpectQuery(`FROM residents WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name", "name_reading", "room_number", "floor", "gender", "is_active", "created_at", "version"}).
			AddRow("入住者", "", "101", "1F", "女", true, createdAt, 1))
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`INSERT INTO meal_records`).
		WithArgs(int64(1), int64(7), sqlmock.AnyArg(), "morning", int64(7), int64(5), "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(30, createdAt))
	env.mock.ExpectCommit()

	_, resp, data := env.do(t, 7, http.MethodPost, "/records/meal", map[string]any{
		"residentID": 1,
		"slot":       "morning",
		"mainDish":   7,
		"sideDish":   5,
		"recordedAt": "2024-05-01T08:00:00Z",
	})

	require.True(t, resp.Success, resp.Message)

	var rec domain.MealRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, int64(30), rec.ID)
	assert.Equal(t, int64(7), rec.StaffID)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateCategoryRecord_InvalidScore(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)

	_, resp, _ := env.do(t, 7, http.MethodPost, "/records/meal", map[string]any{
		"residentID": 1,
		"slot":       "morning",
		"mainDish":   11,
	})

	assert.False(t, resp.Success)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestUpdateCategoryRecord_OtherAuthor(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)

	env.mock.ExpectQuery(`FROM comment_records WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "resident_id", "staff_id", "recorded_at", "created_at", "tag", "content"}).
			AddRow(3, 1, 8, createdAt, createdAt, "care", "入浴"))

	code, resp, _ := env.do(t, 7, http.MethodPut, "/records/comment/3", map[string]any{
		"content": "改写",
	})

	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "无权操作他人的记录", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestBulkSession_ResidentsFirst(t *testing.T) {
	env := setupHandler(t)

	// 开始批量录入
	env.expectStaff(7, false)
	env.expectResidents(1, 2)

	_, resp, data := env.do(t, 7, http.MethodPost, "/bulk-sessions", map[string]any{
		"workflow":    "residents-first",
		"category":    "vital",
		"residentIDs": []int64{1, 2},
	})
	require.True(t, resp.Success, resp.Message)

	var view struct {
		ID   string `json:"id"`
		Rows []struct {
			ResidentID int64 `json:"residentID"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &view))
	require.Len(t, view.Rows, 2)
	assert.True(t, env.mr.Exists("bulk_session_"+view.ID))

	// 其他职员不能操作该会话
	env.expectStaff(8, false)
	code, _, _ := env.do(t, 8, http.MethodGet, "/bulk-sessions/"+view.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// 只填写 1 号入住者
	env.expectStaff(7, false)
	_, resp, _ = env.do(t, 7, http.MethodPatch, "/bulk-sessions/"+view.ID+"/drafts/1", map[string]any{"pulse": "70"})
	require.True(t, resp.Success, resp.Message)

	// 先选入住者的方式不支持逐行提交
	env.expectStaff(7, false)
	_, resp, _ = env.do(t, 7, http.MethodPost, "/bulk-sessions/"+view.ID+"/rows/1/commit", nil)
	assert.False(t, resp.Success)

	// 全部提交
	env.expectStaff(7, false)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`INSERT INTO vital_records`).
		WithArgs(int64(1), int64(7), sqlmock.AnyArg(), nil, nil, int64(70), nil, nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(40, createdAt))
	env.mock.ExpectCommit()

	_, resp, _ = env.do(t, 7, http.MethodPost, "/bulk-sessions/"+view.ID+"/commit", nil)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "已保存 1 人，跳过 1 人", resp.Message)
	assert.False(t, env.mr.Exists("bulk_session_"+view.ID))

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestBulkSession_UnknownResident(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)
	env.expectResidents(1)

	_, resp, _ := env.do(t, 7, http.MethodPost, "/bulk-sessions", map[string]any{
		"workflow":    "residents-first",
		"category":    "meal",
		"residentIDs": []int64{1, 5},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "入住者 5 不存在或已退所", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestBulkSession_MealDefault(t *testing.T) {
	env := setupHandler(t)

	env.expectStaff(7, false)
	env.expectResidents(1, 2)
	_, resp, data := env.do(t, 7, http.MethodPost, "/bulk-sessions", map[string]any{
		"workflow": "category-first",
		"category": "meal",
	})
	require.True(t, resp.Success, resp.Message)

	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(data, &view))

	env.expectStaff(7, false)
	_, resp, data = env.do(t, 7, http.MethodPut, "/bulk-sessions/"+view.ID+"/meal-default", map[string]any{
		"slots": []string{"morning"},
		"main":  10,
		"side":  8,
	})
	require.True(t, resp.Success, resp.Message)

	var updated struct {
		Rows []struct {
			Draft struct {
				Morning struct {
					Main string `json:"main"`
					Side string `json:"side"`
				} `json:"morning"`
			} `json:"draft"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &updated))
	require.Len(t, updated.Rows, 2)
	for _, row := range updated.Rows {
		assert.Equal(t, "10", row.Draft.Morning.Main)
		assert.Equal(t, "8", row.Draft.Morning.Side)
	}

	// 逐行提交 2 号入住者
	env.expectStaff(7, false)
	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`INSERT INTO meal_records`).
		WithArgs(int64(2), int64(7), sqlmock.AnyArg(), "morning", int64(10), int64(8), "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(50, createdAt))
	env.mock.ExpectCommit()

	_, resp, _ = env.do(t, 7, http.MethodPost, "/bulk-sessions/"+view.ID+"/rows/2/commit", nil)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "已保存 1 人，跳过 0 人", resp.Message)
	assert.True(t, env.mr.Exists("bulk_session_"+view.ID))

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSearchRecords(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)
	env.expectResidents(1)
	env.mock.ExpectQuery(`FROM staff WHERE is_active = TRUE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "name_reading", "is_admin", "is_active", "last_login_at", "created_at"}).
			AddRow(7, "职员", "zhi yuan", false, true, nil, createdAt))
	env.mock.ExpectQuery(`FROM comment_records`).
		WithArgs(
			time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
			sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "resident_id", "staff_id", "recorded_at", "created_at", "tag", "content"}).
			AddRow(11, 1, 7, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), createdAt, "care", "更换床单").
			AddRow(12, 1, 7, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), createdAt, "daily-life", "散步"))

	_, resp, data := env.do(t, 7, http.MethodGet, "/records/search?dateFrom=2024-05-01&dateTo=2024-05-02&types=comment,bath,comment", nil)
	require.True(t, resp.Success, resp.Message)

	var entries []struct {
		Key          string `json:"key"`
		ResidentName string `json:"residentName"`
		StaffName    string `json:"staffName"`
	}
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "comment-12", entries[0].Key)
	assert.Equal(t, "comment-11", entries[1].Key)
	assert.Equal(t, "入住者", entries[1].ResidentName)
	assert.Equal(t, "职员", entries[1].StaffName)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSearchRecords_UnknownTypes(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)

	_, resp, data := env.do(t, 7, http.MethodGet, "/records/search?date=2024-05-01&types=bath", nil)

	require.True(t, resp.Success, resp.Message)
	assert.JSONEq(t, `[]`, string(data))
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSearchRecords_InvalidRange(t *testing.T) {
	env := setupHandler(t)
	env.expectStaff(7, false)

	_, resp, _ := env.do(t, 7, http.MethodGet, "/records/search?dateFrom=2024-05-03&dateTo=2024-05-01", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "日期区间无效", resp.Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
