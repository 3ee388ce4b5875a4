package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/carestatus"
	"github.com/kaigo-records/care-records/backend/internal/domain"
	"github.com/kaigo-records/care-records/backend/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetDailyStatus 返回某天所有在住入住者在某个类别下是否已有记录
// type 为空或无法识别时只返回名单，detail=true 时附带合并后的记录内容
func (h *Handler) GetDailyStatus(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDay(r.URL.Query().Get("date"), h.location)
	if err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}

	withDetail, _ := strconv.ParseBool(r.URL.Query().Get("detail"))

	entries, err := h.builder.BuildIndex(date, r.URL.Query().Get("type"), withDetail)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取记录状态成功", entries)
}

func (h *Handler) GetTodayGrid(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDay(r.URL.Query().Get("date"), h.location)
	if err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}

	grid, err := h.builder.BuildGrid(date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取全天一览成功", grid)
}

func (h *Handler) ExportTodayGrid(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDay(r.URL.Query().Get("date"), h.location)
	if err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}

	grid, err := h.builder.BuildGrid(date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data, err := export.GenerateGrid(grid, h.location)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeFile(w, r, xlsxContentType, export.GridFileName(grid), data)
}

func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDay(r.URL.Query().Get("date"), h.location)
	if err != nil {
		h.errorResponse(w, r, "日期格式错误")
		return
	}

	residentID, err := optionalID(r.URL.Query().Get("residentId"))
	if err != nil {
		h.errorResponse(w, r, "入住者ID无效")
		return
	}

	entries, err := h.builder.BuildTimeline(domain.DayRange(date, h.location), nil, residentID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时间线成功", entries)
}

// SearchRecords 跨类别检索记录
// types 为逗号分隔的类别列表，不认识的类别会被忽略，不传时检索所有类别
func (h *Handler) SearchRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dr, err := h.parseDateRange(query.Get("date"), query.Get("dateFrom"), query.Get("dateTo"))
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	residentID, err := optionalID(query.Get("residentId"))
	if err != nil {
		h.errorResponse(w, r, "入住者ID无效")
		return
	}

	var categories []domain.Category
	if query.Has("types") {
		categories = parseCategories(query.Get("types"))
		if len(categories) == 0 {
			h.successResponse(w, r, "检索记录成功", []*carestatus.TimelineEntry{})
			return
		}
	}

	entries, err := h.builder.BuildTimeline(dr, categories, residentID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "检索记录成功", entries)
}

// GetCategoryRecords 按日期（date）或日期区间（dateFrom、dateTo，均包含当天）查询某个类别的记录
func (h *Handler) GetCategoryRecords(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CategoryCtx).(domain.Category)
	query := r.URL.Query()

	dr, err := h.parseDateRange(query.Get("date"), query.Get("dateFrom"), query.Get("dateTo"))
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	residentID, err := optionalID(query.Get("residentId"))
	if err != nil {
		h.errorResponse(w, r, "入住者ID无效")
		return
	}

	records, err := h.repository.ListCategoryRecords(c, dr, residentID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取记录成功", records)
}

func (h *Handler) CreateCategoryRecord(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CategoryCtx).(domain.Category)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	req, err := newRecordRequest(c)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.readJSON(r, req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	resident, err := h.repository.GetResidentByID(req.base().ResidentID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "入住者不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if !resident.IsActive {
		h.errorResponse(w, r, "该入住者已退所")
		return
	}

	rec := req.toRecord()
	meta := rec.Meta()
	meta.StaffID = myInfo.ID
	if meta.RecordedAt.IsZero() {
		meta.RecordedAt = time.Now()
	}

	if err := h.repository.CreateCategoryRecord(rec); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存记录成功", rec)
}

func (h *Handler) GetCategoryRecord(w http.ResponseWriter, r *http.Request) {
	rec := r.Context().Value(RecordCtx).(domain.Record)
	h.successResponse(w, r, "获取记录成功", rec)
}

// UpdateCategoryRecord 整体替换记录内容，入住者和作者不可修改，未提供记录时间时保持原值
func (h *Handler) UpdateCategoryRecord(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CategoryCtx).(domain.Category)
	old := r.Context().Value(RecordCtx).(domain.Record)

	req, err := newRecordRequest(c)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.readJSON(r, req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	req.base().ResidentID = old.Meta().ResidentID
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rec := req.toRecord()
	meta := rec.Meta()
	meta.ID = old.Meta().ID
	meta.StaffID = old.Meta().StaffID
	meta.CreatedAt = old.Meta().CreatedAt
	if meta.RecordedAt.IsZero() {
		meta.RecordedAt = old.Meta().RecordedAt
	}

	if err := h.repository.UpdateCategoryRecord(rec); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新记录成功", rec)
}

func (h *Handler) DeleteCategoryRecord(w http.ResponseWriter, r *http.Request) {
	c := r.Context().Value(CategoryCtx).(domain.Category)
	rec := r.Context().Value(RecordCtx).(domain.Record)

	if err := h.repository.DeleteCategoryRecord(c, rec.Meta().ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除记录成功", nil)
}

var errInvalidDateRange = errors.New("日期区间无效")

func (h *Handler) parseDateRange(date, from, to string) (domain.DateRange, error) {
	if from == "" && to == "" {
		day, err := domain.ParseDay(date, h.location)
		if err != nil {
			return domain.DateRange{}, errInvalidDateRange
		}
		return domain.DayRange(day, h.location), nil
	}

	// 只给出一端时，另一端取同一天
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}

	fromDay, err := domain.ParseDay(from, h.location)
	if err != nil {
		return domain.DateRange{}, errInvalidDateRange
	}
	toDay, err := domain.ParseDay(to, h.location)
	if err != nil {
		return domain.DateRange{}, errInvalidDateRange
	}
	if toDay.Before(fromDay) {
		return domain.DateRange{}, errInvalidDateRange
	}

	return domain.DateRange{
		From: domain.DayRange(fromDay, h.location).From,
		To:   domain.DayRange(toDay, h.location).To,
	}, nil
}

func parseCategories(s string) []domain.Category {
	categories := make([]domain.Category, 0)
	for _, part := range strings.Split(s, ",") {
		c, err := domain.ParseCategory(strings.TrimSpace(part))
		if err != nil || slices.Contains(categories, c) {
			continue
		}
		categories = append(categories, c)
	}
	return categories
}

func optionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
