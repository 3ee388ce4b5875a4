package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kaigo-records/care-records/backend/internal/bulk"
	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type bulkSessionView struct {
	ID          string            `json:"id"`
	Workflow    bulk.Workflow     `json:"workflow"`
	Category    domain.Category   `json:"category"`
	StaffID     int64             `json:"staffID"`
	Timestamp   time.Time         `json:"timestamp"`
	MealDefault *bulk.MealDefault `json:"mealDefault"`
	Rows        []bulk.DraftView  `json:"rows"`
}

func newBulkSessionView(session *bulk.Session) (*bulkSessionView, error) {
	rows, err := session.Rows()
	if err != nil {
		return nil, err
	}

	return &bulkSessionView{
		ID:          session.ID,
		Workflow:    session.Workflow,
		Category:    session.Category,
		StaffID:     session.StaffID,
		Timestamp:   session.Timestamp,
		MealDefault: session.MealDefault,
		Rows:        rows,
	}, nil
}

func (h *Handler) writeBulkSession(w http.ResponseWriter, r *http.Request, msg string, session *bulk.Session) {
	view, err := newBulkSessionView(session)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	h.successResponse(w, r, msg, view)
}

// CreateBulkSession 开始一次批量录入
// 先选入住者的方式需要给出 residentIDs；先选类别的方式使用全部在住入住者，可以用 floor 限定楼层
func (h *Handler) CreateBulkSession(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)

	var req struct {
		Workflow    string     `json:"workflow" validate:"required,oneof=residents-first category-first"`
		Category    string     `json:"category" validate:"required,oneof=vital meal medication night-patrol comment"`
		ResidentIDs []int64    `json:"residentIDs" validate:"omitempty,dive,gt=0"`
		Floor       string     `json:"floor"`
		RecordedAt  *time.Time `json:"recordedAt"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	residents, err := h.repository.ListActiveResidents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	workflow := bulk.Workflow(req.Workflow)
	var residentIDs []int64
	switch workflow {
	case bulk.WorkflowResidentsFirst:
		for _, id := range req.ResidentIDs {
			if !slices.ContainsFunc(residents, func(resident *domain.Resident) bool { return resident.ID == id }) {
				h.errorResponse(w, r, fmt.Sprintf("入住者 %d 不存在或已退所", id))
				return
			}
		}
		residentIDs = req.ResidentIDs
	case bulk.WorkflowCategoryFirst:
		for _, resident := range residents {
			if req.Floor == "" || resident.Floor == req.Floor {
				residentIDs = append(residentIDs, resident.ID)
			}
		}
	}

	timestamp := time.Now()
	if req.RecordedAt != nil {
		timestamp = *req.RecordedAt
	}

	session, err := bulk.NewSession(workflow, domain.Category(req.Category), residentIDs, myInfo.ID, timestamp)
	if err != nil {
		switch {
		case errors.Is(err, bulk.ErrEmptySelection), errors.Is(err, bulk.ErrInvalidWorkflow), errors.Is(err, domain.ErrUnknownCategory):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.sessions.Save(session); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeBulkSession(w, r, "开始批量录入", session)
}

func (h *Handler) GetBulkSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(BulkSessionCtx).(*bulk.Session)
	h.writeBulkSession(w, r, "获取批量录入成功", session)
}

// DeleteBulkSession 放弃批量录入，未提交的草稿全部丢弃，已提交的记录不受影响
func (h *Handler) DeleteBulkSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(BulkSessionCtx).(*bulk.Session)

	if err := h.sessions.Delete(session.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "已放弃批量录入", nil)
}

func (h *Handler) UpdateBulkDraft(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(BulkSessionCtx).(*bulk.Session)

	residentID, err := strconv.ParseInt(chi.URLParam(r, "residentID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "入住者ID无效")
		return
	}

	var patch json.RawMessage
	if err := h.readJSON(r, &patch); err != nil {
		h.badRequest(w, r, err)
		return
	}

	draft, err := session.UpdateDraft(residentID, patch)
	if err != nil {
		switch {
		case errors.Is(err, bulk.ErrResidentNotInSession):
			h.errorResponse(w, r, err.Error())
		default:
			h.badRequest(w, r, fmt.Errorf("草稿格式错误: %w", err))
		}
		return
	}

	if err := h.sessions.Save(session); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新草稿成功", bulk.DraftView{ResidentID: residentID, Draft: draft})
}

// SetBulkMealDefault 把默认分数写到本次录入所有入住者的选中餐次上
func (h *Handler) SetBulkMealDefault(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(BulkSessionCtx).(*bulk.Session)

	var req struct {
		Slots []domain.MealSlot `json:"slots" validate:"required,min=1,dive,oneof=morning midday evening"`
		Main  *int32            `json:"main" validate:"required,min=0,max=10"`
		Side  *int32            `json:"side" validate:"required,min=0,max=10"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	err := session.SetMealDefault(bulk.MealDefault{
		Slots: req.Slots,
		Main:  *req.Main,
		Side:  *req.Side,
	})
	if err != nil {
		switch {
		case errors.Is(err, bulk.ErrNotMealSession):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.sessions.Save(session); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeBulkSession(w, r, "已应用默认值", session)
}

// CommitBulkSession 一次性提交全部草稿，之后会话被丢弃
// 只返回成功和跳过的人数，不返回每个入住者的错误详情
func (h *Handler) CommitBulkSession(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Staff)
	session := r.Context().Value(BulkSessionCtx).(*bulk.Session)

	tally := session.Commit(h.committer)

	if err := h.sessions.Delete(session.ID); err != nil {
		slog.Error("无法删除批量录入会话", "sessionID", session.ID, "error", err)
	}

	if err := h.publisher.PublishCommitSummary(domain.BulkCommitSummaryMailData{
		StaffName:  myInfo.Name,
		Category:   session.Category.Label(),
		RecordedAt: session.Timestamp.In(h.location),
		Succeeded:  tally.Succeeded,
		Skipped:    tally.Skipped,
	}); err != nil {
		slog.Error("无法发送批量录入结果通知", "sessionID", session.ID, "error", err)
	}

	h.successResponse(w, r, fmt.Sprintf("已保存 %d 人，跳过 %d 人", tally.Succeeded, tally.Skipped), tally)
}

// CommitBulkRow 先选类别的方式下逐行提交，提交成功的行恢复为空草稿
func (h *Handler) CommitBulkRow(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(BulkSessionCtx).(*bulk.Session)

	if session.Workflow != bulk.WorkflowCategoryFirst {
		h.errorResponse(w, r, "该录入方式不支持逐行提交")
		return
	}

	residentID, err := strconv.ParseInt(chi.URLParam(r, "residentID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "入住者ID无效")
		return
	}

	tally, err := session.CommitRow(h.committer, residentID)
	if err != nil {
		switch {
		case errors.Is(err, bulk.ErrResidentNotInSession):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.sessions.Save(session); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, fmt.Sprintf("已保存 %d 人，跳过 %d 人", tally.Succeeded, tally.Skipped), tally)
}
