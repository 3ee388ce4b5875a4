package bulk

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type Workflow string

const (
	// WorkflowResidentsFirst 先选入住者再选类别，一次性提交全部草稿
	WorkflowResidentsFirst Workflow = "residents-first"
	// WorkflowCategoryFirst 先选类别，显示全部在住入住者，逐行提交
	WorkflowCategoryFirst Workflow = "category-first"
)

func (w Workflow) Valid() bool {
	return w == WorkflowResidentsFirst || w == WorkflowCategoryFirst
}

// Session 是一次批量录入的工作上下文
// 同一会话中的所有记录使用同一个记录时间
type Session struct {
	ID          string          `json:"id"`
	Workflow    Workflow        `json:"workflow"`
	Category    domain.Category `json:"category"`
	ResidentIDs []int64         `json:"residentIDs"`
	StaffID     int64           `json:"staffID"`
	Timestamp   time.Time       `json:"timestamp"`
	MealDefault *MealDefault    `json:"mealDefault,omitempty"`
	Drafts      *DraftStore     `json:"drafts"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewSession 创建会话并为每个入住者准备一份空草稿，residentIDs 会去重
func NewSession(workflow Workflow, category domain.Category, residentIDs []int64, staffID int64, timestamp time.Time) (*Session, error) {
	if !workflow.Valid() {
		return nil, ErrInvalidWorkflow
	}
	if _, err := domain.ParseCategory(string(category)); err != nil {
		return nil, err
	}

	ids := slices.Clone(residentIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	drafts := NewDraftStore(category)
	if err := drafts.Initialize(ids, category); err != nil {
		return nil, err
	}

	return &Session{
		ID:          uuid.NewString(),
		Workflow:    workflow,
		Category:    category,
		ResidentIDs: ids,
		StaffID:     staffID,
		Timestamp:   timestamp,
		Drafts:      drafts,
		CreatedAt:   time.Now(),
	}, nil
}

func (s *Session) Contains(residentID int64) bool {
	_, found := slices.BinarySearch(s.ResidentIDs, residentID)
	return found
}

func (s *Session) UpdateDraft(residentID int64, patch json.RawMessage) (Draft, error) {
	if !s.Contains(residentID) {
		return nil, ErrResidentNotInSession
	}
	return s.Drafts.Update(residentID, patch)
}

// SetMealDefault 保存默认值并立即应用到现有草稿
func (s *Session) SetMealDefault(def MealDefault) error {
	if s.Category != domain.CategoryMeal {
		return ErrNotMealSession
	}
	s.MealDefault = &def
	return s.Drafts.ApplyDefault(s)
}

// Commit 提交会话中全部入住者的草稿
func (s *Session) Commit(committer Committer) Tally {
	return committer.Commit(s.ResidentIDs, s.Drafts.Snapshot(), s.Category, s.Timestamp, s.StaffID)
}

// CommitRow 只提交一个入住者的草稿，成功后该行恢复为空草稿
func (s *Session) CommitRow(committer Committer, residentID int64) (Tally, error) {
	if !s.Contains(residentID) {
		return Tally{}, ErrResidentNotInSession
	}

	d, err := s.Drafts.Row(residentID)
	if err != nil {
		return Tally{}, err
	}

	tally := committer.Commit([]int64{residentID}, map[int64]Draft{residentID: d}, s.Category, s.Timestamp, s.StaffID)
	if tally.Succeeded > 0 {
		s.Drafts.Remove(residentID)
	}
	return tally, nil
}

// DraftView 是单个入住者草稿的响应结构
type DraftView struct {
	ResidentID int64 `json:"residentID"`
	Draft      Draft `json:"draft"`
}

// Rows 按入住者 id 顺序返回所有草稿，不存在的行按空草稿返回
func (s *Session) Rows() ([]DraftView, error) {
	rows := make([]DraftView, 0, len(s.ResidentIDs))
	for _, id := range s.ResidentIDs {
		d, err := s.Drafts.Row(id)
		if err != nil {
			return nil, err
		}
		rows = append(rows, DraftView{ResidentID: id, Draft: d})
	}
	return rows, nil
}
