package bulk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

// DraftStore 保存一次批量录入中每个入住者各自的草稿
// 每个入住者的草稿互相独立，修改某一行不会影响其他行
type DraftStore struct {
	category domain.Category
	drafts   map[int64]Draft
}

func NewDraftStore(category domain.Category) *DraftStore {
	return &DraftStore{
		category: category,
		drafts:   make(map[int64]Draft),
	}
}

func (s *DraftStore) Category() domain.Category {
	return s.category
}

// Initialize 丢弃已有草稿，为每个入住者创建一份该类别的空草稿
func (s *DraftStore) Initialize(residentIDs []int64, category domain.Category) error {
	drafts := make(map[int64]Draft, len(residentIDs))
	for _, id := range residentIDs {
		d, err := NewDraft(category)
		if err != nil {
			return err
		}
		drafts[id] = d
	}

	s.category = category
	s.drafts = drafts
	return nil
}

// Row 返回某个入住者的草稿，不存在时创建一份空草稿（逐行录入时按需创建）
func (s *DraftStore) Row(residentID int64) (Draft, error) {
	if d, ok := s.drafts[residentID]; ok {
		return d, nil
	}

	d, err := NewDraft(s.category)
	if err != nil {
		return nil, err
	}
	s.drafts[residentID] = d
	return d, nil
}

// Update 把 patch 中出现的字段合并到该入住者的草稿上，未出现的字段保持原值
// patch 中包含该类别没有的字段时返回错误，草稿不做任何修改
func (s *DraftStore) Update(residentID int64, patch json.RawMessage) (Draft, error) {
	current, err := s.Row(residentID)
	if err != nil {
		return nil, err
	}

	updated, err := mergePatch(current, patch)
	if err != nil {
		return nil, err
	}

	s.drafts[residentID] = updated
	return updated, nil
}

func (s *DraftStore) Remove(residentID int64) {
	delete(s.drafts, residentID)
}

// Snapshot 返回草稿的浅拷贝，草稿本身是值类型，所以修改拷贝不会影响 store
func (s *DraftStore) Snapshot() map[int64]Draft {
	return maps.Clone(s.drafts)
}

// ResidentIDs 按 id 升序返回所有有草稿的入住者
func (s *DraftStore) ResidentIDs() []int64 {
	return slices.Sorted(maps.Keys(s.drafts))
}

// Replace 用 Propagate 等函数的计算结果整体替换草稿
func (s *DraftStore) Replace(drafts map[int64]Draft) error {
	for _, d := range drafts {
		if d.Category() != s.category {
			return ErrCategoryMismatch
		}
	}
	s.drafts = maps.Clone(drafts)
	return nil
}

type draftStoreJSON struct {
	Category domain.Category           `json:"category"`
	Drafts   map[int64]json.RawMessage `json:"drafts"`
}

func (s *DraftStore) MarshalJSON() ([]byte, error) {
	out := draftStoreJSON{
		Category: s.category,
		Drafts:   make(map[int64]json.RawMessage, len(s.drafts)),
	}
	for id, d := range s.drafts {
		b, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		out.Drafts[id] = b
	}
	return json.Marshal(out)
}

func (s *DraftStore) UnmarshalJSON(data []byte) error {
	var in draftStoreJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	drafts := make(map[int64]Draft, len(in.Drafts))
	for id, raw := range in.Drafts {
		empty, err := NewDraft(in.Category)
		if err != nil {
			return err
		}
		d, err := mergePatch(empty, raw)
		if err != nil {
			return fmt.Errorf("入住者 %d 的草稿: %w", id, err)
		}
		drafts[id] = d
	}

	s.category = in.Category
	s.drafts = drafts
	return nil
}

// mergePatch 把 JSON 解码到草稿的副本上，原草稿保持不变
func mergePatch(current Draft, patch json.RawMessage) (Draft, error) {
	switch d := current.(type) {
	case MealDraft:
		return decodeOnto(d, patch)
	case VitalDraft:
		return decodeOnto(d, patch)
	case MedicationDraft:
		return decodeOnto(d, patch)
	case CommentDraft:
		return decodeOnto(d, patch)
	case NightPatrolDraft:
		return decodeOnto(d, patch)
	default:
		return nil, domain.ErrUnknownCategory
	}
}

func decodeOnto[T Draft](d T, patch json.RawMessage) (Draft, error) {
	if len(bytes.TrimSpace(patch)) == 0 {
		return d, nil
	}

	dec := json.NewDecoder(bytes.NewReader(patch))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return d, nil
}
