package bulk

import (
	"maps"
	"slices"
	"strconv"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

// MealDefault 是饮食批量录入时统一设置的默认分数
type MealDefault struct {
	Slots []domain.MealSlot `json:"slots"`
	Main  int32             `json:"main"`
	Side  int32             `json:"side"`
}

// Propagate 把会话中的饮食默认值写到选中入住者草稿的选中餐次上
// 只覆盖选中餐次的主食和副食，其他餐次和备注保持不变
// 返回新的 map，不修改传入的 drafts；对同一输入重复调用结果相同
func Propagate(session *Session, drafts map[int64]Draft) map[int64]Draft {
	out := maps.Clone(drafts)
	if out == nil {
		out = make(map[int64]Draft)
	}
	if session == nil || session.MealDefault == nil || session.Category != domain.CategoryMeal {
		return out
	}

	def := session.MealDefault
	main := strconv.Itoa(int(def.Main))
	side := strconv.Itoa(int(def.Side))

	for id, d := range out {
		if !slices.Contains(session.ResidentIDs, id) {
			continue
		}

		meal, ok := d.(MealDraft)
		if !ok {
			continue
		}

		for _, slot := range def.Slots {
			entry := meal.Slot(slot)
			if entry == nil {
				continue
			}
			entry.Main = main
			entry.Side = side
		}
		out[id] = meal
	}

	return out
}

// ApplyDefault 对 store 中现有的草稿执行 Propagate
func (s *DraftStore) ApplyDefault(session *Session) error {
	if session.Category != domain.CategoryMeal || s.category != domain.CategoryMeal {
		return ErrNotMealSession
	}
	return s.Replace(Propagate(session, s.drafts))
}
