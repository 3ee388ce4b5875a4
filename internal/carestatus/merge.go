package carestatus

import (
	"cmp"
	"slices"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type MealSlotStatus struct {
	Present    bool       `json:"present"`
	RecordID   int64      `json:"recordID,omitempty"`
	StaffID    int64      `json:"staffID,omitempty"`
	MainDish   *int32     `json:"mainDish"`
	SideDish   *int32     `json:"sideDish"`
	RecordedAt *time.Time `json:"recordedAt,omitempty"`
}

// MealStatus 总是包含早、午、晚三个餐次，每个餐次独立判断是否有记录
type MealStatus map[domain.MealSlot]MealSlotStatus

type MedicationStatus struct {
	BeforeBreakfast bool `json:"beforeBreakfast"`
	AfterBreakfast  bool `json:"afterBreakfast"`
	BeforeLunch     bool `json:"beforeLunch"`
	AfterLunch      bool `json:"afterLunch"`
	BeforeDinner    bool `json:"beforeDinner"`
	AfterDinner     bool `json:"afterDinner"`
	Bedtime         bool `json:"bedtime"`
	EyeDrop         bool `json:"eyeDrop"`
}

// MergedStatus 是某个入住者某一天某个类别的合并状态，只在读取时计算，从不落库
type MergedStatus struct {
	Category     domain.Category             `json:"category"`
	HasRecord    bool                        `json:"hasRecord"`
	Vital        *domain.VitalRecord         `json:"vital,omitempty"`
	Meal         MealStatus                  `json:"meal,omitempty"`
	Medication   *MedicationStatus           `json:"medication,omitempty"`
	NightPatrols []*domain.NightPatrolRecord `json:"nightPatrols,omitempty"`
	Comments     []*domain.CommentRecord     `json:"comments,omitempty"`
}

// Detail 返回该类别对应的合并结果，没有任何记录时返回 nil
func (s *MergedStatus) Detail() any {
	if !s.HasRecord {
		return nil
	}

	switch s.Category {
	case domain.CategoryVital:
		return s.Vital
	case domain.CategoryMeal:
		return s.Meal
	case domain.CategoryMedication:
		return s.Medication
	case domain.CategoryNightPatrol:
		return s.NightPatrols
	case domain.CategoryComment:
		return s.Comments
	default:
		return nil
	}
}

// Merge 把同一入住者同一天同一类别的所有记录合并成一个状态
//   - 生命体征：当天最新的一条
//   - 服药：每个时间点做逻辑或，未填写等同于 false
//   - 饮食：按餐次分别取最新的一条
//   - 夜间巡视、备注：按时间顺序保留全部记录
//
// 不属于该类别的记录会被忽略，未知类别返回空状态
func Merge(category domain.Category, records []domain.Record) *MergedStatus {
	status := &MergedStatus{Category: category}

	switch category {
	case domain.CategoryVital:
		vitals := recordsOf[*domain.VitalRecord](records)
		if len(vitals) > 0 {
			status.HasRecord = true
			status.Vital = vitals[len(vitals)-1]
		}
	case domain.CategoryMeal:
		meals := recordsOf[*domain.MealRecord](records)
		if len(meals) > 0 {
			status.HasRecord = true
			status.Meal = MergeMeals(meals)
		}
	case domain.CategoryMedication:
		meds := recordsOf[*domain.MedicationRecord](records)
		if len(meds) > 0 {
			status.HasRecord = true
			status.Medication = MergeMedication(meds)
		}
	case domain.CategoryNightPatrol:
		patrols := recordsOf[*domain.NightPatrolRecord](records)
		if len(patrols) > 0 {
			status.HasRecord = true
			status.NightPatrols = patrols
		}
	case domain.CategoryComment:
		comments := recordsOf[*domain.CommentRecord](records)
		if len(comments) > 0 {
			status.HasRecord = true
			status.Comments = comments
		}
	}

	return status
}

// MergeMedication 对所有记录逐个时间点求逻辑或，记录为空时所有时间点都是 false
func MergeMedication(records []*domain.MedicationRecord) *MedicationStatus {
	status := &MedicationStatus{}
	for _, r := range records {
		status.BeforeBreakfast = status.BeforeBreakfast || isTrue(r.BeforeBreakfast)
		status.AfterBreakfast = status.AfterBreakfast || isTrue(r.AfterBreakfast)
		status.BeforeLunch = status.BeforeLunch || isTrue(r.BeforeLunch)
		status.AfterLunch = status.AfterLunch || isTrue(r.AfterLunch)
		status.BeforeDinner = status.BeforeDinner || isTrue(r.BeforeDinner)
		status.AfterDinner = status.AfterDinner || isTrue(r.AfterDinner)
		status.Bedtime = status.Bedtime || isTrue(r.Bedtime)
		status.EyeDrop = status.EyeDrop || isTrue(r.EyeDropTaken) || (r.EyeDropCount != nil && *r.EyeDropCount > 0)
	}
	return status
}

// MergeMeals 按餐次合并，同一餐次有多条记录时取记录时间最晚的一条（时间相同取 id 较大的）
func MergeMeals(records []*domain.MealRecord) MealStatus {
	status := make(MealStatus, len(domain.MealSlots))
	for _, slot := range domain.MealSlots {
		status[slot] = MealSlotStatus{}
	}

	sorted := slices.Clone(records)
	sortChronologically(sorted)

	for _, r := range sorted {
		if _, ok := status[r.Slot]; !ok {
			continue
		}
		recordedAt := r.RecordedAt
		status[r.Slot] = MealSlotStatus{
			Present:    true,
			RecordID:   r.ID,
			StaffID:    r.StaffID,
			MainDish:   r.MainDish,
			SideDish:   r.SideDish,
			RecordedAt: &recordedAt,
		}
	}

	return status
}

// recordsOf 过滤出指定类型的记录并按时间排序，返回新切片
func recordsOf[T domain.Record](records []domain.Record) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if r, ok := rec.(T); ok {
			out = append(out, r)
		}
	}
	sortChronologically(out)
	return out
}

func sortChronologically[T domain.Record](records []T) {
	slices.SortStableFunc(records, func(a, b T) int {
		ma, mb := a.Meta(), b.Meta()
		if c := ma.RecordedAt.Compare(mb.RecordedAt); c != 0 {
			return c
		}
		return cmp.Compare(ma.ID, mb.ID)
	})
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

// Labels 按时间点顺序返回已完成项目的名称
func (s *MedicationStatus) Labels() []string {
	flags := []bool{
		s.BeforeBreakfast, s.AfterBreakfast,
		s.BeforeLunch, s.AfterLunch,
		s.BeforeDinner, s.AfterDinner,
		s.Bedtime, s.EyeDrop,
	}

	labels := make([]string, 0, len(flags))
	for i, done := range flags {
		if done {
			labels = append(labels, domain.MedicationTimings[i].Label)
		}
	}
	return labels
}
