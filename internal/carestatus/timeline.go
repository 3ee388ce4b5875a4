package carestatus

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type TimelineEntry struct {
	Key          string          `json:"key"`
	Category     domain.Category `json:"category"`
	RecordID     int64           `json:"recordID"`
	ResidentID   int64           `json:"residentID"`
	ResidentName string          `json:"residentName"`
	RoomNumber   string          `json:"roomNumber"`
	StaffID      int64           `json:"staffID"`
	StaffName    string          `json:"staffName"`
	RecordedAt   time.Time       `json:"recordedAt"`
	Summary      string          `json:"summary"`
	Record       domain.Record   `json:"record"` // 编辑时使用的原始记录
}

// BuildTimeline 返回 dr 区间内指定类别的记录，最新的在前
// categories 为空时查询所有类别，residentID 为 nil 时查询所有入住者
func (b *Builder) BuildTimeline(dr domain.DateRange, categories []domain.Category, residentID *int64) ([]*TimelineEntry, error) {
	if len(categories) == 0 {
		categories = domain.Categories
	}

	residents, err := b.source.ListActiveResidents()
	if err != nil {
		return nil, err
	}
	residentMap := make(map[int64]*domain.Resident, len(residents))
	for _, r := range residents {
		residentMap[r.ID] = r
	}

	staffList, err := b.source.ListActiveStaff()
	if err != nil {
		return nil, err
	}
	staffNames := make(map[int64]string, len(staffList))
	for _, s := range staffList {
		staffNames[s.ID] = s.Name
	}

	entries := make([]*TimelineEntry, 0)
	for _, c := range categories {
		records, err := b.source.ListCategoryRecords(c, dr, residentID)
		if err != nil {
			return nil, err
		}

		for _, rec := range records {
			m := rec.Meta()
			entry := &TimelineEntry{
				Key:        fmt.Sprintf("%s-%d", c, m.ID),
				Category:   c,
				RecordID:   m.ID,
				ResidentID: m.ResidentID,
				StaffID:    m.StaffID,
				StaffName:  staffNames[m.StaffID],
				RecordedAt: m.RecordedAt,
				Summary:    Summarize(rec),
				Record:     rec,
			}
			// 已退所的入住者不在名单中，只返回 id
			if resident, ok := residentMap[m.ResidentID]; ok {
				entry.ResidentName = resident.Name
				entry.RoomNumber = resident.RoomNumber
			}
			entries = append(entries, entry)
		}
	}

	slices.SortStableFunc(entries, func(a, b *TimelineEntry) int {
		if c := b.RecordedAt.Compare(a.RecordedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	return entries, nil
}

// Summarize 生成一条记录的单行摘要，用于时间线和导出
func Summarize(rec domain.Record) string {
	switch r := rec.(type) {
	case *domain.VitalRecord:
		parts := make([]string, 0, 5)
		if r.Systolic != nil {
			parts = append(parts, fmt.Sprintf("收缩压%d", *r.Systolic))
		}
		if r.Diastolic != nil {
			parts = append(parts, fmt.Sprintf("舒张压%d", *r.Diastolic))
		}
		if r.Pulse != nil {
			parts = append(parts, fmt.Sprintf("脉搏%d", *r.Pulse))
		}
		if r.Temperature != nil {
			parts = append(parts, fmt.Sprintf("体温%.1f℃", *r.Temperature))
		}
		if r.SpO2 != nil {
			parts = append(parts, fmt.Sprintf("SpO₂%d%%", *r.SpO2))
		}
		if len(parts) == 0 {
			return "（无数值）"
		}
		return strings.Join(parts, " ")
	case *domain.MealRecord:
		s := fmt.Sprintf("%s餐 主食%s/10 副食%s/10", r.Slot.Label(), scoreText(r.MainDish), scoreText(r.SideDish))
		if r.Comment != "" {
			s += " " + r.Comment
		}
		return s
	case *domain.MedicationRecord:
		done := make([]string, 0, len(domain.MedicationTimings))
		for _, t := range domain.MedicationTimings {
			if isTrue(t.Get(r)) {
				done = append(done, t.Label)
			}
		}
		if len(done) == 0 {
			return "（无）"
		}
		return strings.Join(done, "・")
	case *domain.NightPatrolRecord:
		s := r.Status.Label()
		if r.Comment != "" {
			s += " " + r.Comment
		}
		return s
	case *domain.CommentRecord:
		return fmt.Sprintf("[%s] %s", r.Tag.Label(), r.Content)
	default:
		return ""
	}
}

func scoreText(score *int32) string {
	if score == nil {
		return "—"
	}
	return fmt.Sprintf("%d", *score)
}
