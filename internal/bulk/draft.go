package bulk

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

// Draft 是批量录入中某个入住者尚未提交的表单，每个类别一个具体类型
// 数值字段使用字符串，空字符串表示未填写
type Draft interface {
	Category() domain.Category
	// IsEmpty 为 true 时该草稿在提交时会被跳过
	IsEmpty() bool
	// Records 把草稿转换为待写入的记录，所有记录使用同一个记录时间
	Records(residentID, staffID int64, recordedAt time.Time) ([]domain.Record, error)
}

type MealEntry struct {
	Main string `json:"main"`
	Side string `json:"side"`
}

func (e MealEntry) filled() bool {
	return strings.TrimSpace(e.Main) != "" || strings.TrimSpace(e.Side) != ""
}

type MealDraft struct {
	Morning MealEntry `json:"morning"`
	Midday  MealEntry `json:"midday"`
	Evening MealEntry `json:"evening"`
	Comment string    `json:"comment"`
}

func (MealDraft) Category() domain.Category { return domain.CategoryMeal }

// Slot 返回指定餐次的条目，餐次无法识别时返回 nil
func (d *MealDraft) Slot(slot domain.MealSlot) *MealEntry {
	switch slot {
	case domain.MealSlotMorning:
		return &d.Morning
	case domain.MealSlotMidday:
		return &d.Midday
	case domain.MealSlotEvening:
		return &d.Evening
	default:
		return nil
	}
}

// IsEmpty 只看餐次分数，只写了备注的草稿同样视为空
func (d MealDraft) IsEmpty() bool {
	return !d.Morning.filled() && !d.Midday.filled() && !d.Evening.filled()
}

func (d MealDraft) Records(residentID, staffID int64, recordedAt time.Time) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(domain.MealSlots))
	for _, slot := range domain.MealSlots {
		entry := d.Slot(slot)
		if !entry.filled() {
			continue
		}

		main, err := parseScore(entry.Main)
		if err != nil {
			return nil, fmt.Errorf("%s餐主食: %w", slot.Label(), err)
		}
		side, err := parseScore(entry.Side)
		if err != nil {
			return nil, fmt.Errorf("%s餐副食: %w", slot.Label(), err)
		}

		records = append(records, &domain.MealRecord{
			RecordMeta: newMeta(residentID, staffID, recordedAt),
			Slot:       slot,
			MainDish:   main,
			SideDish:   side,
			Comment:    d.Comment,
		})
	}
	return records, nil
}

type VitalDraft struct {
	Systolic    string `json:"systolic"`
	Diastolic   string `json:"diastolic"`
	Pulse       string `json:"pulse"`
	Temperature string `json:"temperature"`
	SpO2        string `json:"spo2"`
	Comment     string `json:"comment"`
}

func (VitalDraft) Category() domain.Category { return domain.CategoryVital }

func (d VitalDraft) IsEmpty() bool {
	for _, v := range []string{d.Systolic, d.Diastolic, d.Pulse, d.Temperature, d.SpO2} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (d VitalDraft) Records(residentID, staffID int64, recordedAt time.Time) ([]domain.Record, error) {
	rec := &domain.VitalRecord{
		RecordMeta: newMeta(residentID, staffID, recordedAt),
		Comment:    d.Comment,
	}

	var err error
	if rec.Systolic, err = parseInt(d.Systolic); err != nil {
		return nil, fmt.Errorf("收缩压: %w", err)
	}
	if rec.Diastolic, err = parseInt(d.Diastolic); err != nil {
		return nil, fmt.Errorf("舒张压: %w", err)
	}
	if rec.Pulse, err = parseInt(d.Pulse); err != nil {
		return nil, fmt.Errorf("脉搏: %w", err)
	}
	if rec.Temperature, err = parseFloat(d.Temperature); err != nil {
		return nil, fmt.Errorf("体温: %w", err)
	}
	if rec.SpO2, err = parseInt(d.SpO2); err != nil {
		return nil, fmt.Errorf("SpO2: %w", err)
	}

	return []domain.Record{rec}, nil
}

type MedicationDraft struct {
	BeforeBreakfast bool   `json:"beforeBreakfast"`
	AfterBreakfast  bool   `json:"afterBreakfast"`
	BeforeLunch     bool   `json:"beforeLunch"`
	AfterLunch      bool   `json:"afterLunch"`
	BeforeDinner    bool   `json:"beforeDinner"`
	AfterDinner     bool   `json:"afterDinner"`
	Bedtime         bool   `json:"bedtime"`
	EyeDrop         bool   `json:"eyeDrop"`
	EyeDropCount    string `json:"eyeDropCount"` // 为空时点眼次数按 1 次记录
	Comment         string `json:"comment"`
}

func (MedicationDraft) Category() domain.Category { return domain.CategoryMedication }

func (d MedicationDraft) IsEmpty() bool {
	return !(d.BeforeBreakfast || d.AfterBreakfast ||
		d.BeforeLunch || d.AfterLunch ||
		d.BeforeDinner || d.AfterDinner ||
		d.Bedtime || d.EyeDrop)
}

func (d MedicationDraft) Records(residentID, staffID int64, recordedAt time.Time) ([]domain.Record, error) {
	rec := &domain.MedicationRecord{
		RecordMeta:      newMeta(residentID, staffID, recordedAt),
		BeforeBreakfast: boolPtr(d.BeforeBreakfast),
		AfterBreakfast:  boolPtr(d.AfterBreakfast),
		BeforeLunch:     boolPtr(d.BeforeLunch),
		AfterLunch:      boolPtr(d.AfterLunch),
		BeforeDinner:    boolPtr(d.BeforeDinner),
		AfterDinner:     boolPtr(d.AfterDinner),
		Bedtime:         boolPtr(d.Bedtime),
		EyeDropTaken:    boolPtr(d.EyeDrop),
		Comment:         d.Comment,
	}

	if d.EyeDrop {
		count, err := parseInt(d.EyeDropCount)
		if err != nil {
			return nil, fmt.Errorf("点眼次数: %w", err)
		}
		if count == nil {
			one := int32(1)
			count = &one
		}
		rec.EyeDropCount = count
	}

	return []domain.Record{rec}, nil
}

type CommentDraft struct {
	Tag     domain.CommentTag `json:"tag"`
	Content string            `json:"content"`
}

func (CommentDraft) Category() domain.Category { return domain.CategoryComment }

func (d CommentDraft) IsEmpty() bool {
	return strings.TrimSpace(d.Content) == ""
}

func (d CommentDraft) Records(residentID, staffID int64, recordedAt time.Time) ([]domain.Record, error) {
	tag := d.Tag
	if tag == "" {
		tag = domain.CommentTagCare
	}
	return []domain.Record{&domain.CommentRecord{
		RecordMeta: newMeta(residentID, staffID, recordedAt),
		Tag:        tag,
		Content:    d.Content,
	}}, nil
}

type NightPatrolDraft struct {
	Status  domain.PatrolStatus `json:"status"`
	Comment string              `json:"comment"`
}

func (NightPatrolDraft) Category() domain.Category { return domain.CategoryNightPatrol }

// IsEmpty 新建的巡视草稿默认是睡眠中，所以实际上几乎不会为空
func (d NightPatrolDraft) IsEmpty() bool {
	return d.Status == ""
}

func (d NightPatrolDraft) Records(residentID, staffID int64, recordedAt time.Time) ([]domain.Record, error) {
	return []domain.Record{&domain.NightPatrolRecord{
		RecordMeta: newMeta(residentID, staffID, recordedAt),
		Status:     d.Status,
		Comment:    d.Comment,
	}}, nil
}

// NewDraft 返回某个类别的初始草稿
func NewDraft(category domain.Category) (Draft, error) {
	switch category {
	case domain.CategoryMeal:
		return MealDraft{}, nil
	case domain.CategoryVital:
		return VitalDraft{}, nil
	case domain.CategoryMedication:
		return MedicationDraft{}, nil
	case domain.CategoryComment:
		return CommentDraft{Tag: domain.CommentTagCare}, nil
	case domain.CategoryNightPatrol:
		return NightPatrolDraft{Status: domain.PatrolStatusAsleep}, nil
	default:
		return nil, domain.ErrUnknownCategory
	}
}

func newMeta(residentID, staffID int64, recordedAt time.Time) domain.RecordMeta {
	return domain.RecordMeta{
		ResidentID: residentID,
		StaffID:    staffID,
		RecordedAt: recordedAt,
	}
}

func parseInt(s string) (*int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, err
	}
	n := int32(v)
	return &n, nil
}

func parseFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	// NaN 和 Inf 无法编码为 JSON
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("无效的数值: %q", s)
	}
	return &v, nil
}

func parseScore(s string) (*int32, error) {
	return parseInt(s)
}

// boolPtr 把未勾选记录为 nil，与单条录入时的行为一致
func boolPtr(b bool) *bool {
	if !b {
		return nil
	}
	return &b
}
