package domain

import "time"

// Record 是各类别护理记录的公共接口，每条记录只属于一个入住者和一个类别
type Record interface {
	Category() Category
	Meta() *RecordMeta
}

type RecordMeta struct {
	ID         int64     `json:"id"`
	ResidentID int64     `json:"residentID"`
	StaffID    int64     `json:"staffID"`
	RecordedAt time.Time `json:"recordedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (m *RecordMeta) Meta() *RecordMeta { return m }

type MealSlot string

const (
	MealSlotMorning MealSlot = "morning"
	MealSlotMidday  MealSlot = "midday"
	MealSlotEvening MealSlot = "evening"
)

var MealSlots = []MealSlot{MealSlotMorning, MealSlotMidday, MealSlotEvening}

func (s MealSlot) Label() string {
	switch s {
	case MealSlotMorning:
		return "早"
	case MealSlotMidday:
		return "午"
	case MealSlotEvening:
		return "晚"
	default:
		return string(s)
	}
}

type PatrolStatus string

const (
	PatrolStatusAsleep PatrolStatus = "asleep"
	PatrolStatusAwake  PatrolStatus = "awake"
)

func (s PatrolStatus) Label() string {
	switch s {
	case PatrolStatusAsleep:
		return "睡眠中"
	case PatrolStatusAwake:
		return "清醒"
	default:
		return string(s)
	}
}

type CommentTag string

const (
	CommentTagCare      CommentTag = "care"
	CommentTagDailyLife CommentTag = "daily-life"
)

func (t CommentTag) Label() string {
	switch t {
	case CommentTagCare:
		return "护理"
	case CommentTagDailyLife:
		return "日常生活"
	default:
		return string(t)
	}
}

type VitalRecord struct {
	RecordMeta
	Systolic    *int32   `json:"systolic"`
	Diastolic   *int32   `json:"diastolic"`
	Pulse       *int32   `json:"pulse"`
	Temperature *float64 `json:"temperature"`
	SpO2        *int32   `json:"spo2"`
	Comment     string   `json:"comment"`
}

func (*VitalRecord) Category() Category { return CategoryVital }

type MealRecord struct {
	RecordMeta
	Slot     MealSlot `json:"slot"`
	MainDish *int32   `json:"mainDish"` // 0~10
	SideDish *int32   `json:"sideDish"` // 0~10
	Comment  string   `json:"comment"`
}

func (*MealRecord) Category() Category { return CategoryMeal }

type MedicationRecord struct {
	RecordMeta
	BeforeBreakfast *bool  `json:"beforeBreakfast"`
	AfterBreakfast  *bool  `json:"afterBreakfast"`
	BeforeLunch     *bool  `json:"beforeLunch"`
	AfterLunch      *bool  `json:"afterLunch"`
	BeforeDinner    *bool  `json:"beforeDinner"`
	AfterDinner     *bool  `json:"afterDinner"`
	Bedtime         *bool  `json:"bedtime"`
	EyeDropTaken    *bool  `json:"eyeDropTaken"`
	EyeDropCount    *int32 `json:"eyeDropCount"`
	Comment         string `json:"comment"`
}

func (*MedicationRecord) Category() Category { return CategoryMedication }

// MedicationTiming 是服药记录中的一个时间点，Get 返回记录中该时间点的值
type MedicationTiming struct {
	Key   string
	Label string
	Get   func(r *MedicationRecord) *bool
}

var MedicationTimings = []MedicationTiming{
	{"beforeBreakfast", "早饭前", func(r *MedicationRecord) *bool { return r.BeforeBreakfast }},
	{"afterBreakfast", "早饭后", func(r *MedicationRecord) *bool { return r.AfterBreakfast }},
	{"beforeLunch", "午饭前", func(r *MedicationRecord) *bool { return r.BeforeLunch }},
	{"afterLunch", "午饭后", func(r *MedicationRecord) *bool { return r.AfterLunch }},
	{"beforeDinner", "晚饭前", func(r *MedicationRecord) *bool { return r.BeforeDinner }},
	{"afterDinner", "晚饭后", func(r *MedicationRecord) *bool { return r.AfterDinner }},
	{"bedtime", "睡前", func(r *MedicationRecord) *bool { return r.Bedtime }},
	{"eyeDropTaken", "点眼", func(r *MedicationRecord) *bool { return r.EyeDropTaken }},
}

type NightPatrolRecord struct {
	RecordMeta
	Status  PatrolStatus `json:"status"`
	Comment string       `json:"comment"`
}

func (*NightPatrolRecord) Category() Category { return CategoryNightPatrol }

// PatrolTime 巡视时间即记录时间
func (r *NightPatrolRecord) PatrolTime() time.Time { return r.RecordedAt }

type CommentRecord struct {
	RecordMeta
	Tag     CommentTag `json:"tag"`
	Content string     `json:"content"`
}

func (*CommentRecord) Category() Category { return CategoryComment }
