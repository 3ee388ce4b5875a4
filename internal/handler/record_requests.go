package handler

import (
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

// recordRequest 是单条记录的请求体，每个类别一个具体类型
type recordRequest interface {
	base() *recordBase
	toRecord() domain.Record
}

type recordBase struct {
	ResidentID int64      `json:"residentID" validate:"required"`
	RecordedAt *time.Time `json:"recordedAt"`
}

func (b *recordBase) base() *recordBase { return b }

func (b *recordBase) meta() domain.RecordMeta {
	m := domain.RecordMeta{ResidentID: b.ResidentID}
	if b.RecordedAt != nil {
		m.RecordedAt = *b.RecordedAt
	}
	return m
}

type vitalRequest struct {
	recordBase
	Systolic    *int32   `json:"systolic" validate:"omitempty,min=0,max=300"`
	Diastolic   *int32   `json:"diastolic" validate:"omitempty,min=0,max=300"`
	Pulse       *int32   `json:"pulse" validate:"omitempty,min=0,max=300"`
	Temperature *float64 `json:"temperature" validate:"omitempty,min=30,max=45"`
	SpO2        *int32   `json:"spo2" validate:"omitempty,min=0,max=100"`
	Comment     string   `json:"comment"`
}

func (req *vitalRequest) toRecord() domain.Record {
	return &domain.VitalRecord{
		RecordMeta:  req.meta(),
		Systolic:    req.Systolic,
		Diastolic:   req.Diastolic,
		Pulse:       req.Pulse,
		Temperature: req.Temperature,
		SpO2:        req.SpO2,
		Comment:     req.Comment,
	}
}

type mealRequest struct {
	recordBase
	Slot     domain.MealSlot `json:"slot" validate:"required,oneof=morning midday evening"`
	MainDish *int32          `json:"mainDish" validate:"omitempty,min=0,max=10"`
	SideDish *int32          `json:"sideDish" validate:"omitempty,min=0,max=10"`
	Comment  string          `json:"comment"`
}

func (req *mealRequest) toRecord() domain.Record {
	return &domain.MealRecord{
		RecordMeta: req.meta(),
		Slot:       req.Slot,
		MainDish:   req.MainDish,
		SideDish:   req.SideDish,
		Comment:    req.Comment,
	}
}

type medicationRequest struct {
	recordBase
	BeforeBreakfast *bool  `json:"beforeBreakfast"`
	AfterBreakfast  *bool  `json:"afterBreakfast"`
	BeforeLunch     *bool  `json:"beforeLunch"`
	AfterLunch      *bool  `json:"afterLunch"`
	BeforeDinner    *bool  `json:"beforeDinner"`
	AfterDinner     *bool  `json:"afterDinner"`
	Bedtime         *bool  `json:"bedtime"`
	EyeDropTaken    *bool  `json:"eyeDropTaken"`
	EyeDropCount    *int32 `json:"eyeDropCount" validate:"omitempty,min=0,max=20"`
	Comment         string `json:"comment"`
}

func (req *medicationRequest) toRecord() domain.Record {
	return &domain.MedicationRecord{
		RecordMeta:      req.meta(),
		BeforeBreakfast: req.BeforeBreakfast,
		AfterBreakfast:  req.AfterBreakfast,
		BeforeLunch:     req.BeforeLunch,
		AfterLunch:      req.AfterLunch,
		BeforeDinner:    req.BeforeDinner,
		AfterDinner:     req.AfterDinner,
		Bedtime:         req.Bedtime,
		EyeDropTaken:    req.EyeDropTaken,
		EyeDropCount:    req.EyeDropCount,
		Comment:         req.Comment,
	}
}

type nightPatrolRequest struct {
	recordBase
	Status  domain.PatrolStatus `json:"status" validate:"required,oneof=asleep awake"`
	Comment string              `json:"comment"`
}

func (req *nightPatrolRequest) toRecord() domain.Record {
	return &domain.NightPatrolRecord{
		RecordMeta: req.meta(),
		Status:     req.Status,
		Comment:    req.Comment,
	}
}

type commentRequest struct {
	recordBase
	Tag     domain.CommentTag `json:"tag" validate:"omitempty,oneof=care daily-life"`
	Content string            `json:"content" validate:"required"`
}

func (req *commentRequest) toRecord() domain.Record {
	tag := req.Tag
	if tag == "" {
		tag = domain.CommentTagCare
	}
	return &domain.CommentRecord{
		RecordMeta: req.meta(),
		Tag:        tag,
		Content:    req.Content,
	}
}

func newRecordRequest(c domain.Category) (recordRequest, error) {
	switch c {
	case domain.CategoryVital:
		return &vitalRequest{}, nil
	case domain.CategoryMeal:
		return &mealRequest{}, nil
	case domain.CategoryMedication:
		return &medicationRequest{}, nil
	case domain.CategoryNightPatrol:
		return &nightPatrolRequest{}, nil
	case domain.CategoryComment:
		return &commentRequest{}, nil
	default:
		return nil, domain.ErrUnknownCategory
	}
}
