package carestatus

import (
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

// RecordSource 是状态汇总所需的只读查询，由 repository.Repository 实现
type RecordSource interface {
	ListActiveResidents() ([]*domain.Resident, error)
	ListActiveStaff() ([]*domain.Staff, error)
	ListCategoryRecords(category domain.Category, dr domain.DateRange, residentID *int64) ([]domain.Record, error)
}

type Builder struct {
	source RecordSource
	loc    *time.Location
}

func NewBuilder(source RecordSource, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{
		source: source,
		loc:    loc,
	}
}

type IndexEntry struct {
	*domain.Resident
	HasRecord bool `json:"hasRecord"`
	Detail    any  `json:"detail,omitempty"`
}

// BuildIndex 返回当天所有在住入住者在某个类别下的记录情况
// category 为空时只返回名单（hasRecord 全部为 false）；category 无法识别时同样退化为名单而不是报错
func (b *Builder) BuildIndex(date time.Time, category string, withDetail bool) ([]*IndexEntry, error) {
	residents, err := b.source.ListActiveResidents()
	if err != nil {
		return nil, err
	}

	entries := make([]*IndexEntry, len(residents))
	for i, resident := range residents {
		entries[i] = &IndexEntry{Resident: resident}
	}

	if category == "" {
		return entries, nil
	}

	c, err := domain.ParseCategory(category)
	if err != nil {
		return entries, nil
	}

	records, err := b.source.ListCategoryRecords(c, domain.DayRange(date, b.loc), nil)
	if err != nil {
		return nil, err
	}

	byResident := groupByResident(records)
	for _, entry := range entries {
		status := Merge(c, byResident[entry.ID])
		entry.HasRecord = status.HasRecord
		if withDetail {
			entry.Detail = status.Detail()
		}
	}

	return entries, nil
}

func groupByResident(records []domain.Record) map[int64][]domain.Record {
	m := make(map[int64][]domain.Record)
	for _, rec := range records {
		id := rec.Meta().ResidentID
		m[id] = append(m[id], rec)
	}
	return m
}
