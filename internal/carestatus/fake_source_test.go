package carestatus

import (
	"github.com/kaigo-records/care-records/backend/internal/domain"
)

type fakeSource struct {
	residents []*domain.Resident
	staff     []*domain.Staff
	records   map[domain.Category][]domain.Record
	queried   []domain.Category
	err       error
}

func (s *fakeSource) ListActiveResidents() ([]*domain.Resident, error) {
	return s.residents, nil
}

func (s *fakeSource) ListActiveStaff() ([]*domain.Staff, error) {
	return s.staff, nil
}

func (s *fakeSource) ListCategoryRecords(category domain.Category, dr domain.DateRange, residentID *int64) ([]domain.Record, error) {
	s.queried = append(s.queried, category)
	if s.err != nil {
		return nil, s.err
	}

	out := make([]domain.Record, 0)
	for _, rec := range s.records[category] {
		m := rec.Meta()
		if !dr.Contains(m.RecordedAt) {
			continue
		}
		if residentID != nil && m.ResidentID != *residentID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func testResidents() []*domain.Resident {
	return []*domain.Resident{
		{ID: 1, Name: "山田 花子", RoomNumber: "101", Floor: "1F", IsActive: true},
		{ID: 2, Name: "佐藤 一郎", RoomNumber: "102", Floor: "1F", IsActive: true},
		{ID: 3, Name: "王淑英", RoomNumber: "201", Floor: "2F", IsActive: true},
	}
}
