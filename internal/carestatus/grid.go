package carestatus

import (
	"slices"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

// gridCategories 是全天一览表需要的类别，备注不在一览表中显示
var gridCategories = []domain.Category{
	domain.CategoryVital,
	domain.CategoryMeal,
	domain.CategoryMedication,
	domain.CategoryNightPatrol,
}

type GridRow struct {
	ResidentID   int64                       `json:"residentID"`
	Name         string                      `json:"name"`
	RoomNumber   string                      `json:"roomNumber"`
	Floor        string                      `json:"floor"`
	Vitals       []*domain.VitalRecord       `json:"vitals"`
	Meals        MealStatus                  `json:"meals"`
	Medication   *MedicationStatus           `json:"medication"` // 当天没有服药记录时为 nil
	NightPatrols []*domain.NightPatrolRecord `json:"nightPatrols"`
}

type Grid struct {
	Date   string     `json:"date"`
	Floors []string   `json:"floors"`
	Rows   []*GridRow `json:"rows"`
}

// BuildGrid 一次性读取当天所有类别的记录，按入住者 × 类别 × 餐次展开
func (b *Builder) BuildGrid(date time.Time) (*Grid, error) {
	residents, err := b.source.ListActiveResidents()
	if err != nil {
		return nil, err
	}

	dr := domain.DayRange(date, b.loc)

	byCategory := make(map[domain.Category]map[int64][]domain.Record, len(gridCategories))
	for _, c := range gridCategories {
		records, err := b.source.ListCategoryRecords(c, dr, nil)
		if err != nil {
			return nil, err
		}
		byCategory[c] = groupByResident(records)
	}

	grid := &Grid{
		Date:   dr.From.Format(domain.DateLayout),
		Floors: make([]string, 0),
		Rows:   make([]*GridRow, 0, len(residents)),
	}

	for _, resident := range residents {
		if resident.Floor != "" && !slices.Contains(grid.Floors, resident.Floor) {
			grid.Floors = append(grid.Floors, resident.Floor)
		}

		row := &GridRow{
			ResidentID:   resident.ID,
			Name:         resident.Name,
			RoomNumber:   resident.RoomNumber,
			Floor:        resident.Floor,
			Vitals:       recordsOf[*domain.VitalRecord](byCategory[domain.CategoryVital][resident.ID]),
			Meals:        MergeMeals(recordsOf[*domain.MealRecord](byCategory[domain.CategoryMeal][resident.ID])),
			NightPatrols: recordsOf[*domain.NightPatrolRecord](byCategory[domain.CategoryNightPatrol][resident.ID]),
		}

		if meds := recordsOf[*domain.MedicationRecord](byCategory[domain.CategoryMedication][resident.ID]); len(meds) > 0 {
			row.Medication = MergeMedication(meds)
		}

		grid.Rows = append(grid.Rows, row)
	}

	slices.Sort(grid.Floors)

	return grid, nil
}
