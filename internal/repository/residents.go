package repository

import (
	"github.com/kaigo-records/care-records/backend/internal/domain"
)

// ListActiveResidents 按楼层、房间号排序，保证打印和手持端上的顺序稳定
func (r *Repository) ListActiveResidents() ([]*domain.Resident, error) {
	query := `
		SELECT id, name, name_reading, room_number, floor, gender, is_active, created_at, version
		FROM residents
		WHERE is_active = TRUE
		ORDER BY floor, room_number, id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	residents := make([]*domain.Resident, 0)
	for rows.Next() {
		resident := &domain.Resident{}
		dst := []any{&resident.ID, &resident.Name, &resident.NameReading, &resident.RoomNumber, &resident.Floor, &resident.Gender, &resident.IsActive, &resident.CreatedAt, &resident.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		residents = append(residents, resident)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return residents, nil
}

func (r *Repository) GetResidentByID(id int64) (*domain.Resident, error) {
	query := `
		SELECT name, name_reading, room_number, floor, gender, is_active, created_at, version
		FROM residents WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	resident := &domain.Resident{
		ID: id,
	}

	dst := []any{&resident.Name, &resident.NameReading, &resident.RoomNumber, &resident.Floor, &resident.Gender, &resident.IsActive, &resident.CreatedAt, &resident.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return resident, nil
}

func (r *Repository) CreateResident(resident *domain.Resident) error {
	query := `
		INSERT INTO residents (name, name_reading, room_number, floor, gender)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{resident.Name, resident.NameReading, resident.RoomNumber, resident.Floor, resident.Gender}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&resident.ID, &resident.IsActive, &resident.CreatedAt, &resident.Version); err != nil {
		return err
	}

	return nil
}
