package repository

import (
	"database/sql"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

func (r *Repository) GetStaffByID(id int64) (*domain.Staff, error) {
	query := `
		SELECT name, name_reading, pin_hash, is_admin, is_active, last_login_at, created_at
		FROM staff WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	staff := &domain.Staff{
		ID: id,
	}

	var pinHash sql.NullString
	dst := []any{&staff.Name, &staff.NameReading, &pinHash, &staff.IsAdmin, &staff.IsActive, &staff.LastLoginAt, &staff.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	staff.PINHash = pinHash.String

	return staff, nil
}

func (r *Repository) ListActiveStaff() ([]*domain.Staff, error) {
	query := `
		SELECT id, name, name_reading, is_admin, is_active, last_login_at, created_at
		FROM staff WHERE is_active = TRUE
		ORDER BY id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staffList := make([]*domain.Staff, 0)
	for rows.Next() {
		staff := &domain.Staff{}
		dst := []any{&staff.ID, &staff.Name, &staff.NameReading, &staff.IsAdmin, &staff.IsActive, &staff.LastLoginAt, &staff.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		staffList = append(staffList, staff)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return staffList, nil
}

func (r *Repository) CreateStaff(staff *domain.Staff) error {
	query := `
		INSERT INTO staff (name, name_reading, pin_hash, is_admin)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, is_active, created_at
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{staff.Name, staff.NameReading, staff.PINHash, staff.IsAdmin}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&staff.ID, &staff.IsActive, &staff.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateStaffLastLogin(id int64, at time.Time) error {
	query := `
		UPDATE staff SET last_login_at = $1 WHERE id = $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, at, id)
	return err
}

func (r *Repository) UpdateStaffPIN(id int64, pinHash string) error {
	query := `
		UPDATE staff SET pin_hash = NULLIF($1, '') WHERE id = $2
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, pinHash, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
