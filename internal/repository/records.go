package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

var tableNames = map[domain.Category]string{
	domain.CategoryVital:       "vital_records",
	domain.CategoryMeal:        "meal_records",
	domain.CategoryMedication:  "medication_records",
	domain.CategoryNightPatrol: "night_patrol_records",
	domain.CategoryComment:     "comment_records",
}

const (
	vitalColumns       = `id, resident_id, staff_id, recorded_at, created_at, systolic, diastolic, pulse, temperature, spo2, comment`
	mealColumns        = `id, resident_id, staff_id, recorded_at, created_at, meal_slot, main_dish, side_dish, comment`
	medicationColumns  = `id, resident_id, staff_id, recorded_at, created_at, before_breakfast, after_breakfast, before_lunch, after_lunch, before_dinner, after_dinner, bedtime, eye_drop_taken, eye_drop_count, comment`
	nightPatrolColumns = `id, resident_id, staff_id, recorded_at, created_at, status, comment`
	commentColumns     = `id, resident_id, staff_id, recorded_at, created_at, tag, content`
)

func metaDst(m *domain.RecordMeta) []any {
	return []any{&m.ID, &m.ResidentID, &m.StaffID, &m.RecordedAt, &m.CreatedAt}
}

func scanVital(s scanner) (*domain.VitalRecord, error) {
	rec := &domain.VitalRecord{}
	dst := append(metaDst(&rec.RecordMeta), &rec.Systolic, &rec.Diastolic, &rec.Pulse, &rec.Temperature, &rec.SpO2, &rec.Comment)
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}
	return rec, nil
}

func scanMeal(s scanner) (*domain.MealRecord, error) {
	rec := &domain.MealRecord{}
	dst := append(metaDst(&rec.RecordMeta), &rec.Slot, &rec.MainDish, &rec.SideDish, &rec.Comment)
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}
	return rec, nil
}

func scanMedication(s scanner) (*domain.MedicationRecord, error) {
	rec := &domain.MedicationRecord{}
	dst := append(metaDst(&rec.RecordMeta),
		&rec.BeforeBreakfast, &rec.AfterBreakfast,
		&rec.BeforeLunch, &rec.AfterLunch,
		&rec.BeforeDinner, &rec.AfterDinner,
		&rec.Bedtime, &rec.EyeDropTaken, &rec.EyeDropCount, &rec.Comment,
	)
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}
	return rec, nil
}

func scanNightPatrol(s scanner) (*domain.NightPatrolRecord, error) {
	rec := &domain.NightPatrolRecord{}
	dst := append(metaDst(&rec.RecordMeta), &rec.Status, &rec.Comment)
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}
	return rec, nil
}

func scanComment(s scanner) (*domain.CommentRecord, error) {
	rec := &domain.CommentRecord{}
	dst := append(metaDst(&rec.RecordMeta), &rec.Tag, &rec.Content)
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}
	return rec, nil
}

func listRecords[T domain.Record](ctx context.Context, q queryer, query string, args []any, scan func(scanner) (T, error)) ([]domain.Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.Record, 0)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// ListCategoryRecords 查询 [dr.From, dr.To) 区间内某个类别的记录，residentID 为 nil 时查询所有入住者
// 结果按记录时间升序排列，时间相同则按 id 升序
func (r *Repository) ListCategoryRecords(category domain.Category, dr domain.DateRange, residentID *int64) ([]domain.Record, error) {
	table, ok := tableNames[category]
	if !ok {
		return nil, domain.ErrUnknownCategory
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	where := `
		WHERE recorded_at >= $1 AND recorded_at < $2
		AND ($3::BIGINT IS NULL OR resident_id = $3)
		ORDER BY recorded_at, id
	`
	args := []any{dr.From, dr.To, residentID}

	switch category {
	case domain.CategoryVital:
		return listRecords(ctx, r.dbpool, fmt.Sprintf("SELECT %s FROM %s %s", vitalColumns, table, where), args, scanVital)
	case domain.CategoryMeal:
		return listRecords(ctx, r.dbpool, fmt.Sprintf("SELECT %s FROM %s %s", mealColumns, table, where), args, scanMeal)
	case domain.CategoryMedication:
		return listRecords(ctx, r.dbpool, fmt.Sprintf("SELECT %s FROM %s %s", medicationColumns, table, where), args, scanMedication)
	case domain.CategoryNightPatrol:
		return listRecords(ctx, r.dbpool, fmt.Sprintf("SELECT %s FROM %s %s", nightPatrolColumns, table, where), args, scanNightPatrol)
	default:
		return listRecords(ctx, r.dbpool, fmt.Sprintf("SELECT %s FROM %s %s", commentColumns, table, where), args, scanComment)
	}
}

func (r *Repository) GetCategoryRecord(category domain.Category, id int64) (domain.Record, error) {
	table, ok := tableNames[category]
	if !ok {
		return nil, domain.ErrUnknownCategory
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	var columns string
	switch category {
	case domain.CategoryVital:
		columns = vitalColumns
	case domain.CategoryMeal:
		columns = mealColumns
	case domain.CategoryMedication:
		columns = medicationColumns
	case domain.CategoryNightPatrol:
		columns = nightPatrolColumns
	default:
		columns = commentColumns
	}

	row := r.dbpool.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", columns, table), id)

	switch category {
	case domain.CategoryVital:
		return asRecord(scanVital(row))
	case domain.CategoryMeal:
		return asRecord(scanMeal(row))
	case domain.CategoryMedication:
		return asRecord(scanMedication(row))
	case domain.CategoryNightPatrol:
		return asRecord(scanNightPatrol(row))
	default:
		return asRecord(scanComment(row))
	}
}

// asRecord 避免把值为 nil 的具体指针包装成非 nil 的接口
func asRecord[T domain.Record](rec T, err error) (domain.Record, error) {
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repository) CreateCategoryRecord(rec domain.Record) error {
	return r.CreateCategoryRecords([]domain.Record{rec})
}

// CreateCategoryRecords 在同一个事务中插入多条记录，要么全部成功，要么全部失败
// 批量录入时同一个入住者的多个餐次会通过这里一次写入
func (r *Repository) CreateCategoryRecords(records []domain.Record) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, rec := range records {
		if err := insertRecord(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertRecord(ctx context.Context, q queryer, rec domain.Record) error {
	m := rec.Meta()

	var query string
	var args []any

	switch rec := rec.(type) {
	case *domain.VitalRecord:
		query = `
			INSERT INTO vital_records (resident_id, staff_id, recorded_at, systolic, diastolic, pulse, temperature, spo2, comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`
		args = []any{m.ResidentID, m.StaffID, m.RecordedAt, rec.Systolic, rec.Diastolic, rec.Pulse, rec.Temperature, rec.SpO2, rec.Comment}
	case *domain.MealRecord:
		query = `
			INSERT INTO meal_records (resident_id, staff_id, recorded_at, meal_slot, main_dish, side_dish, comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`
		args = []any{m.ResidentID, m.StaffID, m.RecordedAt, string(rec.Slot), rec.MainDish, rec.SideDish, rec.Comment}
	case *domain.MedicationRecord:
		query = `
			INSERT INTO medication_records (
				resident_id, staff_id, recorded_at,
				before_breakfast, after_breakfast, before_lunch, after_lunch, before_dinner, after_dinner,
				bedtime, eye_drop_taken, eye_drop_count, comment
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at
		`
		args = []any{
			m.ResidentID, m.StaffID, m.RecordedAt,
			rec.BeforeBreakfast, rec.AfterBreakfast, rec.BeforeLunch, rec.AfterLunch, rec.BeforeDinner, rec.AfterDinner,
			rec.Bedtime, rec.EyeDropTaken, rec.EyeDropCount, rec.Comment,
		}
	case *domain.NightPatrolRecord:
		query = `
			INSERT INTO night_patrol_records (resident_id, staff_id, recorded_at, status, comment)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		args = []any{m.ResidentID, m.StaffID, m.RecordedAt, string(rec.Status), rec.Comment}
	case *domain.CommentRecord:
		query = `
			INSERT INTO comment_records (resident_id, staff_id, recorded_at, tag, content)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		args = []any{m.ResidentID, m.StaffID, m.RecordedAt, string(rec.Tag), rec.Content}
	default:
		return domain.ErrUnknownCategory
	}

	return q.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.CreatedAt)
}

// UpdateCategoryRecord 更新记录内容，作者校验由调用方在此之前完成
func (r *Repository) UpdateCategoryRecord(rec domain.Record) error {
	m := rec.Meta()

	var query string
	var args []any

	switch rec := rec.(type) {
	case *domain.VitalRecord:
		query = `
			UPDATE vital_records
			SET recorded_at = $1, systolic = $2, diastolic = $3, pulse = $4, temperature = $5, spo2 = $6, comment = $7
			WHERE id = $8
		`
		args = []any{m.RecordedAt, rec.Systolic, rec.Diastolic, rec.Pulse, rec.Temperature, rec.SpO2, rec.Comment, m.ID}
	case *domain.MealRecord:
		query = `
			UPDATE meal_records
			SET recorded_at = $1, meal_slot = $2, main_dish = $3, side_dish = $4, comment = $5
			WHERE id = $6
		`
		args = []any{m.RecordedAt, string(rec.Slot), rec.MainDish, rec.SideDish, rec.Comment, m.ID}
	case *domain.MedicationRecord:
		query = `
			UPDATE medication_records
			SET
				recorded_at = $1,
				before_breakfast = $2, after_breakfast = $3,
				before_lunch = $4, after_lunch = $5,
				before_dinner = $6, after_dinner = $7,
				bedtime = $8, eye_drop_taken = $9, eye_drop_count = $10,
				comment = $11
			WHERE id = $12
		`
		args = []any{
			m.RecordedAt,
			rec.BeforeBreakfast, rec.AfterBreakfast, rec.BeforeLunch, rec.AfterLunch, rec.BeforeDinner, rec.AfterDinner,
			rec.Bedtime, rec.EyeDropTaken, rec.EyeDropCount, rec.Comment, m.ID,
		}
	case *domain.NightPatrolRecord:
		query = `
			UPDATE night_patrol_records SET recorded_at = $1, status = $2, comment = $3 WHERE id = $4
		`
		args = []any{m.RecordedAt, string(rec.Status), rec.Comment, m.ID}
	case *domain.CommentRecord:
		query = `
			UPDATE comment_records SET recorded_at = $1, tag = $2, content = $3 WHERE id = $4
		`
		args = []any{m.RecordedAt, string(rec.Tag), rec.Content, m.ID}
	default:
		return domain.ErrUnknownCategory
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) DeleteCategoryRecord(category domain.Category, id int64) error {
	table, ok := tableNames[category]
	if !ok {
		return domain.ErrUnknownCategory
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
