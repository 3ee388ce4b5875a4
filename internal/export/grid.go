package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kaigo-records/care-records/backend/internal/carestatus"
	"github.com/kaigo-records/care-records/backend/internal/domain"
)

const GridSheetName = "全天一览"

var GridHeader = []string{
	"楼层",
	"房间",
	"姓名",
	"生命体征",
	"早餐",
	"午餐",
	"晚餐",
	"服药・点眼",
	"夜间巡视",
}

var gridColumnWidths = []float64{8, 10, 14, 40, 18, 18, 18, 30, 30}

// GridFileName 返回导出文件名，例如 care-grid-2026-04-01.xlsx
func GridFileName(grid *carestatus.Grid) string {
	return fmt.Sprintf("care-grid-%s.xlsx", grid.Date)
}

// GenerateGrid 把全天一览表写成一个 xlsx 文件，时间按 loc 显示
func GenerateGrid(grid *carestatus.Grid, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(GridSheetName)
	if err != nil {
		return nil, fmt.Errorf("无法创建工作表: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("无法删除默认工作表: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("无法创建表头样式: %w", err)
	}

	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Vertical: "top",
			WrapText: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("无法创建单元格样式: %w", err)
	}

	for col, header := range GridHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(GridSheetName, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(GridSheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(GridSheetName, name, name, gridColumnWidths[col]); err != nil {
			return nil, err
		}
	}

	for i, row := range grid.Rows {
		values := []string{
			row.Floor,
			row.RoomNumber,
			row.Name,
			vitalsText(row.Vitals, loc),
			mealText(row.Meals[domain.MealSlotMorning]),
			mealText(row.Meals[domain.MealSlotMidday]),
			mealText(row.Meals[domain.MealSlotEvening]),
			medicationText(row.Medication),
			patrolsText(row.NightPatrols, loc),
		}

		// 第 1 行是表头
		r := i + 2
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(GridSheetName, cell, v); err != nil {
				return nil, fmt.Errorf("无法写入单元格 %s: %w", cell, err)
			}
		}

		first, _ := excelize.CoordinatesToCellName(1, r)
		last, _ := excelize.CoordinatesToCellName(len(values), r)
		if err := f.SetCellStyle(GridSheetName, first, last, bodyStyle); err != nil {
			return nil, err
		}
	}

	// 冻结表头和姓名列
	if err := f.SetPanes(GridSheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      3,
		YSplit:      1,
		TopLeftCell: "D2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return nil, fmt.Errorf("无法冻结表头: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("无法生成文件: %w", err)
	}

	return buf.Bytes(), nil
}

func vitalsText(vitals []*domain.VitalRecord, loc *time.Location) string {
	lines := make([]string, 0, len(vitals))
	for _, v := range vitals {
		lines = append(lines, fmt.Sprintf("%s %s", v.RecordedAt.In(loc).Format("15:04"), carestatus.Summarize(v)))
	}
	return strings.Join(lines, "\n")
}

func mealText(s carestatus.MealSlotStatus) string {
	if !s.Present {
		return ""
	}
	return fmt.Sprintf("主食%s 副食%s", scoreText(s.MainDish), scoreText(s.SideDish))
}

func medicationText(s *carestatus.MedicationStatus) string {
	if s == nil {
		return ""
	}
	labels := s.Labels()
	if len(labels) == 0 {
		return "（无）"
	}
	return strings.Join(labels, "・")
}

func patrolsText(patrols []*domain.NightPatrolRecord, loc *time.Location) string {
	lines := make([]string, 0, len(patrols))
	for _, p := range patrols {
		lines = append(lines, fmt.Sprintf("%s %s", p.PatrolTime().In(loc).Format("15:04"), carestatus.Summarize(p)))
	}
	return strings.Join(lines, "\n")
}

func scoreText(score *int32) string {
	if score == nil {
		return "—"
	}
	return fmt.Sprintf("%d/10", *score)
}
