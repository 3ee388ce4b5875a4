package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kaigo-records/care-records/backend/internal/domain"
	"github.com/kaigo-records/care-records/backend/internal/utils"
)

// Store 是导入数据所需的写操作，由 repository.Repository 实现
type Store interface {
	CreateResident(resident *domain.Resident) error
	ListActiveResidents() ([]*domain.Resident, error)
	ListActiveStaff() ([]*domain.Staff, error)
	CreateCategoryRecords(records []domain.Record) error
}

var residentHeader = []string{"name", "name_reading", "room_number", "floor", "gender"}

// ReadResidents 读取入住者名单，表头必须是 name,name_reading,room_number,floor,gender
// name_reading 为空时用拼音补全
func ReadResidents(r io.Reader) ([]*domain.Resident, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	if !slices.Equal(headers, residentHeader) {
		return nil, fmt.Errorf("表头应为 %s", strings.Join(residentHeader, ","))
	}

	residents := make([]*domain.Resident, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		resident := &domain.Resident{
			Name:        row[0],
			NameReading: row[1],
			RoomNumber:  row[2],
			Floor:       row[3],
			Gender:      row[4],
		}
		if resident.Name == "" || resident.RoomNumber == "" {
			return nil, fmt.Errorf("第 %d 行: 姓名和房间号不能为空", line)
		}
		if resident.NameReading == "" {
			resident.NameReading = utils.GenerateNameReading(resident.Name)
		}

		residents = append(residents, resident)
	}

	return residents, nil
}

func SeedResidentsFromFile(s Store, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	residents, err := ReadResidents(file)
	if err != nil {
		slog.Error("读取入住者名单失败", "error", err)
		return
	}

	cnt := 0
	for _, resident := range residents {
		if err := s.CreateResident(resident); err != nil {
			slog.Error("无法插入入住者", "name", resident.Name, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入入住者成功", "count", cnt)
}

// SeedRandomRecords 为所有在住入住者生成最近 days 天的记录，每个入住者每天的记录在一个事务中写入
func SeedRandomRecords(s Store, days int, loc *time.Location) {
	residents, err := s.ListActiveResidents()
	if err != nil {
		slog.Error("无法获取入住者列表", "error", err)
		return
	}

	staffList, err := s.ListActiveStaff()
	if err != nil {
		slog.Error("无法获取职员列表", "error", err)
		return
	}
	if len(staffList) == 0 {
		slog.Error("没有可用的职员，请先插入职员")
		return
	}

	today := domain.DayRange(time.Now(), loc).From

	cnt := 0
	for d := days - 1; d >= 0; d-- {
		day := today.AddDate(0, 0, -d)
		for _, resident := range residents {
			staff := staffList[rand.Intn(len(staffList))]
			records := utils.GenerateRandomRecords(resident.ID, staff.ID, day)
			if err := s.CreateCategoryRecords(records); err != nil {
				slog.Error("无法插入记录", "residentID", resident.ID, "date", day.Format(domain.DateLayout), "error", err)
				continue
			}
			cnt += len(records)
		}
	}

	slog.Info("插入记录成功", "count", cnt)
}
