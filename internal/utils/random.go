package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"淑", "秀", "英", "华", "兰", "珍", "桂", "凤", "玉", "芳",
	"德", "福", "寿", "明", "国", "建", "文", "春", "荣", "贵",
	"伟", "强", "敏", "静", "丽", "军", "霞", "平", "辉", "梅",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// GenerateNameReading 返回姓名的拼音读音，用于名单中的注音
// 不是汉字的部分（例如已经是假名的姓名）会被忽略
func GenerateNameReading(name string) string {
	return strings.Join(pinyin.LazyConvert(name, nil), " ")
}

var digits = "0123456789"

func GenerateRandomPIN(length int) string {
	pin := make([]byte, length)
	for i := range pin {
		pin[i] = digits[rand.Intn(len(digits))]
	}
	return string(pin)
}

func GenerateRandomStaff(pin string) (*domain.Staff, error) {
	name := GenerateRandomChineseName()
	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.Staff{
		Name:        name,
		NameReading: GenerateNameReading(name),
		PINHash:     string(pinHash),
	}, nil
}

var genders = []string{"男", "女"}

// GenerateRandomResident 房间号为楼层号加两位序号，例如 2 楼第 5 间为 205
func GenerateRandomResident(floor int, index int) *domain.Resident {
	name := GenerateRandomChineseName()
	return &domain.Resident{
		Name:        name,
		NameReading: GenerateNameReading(name),
		RoomNumber:  fmt.Sprintf("%d%02d", floor, index),
		Floor:       fmt.Sprintf("%dF", floor),
		Gender:      genders[rand.Intn(len(genders))],
	}
}

func randomInt32(min, max int) *int32 {
	v := int32(min + rand.Intn(max-min+1))
	return &v
}

func randomBool(p float64) *bool {
	if rand.Float64() >= p {
		return nil
	}
	v := true
	return &v
}

// GenerateRandomRecords 为一个入住者生成某一天的一组记录，day 为当天零点
func GenerateRandomRecords(residentID, staffID int64, day time.Time) []domain.Record {
	at := func(hour, minute int) domain.RecordMeta {
		return domain.RecordMeta{
			ResidentID: residentID,
			StaffID:    staffID,
			RecordedAt: day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
		}
	}

	temperature := 36.0 + float64(rand.Intn(15))/10

	records := []domain.Record{
		&domain.VitalRecord{
			RecordMeta:  at(9, rand.Intn(60)),
			Systolic:    randomInt32(105, 150),
			Diastolic:   randomInt32(60, 95),
			Pulse:       randomInt32(55, 95),
			Temperature: &temperature,
			SpO2:        randomInt32(93, 99),
		},
		&domain.MedicationRecord{
			RecordMeta:     at(8, 30),
			AfterBreakfast: randomBool(0.9),
			AfterLunch:     randomBool(0.5),
			AfterDinner:    randomBool(0.9),
			Bedtime:        randomBool(0.3),
		},
		&domain.NightPatrolRecord{
			RecordMeta: at(2, 0),
			Status:     domain.PatrolStatusAsleep,
		},
	}

	for i, slot := range domain.MealSlots {
		// 午餐有时不在设施内用餐
		if slot == domain.MealSlotMidday && rand.Intn(4) == 0 {
			continue
		}
		records = append(records, &domain.MealRecord{
			RecordMeta: at(8+i*5, 0),
			Slot:       slot,
			MainDish:   randomInt32(3, 10),
			SideDish:   randomInt32(3, 10),
		})
	}

	if rand.Intn(3) == 0 {
		records = append(records, &domain.CommentRecord{
			RecordMeta: at(15, 0),
			Tag:        domain.CommentTagDailyLife,
			Content:    "午后参加了娱乐活动",
		})
	}

	return records
}
