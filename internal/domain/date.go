package domain

import "time"

const DateLayout = "2006-01-02"

// DateRange 是左闭右开区间 [From, To)
type DateRange struct {
	From time.Time
	To   time.Time
}

// DayRange 返回 date 所在日期在 loc 时区下从零点到次日零点的区间
func DayRange(date time.Time, loc *time.Location) DateRange {
	d := date.In(loc)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return DateRange{
		From: from,
		To:   from.AddDate(0, 0, 1),
	}
}

// ParseDay 按设施时区解析 YYYY-MM-DD，空字符串表示今天
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}
