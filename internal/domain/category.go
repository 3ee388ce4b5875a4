package domain

import "errors"

var ErrUnknownCategory = errors.New("未知的记录类别")

type Category string

const (
	CategoryVital       Category = "vital"
	CategoryMeal        Category = "meal"
	CategoryMedication  Category = "medication"
	CategoryNightPatrol Category = "night-patrol"
	CategoryComment     Category = "comment"
)

// Categories 按照界面上的显示顺序排列
var Categories = []Category{
	CategoryVital,
	CategoryMeal,
	CategoryMedication,
	CategoryNightPatrol,
	CategoryComment,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

func (c Category) Label() string {
	switch c {
	case CategoryVital:
		return "生命体征"
	case CategoryMeal:
		return "饮食"
	case CategoryMedication:
		return "服药・点眼"
	case CategoryNightPatrol:
		return "夜间巡视"
	case CategoryComment:
		return "备注"
	default:
		return string(c)
	}
}
