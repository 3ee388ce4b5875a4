package domain

import "time"

type Staff struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	NameReading string     `json:"nameReading"`
	PINHash     string     `json:"-"` // 管理员可以不设置 PIN
	IsAdmin     bool       `json:"isAdmin"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}
