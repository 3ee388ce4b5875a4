package domain

import "time"

type Resident struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	NameReading string    `json:"nameReading"`
	RoomNumber  string    `json:"roomNumber"`
	Floor       string    `json:"floor"`
	Gender      string    `json:"gender"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}
