package models

import "time"

type Hotel struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HotelRoom struct {
	ID          int64     `json:"id"`
	HotelID     int64     `json:"hotel_id"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	IsEnabled   bool      `json:"is_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type HotelRoomDetail struct {
	HotelRoom
	Hotel Hotel `json:"hotel"`
}
