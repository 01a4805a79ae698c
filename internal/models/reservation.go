package models

import "time"

// Reservation dates are calendar dates stored at UTC midnight. Both ends are inclusive.
type Reservation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	HotelID   int64     `json:"hotel_id"`
	RoomID    int64     `json:"room_id"`
	DateStart time.Time `json:"start_date"`
	DateEnd   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// ReservationDetail carries the hotel and room as they are at read time, not as they
// were when the reservation was made.
type ReservationDetail struct {
	Reservation
	Hotel Hotel     `json:"hotel"`
	Room  HotelRoom `json:"hotel_room"`
}
