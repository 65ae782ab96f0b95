package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	RoomID     int64         `json:"room_id"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	Adults     int           `json:"adults"`
	Children   int           `json:"children"`
	Infants    int           `json:"infants"`
	TotalPrice float64       `json:"total_price"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// BookingView es la vista aplanada de un booking con los datos de la
// habitacion y el hotel ya resueltos por join, sin recorrer asociaciones.
type BookingView struct {
	Booking
	RoomNumber   string  `json:"room_number"`
	RoomType     string  `json:"room_type"`
	RoomPrice    float64 `json:"room_price"`
	HotelID      int64   `json:"hotel_id"`
	HotelName    string  `json:"hotel_name"`
	HotelAddress string  `json:"hotel_address"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
}
