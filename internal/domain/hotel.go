package domain

type Hotel struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	StarRating  float64 `json:"star_rating"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Rooms       []Room  `json:"rooms,omitempty"`
}

type Room struct {
	ID          int64    `json:"id"`
	HotelID     int64    `json:"hotel_id"`
	RoomNumber  string   `json:"room_number"`
	RoomType    string   `json:"room_type"`
	Price       float64  `json:"price"`
	MaxAdults   int      `json:"max_adults"`
	MaxChildren int      `json:"max_children"`
	Description string   `json:"description,omitempty"`
	Available   bool     `json:"available"`
	Images      []string `json:"images,omitempty"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
}

// RoomRating es el agregado de reviews para una habitacion.
type RoomRating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
