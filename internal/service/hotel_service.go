package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staybook/internal/domain"
	"staybook/internal/repository"
)

var ErrHotelNotFound = errors.New("hotel not found")

// HotelService expone el catalogo de hoteles y habitaciones con sus
// agregados de reviews.
type HotelService struct {
	logger  *zap.Logger
	hotels  repository.HotelRepository
	rooms   repository.RoomRepository
	reviews repository.ReviewRepository
}

func NewHotelService(
	logger *zap.Logger,
	hotels repository.HotelRepository,
	rooms repository.RoomRepository,
	reviews repository.ReviewRepository,
) *HotelService {
	return &HotelService{
		logger:  logger,
		hotels:  hotels,
		rooms:   rooms,
		reviews: reviews,
	}
}

// List devuelve todos los hoteles, opcionalmente filtrados por ciudad.
func (s *HotelService) List(ctx context.Context, city string) ([]domain.Hotel, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return s.hotels.List(ctx)
	}
	return s.hotels.ListByCity(ctx, city)
}

// Search busca por keyword en nombre, direccion y descripcion.
func (s *HotelService) Search(ctx context.Context, keyword string) ([]domain.Hotel, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.hotels.List(ctx)
	}
	return s.hotels.Search(ctx, keyword)
}

// Get devuelve el detalle de un hotel con sus habitaciones, imagenes y
// rating por habitacion.
func (s *HotelService) Get(ctx context.Context, id int64) (domain.Hotel, error) {
	hotel, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Hotel{}, ErrHotelNotFound
		}
		return domain.Hotel{}, err
	}

	rooms, err := s.rooms.ListByHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	for i := range rooms {
		if s.reviews == nil {
			break
		}
		rating, err := s.reviews.RatingByRoom(ctx, rooms[i].ID)
		if err != nil {
			return domain.Hotel{}, err
		}
		rooms[i].Rating = rating.Average
		rooms[i].ReviewCount = rating.Count
	}
	hotel.Rooms = rooms
	return hotel, nil
}
