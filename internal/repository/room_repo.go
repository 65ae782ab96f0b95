package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/domain"
)

// RoomRepository define el contrato de lectura de habitaciones.
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Room, error)
	ListByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error)
}

// PgRoomRepository implementa RoomRepository usando pgxpool.
type PgRoomRepository struct {
	pool *pgxpool.Pool
}

func NewPgRoomRepository(pool *pgxpool.Pool) *PgRoomRepository {
	return &PgRoomRepository{pool: pool}
}

const roomColumns = `
	id, hotel_id, room_number, room_type, price, max_adults, max_children,
	description, available
`

func (r *PgRoomRepository) GetByID(ctx context.Context, id int64) (domain.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	var room domain.Room
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.HotelID,
		&room.RoomNumber,
		&room.RoomType,
		&room.Price,
		&room.MaxAdults,
		&room.MaxChildren,
		&room.Description,
		&room.Available,
	)
	if err != nil {
		return domain.Room{}, err
	}
	room.Images, err = r.listImages(ctx, room.ID)
	return room, err
}

func (r *PgRoomRepository) ListByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = $1 ORDER BY room_number`
	rows, err := r.pool.Query(ctx, query, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(
			&room.ID,
			&room.HotelID,
			&room.RoomNumber,
			&room.RoomType,
			&room.Price,
			&room.MaxAdults,
			&room.MaxChildren,
			&room.Description,
			&room.Available,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		images, err := r.listImages(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
		rooms[i].Images = images
	}
	return rooms, nil
}

func (r *PgRoomRepository) listImages(ctx context.Context, roomID int64) ([]string, error) {
	const query = `
		SELECT image_url
		FROM room_images
		WHERE room_id = $1
		ORDER BY is_primary DESC, id
	`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
