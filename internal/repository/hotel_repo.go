package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/domain"
)

// HotelRepository define el contrato de lectura del catalogo de hoteles.
type HotelRepository interface {
	List(ctx context.Context) ([]domain.Hotel, error)
	ListByCity(ctx context.Context, city string) ([]domain.Hotel, error)
	Search(ctx context.Context, keyword string) ([]domain.Hotel, error)
	GetByID(ctx context.Context, id int64) (domain.Hotel, error)
}

// PgHotelRepository implementa HotelRepository usando pgxpool.
type PgHotelRepository struct {
	pool *pgxpool.Pool
}

func NewPgHotelRepository(pool *pgxpool.Pool) *PgHotelRepository {
	return &PgHotelRepository{pool: pool}
}

const hotelColumns = `id, name, address, city, star_rating, description, image_url`

func (r *PgHotelRepository) List(ctx context.Context) ([]domain.Hotel, error) {
	const query = `SELECT ` + hotelColumns + ` FROM hotels ORDER BY name`
	return r.queryHotels(ctx, query)
}

func (r *PgHotelRepository) ListByCity(ctx context.Context, city string) ([]domain.Hotel, error) {
	const query = `SELECT ` + hotelColumns + ` FROM hotels WHERE city ILIKE $1 ORDER BY name`
	return r.queryHotels(ctx, query, city)
}

func (r *PgHotelRepository) Search(ctx context.Context, keyword string) ([]domain.Hotel, error) {
	const query = `
		SELECT ` + hotelColumns + `
		FROM hotels
		WHERE name ILIKE $1 OR address ILIKE $1 OR description ILIKE $1
		ORDER BY name
	`
	return r.queryHotels(ctx, query, "%"+keyword+"%")
}

func (r *PgHotelRepository) GetByID(ctx context.Context, id int64) (domain.Hotel, error) {
	const query = `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`
	var h domain.Hotel
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.City,
		&h.StarRating,
		&h.Description,
		&h.ImageURL,
	)
	if err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func (r *PgHotelRepository) queryHotels(ctx context.Context, query string, args ...any) ([]domain.Hotel, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hotels []domain.Hotel
	for rows.Next() {
		var h domain.Hotel
		if err := rows.Scan(
			&h.ID,
			&h.Name,
			&h.Address,
			&h.City,
			&h.StarRating,
			&h.Description,
			&h.ImageURL,
		); err != nil {
			return nil, err
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}
