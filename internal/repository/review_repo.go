package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/domain"
)

// ReviewRepository define el contrato de persistencia para reviews y sus
// agregados por habitacion.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	ExistsForBooking(ctx context.Context, bookingID string) (bool, error)
	RatingByRoom(ctx context.Context, roomID int64) (domain.RoomRating, error)
}

// PgReviewRepository implementa ReviewRepository usando pgxpool.
type PgReviewRepository struct {
	pool *pgxpool.Pool
}

func NewPgReviewRepository(pool *pgxpool.Pool) *PgReviewRepository {
	return &PgReviewRepository{pool: pool}
}

func (r *PgReviewRepository) Create(ctx context.Context, review domain.Review) error {
	const query = `
		INSERT INTO reviews (id, user_id, booking_id, room_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.BookingID,
		review.RoomID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	return err
}

func (r *PgReviewRepository) ExistsForBooking(ctx context.Context, bookingID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reviews WHERE booking_id = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, bookingID).Scan(&exists)
	return exists, err
}

func (r *PgReviewRepository) RatingByRoom(ctx context.Context, roomID int64) (domain.RoomRating, error) {
	const query = `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE room_id = $1
	`
	var rating domain.RoomRating
	err := r.pool.QueryRow(ctx, query, roomID).Scan(&rating.Average, &rating.Count)
	return rating, err
}
