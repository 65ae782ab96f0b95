package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/domain"
)

// BookingRepository define el contrato de persistencia para bookings.
// Las lecturas devuelven vistas aplanadas con el join a room y hotel ya
// resuelto.
type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) error
	GetByID(ctx context.Context, id string) (domain.BookingView, error)
	ListByUser(ctx context.Context, userID string) ([]domain.BookingView, error)
	ListUpcoming(ctx context.Context, userID string, from time.Time) ([]domain.BookingView, error)
	ListPast(ctx context.Context, userID string, before time.Time) ([]domain.BookingView, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error
}

// PgBookingRepository implementa BookingRepository usando pgxpool.
type PgBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPgBookingRepository(pool *pgxpool.Pool) *PgBookingRepository {
	return &PgBookingRepository{pool: pool}
}

const bookingViewSelect = `
	SELECT b.id, b.user_id, b.room_id, b.check_in, b.check_out,
		b.adults, b.children, b.infants, b.total_price, b.status, b.created_at,
		r.room_number, r.room_type, r.price,
		h.id, h.name, h.address
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN hotels h ON h.id = r.hotel_id
`

func (r *PgBookingRepository) Create(ctx context.Context, booking domain.Booking) error {
	const query = `
		INSERT INTO bookings (id, user_id, room_id, check_in, check_out,
			adults, children, infants, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.RoomID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Adults,
		booking.Children,
		booking.Infants,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
	)
	return err
}

func (r *PgBookingRepository) GetByID(ctx context.Context, id string) (domain.BookingView, error) {
	const query = bookingViewSelect + ` WHERE b.id = $1`
	var v domain.BookingView
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.UserID,
		&v.RoomID,
		&v.CheckIn,
		&v.CheckOut,
		&v.Adults,
		&v.Children,
		&v.Infants,
		&v.TotalPrice,
		&v.Status,
		&v.CreatedAt,
		&v.RoomNumber,
		&v.RoomType,
		&v.RoomPrice,
		&v.HotelID,
		&v.HotelName,
		&v.HotelAddress,
	)
	if err != nil {
		return domain.BookingView{}, err
	}
	return v, nil
}

func (r *PgBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	const query = bookingViewSelect + ` WHERE b.user_id = $1 ORDER BY b.created_at DESC`
	return r.queryViews(ctx, query, userID)
}

func (r *PgBookingRepository) ListUpcoming(ctx context.Context, userID string, from time.Time) ([]domain.BookingView, error) {
	const query = bookingViewSelect + `
		WHERE b.user_id = $1 AND b.check_in >= $2 AND b.status <> 'CANCELLED'
		ORDER BY b.check_in
	`
	return r.queryViews(ctx, query, userID, from)
}

func (r *PgBookingRepository) ListPast(ctx context.Context, userID string, before time.Time) ([]domain.BookingView, error) {
	const query = bookingViewSelect + `
		WHERE b.user_id = $1 AND b.check_out < $2
		ORDER BY b.check_out DESC
	`
	return r.queryViews(ctx, query, userID, before)
}

func (r *PgBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	const query = `UPDATE bookings SET status = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status)
	return err
}

func (r *PgBookingRepository) queryViews(ctx context.Context, query string, args ...any) ([]domain.BookingView, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.BookingView
	for rows.Next() {
		var v domain.BookingView
		if err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.RoomID,
			&v.CheckIn,
			&v.CheckOut,
			&v.Adults,
			&v.Children,
			&v.Infants,
			&v.TotalPrice,
			&v.Status,
			&v.CreatedAt,
			&v.RoomNumber,
			&v.RoomType,
			&v.RoomPrice,
			&v.HotelID,
			&v.HotelName,
			&v.HotelAddress,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
