package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staybook/internal/domain"
	"staybook/internal/repository"
)

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomUnavailable     = errors.New("room unavailable")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrInvalidStay         = errors.New("invalid stay")
	ErrNotBookingOwner     = errors.New("not booking owner")
	ErrBookingCancelled    = errors.New("booking already cancelled")
	ErrBookingNotCompleted = errors.New("booking not completed")
	ErrAlreadyReviewed     = errors.New("booking already reviewed")
	ErrInvalidRating       = errors.New("invalid rating")
)

// BookingService coordina reglas de negocio para bookings y reviews.
type BookingService struct {
	logger   *zap.Logger
	bookings repository.BookingRepository
	rooms    repository.RoomRepository
	reviews  repository.ReviewRepository
	notifier *NotificationService

	now func() time.Time
}

func NewBookingService(
	logger *zap.Logger,
	bookings repository.BookingRepository,
	rooms repository.RoomRepository,
	reviews repository.ReviewRepository,
	notifier *NotificationService,
) *BookingService {
	return &BookingService{
		logger:   logger,
		bookings: bookings,
		rooms:    rooms,
		reviews:  reviews,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateBookingInput struct {
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int
	Infants  int
}

// CreateBooking valida la estadia, calcula el precio total como
// precio de habitacion x huespedes x noches y deja el booking en
// estado PENDING. Los infantes no cuentan para el precio.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, input CreateBookingInput) (domain.BookingView, error) {
	room, err := s.rooms.GetByID(ctx, input.RoomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BookingView{}, ErrRoomNotFound
		}
		return domain.BookingView{}, err
	}
	if !room.Available {
		return domain.BookingView{}, ErrRoomUnavailable
	}

	nights := int(input.CheckOut.Sub(input.CheckIn).Hours() / 24)
	if nights <= 0 {
		return domain.BookingView{}, ErrInvalidStay
	}
	guests := input.Adults + input.Children
	if input.Adults < 1 || guests < 1 {
		return domain.BookingView{}, ErrInvalidStay
	}

	booking := domain.Booking{
		ID:         uuid.NewString(),
		UserID:     userID,
		RoomID:     room.ID,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		Adults:     input.Adults,
		Children:   input.Children,
		Infants:    input.Infants,
		TotalPrice: room.Price * float64(guests) * float64(nights),
		Status:     domain.BookingStatusPending,
		CreatedAt:  s.now(),
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return domain.BookingView{}, err
	}

	s.notify(ctx, userID, booking.ID, domain.NotificationBookingSuccess,
		"Booking confirmed",
		fmt.Sprintf("Your booking has been created. Check-in: %s, check-out: %s.",
			booking.CheckIn.Format("2006-01-02"),
			booking.CheckOut.Format("2006-01-02"),
		),
	)

	return s.viewByID(ctx, booking.ID)
}

// CancelBooking pasa el booking a CANCELLED. Solo el dueño puede
// cancelar.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) (domain.BookingView, error) {
	view, err := s.viewByID(ctx, bookingID)
	if err != nil {
		return domain.BookingView{}, err
	}
	if view.UserID != userID {
		return domain.BookingView{}, ErrNotBookingOwner
	}
	if view.Status == domain.BookingStatusCancelled {
		return domain.BookingView{}, ErrBookingCancelled
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelled); err != nil {
		return domain.BookingView{}, err
	}

	s.notify(ctx, userID, bookingID, domain.NotificationBookingCancelled,
		"Booking cancelled",
		"Your booking has been cancelled. Any refund follows the cancellation policy.",
	)

	view.Status = domain.BookingStatusCancelled
	return view, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (domain.BookingView, error) {
	return s.viewByID(ctx, bookingID)
}

func (s *BookingService) ListBookings(ctx context.Context, userID string) ([]domain.BookingView, error) {
	views, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, views)
}

func (s *BookingService) ListUpcoming(ctx context.Context, userID string) ([]domain.BookingView, error) {
	views, err := s.bookings.ListUpcoming(ctx, userID, today(s.now()))
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, views)
}

func (s *BookingService) ListPast(ctx context.Context, userID string) ([]domain.BookingView, error) {
	views, err := s.bookings.ListPast(ctx, userID, today(s.now()))
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, views)
}

// CreateReview acepta una review del dueño sobre un booking ya
// terminado y sin review previa.
func (s *BookingService) CreateReview(ctx context.Context, userID, bookingID string, rating int, comment string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, ErrInvalidRating
	}

	view, err := s.viewByID(ctx, bookingID)
	if err != nil {
		return domain.Review{}, err
	}
	if view.UserID != userID {
		return domain.Review{}, ErrNotBookingOwner
	}
	if view.Status == domain.BookingStatusCancelled {
		return domain.Review{}, ErrBookingNotCompleted
	}
	if view.CheckOut.After(today(s.now())) {
		return domain.Review{}, ErrBookingNotCompleted
	}

	exists, err := s.reviews.ExistsForBooking(ctx, bookingID)
	if err != nil {
		return domain.Review{}, err
	}
	if exists {
		return domain.Review{}, ErrAlreadyReviewed
	}

	review := domain.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookingID: bookingID,
		RoomID:    view.RoomID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return domain.Review{}, err
	}
	return review, nil
}

func (s *BookingService) viewByID(ctx context.Context, bookingID string) (domain.BookingView, error) {
	view, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BookingView{}, ErrBookingNotFound
		}
		return domain.BookingView{}, err
	}
	if err := s.attachRating(ctx, &view); err != nil {
		return domain.BookingView{}, err
	}
	return view, nil
}

func (s *BookingService) decorate(ctx context.Context, views []domain.BookingView) ([]domain.BookingView, error) {
	for i := range views {
		if err := s.attachRating(ctx, &views[i]); err != nil {
			return nil, err
		}
	}
	return views, nil
}

func (s *BookingService) attachRating(ctx context.Context, view *domain.BookingView) error {
	if s.reviews == nil {
		return nil
	}
	rating, err := s.reviews.RatingByRoom(ctx, view.RoomID)
	if err != nil {
		return err
	}
	view.Rating = rating.Average
	view.ReviewCount = rating.Count
	return nil
}

// notify registra una notificacion in-app. Una falla aca no revierte la
// operacion que la origino.
func (s *BookingService) notify(ctx context.Context, userID, bookingID string, typ domain.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, bookingID, typ, title, message); err != nil && s.logger != nil {
		s.logger.Warn("create notification failed",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
	}
}

// today trunca un instante a medianoche UTC.
func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
