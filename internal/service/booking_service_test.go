package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staybook/internal/domain"
)

type mockRoomRepo struct {
	rooms map[int64]domain.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[int64]domain.Room)}
}

func (m *mockRoomRepo) GetByID(_ context.Context, id int64) (domain.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, pgx.ErrNoRows
	}
	return room, nil
}

func (m *mockRoomRepo) ListByHotel(_ context.Context, hotelID int64) ([]domain.Room, error) {
	var out []domain.Room
	for _, room := range m.rooms {
		if room.HotelID == hotelID {
			out = append(out, room)
		}
	}
	return out, nil
}

type mockBookingRepo struct {
	bookings map[string]domain.Booking
	rooms    *mockRoomRepo
}

func newMockBookingRepo(rooms *mockRoomRepo) *mockBookingRepo {
	return &mockBookingRepo{
		bookings: make(map[string]domain.Booking),
		rooms:    rooms,
	}
}

func (m *mockBookingRepo) Create(_ context.Context, booking domain.Booking) error {
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingRepo) view(booking domain.Booking) domain.BookingView {
	view := domain.BookingView{Booking: booking}
	if room, ok := m.rooms.rooms[booking.RoomID]; ok {
		view.RoomNumber = room.RoomNumber
		view.RoomType = room.RoomType
		view.RoomPrice = room.Price
		view.HotelID = room.HotelID
	}
	return view
}

func (m *mockBookingRepo) GetByID(_ context.Context, id string) (domain.BookingView, error) {
	booking, ok := m.bookings[id]
	if !ok {
		return domain.BookingView{}, pgx.ErrNoRows
	}
	return m.view(booking), nil
}

func (m *mockBookingRepo) ListByUser(_ context.Context, userID string) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for _, booking := range m.bookings {
		if booking.UserID == userID {
			out = append(out, m.view(booking))
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListUpcoming(_ context.Context, userID string, from time.Time) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for _, booking := range m.bookings {
		if booking.UserID == userID && !booking.CheckIn.Before(from) && booking.Status != domain.BookingStatusCancelled {
			out = append(out, m.view(booking))
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListPast(_ context.Context, userID string, before time.Time) ([]domain.BookingView, error) {
	var out []domain.BookingView
	for _, booking := range m.bookings {
		if booking.UserID == userID && booking.CheckOut.Before(before) {
			out = append(out, m.view(booking))
		}
	}
	return out, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id string, status domain.BookingStatus) error {
	booking, ok := m.bookings[id]
	if !ok {
		return pgx.ErrNoRows
	}
	booking.Status = status
	m.bookings[id] = booking
	return nil
}

type mockReviewRepo struct {
	reviews map[string]domain.Review
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]domain.Review)}
}

func (m *mockReviewRepo) Create(_ context.Context, review domain.Review) error {
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) ExistsForBooking(_ context.Context, bookingID string) (bool, error) {
	for _, review := range m.reviews {
		if review.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReviewRepo) RatingByRoom(_ context.Context, roomID int64) (domain.RoomRating, error) {
	var sum, count int
	for _, review := range m.reviews {
		if review.RoomID == roomID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return domain.RoomRating{}, nil
	}
	return domain.RoomRating{Average: float64(sum) / float64(count), Count: count}, nil
}

type mockNotificationRepo struct {
	notifications map[string]domain.Notification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]domain.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n domain.Notification) error {
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && n.Status == domain.NotificationUnread {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) (bool, error) {
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Status = domain.NotificationRead
	m.notifications[id] = n
	return true, nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for id, n := range m.notifications {
		if n.UserID == userID {
			n.Status = domain.NotificationRead
			m.notifications[id] = n
		}
	}
	return nil
}

func newTestBookingService() (*BookingService, *mockRoomRepo, *mockBookingRepo, *mockReviewRepo, *mockNotificationRepo) {
	rooms := newMockRoomRepo()
	bookings := newMockBookingRepo(rooms)
	reviews := newMockReviewRepo()
	notifications := newMockNotificationRepo()
	notifier := NewNotificationService(zap.NewNop(), notifications)
	svc := NewBookingService(zap.NewNop(), bookings, rooms, reviews, notifier)
	return svc, rooms, bookings, reviews, notifications
}

func seedRoom(rooms *mockRoomRepo) domain.Room {
	room := domain.Room{
		ID:         7,
		HotelID:    1,
		RoomNumber: "204",
		RoomType:   "DOUBLE",
		Price:      120,
		Available:  true,
	}
	rooms.rooms[room.ID] = room
	return room
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingServiceCreateBooking_PriceExcludesInfants(t *testing.T) {
	svc, rooms, _, _, notifications := newTestBookingService()
	seedRoom(rooms)

	booking, err := svc.CreateBooking(context.Background(), "u1", CreateBookingInput{
		RoomID:   7,
		CheckIn:  date(2026, time.September, 10),
		CheckOut: date(2026, time.September, 13),
		Adults:   2,
		Children: 1,
		Infants:  1,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// 120 x 3 huespedes facturables x 3 noches.
	if booking.TotalPrice != 1080 {
		t.Fatalf("expected total 1080, got %v", booking.TotalPrice)
	}
	if booking.Status != domain.BookingStatusPending {
		t.Fatalf("expected PENDING status, got %s", booking.Status)
	}
	if booking.RoomNumber != "204" || booking.HotelID != 1 {
		t.Fatalf("expected joined room data in view")
	}

	got, err := notifications.ListByUser(context.Background(), "u1")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected one booking notification, got %d (%v)", len(got), err)
	}
	if got[0].Type != domain.NotificationBookingSuccess {
		t.Fatalf("expected BOOKING_SUCCESS notification, got %s", got[0].Type)
	}
}

func TestBookingServiceCreateBooking_InvalidStay(t *testing.T) {
	svc, rooms, _, _, _ := newTestBookingService()
	seedRoom(rooms)

	cases := []struct {
		name  string
		input CreateBookingInput
	}{
		{
			name: "same day checkout",
			input: CreateBookingInput{
				RoomID:   7,
				CheckIn:  date(2026, time.September, 10),
				CheckOut: date(2026, time.September, 10),
				Adults:   1,
			},
		},
		{
			name: "checkout before checkin",
			input: CreateBookingInput{
				RoomID:   7,
				CheckIn:  date(2026, time.September, 10),
				CheckOut: date(2026, time.September, 8),
				Adults:   1,
			},
		},
		{
			name: "no adults",
			input: CreateBookingInput{
				RoomID:   7,
				CheckIn:  date(2026, time.September, 10),
				CheckOut: date(2026, time.September, 12),
				Adults:   0,
				Children: 2,
			},
		},
	}
	for _, tc := range cases {
		if _, err := svc.CreateBooking(context.Background(), "u1", tc.input); !errors.Is(err, ErrInvalidStay) {
			t.Fatalf("%s: expected ErrInvalidStay, got %v", tc.name, err)
		}
	}
}

func TestBookingServiceCreateBooking_RoomChecks(t *testing.T) {
	svc, rooms, _, _, _ := newTestBookingService()
	room := seedRoom(rooms)

	input := CreateBookingInput{
		RoomID:   99,
		CheckIn:  date(2026, time.September, 10),
		CheckOut: date(2026, time.September, 12),
		Adults:   1,
	}
	if _, err := svc.CreateBooking(context.Background(), "u1", input); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	room.Available = false
	rooms.rooms[room.ID] = room
	input.RoomID = room.ID
	if _, err := svc.CreateBooking(context.Background(), "u1", input); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("expected ErrRoomUnavailable, got %v", err)
	}
}

func TestBookingServiceCancelBooking_OwnerOnly(t *testing.T) {
	svc, rooms, _, _, notifications := newTestBookingService()
	seedRoom(rooms)

	booking, err := svc.CreateBooking(context.Background(), "u1", CreateBookingInput{
		RoomID:   7,
		CheckIn:  date(2026, time.September, 10),
		CheckOut: date(2026, time.September, 12),
		Adults:   1,
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	if _, err := svc.CancelBooking(context.Background(), "intruder", booking.ID); !errors.Is(err, ErrNotBookingOwner) {
		t.Fatalf("expected ErrNotBookingOwner, got %v", err)
	}

	cancelled, err := svc.CancelBooking(context.Background(), "u1", booking.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Fatalf("expected CANCELLED status, got %s", cancelled.Status)
	}

	if _, err := svc.CancelBooking(context.Background(), "u1", booking.ID); !errors.Is(err, ErrBookingCancelled) {
		t.Fatalf("expected ErrBookingCancelled on double cancel, got %v", err)
	}

	got, _ := notifications.ListByUser(context.Background(), "u1")
	var cancelNotes int
	for _, n := range got {
		if n.Type == domain.NotificationBookingCancelled {
			cancelNotes++
		}
	}
	if cancelNotes != 1 {
		t.Fatalf("expected one cancellation notification, got %d", cancelNotes)
	}
}

func TestBookingServiceListUpcomingAndPast(t *testing.T) {
	svc, rooms, _, _, _ := newTestBookingService()
	seedRoom(rooms)
	svc.now = func() time.Time { return date(2026, time.September, 15) }

	past, err := svc.CreateBooking(context.Background(), "u1", CreateBookingInput{
		RoomID:   7,
		CheckIn:  date(2026, time.September, 1),
		CheckOut: date(2026, time.September, 5),
		Adults:   1,
	})
	if err != nil {
		t.Fatalf("create past booking failed: %v", err)
	}
	upcoming, err := svc.CreateBooking(context.Background(), "u1", CreateBookingInput{
		RoomID:   7,
		CheckIn:  date(2026, time.October, 1),
		CheckOut: date(2026, time.October, 3),
		Adults:   1,
	})
	if err != nil {
		t.Fatalf("create upcoming booking failed: %v", err)
	}

	gotUpcoming, err := svc.ListUpcoming(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list upcoming failed: %v", err)
	}
	if len(gotUpcoming) != 1 || gotUpcoming[0].ID != upcoming.ID {
		t.Fatalf("expected only upcoming booking, got %v", gotUpcoming)
	}

	gotPast, err := svc.ListPast(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list past failed: %v", err)
	}
	if len(gotPast) != 1 || gotPast[0].ID != past.ID {
		t.Fatalf("expected only past booking, got %v", gotPast)
	}
}

func TestBookingServiceCreateReview_Rules(t *testing.T) {
	svc, rooms, _, _, _ := newTestBookingService()
	seedRoom(rooms)
	svc.now = func() time.Time { return date(2026, time.September, 15) }

	booking, err := svc.CreateBooking(context.Background(), "u1", CreateBookingInput{
		RoomID:   7,
		CheckIn:  date(2026, time.September, 1),
		CheckOut: date(2026, time.September, 5),
		Adults:   1,
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	if _, err := svc.CreateReview(context.Background(), "u1", booking.ID, 0, ""); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if _, err := svc.CreateReview(context.Background(), "intruder", booking.ID, 4, ""); !errors.Is(err, ErrNotBookingOwner) {
		t.Fatalf("expected ErrNotBookingOwner, got %v", err)
	}

	review, err := svc.CreateReview(context.Background(), "u1", booking.ID, 4, "  great stay  ")
	if err != nil {
		t.Fatalf("create review failed: %v", err)
	}
	if review.Comment != "great stay" {
		t.Fatalf("expected trimmed comment, got %q", review.Comment)
	}
	if review.RoomID != 7 {
		t.Fatalf("expected review bound to room 7, got %d", review.RoomID)
	}

	if _, err := svc.CreateReview(context.Background(), "u1", booking.ID, 5, ""); !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	// El agregado de reviews aparece en las vistas.
	view, err := svc.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if view.Rating != 4 || view.ReviewCount != 1 {
		t.Fatalf("expected rating 4 with one review, got %v/%d", view.Rating, view.ReviewCount)
	}
}

func TestBookingServiceCreateReview_NotCompleted(t *testing.T) {
	svc, rooms, _, _, _ := newTestBookingService()
	seedRoom(rooms)
	svc.now = func() time.Time { return date(2026, time.September, 15) }

	future, err := svc.CreateBooking(context.Background(), "u1", CreateBookingInput{
		RoomID:   7,
		CheckIn:  date(2026, time.October, 1),
		CheckOut: date(2026, time.October, 3),
		Adults:   1,
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if _, err := svc.CreateReview(context.Background(), "u1", future.ID, 4, ""); !errors.Is(err, ErrBookingNotCompleted) {
		t.Fatalf("expected ErrBookingNotCompleted for future stay, got %v", err)
	}

	cancelled, err := svc.CreateBooking(context.Background(), "u1", CreateBookingInput{
		RoomID:   7,
		CheckIn:  date(2026, time.September, 1),
		CheckOut: date(2026, time.September, 3),
		Adults:   1,
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if _, err := svc.CancelBooking(context.Background(), "u1", cancelled.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.CreateReview(context.Background(), "u1", cancelled.ID, 4, ""); !errors.Is(err, ErrBookingNotCompleted) {
		t.Fatalf("expected ErrBookingNotCompleted for cancelled stay, got %v", err)
	}
}
