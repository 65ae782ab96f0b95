package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"staybook/internal/domain"
	"staybook/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService gestiona notificaciones in-app por usuario.
type NotificationService struct {
	logger *zap.Logger
	repo   repository.NotificationRepository

	now func() time.Time
}

func NewNotificationService(logger *zap.Logger, repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		logger: logger,
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) Notify(ctx context.Context, userID, bookingID string, typ domain.NotificationType, title, message string) error {
	n := domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		BookingID: bookingID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Status:    domain.NotificationUnread,
		CreatedAt: s.now(),
	}
	return s.repo.Create(ctx, n)
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	ok, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
