package domain

import "time"

type NotificationType string

const (
	NotificationBookingSuccess   NotificationType = "BOOKING_SUCCESS"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
)

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "UNREAD"
	NotificationRead   NotificationStatus = "READ"
)

type Notification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	BookingID string             `json:"booking_id,omitempty"`
	Type      NotificationType   `json:"type"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	Status    NotificationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}
