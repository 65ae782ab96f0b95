package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"staybook/internal/domain"
)

// NotificationRepository define el contrato de persistencia para
// notificaciones in-app.
type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) error
}

// PgNotificationRepository implementa NotificationRepository usando pgxpool.
type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n domain.Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, booking_id, type, title, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.UserID,
		n.BookingID,
		n.Type,
		n.Title,
		n.Message,
		n.Status,
		n.CreatedAt,
	)
	return err
}

func (r *PgNotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	const query = `
		SELECT id, user_id, booking_id, type, title, message, status, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.BookingID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.Status,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *PgNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND status = 'UNREAD'`
	var count int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *PgNotificationRepository) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	const query = `UPDATE notifications SET status = 'READ' WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	const query = `UPDATE notifications SET status = 'READ' WHERE user_id = $1 AND status = 'UNREAD'`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
