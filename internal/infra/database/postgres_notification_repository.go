// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"volunteer_feedback_reminders/internal/domain/notification"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) (string, error) {
	query := `INSERT INTO notifications (receiver_id, related_id, type, title, content, read, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, query, n.ReceiverID, n.RelatedID, string(n.Type), n.Title, n.Content, n.Read, n.Date).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("error creating notification: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}
