package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/domain"
	"github.com/google/uuid"
)

// NotificationRepository is the notification sink backed by the in-app
// notifications table.
type NotificationRepository struct {
	base
}

func NewNotificationRepository(db *sql.DB, driver string) *NotificationRepository {
	return &NotificationRepository{base: base{db: db, driver: driver}}
}

// Send writes one unread notification. A missing id is generated.
func (r *NotificationRepository) Send(ctx context.Context, n domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal notification metadata: %w", err)
	}

	const query = `
		INSERT INTO notifications (id, recipient_id, title, message, type, action_url, metadata, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, r.q(query),
		n.ID, n.RecipientID, n.Title, n.Message, n.Type, n.ActionURL, string(raw), false, n.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
