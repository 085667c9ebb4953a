package firestoredb

import (
	"context"
	"fmt"

	"volunteer_feedback_reminders/internal/domain/notification"

	"cloud.google.com/go/firestore"
)

type NotificationRepository struct {
	coll *firestore.CollectionRef
}

func NewNotificationRepository(client *firestore.Client) *NotificationRepository {
	return &NotificationRepository{coll: client.Collection(notification.CollectionName)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (string, error) {
	ref, _, err := r.coll.Add(ctx, notificationToDoc(n))
	if err != nil {
		return "", fmt.Errorf("failed to add notification for %s: %w", n.ReceiverID, err)
	}
	return ref.ID, nil
}
