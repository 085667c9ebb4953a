// internal/domain/notification/repository.go
package notification

import "context"

// Repository persists notifications.
type Repository interface {
	// Create stores n and returns the identifier assigned by the store.
	Create(ctx context.Context, n *Notification) (string, error)
}

const CollectionName = "notifications"
