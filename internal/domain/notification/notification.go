// internal/domain/notification/notification.go
package notification

import "time"

// Type discriminates notifications in the notifications collection.
type Type string

const TypeReminder Type = "reminder"

// Notification is a message shown to a single receiver in the application.
type Notification struct {
	ID         string
	ReceiverID string
	RelatedID  string // entity the notification is about, the volunteer for reminders
	Type       Type
	Title      string
	Content    string
	Read       bool
	Date       time.Time
}
