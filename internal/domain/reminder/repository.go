package reminder

import (
	"context"
	"fmt"
)

var ErrTrackingNotFound = fmt.Errorf("feedback reminder tracking not found")

// Repository persists Tracking records in the feedbackReminderTracking collection.
type Repository interface {
	// Get returns ErrTrackingNotFound when the volunteer has never been tracked.
	Get(ctx context.Context, volunteerID string) (*Tracking, error)
	// Save replaces the whole document for t.VolunteerID.
	Save(ctx context.Context, t *Tracking) error
}

// CollectionName is the document collection holding tracking records.
const CollectionName = "feedbackReminderTracking"
