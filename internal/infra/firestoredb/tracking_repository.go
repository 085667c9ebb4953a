package firestoredb

import (
	"context"
	"fmt"

	"volunteer_feedback_reminders/internal/domain/reminder"

	"cloud.google.com/go/firestore"
)

type TrackingRepository struct {
	coll *firestore.CollectionRef
}

func NewTrackingRepository(client *firestore.Client) *TrackingRepository {
	return &TrackingRepository{coll: client.Collection(reminder.CollectionName)}
}

func (r *TrackingRepository) Get(ctx context.Context, volunteerID string) (*reminder.Tracking, error) {
	snap, err := r.coll.Doc(volunteerID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, reminder.ErrTrackingNotFound
		}
		return nil, fmt.Errorf("failed to fetch reminder tracking %s: %w", volunteerID, err)
	}
	var doc trackingDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode reminder tracking %s: %w", volunteerID, err)
	}
	return doc.toTracking(snap.Ref.ID)
}

// Save overwrites the whole document; no merge option.
func (r *TrackingRepository) Save(ctx context.Context, t *reminder.Tracking) error {
	if _, err := r.coll.Doc(t.VolunteerID).Set(ctx, trackingToDoc(t)); err != nil {
		return fmt.Errorf("failed to write reminder tracking %s: %w", t.VolunteerID, err)
	}
	return nil
}
