package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"volunteer_feedback_reminders/internal/domain/hours"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HoursRepository reads hoursTracking and doubles as the realtime approvals watcher.
type HoursRepository struct {
	coll   *firestore.CollectionRef
	logger *logrus.Entry
}

func NewHoursRepository(client *firestore.Client, logger *logrus.Entry) *HoursRepository {
	return &HoursRepository{
		coll:   client.Collection(hours.CollectionName),
		logger: logger.WithField("component", "firestore_hours"),
	}
}

func (r *HoursRepository) approved() firestore.Query {
	return r.coll.Where("approved", "==", true)
}

func (r *HoursRepository) ApprovedTotals(ctx context.Context) (map[string]float64, error) {
	records, err := r.fetch(ctx, r.approved())
	if err != nil {
		return nil, err
	}
	return hours.ApprovedTotals(records), nil
}

func (r *HoursRepository) ApprovedTotalForVolunteer(ctx context.Context, volunteerID string) (float64, error) {
	records, err := r.fetch(ctx, r.approved().Where("volunteerId", "==", volunteerID))
	if err != nil {
		return 0, err
	}
	return hours.ApprovedTotals(records)[volunteerID], nil
}

func (r *HoursRepository) fetch(ctx context.Context, q firestore.Query) ([]*hours.Record, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query approved hours: %w", err)
	}
	records := make([]*hours.Record, 0, len(snaps))
	for _, snap := range snaps {
		var doc hoursDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode hours record %s: %w", snap.Ref.ID, err)
		}
		records = append(records, doc.toRecord(snap.Ref.ID))
	}
	return records, nil
}

// Watch subscribes to approved hour records and calls handle for every record added
// or modified after the initial snapshot. The initial snapshot is left to the sweep.
func (r *HoursRepository) Watch(ctx context.Context, handle hours.ApprovalHandler) error {
	it := r.approved().Snapshots(ctx)
	defer it.Stop()

	initial := true
	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			return fmt.Errorf("approved hours subscription failed: %w", err)
		}
		if initial {
			initial = false
			r.logger.WithField("records", snap.Size).Info("Subscribed to approved hours")
			continue
		}
		for _, volunteerID := range approvedChanges(snap.Changes) {
			handle(ctx, volunteerID)
		}
	}
}

// approvedChanges returns the distinct volunteers with newly counted hours, in change order.
func approvedChanges(changes []firestore.DocumentChange) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, ch := range changes {
		if ch.Kind == firestore.DocumentRemoved || ch.Doc == nil {
			continue
		}
		var doc hoursDoc
		if err := ch.Doc.DataTo(&doc); err != nil {
			continue
		}
		if !doc.toRecord(ch.Doc.Ref.ID).Counts() {
			continue
		}
		if _, dup := seen[doc.VolunteerID]; dup {
			continue
		}
		seen[doc.VolunteerID] = struct{}{}
		ids = append(ids, doc.VolunteerID)
	}
	return ids
}
