package hours

import (
	"context"
	"fmt"
)

// Record is one entry of the hoursTracking collection.
type Record struct {
	ID             string
	VolunteerID    string
	OrganizationID string
	Hours          float64
	Approved       bool
	Rejected       bool
}

// Counts reports whether the record contributes to the approved total.
func (r *Record) Counts() bool {
	return r.Approved && !r.Rejected && r.Hours > 0
}

// ApprovedTotals sums counted hours per volunteer.
func ApprovedTotals(records []*Record) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range records {
		if r.Counts() {
			totals[r.VolunteerID] += r.Hours
		}
	}
	return totals
}

// Repository reads approved hours.
type Repository interface {
	ApprovedTotals(ctx context.Context) (map[string]float64, error)
	ApprovedTotalForVolunteer(ctx context.Context, volunteerID string) (float64, error)
}

// ApprovalHandler is called with the volunteer whose hours were just approved.
type ApprovalHandler func(ctx context.Context, volunteerID string)

// Watcher subscribes to hour approvals as they happen. Watch blocks until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, handle ApprovalHandler) error
}

const CollectionName = "hoursTracking"

var ErrWatchUnsupported = fmt.Errorf("approval watching is not supported by this store")
