package firestoredb

import (
	"time"

	"volunteer_feedback_reminders/internal/domain/hours"
	"volunteer_feedback_reminders/internal/domain/notification"
	"volunteer_feedback_reminders/internal/domain/reminder"
	"volunteer_feedback_reminders/internal/domain/volunteer"
)

// Document shapes as stored by the web application.

type userDoc struct {
	Role      string   `firestore:"role"`
	FirstName string   `firestore:"firstName"`
	LastName  string   `firestore:"lastName"`
	OrgID     []string `firestore:"orgId"`
}

func (d userDoc) toUser(id string) *volunteer.User {
	return &volunteer.User{
		ID:              id,
		Role:            volunteer.Role(d.Role),
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		OrganizationIDs: d.OrgID,
	}
}

type notificationDoc struct {
	ReceiverID string    `firestore:"receiverId"`
	RelatedID  string    `firestore:"relatedId"`
	Type       string    `firestore:"type"`
	Title      string    `firestore:"title"`
	Content    string    `firestore:"content"`
	Read       bool      `firestore:"read"`
	Date       time.Time `firestore:"date"`
}

func notificationToDoc(n *notification.Notification) notificationDoc {
	return notificationDoc{
		ReceiverID: n.ReceiverID,
		RelatedID:  n.RelatedID,
		Type:       string(n.Type),
		Title:      n.Title,
		Content:    n.Content,
		Read:       n.Read,
		Date:       n.Date,
	}
}

type trackingDoc struct {
	VolunteerID    string          `firestore:"volunteerId"`
	SentMilestones map[string]bool `firestore:"sentMilestones"`
	LastUpdated    time.Time       `firestore:"lastUpdated"`
}

func trackingToDoc(t *reminder.Tracking) trackingDoc {
	return trackingDoc{
		VolunteerID:    t.VolunteerID,
		SentMilestones: t.Flags(),
		LastUpdated:    t.LastUpdated,
	}
}

func (d trackingDoc) toTracking(docID string) (*reminder.Tracking, error) {
	// document ID is authoritative; older documents may lack the field
	return reminder.TrackingFromFlags(docID, d.SentMilestones, d.LastUpdated)
}

type hoursDoc struct {
	VolunteerID    string  `firestore:"volunteerId"`
	OrganizationID string  `firestore:"organizationId"`
	Hours          float64 `firestore:"hours"`
	Approved       bool    `firestore:"approved"`
	Rejected       bool    `firestore:"rejected"`
}

func (d hoursDoc) toRecord(id string) *hours.Record {
	return &hours.Record{
		ID:             id,
		VolunteerID:    d.VolunteerID,
		OrganizationID: d.OrganizationID,
		Hours:          d.Hours,
		Approved:       d.Approved,
		Rejected:       d.Rejected,
	}
}
