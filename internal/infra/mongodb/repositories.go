package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"volunteer_feedback_reminders/internal/domain/hours"
	"volunteer_feedback_reminders/internal/domain/notification"
	"volunteer_feedback_reminders/internal/domain/reminder"
	"volunteer_feedback_reminders/internal/domain/volunteer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID        string   `bson:"_id"`
	Role      string   `bson:"role"`
	FirstName string   `bson:"firstName"`
	LastName  string   `bson:"lastName"`
	OrgID     []string `bson:"orgId"`
}

func (d *userDoc) toUser() *volunteer.User {
	return &volunteer.User{
		ID:              d.ID,
		Role:            volunteer.Role(d.Role),
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		OrganizationIDs: d.OrgID,
	}
}

// UserRepository implements volunteer.Repository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(volunteer.CollectionName)}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*volunteer.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, volunteer.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return doc.toUser(), nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role volunteer.Role) ([]*volunteer.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"role": string(role)})
	if err != nil {
		return nil, fmt.Errorf("failed to find users with role %s: %w", role, err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users with role %s: %w", role, err)
	}
	users := make([]*volunteer.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toUser())
	}
	return users, nil
}

type notificationDoc struct {
	ReceiverID string    `bson:"receiverId"`
	RelatedID  string    `bson:"relatedId"`
	Type       string    `bson:"type"`
	Title      string    `bson:"title"`
	Content    string    `bson:"content"`
	Read       bool      `bson:"read"`
	Date       time.Time `bson:"date"`
}

// NotificationRepository implements notification.Repository using MongoDB.
type NotificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{coll: db.Collection(notification.CollectionName)}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (string, error) {
	res, err := r.coll.InsertOne(ctx, notificationDoc{
		ReceiverID: n.ReceiverID,
		RelatedID:  n.RelatedID,
		Type:       string(n.Type),
		Title:      n.Title,
		Content:    n.Content,
		Read:       n.Read,
		Date:       n.Date,
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert notification for %s: %w", n.ReceiverID, err)
	}
	return insertedID(res.InsertedID), nil
}

func insertedID(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

type trackingDoc struct {
	VolunteerID    string          `bson:"_id"`
	SentMilestones map[string]bool `bson:"sentMilestones"`
	LastUpdated    time.Time       `bson:"lastUpdated"`
}

// TrackingRepository implements reminder.Repository using MongoDB.
type TrackingRepository struct {
	coll *mongo.Collection
}

func NewTrackingRepository(db *mongo.Database) *TrackingRepository {
	return &TrackingRepository{coll: db.Collection(reminder.CollectionName)}
}

func (r *TrackingRepository) Get(ctx context.Context, volunteerID string) (*reminder.Tracking, error) {
	var doc trackingDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": volunteerID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reminder.ErrTrackingNotFound
		}
		return nil, fmt.Errorf("failed to fetch reminder tracking %s: %w", volunteerID, err)
	}
	return reminder.TrackingFromFlags(doc.VolunteerID, doc.SentMilestones, doc.LastUpdated)
}

func (r *TrackingRepository) Save(ctx context.Context, t *reminder.Tracking) error {
	doc := trackingDoc{VolunteerID: t.VolunteerID, SentMilestones: t.Flags(), LastUpdated: t.LastUpdated}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": t.VolunteerID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to replace reminder tracking %s: %w", t.VolunteerID, err)
	}
	return nil
}

// HoursRepository implements hours.Repository with an aggregation over hoursTracking.
type HoursRepository struct {
	coll *mongo.Collection
}

func NewHoursRepository(db *mongo.Database) *HoursRepository {
	return &HoursRepository{coll: db.Collection(hours.CollectionName)}
}

// approvedTotalsPipeline groups counted hours by volunteer. A non-empty volunteerID narrows the match.
func approvedTotalsPipeline(volunteerID string) mongo.Pipeline {
	match := bson.D{
		{Key: "approved", Value: true},
		{Key: "rejected", Value: bson.D{{Key: "$ne", Value: true}}},
		{Key: "hours", Value: bson.D{{Key: "$gt", Value: 0}}},
	}
	if volunteerID != "" {
		match = append(match, bson.E{Key: "volunteerId", Value: volunteerID})
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$volunteerId"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$hours"}}},
		}}},
	}
}

type totalRow struct {
	VolunteerID string  `bson:"_id"`
	Total       float64 `bson:"total"`
}

func (r *HoursRepository) aggregate(ctx context.Context, volunteerID string) (map[string]float64, error) {
	cursor, err := r.coll.Aggregate(ctx, approvedTotalsPipeline(volunteerID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate approved hours: %w", err)
	}
	var rows []totalRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode approved hours: %w", err)
	}
	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.VolunteerID] = row.Total
	}
	return totals, nil
}

func (r *HoursRepository) ApprovedTotals(ctx context.Context) (map[string]float64, error) {
	return r.aggregate(ctx, "")
}

func (r *HoursRepository) ApprovedTotalForVolunteer(ctx context.Context, volunteerID string) (float64, error) {
	totals, err := r.aggregate(ctx, volunteerID)
	if err != nil {
		return 0, err
	}
	return totals[volunteerID], nil
}
