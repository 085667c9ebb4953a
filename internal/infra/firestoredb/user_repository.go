package firestoredb

import (
	"context"
	"fmt"

	"volunteer_feedback_reminders/internal/domain/volunteer"

	"cloud.google.com/go/firestore"
)

type UserRepository struct {
	coll *firestore.CollectionRef
}

func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{coll: client.Collection(volunteer.CollectionName)}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*volunteer.User, error) {
	snap, err := r.coll.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, volunteer.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", id, err)
	}
	return doc.toUser(snap.Ref.ID), nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role volunteer.Role) ([]*volunteer.User, error) {
	snaps, err := r.coll.Where("role", "==", string(role)).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query users with role %s: %w", role, err)
	}
	users := make([]*volunteer.User, 0, len(snaps))
	for _, snap := range snaps {
		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
		}
		users = append(users, doc.toUser(snap.Ref.ID))
	}
	return users, nil
}
