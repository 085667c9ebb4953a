package volunteer

import (
	"context"
	"fmt"
)

var ErrUserNotFound = fmt.Errorf("user not found")

// Repository reads users from the users collection.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error) // ErrUserNotFound when absent
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}

const CollectionName = "users"
