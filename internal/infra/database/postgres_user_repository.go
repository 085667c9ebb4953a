package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"volunteer_feedback_reminders/internal/domain/volunteer"

	"github.com/lib/pq"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, role, first_name, last_name, org_ids`

func scanUser(row interface{ Scan(...any) error }) (*volunteer.User, error) {
	u := &volunteer.User{}
	var orgIDs pq.StringArray
	if err := row.Scan(&u.ID, &u.Role, &u.FirstName, &u.LastName, &orgIDs); err != nil {
		return nil, err
	}
	u.OrganizationIDs = []string(orgIDs)
	return u, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*volunteer.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, volunteer.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) ListByRole(ctx context.Context, role volunteer.Role) ([]*volunteer.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, fmt.Errorf("error listing users by role: %w", err)
	}
	defer rows.Close()

	users := make([]*volunteer.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
