package database

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresHoursRepository struct {
	db *sql.DB
}

func NewPostgresHoursRepository(db *sql.DB) *PostgresHoursRepository {
	return &PostgresHoursRepository{db: db}
}

const approvedFilter = `approved = TRUE AND rejected = FALSE`

func (r *PostgresHoursRepository) ApprovedTotals(ctx context.Context) (map[string]float64, error) {
	query := `SELECT volunteer_id, SUM(hours)::float8 FROM hours_tracking
               WHERE ` + approvedFilter + `
               GROUP BY volunteer_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error summing approved hours: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var (
			volunteerID string
			total       float64
		)
		if err := rows.Scan(&volunteerID, &total); err != nil {
			return nil, fmt.Errorf("error scanning approved hours: %w", err)
		}
		totals[volunteerID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approved hours: %w", err)
	}
	return totals, nil
}

func (r *PostgresHoursRepository) ApprovedTotalForVolunteer(ctx context.Context, volunteerID string) (float64, error) {
	query := `SELECT COALESCE(SUM(hours), 0)::float8 FROM hours_tracking
               WHERE volunteer_id = $1 AND ` + approvedFilter
	var total float64
	if err := r.db.QueryRowContext(ctx, query, volunteerID).Scan(&total); err != nil {
		// SUM always returns a row, so any error here is a real DB failure.
		return 0, fmt.Errorf("error summing approved hours for volunteer: %w", err)
	}
	return total, nil
}
