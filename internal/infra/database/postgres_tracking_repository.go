package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"volunteer_feedback_reminders/internal/domain/reminder"

	"github.com/goccy/go-json"
)

type PostgresTrackingRepository struct {
	db *sql.DB
}

func NewPostgresTrackingRepository(db *sql.DB) *PostgresTrackingRepository {
	return &PostgresTrackingRepository{db: db}
}

func (r *PostgresTrackingRepository) Get(ctx context.Context, volunteerID string) (*reminder.Tracking, error) {
	query := `SELECT sent_milestones, last_updated FROM feedback_reminder_tracking WHERE volunteer_id = $1`
	var (
		raw         []byte
		lastUpdated time.Time
	)
	err := r.db.QueryRowContext(ctx, query, volunteerID).Scan(&raw, &lastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reminder.ErrTrackingNotFound
		}
		return nil, fmt.Errorf("error getting reminder tracking: %w", err)
	}
	return decodeTracking(volunteerID, raw, lastUpdated)
}

// Save replaces the row for t.VolunteerID.
func (r *PostgresTrackingRepository) Save(ctx context.Context, t *reminder.Tracking) error {
	raw, err := encodeFlags(t)
	if err != nil {
		return err
	}
	query := `INSERT INTO feedback_reminder_tracking (volunteer_id, sent_milestones, last_updated)
               VALUES ($1, $2, $3)
               ON CONFLICT (volunteer_id)
               DO UPDATE SET sent_milestones = EXCLUDED.sent_milestones, last_updated = EXCLUDED.last_updated`
	if _, err := r.db.ExecContext(ctx, query, t.VolunteerID, string(raw), t.LastUpdated); err != nil {
		return fmt.Errorf("error saving reminder tracking: %w", err)
	}
	return nil
}

func encodeFlags(t *reminder.Tracking) ([]byte, error) {
	raw, err := json.Marshal(t.Flags())
	if err != nil {
		return nil, fmt.Errorf("error encoding sent milestones: %w", err)
	}
	return raw, nil
}

func decodeTracking(volunteerID string, raw []byte, lastUpdated time.Time) (*reminder.Tracking, error) {
	var flags map[string]bool
	if err := json.Unmarshal(raw, &flags); err != nil {
		return nil, fmt.Errorf("error decoding sent milestones for volunteer %s: %w", volunteerID, err)
	}
	return reminder.TrackingFromFlags(volunteerID, flags, lastUpdated)
}
