package database

import (
	"testing"
	"time"

	"volunteer_feedback_reminders/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingJSONColumn(t *testing.T) {
	tr := reminder.NewTracking("vol-1")
	tr.SentMilestones[reminder.Milestone15] = true

	raw, err := encodeFlags(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"15":true,"30":false,"45":false,"60":false}`, string(raw))

	at := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	back, err := decodeTracking("vol-1", raw, at)
	require.NoError(t, err)
	assert.Equal(t, tr.SentMilestones, back.SentMilestones)
	assert.Equal(t, at, back.LastUpdated)
}

func TestDecodeTracking_Corrupt(t *testing.T) {
	_, err := decodeTracking("vol-1", []byte(`{"15":`), time.Time{})
	assert.Error(t, err)

	_, err = decodeTracking("vol-1", []byte(`{"16":true}`), time.Time{})
	assert.ErrorIs(t, err, reminder.ErrInvalidMilestone)
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"users", "notifications", "feedback_reminder_tracking", "hours_tracking"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schemaSQL, "pg_notify('"+approvalChannel+"'")
}
