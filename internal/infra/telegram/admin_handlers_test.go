package telegram

import (
	"testing"
	"time"

	"volunteer_feedback_reminders/internal/app"
	"volunteer_feedback_reminders/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
)

func TestVolunteerArg(t *testing.T) {
	id, ok := volunteerArg([]string{" vol-1 "})
	assert.True(t, ok)
	assert.Equal(t, "vol-1", id)

	_, ok = volunteerArg(nil)
	assert.False(t, ok)
	_, ok = volunteerArg([]string{"a", "b"})
	assert.False(t, ok)
	_, ok = volunteerArg([]string{"  "})
	assert.False(t, ok)
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "32", formatHours(32))
	assert.Equal(t, "32.5", formatHours(32.5))
	assert.Equal(t, "0", formatHours(0))
	assert.Equal(t, "15.25", formatHours(15.25))
}

func TestFormatStatus(t *testing.T) {
	tr := reminder.NewTracking("vol-1")
	tr.SentMilestones[reminder.Milestone15] = true
	tr.LastUpdated = time.Date(2026, 6, 1, 14, 5, 0, 0, time.UTC)

	out := formatStatus("vol-1", &app.ReminderStatus{Tracking: tr, ApprovedHours: 31})
	assert.Contains(t, out, "Volunteer vol-1: 31 approved hours")
	assert.Contains(t, out, "15 h: sent")
	assert.Contains(t, out, "30 h: due")
	assert.Contains(t, out, "45 h: pending")
	assert.Contains(t, out, "Last updated: 2026-06-01 14:05")

	fresh := formatStatus("vol-2", &app.ReminderStatus{Tracking: reminder.NewTracking("vol-2")})
	assert.Contains(t, fresh, "Never updated")
}

func TestAdminHelpListsCommands(t *testing.T) {
	help := adminHelp()
	for _, cmd := range []string{"/reminder_status", "/check_reminders", "/reset_reminders", "/help"} {
		assert.Contains(t, help, cmd)
	}
}
