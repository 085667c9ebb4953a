package app

import (
	"context"
	"errors"
	"testing"

	"volunteer_feedback_reminders/internal/domain/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminID int64 = 4242

func newAdminFixture() (*reminderFixture, *fakeHoursRepo, *AdminService) {
	f := newReminderFixture()
	hr := &fakeHoursRepo{totals: map[string]float64{"vol-1": 33}}
	return f, hr, NewAdminService(f.reminders, hr, testAdminID)
}

func TestAdminService_RejectsOtherUsers(t *testing.T) {
	_, _, svc := newAdminFixture()
	ctx := context.Background()

	_, err := svc.ReminderStatus(ctx, 1, "vol-1")
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, _, err = svc.CheckReminders(ctx, 1, "vol-1")
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)
	_, err = svc.ResetReminders(ctx, 1, "vol-1")
	assert.ErrorIs(t, err, ErrAdminNotAuthorized)

	_, err = svc.ResetReminders(ctx, testAdminID, "  ")
	assert.ErrorIs(t, err, ErrEmptyVolunteerID)
}

func TestAdminService_CheckThenStatusThenReset(t *testing.T) {
	f, _, svc := newAdminFixture()
	ctx := context.Background()

	total, sent, err := svc.CheckReminders(ctx, testAdminID, "vol-1")
	require.NoError(t, err)
	assert.Equal(t, 33.0, total)
	assert.Equal(t, 1, sent)

	status, err := svc.ReminderStatus(ctx, testAdminID, " vol-1 ")
	require.NoError(t, err)
	assert.Equal(t, 33.0, status.ApprovedHours)
	assert.True(t, status.Tracking.SentMilestones[reminder.Milestone15])
	assert.True(t, status.Tracking.SentMilestones[reminder.Milestone30])
	assert.False(t, status.Tracking.SentMilestones[reminder.Milestone45])

	_, err = svc.ResetReminders(ctx, testAdminID, "vol-1")
	require.NoError(t, err)
	assert.False(t, f.tracking.sent("vol-1", reminder.Milestone15))

	_, sent, err = svc.CheckReminders(ctx, testAdminID, "vol-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestAdminService_HoursFailure(t *testing.T) {
	_, hr, svc := newAdminFixture()
	hr.err = errors.New("hours offline")

	_, _, err := svc.CheckReminders(context.Background(), testAdminID, "vol-1")
	assert.ErrorIs(t, err, hr.err)
}
