package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"volunteer_feedback_reminders/internal/domain/notification"
	"volunteer_feedback_reminders/internal/domain/reminder"
	"volunteer_feedback_reminders/internal/domain/volunteer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndSend_SecondIdenticalCallIsNoop(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 20)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	readsBefore, writesBefore := f.tracking.reads, f.tracking.writes
	userReadsBefore := f.users.reads

	sent, err = f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 20)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, f.notifs.count())
	assert.Equal(t, readsBefore, f.tracking.reads)
	assert.Equal(t, writesBefore, f.tracking.writes)
	assert.Equal(t, userReadsBefore, f.users.reads)
}

func TestCheckAndSend_TwoMilestonesInOneNotification(t *testing.T) {
	f := newReminderFixture()

	sent, err := f.reminders.CheckAndSendFeedbackReminders(context.Background(), "vol-1", 32)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Equal(t, 1, f.notifs.count())
	n := f.notifs.created[0]
	assert.Equal(t, "vc-in", n.ReceiverID)
	assert.Equal(t, "vol-1", n.RelatedID)
	assert.Equal(t, notification.TypeReminder, n.Type)
	assert.False(t, n.Read)
	assert.Contains(t, n.Content, "Sam Rivera")
	assert.Contains(t, n.Content, "15, 30")
	assert.False(t, n.Date.IsZero())

	assert.True(t, f.tracking.sent("vol-1", reminder.Milestone15))
	assert.True(t, f.tracking.sent("vol-1", reminder.Milestone30))
	assert.False(t, f.tracking.sent("vol-1", reminder.Milestone45))
}

func TestCheckAndSend_Thresholds(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 14)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, f.tracking.writes, "nothing due must not persist the default record")

	sent, err = f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 15)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Equal(t, 1, f.notifs.count())
	assert.Contains(t, f.notifs.created[0].Content, "reached 15 approved")
	assert.True(t, f.tracking.sent("vol-1", reminder.Milestone15))
	assert.False(t, f.tracking.sent("vol-1", reminder.Milestone30))
}

func TestCheckAndSend_HoursDecreaseDoesNotRetrigger(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	_, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 15)
	require.NoError(t, err)

	sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	sent, err = f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 16)
	require.NoError(t, err)
	assert.Equal(t, 0, sent, "milestone 15 already sent")
	assert.Equal(t, 1, f.notifs.count())
}

func TestSendFeedbackReminders_RecipientFiltering(t *testing.T) {
	f := newReminderFixture()
	f.users.users["rep-in"] = &volunteer.User{ID: "rep-in", Role: volunteer.RoleOrgRep, OrganizationIDs: []string{"1"}}
	f.users.users["rep-out"] = &volunteer.User{ID: "rep-out", Role: volunteer.RoleOrgRep, OrganizationIDs: []string{"7"}}
	f.users.users["admin"] = &volunteer.User{ID: "admin", Role: volunteer.RoleAdmin, OrganizationIDs: []string{"1"}}

	sent, err := f.reminders.SendFeedbackReminders(context.Background(), "vol-1", []reminder.Milestone{reminder.Milestone45})
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.ElementsMatch(t, []string{"vc-in", "rep-in"}, f.notifs.receivers())
}

func TestSendFeedbackReminders_VolunteerMissingOrWithoutOrgs(t *testing.T) {
	f := newReminderFixture()
	f.users.users["vol-2"] = &volunteer.User{ID: "vol-2", Role: volunteer.RoleVolunteer}
	ctx := context.Background()

	sent, err := f.reminders.SendFeedbackReminders(ctx, "ghost", []reminder.Milestone{reminder.Milestone15})
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	sent, err = f.reminders.SendFeedbackReminders(ctx, "vol-2", []reminder.Milestone{reminder.Milestone15})
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, f.notifs.count())
}

func TestSendFeedbackReminders_UserStoreFailurePropagates(t *testing.T) {
	f := newReminderFixture()
	storeErr := errors.New("users unavailable")
	f.users.listErr = storeErr

	_, err := f.reminders.SendFeedbackReminders(context.Background(), "vol-1", []reminder.Milestone{reminder.Milestone15})
	assert.ErrorIs(t, err, storeErr)
}

func TestCheckAndSend_NotificationFailureLeavesMilestoneUnsent(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	f.tracking.records["vol-1"] = &reminder.Tracking{
		VolunteerID: "vol-1",
		SentMilestones: map[reminder.Milestone]bool{
			reminder.Milestone15: true, reminder.Milestone30: true,
			reminder.Milestone45: false, reminder.Milestone60: false,
		},
	}
	storeErr := errors.New("write rejected")
	f.notifs.err = storeErr

	sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 47)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Equal(t, 0, sent)
	assert.False(t, f.tracking.sent("vol-1", reminder.Milestone45))

	f.notifs.err = nil
	sent, err = f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 47)
	require.NoError(t, err, "retry with the same hours must not be short-circuited")
	assert.Equal(t, 1, sent)
	assert.Contains(t, f.notifs.created[0].Content, "reached 45 approved")
	assert.True(t, f.tracking.sent("vol-1", reminder.Milestone45))
}

func TestCheckAndSend_TrackingSaveFailureIsReturned(t *testing.T) {
	f := newReminderFixture()
	f.tracking.saveErr = errors.New("disk full")

	_, err := f.reminders.CheckAndSendFeedbackReminders(context.Background(), "vol-1", 15)
	require.Error(t, err)
	assert.False(t, f.tracking.sent("vol-1", reminder.Milestone15))
}

func TestResetVolunteerReminderTracking_ResendsEverything(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 60)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	tr, err := f.reminders.ResetVolunteerReminderTracking(ctx, "vol-1")
	require.NoError(t, err)
	for _, m := range reminder.Milestones {
		assert.False(t, tr.SentMilestones[m])
		assert.False(t, f.tracking.sent("vol-1", m))
	}

	sent, err = f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 60)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Equal(t, 2, f.notifs.count())
	assert.Contains(t, f.notifs.created[1].Content, "15, 30, 45, 60")
	for _, m := range reminder.Milestones {
		assert.True(t, f.tracking.sent("vol-1", m))
	}
}

func TestCheckAndSend_NonPositiveHoursTouchNothing(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	for _, h := range []float64{0, -5} {
		sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", h)
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	}
	assert.Equal(t, 0, f.tracking.reads)
	assert.Equal(t, 0, f.users.reads)
	assert.Equal(t, 0, f.guard.Len())
}

func TestCheckAndSend_ConcurrentCallForSameVolunteerShortCircuits(t *testing.T) {
	f := newReminderFixture()
	f.notifs.started = make(chan struct{}, 1)
	f.notifs.release = make(chan struct{})
	ctx := context.Background()

	type outcome struct {
		sent int
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 20)
		done <- outcome{sent, err}
	}()

	select {
	case <-f.notifs.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first check never reached notification creation")
	}

	sent, err := f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 31)
	require.NoError(t, err)
	assert.Equal(t, 0, sent, "volunteer already in flight")

	close(f.notifs.release)
	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, 1, first.sent)

	sent, err = f.reminders.CheckAndSendFeedbackReminders(ctx, "vol-1", 31)
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "milestone 30 is due once the first check finished")
}

func TestCheckAndSend_TimeoutBoundsHungStore(t *testing.T) {
	f := newReminderFixture()
	f.notifs.started = make(chan struct{}, 1)
	f.notifs.release = make(chan struct{})
	f.reminders.checkTimeout = 20 * time.Millisecond

	_, err := f.reminders.CheckAndSendFeedbackReminders(context.Background(), "vol-1", 15)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.tracking.sent("vol-1", reminder.Milestone15))
}

func TestUpdateReminderTracking_MergesAndRejectsUnknown(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	f.reminders.now = func() time.Time { return fixed }

	tr, err := f.reminders.UpdateReminderTracking(ctx, "vol-1", map[reminder.Milestone]bool{reminder.Milestone30: true})
	require.NoError(t, err)
	assert.True(t, tr.SentMilestones[reminder.Milestone30])
	assert.Equal(t, fixed, tr.LastUpdated)

	tr, err = f.reminders.UpdateReminderTracking(ctx, "vol-1", map[reminder.Milestone]bool{reminder.Milestone60: true})
	require.NoError(t, err)
	assert.True(t, tr.SentMilestones[reminder.Milestone30], "earlier flags are kept")
	assert.True(t, tr.SentMilestones[reminder.Milestone60])

	_, err = f.reminders.UpdateReminderTracking(ctx, "vol-1", map[reminder.Milestone]bool{reminder.Milestone(50): true})
	assert.ErrorIs(t, err, reminder.ErrInvalidMilestone)
	assert.Equal(t, 2, f.tracking.writes)
}

func TestGetReminderTracking_DefaultWhenAbsent(t *testing.T) {
	f := newReminderFixture()

	tr, err := f.reminders.GetReminderTracking(context.Background(), "vol-9")
	require.NoError(t, err)
	assert.Equal(t, "vol-9", tr.VolunteerID)
	assert.Len(t, tr.SentMilestones, len(reminder.Milestones))
	assert.Equal(t, 0, f.tracking.writes)

	f.tracking.getErr = errors.New("timeout")
	_, err = f.reminders.GetReminderTracking(context.Background(), "vol-9")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "vol-9"))
}
