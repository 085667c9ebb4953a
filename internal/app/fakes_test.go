package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"volunteer_feedback_reminders/internal/domain/notification"
	"volunteer_feedback_reminders/internal/domain/reminder"
	"volunteer_feedback_reminders/internal/domain/volunteer"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*volunteer.User
	getErr  error
	listErr error
	reads   int
}

func newFakeUserRepo(users ...*volunteer.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*volunteer.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*volunteer.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, volunteer.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role volunteer.Role) ([]*volunteer.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*volunteer.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*notification.Notification
	err     error

	// when set, Create signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) (string, error) {
	if r.started != nil {
		select {
		case r.started <- struct{}{}:
		default:
		}
		select {
		case <-r.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	cp := *n
	cp.ID = fmt.Sprintf("notif-%d", len(r.created)+1)
	r.created = append(r.created, &cp)
	return cp.ID, nil
}

func (r *fakeNotificationRepo) receivers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, n := range r.created {
		ids = append(ids, n.ReceiverID)
	}
	return ids
}

func (r *fakeNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

type fakeTrackingRepo struct {
	mu      sync.Mutex
	records map[string]*reminder.Tracking
	getErr  error
	saveErr error
	reads   int
	writes  int
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{records: make(map[string]*reminder.Tracking)}
}

func copyTracking(t *reminder.Tracking) *reminder.Tracking {
	cp := *t
	cp.SentMilestones = make(map[reminder.Milestone]bool, len(t.SentMilestones))
	for m, sent := range t.SentMilestones {
		cp.SentMilestones[m] = sent
	}
	return &cp
}

func (r *fakeTrackingRepo) Get(_ context.Context, volunteerID string) (*reminder.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.getErr != nil {
		return nil, r.getErr
	}
	t, ok := r.records[volunteerID]
	if !ok {
		return nil, reminder.ErrTrackingNotFound
	}
	return copyTracking(t), nil
}

func (r *fakeTrackingRepo) Save(_ context.Context, t *reminder.Tracking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.writes++
	r.records[t.VolunteerID] = copyTracking(t)
	return nil
}

func (r *fakeTrackingRepo) sent(volunteerID string, m reminder.Milestone) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.records[volunteerID]
	return ok && t.SentMilestones[m]
}

type fakeHoursRepo struct {
	totals map[string]float64
	err    error
}

func (r *fakeHoursRepo) ApprovedTotals(context.Context) (map[string]float64, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.totals, nil
}

func (r *fakeHoursRepo) ApprovedTotalForVolunteer(_ context.Context, volunteerID string) (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.totals[volunteerID], nil
}

type fakeTelegramClient struct {
	mu       sync.Mutex
	messages map[int64][]string
}

func (c *fakeTelegramClient) SendMessage(recipientChatID int64, text string, _ *telebot.SendOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.messages == nil {
		c.messages = make(map[int64][]string)
	}
	c.messages[recipientChatID] = append(c.messages[recipientChatID], text)
	return nil
}

type reminderFixture struct {
	users     *fakeUserRepo
	notifs    *fakeNotificationRepo
	tracking  *fakeTrackingRepo
	guard     *DedupGuard
	reminders *ReminderService
}

// newReminderFixture seeds volunteer "vol-1" in orgs 1 and 2 with one coordinator in org 2
// and one outside it.
func newReminderFixture() *reminderFixture {
	f := &reminderFixture{
		users: newFakeUserRepo(
			&volunteer.User{ID: "vol-1", Role: volunteer.RoleVolunteer, FirstName: "Sam", LastName: "Rivera", OrganizationIDs: []string{"1", "2"}},
			&volunteer.User{ID: "vc-in", Role: volunteer.RoleCoordinator, OrganizationIDs: []string{"2", "9"}},
			&volunteer.User{ID: "vc-out", Role: volunteer.RoleCoordinator, OrganizationIDs: []string{"3"}},
		),
		notifs:   &fakeNotificationRepo{},
		tracking: newFakeTrackingRepo(),
		guard:    NewDedupGuard(0),
	}
	f.reminders = NewReminderService(f.users, f.notifs, f.tracking, f.guard, discardLogger(), 0)
	return f
}
