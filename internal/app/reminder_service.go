// internal/app/reminder_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"volunteer_feedback_reminders/internal/domain/notification"
	"volunteer_feedback_reminders/internal/domain/reminder"
	"volunteer_feedback_reminders/internal/domain/volunteer"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const reminderTitle = "Feedback Reminder"

// recipientRoles are the roles eligible to receive feedback reminders.
var recipientRoles = []volunteer.Role{volunteer.RoleCoordinator, volunteer.RoleOrgRep}

// ReminderService dispatches feedback reminders when a volunteer crosses an hour milestone.
type ReminderService struct {
	userRepo     volunteer.Repository
	notifRepo    notification.Repository
	trackingRepo reminder.Repository
	guard        CallGuard
	logger       *logrus.Entry
	checkTimeout time.Duration
	now          func() time.Time
}

func NewReminderService(
	ur volunteer.Repository,
	nr notification.Repository,
	tr reminder.Repository,
	guard CallGuard,
	logger *logrus.Entry,
	checkTimeout time.Duration, // zero disables the per-check deadline
) *ReminderService {
	return &ReminderService{
		userRepo:     ur,
		notifRepo:    nr,
		trackingRepo: tr,
		guard:        guard,
		logger:       logger.WithField("component", "reminder_service"),
		checkTimeout: checkTimeout,
		now:          time.Now,
	}
}

// CheckAndSendFeedbackReminders sends reminders for every milestone reached by approvedHours
// that has not been sent yet and returns the number of notifications created.
// Store failures are returned and leave the tracking record unchanged.
func (s *ReminderService) CheckAndSendFeedbackReminders(ctx context.Context, volunteerID string, approvedHours float64) (int, error) {
	if approvedHours <= 0 {
		return 0, nil
	}
	log := s.logger.WithFields(logrus.Fields{"volunteer_id": volunteerID, "approved_hours": approvedHours})

	proceed, err := s.guard.Begin(ctx, volunteerID, approvedHours)
	if err != nil {
		log.WithError(err).Error("Dedup guard unavailable")
		return 0, fmt.Errorf("failed to acquire reminder check for volunteer %s: %w", volunteerID, err)
	}
	if !proceed {
		log.Debug("Reminder check already processed or in flight, skipping")
		return 0, nil
	}

	completed := false
	defer func() {
		s.guard.Finish(context.WithoutCancel(ctx), volunteerID, approvedHours, completed)
	}()

	if s.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.checkTimeout)
		defer cancel()
	}

	tracking, err := s.GetReminderTracking(ctx, volunteerID)
	if err != nil {
		log.WithError(err).Error("Failed to load reminder tracking")
		return 0, err
	}

	due := tracking.Due(approvedHours)
	if len(due) == 0 {
		completed = true
		return 0, nil
	}
	log = log.WithField("milestones", reminder.JoinMilestones(due))

	sent, err := s.SendFeedbackReminders(ctx, volunteerID, due)
	if err != nil {
		log.WithError(err).Error("Failed to send feedback reminders, milestones stay unsent")
		return 0, err
	}

	patch := make(map[reminder.Milestone]bool, len(due))
	for _, m := range due {
		patch[m] = true
	}
	if _, err := s.UpdateReminderTracking(ctx, volunteerID, patch); err != nil {
		log.WithError(err).Error("Reminders sent but tracking update failed")
		return sent, err
	}

	completed = true
	log.WithField("notifications", sent).Info("Feedback reminders dispatched")
	return sent, nil
}

// SendFeedbackReminders creates one notification per coordinator or organization
// representative sharing an organization with the volunteer, covering all milestones at once.
// A missing volunteer or one without organizations yields 0 without error.
func (s *ReminderService) SendFeedbackReminders(ctx context.Context, volunteerID string, milestones []reminder.Milestone) (int, error) {
	if len(milestones) == 0 {
		return 0, nil
	}
	log := s.logger.WithFields(logrus.Fields{"volunteer_id": volunteerID, "milestones": reminder.JoinMilestones(milestones)})

	vol, err := s.userRepo.GetByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, volunteer.ErrUserNotFound) {
			log.Warn("Volunteer not found, no reminders sent")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get volunteer %s: %w", volunteerID, err)
	}
	if len(vol.OrganizationIDs) == 0 {
		log.Warn("Volunteer has no organizations, no reminders sent")
		return 0, nil
	}

	recipients, err := s.resolveRecipients(ctx, vol)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		log.Info("No coordinators or organization representatives share an organization with the volunteer")
		return 0, nil
	}

	content := fmt.Sprintf("%s has reached %s approved volunteer hours. Please take a moment to give them feedback.",
		vol.DisplayName(), reminder.JoinMilestones(milestones))
	date := s.now()

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range recipients {
		n := &notification.Notification{
			ReceiverID: r.ID,
			RelatedID:  vol.ID,
			Type:       notification.TypeReminder,
			Title:      reminderTitle,
			Content:    content,
			Read:       false,
			Date:       date,
		}
		g.Go(func() error {
			id, err := s.notifRepo.Create(gctx, n)
			if err != nil {
				return fmt.Errorf("failed to create reminder for receiver %s: %w", n.ReceiverID, err)
			}
			n.ID = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.WithField("recipients", len(recipients)).Debug("Reminder notifications created")
	return len(recipients), nil
}

// resolveRecipients returns coordinators and org reps sharing an organization with vol, deduplicated by ID.
func (s *ReminderService) resolveRecipients(ctx context.Context, vol *volunteer.User) ([]*volunteer.User, error) {
	seen := make(map[string]struct{})
	var recipients []*volunteer.User
	for _, role := range recipientRoles {
		users, err := s.userRepo.ListByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to list users with role %s: %w", role, err)
		}
		for _, u := range users {
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			if vol.SharesOrganization(u) {
				recipients = append(recipients, u)
			}
		}
	}
	return recipients, nil
}

// GetReminderTracking returns the persisted record, or an unsaved default when there is none.
func (s *ReminderService) GetReminderTracking(ctx context.Context, volunteerID string) (*reminder.Tracking, error) {
	t, err := s.trackingRepo.Get(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, reminder.ErrTrackingNotFound) {
			return reminder.NewTracking(volunteerID), nil
		}
		return nil, fmt.Errorf("failed to get reminder tracking for volunteer %s: %w", volunteerID, err)
	}
	return t, nil
}

// UpdateReminderTracking merges patch into the stored record and saves it. Last write wins.
func (s *ReminderService) UpdateReminderTracking(ctx context.Context, volunteerID string, patch map[reminder.Milestone]bool) (*reminder.Tracking, error) {
	t, err := s.GetReminderTracking(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	if err := t.Merge(patch); err != nil {
		return nil, err
	}
	t.LastUpdated = s.now()
	if err := s.trackingRepo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save reminder tracking for volunteer %s: %w", volunteerID, err)
	}
	return t, nil
}

// ResetVolunteerReminderTracking marks every milestone unsent and forgets cached check results,
// so the next check re-sends everything already reached.
func (s *ReminderService) ResetVolunteerReminderTracking(ctx context.Context, volunteerID string) (*reminder.Tracking, error) {
	t := reminder.NewTracking(volunteerID)
	t.LastUpdated = s.now()
	if err := s.trackingRepo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to reset reminder tracking for volunteer %s: %w", volunteerID, err)
	}
	if err := s.guard.Forget(ctx, volunteerID); err != nil {
		return nil, fmt.Errorf("failed to clear reminder cache for volunteer %s: %w", volunteerID, err)
	}
	s.logger.WithField("volunteer_id", volunteerID).Info("Reminder tracking reset")
	return t, nil
}
