package app

import (
	"context"
	"fmt"
	"sort"

	"volunteer_feedback_reminders/internal/domain/hours"
	domainTelegram "volunteer_feedback_reminders/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// SweepResult summarises one pass over all volunteers.
type SweepResult struct {
	Volunteers    int
	Notifications int
	Failed        []string // volunteer IDs whose check returned an error
}

// SweepService runs reminder checks from approved-hour data: periodically for everyone,
// and for a single volunteer when an approval event arrives.
type SweepService struct {
	hoursRepo      hours.Repository
	reminders      *ReminderService
	alerts         domainTelegram.Client // optional
	alertRecipient int64
	logger         *logrus.Entry
}

func NewSweepService(hr hours.Repository, rs *ReminderService, alerts domainTelegram.Client, alertRecipient int64, logger *logrus.Entry) *SweepService {
	return &SweepService{
		hoursRepo:      hr,
		reminders:      rs,
		alerts:         alerts,
		alertRecipient: alertRecipient,
		logger:         logger.WithField("component", "sweep_service"),
	}
}

// Run checks every volunteer with approved hours. A failing volunteer does not stop the sweep.
func (s *SweepService) Run(ctx context.Context) (*SweepResult, error) {
	totals, err := s.hoursRepo.ApprovedTotals(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load approved hour totals")
		return nil, fmt.Errorf("failed to load approved hour totals: %w", err)
	}

	volunteerIDs := make([]string, 0, len(totals))
	for id := range totals {
		volunteerIDs = append(volunteerIDs, id)
	}
	sort.Strings(volunteerIDs)

	result := &SweepResult{Volunteers: len(volunteerIDs)}
	for _, id := range volunteerIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		sent, err := s.reminders.CheckAndSendFeedbackReminders(ctx, id, totals[id])
		if err != nil {
			s.logger.WithError(err).WithField("volunteer_id", id).Error("Reminder check failed during sweep")
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Notifications += sent
	}

	s.logger.WithFields(logrus.Fields{
		"volunteers":    result.Volunteers,
		"notifications": result.Notifications,
		"failed":        len(result.Failed),
	}).Info("Reminder sweep finished")

	if len(result.Failed) > 0 {
		s.alert(fmt.Sprintf("Feedback reminder sweep: %d of %d volunteer checks failed (%v). They will be retried on the next sweep.",
			len(result.Failed), result.Volunteers, result.Failed))
	}
	return result, nil
}

// HandleApproval re-checks one volunteer after their hours were approved.
// It matches hours.ApprovalHandler so store watchers can call it directly.
func (s *SweepService) HandleApproval(ctx context.Context, volunteerID string) {
	log := s.logger.WithField("volunteer_id", volunteerID)

	total, err := s.hoursRepo.ApprovedTotalForVolunteer(ctx, volunteerID)
	if err != nil {
		log.WithError(err).Error("Failed to load approved hours after approval event")
		return
	}
	sent, err := s.reminders.CheckAndSendFeedbackReminders(ctx, volunteerID, total)
	if err != nil {
		log.WithError(err).Error("Reminder check failed after approval event")
		s.alert(fmt.Sprintf("Feedback reminder check failed for volunteer %s: %v", volunteerID, err))
		return
	}
	if sent > 0 {
		log.WithField("notifications", sent).Info("Reminders sent after approval event")
	}
}

func (s *SweepService) alert(text string) {
	if s.alerts == nil || s.alertRecipient == 0 {
		return
	}
	if err := s.alerts.SendMessage(s.alertRecipient, text, nil); err != nil {
		s.logger.WithError(err).Warn("Failed to send alert to admin")
	}
}
