package app

import (
	"context"
	"fmt"
	"strings"

	"volunteer_feedback_reminders/internal/domain/hours"
	"volunteer_feedback_reminders/internal/domain/reminder"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrEmptyVolunteerID = fmt.Errorf("volunteer ID must not be empty")

// ReminderStatus is what an admin sees for one volunteer.
type ReminderStatus struct {
	Tracking      *reminder.Tracking
	ApprovedHours float64
}

type AdminService struct {
	reminders       *ReminderService
	hoursRepo       hours.Repository
	adminTelegramID int64
}

func NewAdminService(rs *ReminderService, hr hours.Repository, adminID int64) *AdminService {
	return &AdminService{
		reminders:       rs,
		hoursRepo:       hr,
		adminTelegramID: adminID,
	}
}

func (s *AdminService) authorize(performingAdminID int64, volunteerID string) (string, error) {
	if performingAdminID != s.adminTelegramID {
		return "", ErrAdminNotAuthorized
	}
	volunteerID = strings.TrimSpace(volunteerID)
	if volunteerID == "" {
		return "", ErrEmptyVolunteerID
	}
	return volunteerID, nil
}

// ReminderStatus returns the volunteer's tracking record and current approved total.
func (s *AdminService) ReminderStatus(ctx context.Context, performingAdminID int64, volunteerID string) (*ReminderStatus, error) {
	volunteerID, err := s.authorize(performingAdminID, volunteerID)
	if err != nil {
		return nil, err
	}

	tracking, err := s.reminders.GetReminderTracking(ctx, volunteerID)
	if err != nil {
		return nil, err
	}
	total, err := s.hoursRepo.ApprovedTotalForVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approved hours for volunteer %s: %w", volunteerID, err)
	}
	return &ReminderStatus{Tracking: tracking, ApprovedHours: total}, nil
}

// CheckReminders runs a reminder check against the volunteer's current approved total.
func (s *AdminService) CheckReminders(ctx context.Context, performingAdminID int64, volunteerID string) (float64, int, error) {
	volunteerID, err := s.authorize(performingAdminID, volunteerID)
	if err != nil {
		return 0, 0, err
	}

	total, err := s.hoursRepo.ApprovedTotalForVolunteer(ctx, volunteerID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get approved hours for volunteer %s: %w", volunteerID, err)
	}
	sent, err := s.reminders.CheckAndSendFeedbackReminders(ctx, volunteerID, total)
	return total, sent, err
}

// ResetReminders clears the volunteer's sent milestones so they can be reminded again.
func (s *AdminService) ResetReminders(ctx context.Context, performingAdminID int64, volunteerID string) (*reminder.Tracking, error) {
	volunteerID, err := s.authorize(performingAdminID, volunteerID)
	if err != nil {
		return nil, err
	}
	return s.reminders.ResetVolunteerReminderTracking(ctx, volunteerID)
}
