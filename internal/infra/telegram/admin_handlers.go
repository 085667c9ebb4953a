package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"volunteer_feedback_reminders/internal/app"
	"volunteer_feedback_reminders/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	msgUnauthorized = "Error: you are not allowed to run this command."
	resetCallbackID = "reset_reminders"
)

// RegisterAdminHandlers registers the reminder administration commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	resetBtn := (&telebot.ReplyMarkup{}).Data("Reset milestones", resetCallbackID)

	b.Handle("/reminder_status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/reminder_status",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}
		volunteerID, ok := volunteerArg(c.Args())
		if !ok {
			return c.Send("Usage: /reminder_status <volunteerId>")
		}
		handlerLogger = handlerLogger.WithField("volunteer_id", volunteerID)

		status, err := adminService.ReminderStatus(ctx, c.Sender().ID, volunteerID)
		if err != nil {
			return replyError(c, handlerLogger, err, "Failed to load reminder status")
		}

		markup := &telebot.ReplyMarkup{}
		markup.Inline(markup.Row(markup.Data(resetBtn.Text, resetBtn.Unique, volunteerID)))
		return c.Send(formatStatus(volunteerID, status), markup)
	})

	b.Handle("/check_reminders", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/check_reminders",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}
		volunteerID, ok := volunteerArg(c.Args())
		if !ok {
			return c.Send("Usage: /check_reminders <volunteerId>")
		}
		handlerLogger = handlerLogger.WithField("volunteer_id", volunteerID)

		total, sent, err := adminService.CheckReminders(ctx, c.Sender().ID, volunteerID)
		if err != nil {
			return replyError(c, handlerLogger, err, "Reminder check failed")
		}
		handlerLogger.WithFields(logrus.Fields{"approved_hours": total, "notifications": sent}).Info("Reminder check completed")
		return c.Send(fmt.Sprintf("Volunteer %s has %s approved hours. Notifications sent: %d.", volunteerID, formatHours(total), sent))
	})

	b.Handle("/reset_reminders", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/reset_reminders",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}
		volunteerID, ok := volunteerArg(c.Args())
		if !ok {
			return c.Send("Usage: /reset_reminders <volunteerId>")
		}
		return resetAndReply(ctx, c, adminService, volunteerID, handlerLogger.WithField("volunteer_id", volunteerID))
	})

	b.Handle(&resetBtn, func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "reset_button",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Respond(&telebot.CallbackResponse{Text: msgUnauthorized})
		}
		volunteerID := strings.TrimSpace(c.Callback().Data)
		if volunteerID == "" {
			return c.Respond(&telebot.CallbackResponse{Text: "Missing volunteer ID."})
		}
		if err := resetAndReply(ctx, c, adminService, volunteerID, handlerLogger.WithField("volunteer_id", volunteerID)); err != nil {
			return err
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Milestones reset."})
	})
}

func resetAndReply(ctx context.Context, c telebot.Context, adminService *app.AdminService, volunteerID string, log *logrus.Entry) error {
	if _, err := adminService.ResetReminders(ctx, c.Sender().ID, volunteerID); err != nil {
		return replyError(c, log, err, "Failed to reset reminder tracking")
	}
	log.Info("Reminder tracking reset by admin")
	return c.Send(fmt.Sprintf("Reminder milestones for volunteer %s were reset. The next check will send every reached milestone again.", volunteerID))
}

func replyError(c telebot.Context, log *logrus.Entry, err error, what string) error {
	logWithError := log.WithError(err)
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		logWithError.Warn("Admin not authorized (service level)")
		return c.Send(msgUnauthorized)
	case errors.Is(err, app.ErrEmptyVolunteerID):
		return c.Send("Error: volunteer ID must not be empty.")
	default:
		logWithError.Error(what)
		return c.Send(fmt.Sprintf("%s: %s", what, err.Error()))
	}
}

func volunteerArg(args []string) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	id := strings.TrimSpace(args[0])
	return id, id != ""
}

func formatHours(h float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".")
}

func formatStatus(volunteerID string, status *app.ReminderStatus) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Volunteer %s: %s approved hours\n", volunteerID, formatHours(status.ApprovedHours)))
	for _, m := range reminder.Milestones {
		state := "pending"
		switch {
		case status.Tracking.SentMilestones[m]:
			state = "sent"
		case status.ApprovedHours >= float64(m):
			state = "due"
		}
		b.WriteString(fmt.Sprintf("%s h: %s\n", m, state))
	}
	if status.Tracking.LastUpdated.IsZero() {
		b.WriteString("Never updated")
	} else {
		b.WriteString("Last updated: " + status.Tracking.LastUpdated.Format("2006-01-02 15:04"))
	}
	return b.String()
}
