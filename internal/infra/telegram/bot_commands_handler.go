// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			return c.Send("Hi " + c.Sender().FirstName + "! Feedback reminders are running. Use /help for the command list.")
		}
		logCtx.Info("User is unknown")
		return c.Send("This bot administers volunteer feedback reminders and only answers its administrator.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID != adminTelegramID {
			return c.Send("No commands are available to you.")
		}
		return c.Send(adminHelp(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}

func adminHelp() string {
	var helpText strings.Builder
	helpText.WriteString("Admin commands:\n\n")
	helpText.WriteString("`/reminder_status <volunteerId>`\n - Approved hours and which milestones were already reminded.\n\n")
	helpText.WriteString("`/check_reminders <volunteerId>`\n - Run a reminder check now against current approved hours.\n\n")
	helpText.WriteString("`/reset_reminders <volunteerId>`\n - Mark every milestone unsent so reminders go out again.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return helpText.String()
}
