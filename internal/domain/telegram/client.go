package telegram

import "gopkg.in/telebot.v3"

// Client sends messages via a Telegram bot. Used for admin replies and failure alerts.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
