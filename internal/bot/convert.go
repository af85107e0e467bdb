// Package bot connects the Telegram Bot API to the update handlers: it decodes
// updates, serializes them per user and sends the replies.
package bot

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"finbot/internal/handlers"
)

// ToUpdate converts a Telegram update. Updates without a user message, such
// as edits or channel posts, are skipped.
func ToUpdate(tu tgbotapi.Update) (handlers.Update, bool) {
	msg := tu.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return handlers.Update{}, false
	}

	u := handlers.Update{
		ActorID:   msg.From.ID,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		FirstName: msg.From.FirstName,
		Text:      msg.Text,
	}
	if msg.IsCommand() {
		u.Command = strings.ToLower(msg.Command())
		u.Args = strings.TrimSpace(msg.CommandArguments())
	}

	switch {
	case msg.Voice != nil:
		u.Attachment = &handlers.Attachment{
			Kind:     handlers.AttachmentVoice,
			FileID:   msg.Voice.FileID,
			Duration: time.Duration(msg.Voice.Duration) * time.Second,
			MimeType: msg.Voice.MimeType,
		}
	case msg.Audio != nil:
		u.Attachment = &handlers.Attachment{
			Kind:     handlers.AttachmentAudio,
			FileID:   msg.Audio.FileID,
			Duration: time.Duration(msg.Audio.Duration) * time.Second,
			MimeType: msg.Audio.MimeType,
		}
	case msg.Document != nil:
		u.Attachment = &handlers.Attachment{
			Kind:     handlers.AttachmentDocument,
			FileID:   msg.Document.FileID,
			MimeType: msg.Document.MimeType,
		}
	case msg.Text == "":
		return handlers.Update{}, false
	}

	return u, true
}
