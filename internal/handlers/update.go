package handlers

import "time"

// AttachmentKind tells voice notes apart from other media.
type AttachmentKind int

const (
	AttachmentNone AttachmentKind = iota
	AttachmentVoice
	AttachmentAudio
	AttachmentDocument
)

// Attachment is media sent along with a message.
type Attachment struct {
	Kind     AttachmentKind
	FileID   string
	Duration time.Duration
	MimeType string
}

// Update is one inbound message, already decoded from the transport.
type Update struct {
	ActorID   int64
	ChatID    int64
	MessageID int
	FirstName string
	Text      string
	// Command is the bot command without the slash, e.g. "add_card". Args
	// holds whatever followed it.
	Command    string
	Args       string
	Attachment *Attachment
}

// IsCommand reports whether the update is a bot command.
func (u Update) IsCommand() bool {
	return u.Command != ""
}

// Response is the single reply to an update.
type Response struct {
	Text string
	// DeleteInput asks the transport to remove the user's message, e.g. a PIN.
	DeleteInput bool
}
