package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "finbot/internal/errors"
	"finbot/internal/extraction"
	"finbot/internal/logger"
	"finbot/internal/services"
)

const transcriptPreviewLength = 400

// FileFetcher downloads a file sent to the bot.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string, w io.Writer) error
}

// VoiceConfig holds the voice pipeline settings.
type VoiceConfig struct {
	MaxDuration time.Duration
	// TempDir is where audio is downloaded; empty means os.TempDir.
	TempDir  string
	Currency string
}

// VoiceHandler turns voice notes into expenses.
type VoiceHandler struct {
	userService    services.UserServicer
	expenseService services.ExpenseServicer
	fetcher        FileFetcher
	cfg            VoiceConfig
}

// NewVoiceHandler creates a new VoiceHandler.
func NewVoiceHandler(userService services.UserServicer, expenseService services.ExpenseServicer, fetcher FileFetcher, cfg VoiceConfig) *VoiceHandler {
	if cfg.Currency == "" {
		cfg.Currency = "BRL"
	}
	return &VoiceHandler{
		userService:    userService,
		expenseService: expenseService,
		fetcher:        fetcher,
		cfg:            cfg,
	}
}

// HandleAudio processes a message carrying an attachment. The duration is
// checked before anything is downloaded, and the downloaded file is removed
// on every path.
func (h *VoiceHandler) HandleAudio(ctx context.Context, u Update) Response {
	user, err := h.userService.CheckSession(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}

	att := u.Attachment
	if att == nil || att.Kind != AttachmentVoice {
		return errorResponse(ctx, apperrors.ErrAudioFormatUnsupported)
	}
	if att.Duration > h.cfg.MaxDuration {
		return errorResponse(ctx, apperrors.WithMessage(apperrors.ErrAudioTooLong,
			fmt.Sprintf("The voice message is too long. The maximum is %d seconds.", int(h.cfg.MaxDuration.Seconds()))))
	}

	log, ctx := logger.WithContext(ctx, "user_id", user.ID, "file_id", att.FileID)

	path, err := h.download(ctx, att.FileID)
	if path != "" {
		defer func() {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warnw("failed to remove temp audio", "path", path, "error", rmErr)
			}
		}()
	}
	if err != nil {
		return errorResponse(ctx, apperrors.Wrap(apperrors.ErrTranscriptionFailed, err))
	}

	result, err := h.expenseService.ProcessVoice(ctx, user, path)
	if err != nil {
		return errorResponse(ctx, err)
	}

	log.Infow("voice note processed", "expenses", len(extraction.Expenses(result.Result)))
	return Response{Text: joinParagraphs(
		"📝 Transcription:\n\""+preview(result.Transcript)+"\"",
		h.summary(ctx, result.Result),
	)}
}

// download writes the file to a new temp file and returns its path. The path
// is returned even on failure when the file was created.
func (h *VoiceHandler) download(ctx context.Context, fileID string) (string, error) {
	f, err := os.CreateTemp(h.cfg.TempDir, "voice-*.oga")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	if err := h.fetcher.Fetch(ctx, fileID, f); err != nil {
		_ = f.Close()
		return path, fmt.Errorf("download voice %s: %w", fileID, err)
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

func (h *VoiceHandler) summary(ctx context.Context, result extraction.Result) string {
	switch r := result.(type) {
	case extraction.SingleExpense:
		return "💸 Expense found:\n" + h.formatExpense(r.Expense)
	case extraction.MultipleExpenses:
		var b strings.Builder
		fmt.Fprintf(&b, "💸 %d expenses found:", len(r.Expenses))
		total := decimal.Zero
		for _, e := range r.Expenses {
			b.WriteString("\n")
			b.WriteString(h.formatExpense(e))
			total = total.Add(e.Amount)
		}
		fmt.Fprintf(&b, "\n\nTotal: %s %s", h.cfg.Currency, total.StringFixed(2))
		return b.String()
	default:
		return renderError(ctx, apperrors.ErrExpenseNotDetected)
	}
}

func (h *VoiceHandler) formatExpense(e extraction.Expense) string {
	line := fmt.Sprintf("• %s: %s %s on %s", e.Description, h.cfg.Currency, e.Amount.StringFixed(2), e.Date.Format(extraction.DateLayout))
	if e.CategorySuggestion != "" {
		line += " · " + e.CategorySuggestion
	}
	if e.IsEssential {
		line += " ⭐"
	}
	return line
}

func preview(transcript string) string {
	text := strings.TrimSpace(transcript)
	if utf8.RuneCountInString(text) <= transcriptPreviewLength {
		return text
	}
	return string([]rune(text)[:transcriptPreviewLength-3]) + "..."
}
