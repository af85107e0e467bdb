package services

import (
	"context"
	"time"

	apperrors "finbot/internal/errors"
	"finbot/internal/events"
	"finbot/internal/extraction"
	"finbot/internal/logger"
	"finbot/internal/models"
	"finbot/internal/uuid"
)

// expenseService runs a voice note through transcription and extraction.
// It never writes to the database.
type expenseService struct {
	transcriber Transcriber
	extractor   Extractor
	publisher   events.Publisher
	timeout     time.Duration
	loc         *time.Location
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseServicer. Each external call is
// bounded by timeout; reference dates are taken in loc.
func NewExpenseService(transcriber Transcriber, extractor Extractor, publisher events.Publisher, timeout time.Duration, loc *time.Location) ExpenseServicer {
	if loc == nil {
		loc = time.UTC
	}
	return &expenseService{
		transcriber: transcriber,
		extractor:   extractor,
		publisher:   publisher,
		timeout:     timeout,
		loc:         loc,
		now:         time.Now,
	}
}

// ProcessVoice transcribes the audio at audioPath and extracts the expenses it describes.
func (s *expenseService) ProcessVoice(ctx context.Context, user *models.User, audioPath string) (*VoiceResult, error) {
	transcript, err := s.transcribe(ctx, audioPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscriptionFailed, err)
	}

	reference := s.now().In(s.loc)
	result, err := s.extract(ctx, transcript, reference)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExtractionFailed, err)
	}

	if expenses := extraction.Expenses(result); len(expenses) > 0 {
		s.publish(ctx, user, transcript, expenses)
	}

	return &VoiceResult{Transcript: transcript, Result: result}, nil
}

func (s *expenseService) transcribe(ctx context.Context, path string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.transcriber.Transcribe(ctx, path)
}

func (s *expenseService) extract(ctx context.Context, transcript string, reference time.Time) (extraction.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.extractor.Extract(ctx, transcript, reference)
}

func (s *expenseService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// publish emits an expense.extracted event. A broker failure is logged and
// does not fail the voice note.
func (s *expenseService) publish(ctx context.Context, user *models.User, transcript string, expenses []extraction.Expense) {
	if s.publisher == nil {
		return
	}

	event := events.ExpenseExtractedEvent{
		EventID:    uuid.New(),
		UserID:     user.ID,
		TelegramID: user.TelegramID,
		Transcript: transcript,
		Expenses:   expenses,
		OccurredAt: s.now().UTC(),
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.publisher.PublishExpenseExtracted(ctx, event); err != nil {
		logger.Get().Warnw("failed to publish expense event",
			"error", err,
			"user_id", user.ID,
			"event_id", event.EventID,
		)
	}
}
