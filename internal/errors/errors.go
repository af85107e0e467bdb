// Package errors provides the error taxonomy for the finbot assistant.
// Every failure that reaches the chat surface is an AppError with a stable
// code, so replies stay consistent and never leak internal details.
package errors

import "errors"

// AppError represents a structured application error with a stable code,
// a user-facing message, and an optional internal cause.
type AppError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		Internal: sentinel.Internal,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries the same code as sentinel.
func Is(err error, sentinel *AppError) bool {
	return err != nil && CodeOf(err) == sentinel.Code
}

// Authentication errors.
var (
	ErrNoAccount         = &AppError{Code: "NO_ACCOUNT", Message: "You don't have a PIN yet. Use /start to create one."}
	ErrAccountLocked     = &AppError{Code: "ACCOUNT_LOCKED", Message: "Too many wrong attempts. Your account is locked for 15 minutes."}
	ErrSessionExpired    = &AppError{Code: "SESSION_EXPIRED", Message: "Your session has expired. Use /login to sign in again."}
	ErrInvalidPinFormat  = &AppError{Code: "INVALID_PIN_FORMAT", Message: "The PIN must have 4 to 6 digits."}
	ErrInvalidPin        = &AppError{Code: "INVALID_PIN", Message: "Wrong PIN."}
	ErrPinMismatch       = &AppError{Code: "PIN_MISMATCH", Message: "The PINs don't match. Let's start over."}
	ErrAlreadyRegistered = &AppError{Code: "ALREADY_REGISTERED", Message: "You already have a PIN. Use /login to sign in."}
)

// Card errors.
var (
	ErrNameRequired      = &AppError{Code: "NAME_REQUIRED", Message: "The name cannot be empty."}
	ErrInvalidDigits     = &AppError{Code: "INVALID_DIGITS", Message: "Send exactly the last 4 digits of the card."}
	ErrInvalidClosingDay = &AppError{Code: "INVALID_CLOSING_DAY", Message: "The closing day must be a number between 1 and 31."}
	ErrInvalidDueDay     = &AppError{Code: "INVALID_DUE_DAY", Message: "The due day must be a number between 1 and 31."}
	ErrDuplicateCard     = &AppError{Code: "DUPLICATE_CARD", Message: "You already have a card with this name."}
	ErrCardNotFound      = &AppError{Code: "CARD_NOT_FOUND", Message: "Card not found."}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found."}
	ErrCannotDeleteDefault = &AppError{Code: "CANNOT_DELETE_DEFAULT", Message: "Default categories cannot be deleted."}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "You already have a category with this name."}
)

// Voice pipeline errors.
var (
	ErrAudioTooLong           = &AppError{Code: "AUDIO_TOO_LONG", Message: "The voice message is too long. Send one of up to 60 seconds."}
	ErrAudioFormatUnsupported = &AppError{Code: "AUDIO_FORMAT_UNSUPPORTED", Message: "Only voice messages are supported. Hold the microphone button to record one."}
	ErrTranscriptionFailed    = &AppError{Code: "TRANSCRIPTION_FAILED", Message: "I couldn't transcribe your audio. Please try again."}
	ErrExtractionFailed       = &AppError{Code: "EXTRACTION_FAILED", Message: "I couldn't process the transcription. Please try again."}
	ErrExpenseNotDetected     = &AppError{Code: "EXPENSE_NOT_DETECTED", Message: "I couldn't find an expense in your message."}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input."}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Something went wrong. Please try again later."}
)
