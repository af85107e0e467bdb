// Package validator provides the field rules for wizard input and card records,
// built on go-playground/validator with a few custom tags.
package validator

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"finbot/internal/auth"
	apperrors "finbot/internal/errors"
	"finbot/internal/models"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// CardInput is the validated shape of a card before it is persisted.
type CardInput struct {
	Name       string `validate:"required,max=50"`
	LastFour   string `validate:"len=4,digits"`
	ClosingDay int    `validate:"min=1,max=31"`
	DueDay     int    `validate:"min=1,max=31"`
}

// Get returns the shared validator with the custom tags registered.
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		registerCustom(instance)
	})
	return instance
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("digits", validateDigits)
	_ = v.RegisterValidation("pin", validatePin)
}

func validateDigits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func validatePin(fl validator.FieldLevel) bool {
	return auth.ValidPinFormat(fl.Field().String())
}

// Pin checks a PIN entry.
func Pin(input string) (string, error) {
	pin := strings.TrimSpace(input)
	if err := Get().Var(pin, "pin"); err != nil {
		return "", apperrors.ErrInvalidPinFormat
	}
	return pin, nil
}

// CardName trims input and rejects empty names or names over the limit.
func CardName(input string) (string, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return "", apperrors.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > models.CardNameMaxLength {
		return "", apperrors.WithMessage(apperrors.ErrNameRequired, "The name must have at most 50 characters.")
	}
	return name, nil
}

// LastFour accepts exactly four decimal digits.
func LastFour(input string) (string, error) {
	digits := strings.TrimSpace(input)
	if err := Get().Var(digits, "len=4,digits"); err != nil {
		return "", apperrors.ErrInvalidDigits
	}
	return digits, nil
}

// ClosingDay parses a closing day between 1 and 31.
func ClosingDay(input string) (int, error) {
	return dayOfMonth(input, apperrors.ErrInvalidClosingDay)
}

// DueDay parses a due day between 1 and 31.
func DueDay(input string) (int, error) {
	return dayOfMonth(input, apperrors.ErrInvalidDueDay)
}

func dayOfMonth(input string, sentinel *apperrors.AppError) (int, error) {
	raw := strings.TrimSpace(input)
	if err := Get().Var(raw, "digits"); err != nil {
		return 0, sentinel
	}
	day, err := strconv.Atoi(raw)
	if err != nil {
		return 0, sentinel
	}
	if err := Get().Var(day, "min=1,max=31"); err != nil {
		return 0, sentinel
	}
	return day, nil
}

// Card validates a complete card record, mapping the first failing field to its error code.
func Card(in CardInput) error {
	err := Get().Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	switch fieldErrs[0].Field() {
	case "Name":
		return apperrors.ErrNameRequired
	case "LastFour":
		return apperrors.ErrInvalidDigits
	case "ClosingDay":
		return apperrors.ErrInvalidClosingDay
	case "DueDay":
		return apperrors.ErrInvalidDueDay
	default:
		return apperrors.ErrInvalidInput
	}
}
