package handlers

import (
	"context"
	"fmt"

	"finbot/internal/auth"
	"finbot/internal/conversation"
	apperrors "finbot/internal/errors"
	"finbot/internal/services"
	"finbot/internal/validator"
)

// Flow ids owned by AuthHandler.
const (
	FlowOnboarding = "onboarding"
	FlowLogin      = "login"
)

const (
	fieldPinHash    = "pin_hash"
	fieldPinConfirm = "pin_confirm"
	fieldPin        = "pin"
)

// AuthHandler handles PIN creation, login and cancellation.
type AuthHandler struct {
	userService services.UserServicer
	hasher      *auth.PinHasher
	machine     *conversation.Machine
}

// NewAuthHandler creates a new AuthHandler and registers its flows on machine.
func NewAuthHandler(userService services.UserServicer, hasher *auth.PinHasher, machine *conversation.Machine) *AuthHandler {
	h := &AuthHandler{
		userService: userService,
		hasher:      hasher,
		machine:     machine,
	}
	machine.Register(h.onboardingFlow())
	machine.Register(h.loginFlow())
	return h
}

// onboardingFlow asks for a PIN twice. Only the bcrypt hash of the first
// entry is kept between steps; the confirmation is checked against it.
func (h *AuthHandler) onboardingFlow() *conversation.Flow {
	return &conversation.Flow{
		ID: FlowOnboarding,
		Steps: []conversation.Step{
			{
				Field:     fieldPinHash,
				Prompt:    "Choose a PIN of 4 to 6 digits (e.g. 1234).",
				Sensitive: true,
				Validate: func(input string, _ conversation.Fields) (any, error) {
					pin, err := validator.Pin(input)
					if err != nil {
						return nil, err
					}
					hash, err := h.hasher.Hash(pin)
					if err != nil {
						return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
					}
					return hash, nil
				},
			},
			{
				Field:     fieldPinConfirm,
				Prompt:    "Confirm the PIN by typing it again:",
				Sensitive: true,
				Validate: func(input string, fields conversation.Fields) (any, error) {
					pin, err := validator.Pin(input)
					if err != nil {
						return nil, conversation.Rewind(apperrors.ErrPinMismatch)
					}
					ok, err := h.hasher.Verify(pin, fields.String(fieldPinHash))
					if err != nil {
						return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
					}
					if !ok {
						return nil, conversation.Rewind(apperrors.ErrPinMismatch)
					}
					return pin, nil
				},
			},
		},
		Complete: func(ctx context.Context, actor int64, fields conversation.Fields) (string, error) {
			if _, err := h.userService.CreateUser(ctx, actor, fields.String(fieldPinConfirm)); err != nil {
				return "", err
			}
			return onboardingText, nil
		},
		CancelMessage: "Ok, cancelled. You can start again with /start.",
	}
}

// loginFlow asks for the PIN until it is right or the account locks.
func (h *AuthHandler) loginFlow() *conversation.Flow {
	return &conversation.Flow{
		ID: FlowLogin,
		Steps: []conversation.Step{
			{
				Field:     fieldPin,
				Prompt:    "🔐 Enter your PIN:",
				Sensitive: true,
				Validate: func(input string, _ conversation.Fields) (any, error) {
					return validator.Pin(input)
				},
			},
		},
		Complete: func(ctx context.Context, actor int64, fields conversation.Fields) (string, error) {
			if _, err := h.userService.AttemptLogin(ctx, actor, fields.String(fieldPin)); err != nil {
				return "", err
			}
			return "✅ Logged in! Your session lasts 24 hours.", nil
		},
		CancelMessage: "Login cancelled. Use /login whenever you want.",
		HoldOnError: func(err error) bool {
			return apperrors.Is(err, apperrors.ErrInvalidPin)
		},
	}
}

const onboardingText = "✅ PIN created! Let's set up your cards.\n\n" +
	"1️⃣ Register your first card with /add_card.\n" +
	"2️⃣ See your cards with /list_cards.\n" +
	"3️⃣ Create categories with /add_category.\n\n" +
	"You can skip this for now and use these commands later. " +
	"Send a voice message to register an expense."

// Start handles /start: new users begin PIN creation, known users are sent to /login.
func (h *AuthHandler) Start(ctx context.Context, u Update) Response {
	exists, err := h.userService.Exists(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	if exists {
		return Response{Text: fmt.Sprintf("Hi%s! 👋\n\nYou already have a PIN. Use /login to sign in.", greetingName(u))}
	}

	reply, err := h.machine.Start(ctx, u.ActorID, FlowOnboarding, nil)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return Response{Text: fmt.Sprintf("Hi%s! 👋\n\nLet's activate your access.\n\n%s", greetingName(u), reply.Text)}
}

// Login handles /login. Unknown and locked accounts are answered right away.
func (h *AuthHandler) Login(ctx context.Context, u Update) Response {
	_, err := h.userService.CheckSession(ctx, u.ActorID)
	if err != nil && !apperrors.Is(err, apperrors.ErrSessionExpired) {
		return errorResponse(ctx, err)
	}

	reply, err := h.machine.Start(ctx, u.ActorID, FlowLogin, nil)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return Response{Text: reply.Text}
}

// Cancel handles /cancel for whatever flow is in progress.
func (h *AuthHandler) Cancel(ctx context.Context, u Update) Response {
	msg, active, err := h.machine.Cancel(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	if !active {
		return Response{Text: "Nothing to cancel."}
	}
	return Response{Text: msg}
}

func greetingName(u Update) string {
	if u.FirstName == "" {
		return ""
	}
	return " " + u.FirstName
}
