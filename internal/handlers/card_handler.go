package handlers

import (
	"context"
	"fmt"
	"strings"

	"finbot/internal/conversation"
	"finbot/internal/services"
	"finbot/internal/validator"
)

// FlowAddCard is the card registration wizard.
const FlowAddCard = "add_card"

const (
	fieldCardName   = "name"
	fieldLastFour   = "last_four"
	fieldClosingDay = "closing_day"
	fieldDueDay     = "due_day"
)

// CardHandler handles card commands and the registration wizard.
type CardHandler struct {
	userService services.UserServicer
	cardService services.CardServicer
	machine     *conversation.Machine
}

// NewCardHandler creates a new CardHandler and registers its flow on machine.
func NewCardHandler(userService services.UserServicer, cardService services.CardServicer, machine *conversation.Machine) *CardHandler {
	h := &CardHandler{
		userService: userService,
		cardService: cardService,
		machine:     machine,
	}
	machine.Register(h.addCardFlow())
	return h
}

func (h *CardHandler) addCardFlow() *conversation.Flow {
	return &conversation.Flow{
		ID: FlowAddCard,
		Steps: []conversation.Step{
			{
				Field:  fieldCardName,
				Prompt: "💳 What is the card's name? (e.g. Nubank)",
				Validate: func(input string, _ conversation.Fields) (any, error) {
					return validator.CardName(input)
				},
			},
			{
				Field:  fieldLastFour,
				Prompt: "What are the last 4 digits of the card?",
				Validate: func(input string, _ conversation.Fields) (any, error) {
					return validator.LastFour(input)
				},
			},
			{
				Field:  fieldClosingDay,
				Prompt: "On which day does the statement close? (1-31)",
				Validate: func(input string, _ conversation.Fields) (any, error) {
					return validator.ClosingDay(input)
				},
			},
			{
				Field:  fieldDueDay,
				Prompt: "On which day is the payment due? (1-31)",
				Validate: func(input string, _ conversation.Fields) (any, error) {
					return validator.DueDay(input)
				},
			},
		},
		Complete:      h.completeAddCard,
		CancelMessage: "Card registration cancelled.",
	}
}

// completeAddCard checks the session again since the wizard may outlive it.
func (h *CardHandler) completeAddCard(ctx context.Context, actor int64, fields conversation.Fields) (string, error) {
	user, err := h.userService.CheckSession(ctx, actor)
	if err != nil {
		return "", err
	}

	card, err := h.cardService.CreateCard(ctx, user.ID, validator.CardInput{
		Name:       fields.String(fieldCardName),
		LastFour:   fields.String(fieldLastFour),
		ClosingDay: fields.Int(fieldClosingDay),
		DueDay:     fields.Int(fieldDueDay),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Card saved!\n\n%s\n\nAdd another with /add_card or see all with /list_cards.",
		formatCard(card.ID, card.Name, card.LastFour, card.ClosingDay, card.DueDay)), nil
}

// AddCard handles /add_card.
func (h *CardHandler) AddCard(ctx context.Context, u Update) Response {
	if _, err := h.userService.CheckSession(ctx, u.ActorID); err != nil {
		return errorResponse(ctx, err)
	}

	reply, err := h.machine.Start(ctx, u.ActorID, FlowAddCard, nil)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return Response{Text: reply.Text}
}

// ListCards handles /list_cards.
func (h *CardHandler) ListCards(ctx context.Context, u Update) Response {
	user, err := h.userService.CheckSession(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}

	cards, err := h.cardService.ListCards(ctx, user.ID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	if len(cards) == 0 {
		return Response{Text: "You have no cards yet. Use /add_card to register one."}
	}

	var b strings.Builder
	b.WriteString("💳 Your cards:\n")
	for _, c := range cards {
		b.WriteString("\n")
		b.WriteString(formatCard(c.ID, c.Name, c.LastFour, c.ClosingDay, c.DueDay))
	}
	b.WriteString("\n\nRemove one with /delete_card <id>.")
	return Response{Text: b.String()}
}

// DeleteCard handles /delete_card <id>.
func (h *CardHandler) DeleteCard(ctx context.Context, u Update) Response {
	user, err := h.userService.CheckSession(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}

	id, err := parseID(u.Args, "Usage: /delete_card <id>. See the ids with /list_cards.")
	if err != nil {
		return errorResponse(ctx, err)
	}

	if err := h.cardService.DeleteCard(ctx, user.ID, id); err != nil {
		return errorResponse(ctx, err)
	}
	return Response{Text: "🗑️ Card removed."}
}

func formatCard(id uint, name, lastFour string, closingDay, dueDay int) string {
	return fmt.Sprintf("• #%d %s (•••• %s), closes on day %d, due on day %d", id, name, lastFour, closingDay, dueDay)
}
