package handlers

import (
	"context"
	"testing"

	apperrors "finbot/internal/errors"
	"finbot/internal/models"
	"finbot/internal/validator"
)

func newCardRouter(users *mockUserService, cards *mockCardService) *Router {
	machine := newTestMachine()
	return NewRouter(machine,
		NewAuthHandler(users, newTestHasher(), machine),
		NewCardHandler(users, cards, machine),
		NewCategoryHandler(users, &mockCategoryService{}),
		NewVoiceHandler(users, &mockExpenseService{}, &fakeFetcher{}, VoiceConfig{}),
	)
}

func TestCardHandler_AddCard(t *testing.T) {
	ctx := context.Background()

	t.Run("completes wizard", func(t *testing.T) {
		var got validator.CardInput
		cards := &mockCardService{
			createCardFn: func(userID uint, in validator.CardInput) (*models.Card, error) {
				got = in
				return &models.Card{Base: models.Base{ID: 9}, Name: in.Name, LastFour: in.LastFour, ClosingDay: in.ClosingDay, DueDay: in.DueDay}, nil
			},
		}
		r := newCardRouter(&mockUserService{}, cards)

		resp := r.Handle(ctx, commandUpdate("add_card", ""))
		assertContains(t, resp.Text, "card's name")
		resp = r.Handle(ctx, textUpdate(" Nubank "))
		assertContains(t, resp.Text, "last 4 digits")
		resp = r.Handle(ctx, textUpdate("1234"))
		assertContains(t, resp.Text, "statement close")
		resp = r.Handle(ctx, textUpdate("10"))
		assertContains(t, resp.Text, "payment due")
		resp = r.Handle(ctx, textUpdate("17"))
		assertContains(t, resp.Text, "Card saved")
		assertContains(t, resp.Text, "#9 Nubank (•••• 1234)")

		want := validator.CardInput{Name: "Nubank", LastFour: "1234", ClosingDay: 10, DueDay: 17}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("invalid input stays on step", func(t *testing.T) {
		r := newCardRouter(&mockUserService{}, &mockCardService{})

		r.Handle(ctx, commandUpdate("add_card", ""))
		r.Handle(ctx, textUpdate("Nubank"))

		resp := r.Handle(ctx, textUpdate("12a4"))
		assertCode(t, resp.Text, "INVALID_DIGITS")

		resp = r.Handle(ctx, textUpdate("1234"))
		assertContains(t, resp.Text, "statement close")

		resp = r.Handle(ctx, textUpdate("32"))
		assertCode(t, resp.Text, "INVALID_CLOSING_DAY")

		r.Handle(ctx, textUpdate("31"))
		resp = r.Handle(ctx, textUpdate("0"))
		assertCode(t, resp.Text, "INVALID_DUE_DAY")
	})

	t.Run("empty name", func(t *testing.T) {
		r := newCardRouter(&mockUserService{}, &mockCardService{})

		r.Handle(ctx, commandUpdate("add_card", ""))
		resp := r.Handle(ctx, textUpdate("   "))
		assertCode(t, resp.Text, "NAME_REQUIRED")
	})

	t.Run("requires session", func(t *testing.T) {
		users := &mockUserService{
			checkSessionFn: func(int64) (*models.User, error) { return nil, apperrors.ErrSessionExpired },
		}
		r := newCardRouter(users, &mockCardService{})

		resp := r.Handle(ctx, commandUpdate("add_card", ""))
		assertCode(t, resp.Text, "SESSION_EXPIRED")

		resp = r.Handle(ctx, textUpdate("Nubank"))
		if resp.Text != unknownInputText {
			t.Errorf("expected no wizard to start, got %q", resp.Text)
		}
	})

	t.Run("session expiring mid wizard ends it", func(t *testing.T) {
		expired := false
		created := false
		users := &mockUserService{
			checkSessionFn: func(telegramID int64) (*models.User, error) {
				if expired {
					return nil, apperrors.ErrSessionExpired
				}
				return testUser(telegramID), nil
			},
		}
		cards := &mockCardService{
			createCardFn: func(uint, validator.CardInput) (*models.Card, error) {
				created = true
				return &models.Card{}, nil
			},
		}
		r := newCardRouter(users, cards)

		r.Handle(ctx, commandUpdate("add_card", ""))
		r.Handle(ctx, textUpdate("Nubank"))
		r.Handle(ctx, textUpdate("1234"))
		r.Handle(ctx, textUpdate("10"))
		expired = true

		resp := r.Handle(ctx, textUpdate("17"))
		assertCode(t, resp.Text, "SESSION_EXPIRED")
		if created {
			t.Error("expected no card to be created")
		}
	})

	t.Run("duplicate ends wizard", func(t *testing.T) {
		cards := &mockCardService{
			createCardFn: func(uint, validator.CardInput) (*models.Card, error) {
				return nil, apperrors.ErrDuplicateCard
			},
		}
		r := newCardRouter(&mockUserService{}, cards)

		r.Handle(ctx, commandUpdate("add_card", ""))
		for _, in := range []string{"Nubank", "1234", "10"} {
			r.Handle(ctx, textUpdate(in))
		}
		resp := r.Handle(ctx, textUpdate("17"))
		assertCode(t, resp.Text, "DUPLICATE_CARD")

		resp = r.Handle(ctx, textUpdate("17"))
		if resp.Text != unknownInputText {
			t.Errorf("expected wizard to be over, got %q", resp.Text)
		}
	})
}

func TestCardHandler_ListCards(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		r := newCardRouter(&mockUserService{}, &mockCardService{})

		resp := r.Handle(ctx, commandUpdate("list_cards", ""))
		assertContains(t, resp.Text, "no cards yet")
	})

	t.Run("lists cards", func(t *testing.T) {
		cards := &mockCardService{
			listCardsFn: func(uint) ([]models.Card, error) {
				return []models.Card{
					{Base: models.Base{ID: 2}, Name: "Itau", LastFour: "1111", ClosingDay: 5, DueDay: 12},
					{Base: models.Base{ID: 1}, Name: "Nubank", LastFour: "2222", ClosingDay: 10, DueDay: 17},
				}, nil
			},
		}
		r := newCardRouter(&mockUserService{}, cards)

		resp := r.Handle(ctx, commandUpdate("list_cards", ""))
		assertContains(t, resp.Text, "#2 Itau (•••• 1111), closes on day 5, due on day 12")
		assertContains(t, resp.Text, "#1 Nubank (•••• 2222)")
	})
}

func TestCardHandler_DeleteCard(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes", func(t *testing.T) {
		var deleted uint
		cards := &mockCardService{
			deleteCardFn: func(_ uint, cardID uint) error {
				deleted = cardID
				return nil
			},
		}
		r := newCardRouter(&mockUserService{}, cards)

		resp := r.Handle(ctx, commandUpdate("delete_card", "7"))
		assertContains(t, resp.Text, "Card removed")
		if deleted != 7 {
			t.Errorf("expected card 7 deleted, got %d", deleted)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		r := newCardRouter(&mockUserService{}, &mockCardService{})

		resp := r.Handle(ctx, commandUpdate("delete_card", ""))
		assertCode(t, resp.Text, "INVALID_INPUT")
		assertContains(t, resp.Text, "Usage: /delete_card")
	})

	t.Run("not found", func(t *testing.T) {
		cards := &mockCardService{
			deleteCardFn: func(uint, uint) error { return apperrors.ErrCardNotFound },
		}
		r := newCardRouter(&mockUserService{}, cards)

		resp := r.Handle(ctx, commandUpdate("delete_card", "99"))
		assertCode(t, resp.Text, "CARD_NOT_FOUND")
	})
}
