package services

import (
	"context"
	"sync"
	"testing"

	"finbot/internal/models"
	"finbot/internal/testutil"
	"finbot/internal/validator"
)

func validCardInput(name string) validator.CardInput {
	return validator.CardInput{Name: name, LastFour: "1234", ClosingDay: 10, DueDay: 17}
}

func TestCreateCard(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		user := testutil.CreateTestUser(t, db)
		card, err := svc.CreateCard(context.Background(), user.ID, validCardInput("  Nubank "))
		testutil.AssertNoError(t, err)

		if card.ID == 0 {
			t.Fatal("expected non-zero card ID")
		}
		if card.Name != "Nubank" {
			t.Errorf("expected trimmed name, got %q", card.Name)
		}
		if card.IsDebit {
			t.Error("expected a credit card")
		}
	})

	t.Run("invalid_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		user := testutil.CreateTestUser(t, db)
		in := validCardInput("Inter")
		in.LastFour = "12a4"
		_, err := svc.CreateCard(context.Background(), user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_DIGITS")

		in = validCardInput("Inter")
		in.DueDay = 0
		_, err = svc.CreateCard(context.Background(), user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_DUE_DAY")
	})

	t.Run("duplicate_name_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCardWithName(t, db, user.ID, "Nubank")

		_, err := svc.CreateCard(context.Background(), user.ID, validCardInput("NUBANK"))
		testutil.AssertAppError(t, err, "DUPLICATE_CARD")
	})

	t.Run("deleted_name_can_be_reused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		user := testutil.CreateTestUser(t, db)
		old := testutil.CreateTestCardWithName(t, db, user.ID, "Nubank")
		testutil.AssertNoError(t, svc.DeleteCard(context.Background(), user.ID, old.ID))

		_, err := svc.CreateCard(context.Background(), user.ID, validCardInput("nubank"))
		testutil.AssertNoError(t, err)
	})

	t.Run("same_name_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		testutil.CreateTestCardWithName(t, db, alice.ID, "Nubank")

		_, err := svc.CreateCard(context.Background(), bob.ID, validCardInput("Nubank"))
		testutil.AssertNoError(t, err)
	})

	t.Run("unknown_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		_, err := svc.CreateCard(context.Background(), 9999, validCardInput("Nubank"))
		testutil.AssertAppError(t, err, "NO_ACCOUNT")
	})

	t.Run("concurrent_duplicates_create_one", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		user := testutil.CreateTestUser(t, db)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.CreateCard(context.Background(), user.ID, validCardInput("Nubank"))
			}()
		}
		wg.Wait()

		var count int64
		db.Model(&models.Card{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected exactly 1 card, got %d", count)
		}
	})
}

func TestListCards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCardService(db, NewAuditService(db))

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	testutil.CreateTestCardWithName(t, db, user.ID, "Santander")
	testutil.CreateTestCardWithName(t, db, user.ID, "Itau")
	deleted := testutil.CreateTestCardWithName(t, db, user.ID, "Bradesco")
	testutil.CreateTestCardWithName(t, db, other.ID, "Other")
	db.Delete(deleted)

	cards, err := svc.ListCards(context.Background(), user.ID)
	testutil.AssertNoError(t, err)

	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Name != "Itau" || cards[1].Name != "Santander" {
		t.Errorf("expected cards ordered by name, got %s, %s", cards[0].Name, cards[1].Name)
	}
}

func TestDeleteCard(t *testing.T) {
	t.Run("soft_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, user.ID)

		testutil.AssertNoError(t, svc.DeleteCard(context.Background(), user.ID, card.ID))

		testutil.AssertSoftDeleted(t, db, &models.Card{}, card.ID)
		testutil.AssertAudited(t, db, user.ID, models.AuditActionDeleteCard)
	})

	t.Run("other_users_card", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, alice.ID)

		err := svc.DeleteCard(context.Background(), bob.ID, card.ID)
		testutil.AssertAppError(t, err, "CARD_NOT_FOUND")
	})

	t.Run("already_deleted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCardService(db, NewAuditService(db))

		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCard(t, db, user.ID)
		testutil.AssertNoError(t, svc.DeleteCard(context.Background(), user.ID, card.ID))

		err := svc.DeleteCard(context.Background(), user.ID, card.ID)
		testutil.AssertAppError(t, err, "CARD_NOT_FOUND")
	})
}
