package database

import (
	"context"
	"testing"

	"eclat/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGiftCard() *models.GiftCard {
	return &models.GiftCard{
		Code:           uuid.NewString(),
		AmountCents:    7500,
		PurchaserName:  "Luc Martin",
		PurchaserEmail: "luc@example.com",
		RecipientName:  "Anne Petit",
		Message:        "Joyeux anniversaire",
	}
}

func TestCreateAndGetGiftCard(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	card := testGiftCard()
	require.NoError(t, db.CreateGiftCard(ctx, card))
	assert.Equal(t, models.GiftCardIssued, card.Status)

	got, err := db.GetGiftCardByCode(ctx, card.Code)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), got.AmountCents)
	assert.Nil(t, got.RedeemedAt)
}

func TestRedeemGiftCard(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	card := testGiftCard()
	require.NoError(t, db.CreateGiftCard(ctx, card))

	require.NoError(t, db.RedeemGiftCard(ctx, card.Code))

	got, err := db.GetGiftCardByCode(ctx, card.Code)
	require.NoError(t, err)
	assert.Equal(t, models.GiftCardRedeemed, got.Status)
	require.NotNil(t, got.RedeemedAt)

	// Second redemption fails.
	assert.ErrorIs(t, db.RedeemGiftCard(ctx, card.Code), ErrAlreadyRedeemed)
}

func TestRedeemUnknownGiftCard(t *testing.T) {
	db := setupTestDB(t)
	assert.ErrorIs(t, db.RedeemGiftCard(context.Background(), "missing"), ErrNotFound)
}

func TestGetGiftCards(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateGiftCard(ctx, testGiftCard()))
	require.NoError(t, db.CreateGiftCard(ctx, testGiftCard()))

	cards, err := db.GetGiftCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}
