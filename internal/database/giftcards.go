package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eclat/internal/models"
)

func (db *DB) CreateGiftCard(ctx context.Context, card *models.GiftCard) error {
	query := `INSERT INTO gift_cards (
				code, amount_cents, purchaser_name, purchaser_email,
				recipient_name, message, status, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		card.Code,
		card.AmountCents,
		card.PurchaserName,
		card.PurchaserEmail,
		card.RecipientName,
		card.Message,
		models.GiftCardIssued,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create gift card: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	card.ID = id
	card.Status = models.GiftCardIssued
	card.CreatedAt = now
	return nil
}

func (db *DB) GetGiftCards(ctx context.Context) ([]*models.GiftCard, error) {
	query := `SELECT id, code, amount_cents, purchaser_name, purchaser_email,
                     recipient_name, message, status, created_at, redeemed_at
              FROM gift_cards ORDER BY created_at DESC`
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get gift cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.GiftCard
	for rows.Next() {
		card, err := scanGiftCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (db *DB) GetGiftCardByCode(ctx context.Context, code string) (*models.GiftCard, error) {
	query := `SELECT id, code, amount_cents, purchaser_name, purchaser_email,
                     recipient_name, message, status, created_at, redeemed_at
              FROM gift_cards WHERE code = ?`
	card, err := scanGiftCard(db.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift card: %w", err)
	}
	return card, nil
}

// RedeemGiftCard transitions issued -> redeemed exactly once.
func (db *DB) RedeemGiftCard(ctx context.Context, code string) error {
	query := `UPDATE gift_cards SET status = ?, redeemed_at = ?
              WHERE code = ? AND status = ?`
	result, err := db.db.ExecContext(ctx, query,
		models.GiftCardRedeemed, time.Now(), code, models.GiftCardIssued)
	if err != nil {
		return fmt.Errorf("failed to redeem gift card: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := db.GetGiftCardByCode(ctx, code); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrAlreadyRedeemed
	}
	return nil
}

func scanGiftCard(row interface{ Scan(...any) error }) (*models.GiftCard, error) {
	card := &models.GiftCard{}
	var recipient, message sql.NullString
	var redeemedAt sql.NullTime
	err := row.Scan(
		&card.ID, &card.Code, &card.AmountCents, &card.PurchaserName, &card.PurchaserEmail,
		&recipient, &message, &card.Status, &card.CreatedAt, &redeemedAt,
	)
	if err != nil {
		return nil, err
	}
	card.RecipientName = recipient.String
	card.Message = message.String
	if redeemedAt.Valid {
		card.RedeemedAt = &redeemedAt.Time
	}
	return card, nil
}
