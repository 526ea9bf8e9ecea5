package service

import (
	"context"
	"time"

	"eclat/internal/domain"
	"eclat/internal/events"
	"eclat/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GiftCardService issues and redeems gift cards. Gift cards never touch the
// slot grid, so no schedule cache invalidation happens here.
type GiftCardService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewGiftCardService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *GiftCardService {
	return &GiftCardService{store: store, eventBus: eventBus, logger: logger}
}

// PurchaseGiftCard issues a new card with a generated code.
func (s *GiftCardService) PurchaseGiftCard(ctx context.Context, card *models.GiftCard) error {
	card.Code = uuid.NewString()
	card.Status = models.GiftCardIssued

	if err := s.store.CreateGiftCard(ctx, card); err != nil {
		return err
	}

	s.publishEvent(events.EventGiftCardIssued, card)
	return nil
}

// RedeemGiftCard marks an issued card as redeemed. A second redemption returns
// database.ErrAlreadyRedeemed.
func (s *GiftCardService) RedeemGiftCard(ctx context.Context, code string) (*models.GiftCard, error) {
	if err := s.store.RedeemGiftCard(ctx, code); err != nil {
		return nil, err
	}

	card, err := s.store.GetGiftCardByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventGiftCardRedeemed, card)
	return card, nil
}

func (s *GiftCardService) GetGiftCards(ctx context.Context) ([]*models.GiftCard, error) {
	return s.store.GetGiftCards(ctx)
}

func (s *GiftCardService) GetGiftCardByCode(ctx context.Context, code string) (*models.GiftCard, error) {
	return s.store.GetGiftCardByCode(ctx, code)
}

func (s *GiftCardService) publishEvent(eventType string, card *models.GiftCard) {
	if s.eventBus == nil {
		return
	}

	payload := map[string]any{
		"gift_card_id":    card.ID,
		"code":            card.Code,
		"amount_cents":    card.AmountCents,
		"purchaser_name":  card.PurchaserName,
		"purchaser_email": card.PurchaserEmail,
		"recipient_name":  card.RecipientName,
		"status":          card.Status,
		"at":              time.Now(),
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("code", card.Code).Str("event_type", eventType).Msg("publish event error")
	}
}
