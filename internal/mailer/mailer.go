package mailer

import (
	"fmt"

	"eclat/internal/config"
	"eclat/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends transactional email through a plain SMTP relay.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	logger *zerolog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func appointmentLines(apt *models.Appointment) string {
	return fmt.Sprintf(
		"Prestation : %s\nDate : %s\nHeure : %s\nRéférence : %s\n",
		apt.ServiceName,
		apt.Date.Format(models.DateLayout),
		apt.StartTime,
		apt.Reference,
	)
}

func (m *SMTPMailer) SendBookingConfirmation(apt *models.Appointment) error {
	if apt.ClientEmail == "" {
		return nil
	}
	body := fmt.Sprintf(
		"Bonjour %s,\n\nVotre rendez-vous est enregistré.\n\n%s\nÀ très bientôt,\nInstitut Éclat\n",
		apt.ClientName,
		appointmentLines(apt),
	)
	return m.send(apt.ClientEmail, "Confirmation de votre rendez-vous", body)
}

func (m *SMTPMailer) SendAdminNotification(apt *models.Appointment) error {
	if m.cfg.AdminEmail == "" {
		return nil
	}
	body := fmt.Sprintf(
		"Nouveau rendez-vous.\n\nClient : %s (%s, %s)\n%s",
		apt.ClientName,
		apt.ClientEmail,
		apt.ClientPhone,
		appointmentLines(apt),
	)
	return m.send(m.cfg.AdminEmail, "Nouveau rendez-vous", body)
}

func (m *SMTPMailer) SendReminder(apt *models.Appointment) error {
	if apt.ClientEmail == "" {
		return nil
	}
	body := fmt.Sprintf(
		"Bonjour %s,\n\nPetit rappel de votre rendez-vous demain.\n\n%s\nÀ demain,\nInstitut Éclat\n",
		apt.ClientName,
		appointmentLines(apt),
	)
	return m.send(apt.ClientEmail, "Rappel de votre rendez-vous", body)
}

func (m *SMTPMailer) SendGiftCard(card *models.GiftCard) error {
	if card.PurchaserEmail == "" {
		return nil
	}
	body := fmt.Sprintf(
		"Bonjour %s,\n\nVotre carte cadeau est prête.\n\nCode : %s\nMontant : %.2f €\nPour : %s\n\nMerci de votre confiance,\nInstitut Éclat\n",
		card.PurchaserName,
		card.Code,
		float64(card.AmountCents)/100,
		card.RecipientName,
	)
	return m.send(card.PurchaserEmail, "Votre carte cadeau", body)
}

// NoopMailer is used when SMTP is disabled; it logs instead of sending.
type NoopMailer struct {
	logger *zerolog.Logger
}

func NewNoopMailer(logger *zerolog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

func (n *NoopMailer) SendBookingConfirmation(apt *models.Appointment) error {
	n.logger.Debug().Str("reference", apt.Reference).Msg("smtp disabled, skipping booking confirmation")
	return nil
}

func (n *NoopMailer) SendAdminNotification(apt *models.Appointment) error {
	n.logger.Debug().Str("reference", apt.Reference).Msg("smtp disabled, skipping admin notification")
	return nil
}

func (n *NoopMailer) SendReminder(apt *models.Appointment) error {
	n.logger.Debug().Str("reference", apt.Reference).Msg("smtp disabled, skipping reminder")
	return nil
}

func (n *NoopMailer) SendGiftCard(card *models.GiftCard) error {
	n.logger.Debug().Str("code", card.Code).Msg("smtp disabled, skipping gift card email")
	return nil
}
