// Package notification sends transactional email to clients over Amazon SES.
package notification

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
)

// Mailer sends booking lifecycle email
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, booking *domain.Booking) error
	SendPaymentReceipt(ctx context.Context, booking *domain.Booking) error
}

// SESMailer implements Mailer using Amazon SES v2
type SESMailer struct {
	client *sesv2.Client
	sender string
	logger *zap.Logger
}

// NewSESMailer creates a new SES mailer using the default AWS credential chain
func NewSESMailer(ctx context.Context, region, sender string, logger *zap.Logger) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESMailer{
		client: sesv2.NewFromConfig(cfg),
		sender: sender,
		logger: logger,
	}, nil
}

func (m *SESMailer) SendBookingConfirmation(ctx context.Context, booking *domain.Booking) error {
	subject := fmt.Sprintf("Votre réservation %s est confirmée", shortID(booking))
	body := fmt.Sprintf(
		"Bonjour,\n\nVotre course %s est confirmée.\n\nDépart : %s\nArrivée : %s\nMontant estimé : %.2f %s\n\nMissRay Cab",
		shortID(booking), booking.PickupAddress, booking.DropoffAddress, booking.Amount, booking.Currency)
	return m.send(ctx, booking.ClientEmail, subject, body)
}

func (m *SESMailer) SendPaymentReceipt(ctx context.Context, booking *domain.Booking) error {
	subject := fmt.Sprintf("Reçu de paiement pour la course %s", shortID(booking))
	body := fmt.Sprintf(
		"Bonjour,\n\nNous avons bien reçu votre paiement de %.2f %s pour la course %s.\n\nMerci de votre confiance.\n\nMissRay Cab",
		booking.Amount, booking.Currency, shortID(booking))
	return m.send(ctx, booking.ClientEmail, subject, body)
}

func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &m.sender,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &body},
				},
			},
		},
	})
	if err != nil {
		m.logger.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", to),
			zap.String("subject", subject))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func shortID(b *domain.Booking) string {
	id := b.ID.String()
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// NoopMailer discards all email; used when mailing is disabled
type NoopMailer struct{}

func (NoopMailer) SendBookingConfirmation(ctx context.Context, booking *domain.Booking) error {
	return nil
}

func (NoopMailer) SendPaymentReceipt(ctx context.Context, booking *domain.Booking) error {
	return nil
}
