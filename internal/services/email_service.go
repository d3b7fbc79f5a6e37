package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BradenHooton/portfolio/internal/models"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/microcosm-cc/bluemonday"
)

// Mailer delivers contact-form messages to the site owner.
type Mailer interface {
	Configured() bool
	SendContactMessage(ctx context.Context, msg models.ContactMessage, senderIP string) error
}

// sesSender is the slice of the SES client the mailer uses.
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends contact messages through AWS SES.
type SESMailer struct {
	client      sesSender
	fromAddress string
	recipient   string
	sanitizer   *bluemonday.Policy
	logger      *slog.Logger
}

// NewSESMailer loads the default AWS credential chain for region.
func NewSESMailer(ctx context.Context, region, fromAddress, recipient string, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newSESMailer(ses.NewFromConfig(cfg), fromAddress, recipient, logger), nil
}

func newSESMailer(client sesSender, fromAddress, recipient string, logger *slog.Logger) *SESMailer {
	return &SESMailer{
		client:      client,
		fromAddress: fromAddress,
		recipient:   recipient,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger,
	}
}

// Configured reports whether both sender and recipient addresses are set.
func (m *SESMailer) Configured() bool {
	return m != nil && m.fromAddress != "" && m.recipient != ""
}

// SendContactMessage emails msg to the owner with Reply-To set to the visitor.
func (m *SESMailer) SendContactMessage(ctx context.Context, msg models.ContactMessage, senderIP string) error {
	if !m.Configured() {
		return models.ErrMailerNotConfigured
	}

	input := &ses.SendEmailInput{
		Source: aws.String(m.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{m.recipient},
		},
		ReplyToAddresses: []string{msg.Email},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(contactSubject(msg.Name)),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(m.contactHTML(msg, senderIP)),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(contactText(msg, senderIP)),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		m.logger.Error("failed to send contact email via SES",
			slog.String("from", pkglogger.SanitizedEmail(msg.Email)),
			slog.Any("error", err))
		return fmt.Errorf("%w: send contact email: %v", models.ErrUpstream, err)
	}

	m.logger.Info("contact email sent",
		slog.String("from", pkglogger.SanitizedEmail(msg.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

func contactSubject(name string) string {
	// header injection guard
	name = strings.NewReplacer("\r", " ", "\n", " ").Replace(name)
	return "New message from " + name
}

func (m *SESMailer) contactHTML(msg models.ContactMessage, senderIP string) string {
	clean := m.sanitizer.Sanitize
	body := strings.ReplaceAll(clean(msg.Message), "\n", "<br>")

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h2>New Contact Form Submission</h2>
    <p><strong>Name:</strong> %s</p>
    <p><strong>Email:</strong> %s</p>
    <p><strong>Message:</strong></p>
    <div style="background: #f5f5f5; padding: 12px; border-radius: 4px;">%s</div>
    <hr>
    <p style="color: #666; font-size: 12px;">Sent from your portfolio contact form. Sender IP: %s</p>
</body>
</html>
`, clean(msg.Name), clean(msg.Email), body, clean(senderIP))
}

func contactText(msg models.ContactMessage, senderIP string) string {
	return fmt.Sprintf("New contact form submission\n\nName: %s\nEmail: %s\n\nMessage:\n%s\n\n--\nSender IP: %s\n",
		msg.Name, msg.Email, msg.Message, senderIP)
}
