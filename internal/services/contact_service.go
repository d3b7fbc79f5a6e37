package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/BradenHooton/portfolio/internal/metrics"
	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/go-playground/validator/v10"
)

const MaxContactMessageLength = 2000

// User-facing contact form messages.
const (
	msgContactRequired     = "All fields are required"
	msgContactInvalidEmail = "Please enter a valid email address"
	msgContactTooLong      = "Message is too long"
)

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactForm struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,contact_email"`
	Message string `validate:"required,max=2000"` // runes, after trimming
}

var contactValidate = newContactValidator()

func newContactValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return contactEmailPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateContactMessage trims msg in place and checks it against the form rules.
func ValidateContactMessage(msg *models.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	err := contactValidate.Struct(contactForm{Name: msg.Name, Email: msg.Email, Message: msg.Message})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("", msgContactRequired)
	}

	// required failures win over format failures, as the form reports them first
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return models.NewValidationError(strings.ToLower(fe.Field()), msgContactRequired)
		}
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "contact_email":
		return models.NewValidationError("email", msgContactInvalidEmail)
	case "max":
		return models.NewValidationError("message", msgContactTooLong)
	default:
		return models.NewValidationError(strings.ToLower(fe.Field()), msgContactRequired)
	}
}

// ContactService handles public contact-form submissions.
type ContactService struct {
	limiter *ContactRateLimiter
	mailer  Mailer
	logger  *slog.Logger
	metrics metrics.Recorder
}

func NewContactService(limiter *ContactRateLimiter, mailer Mailer, logger *slog.Logger, recorder metrics.Recorder) *ContactService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &ContactService{
		limiter: limiter,
		mailer:  mailer,
		logger:  logger,
		metrics: recorder,
	}
}

// Submit applies, in order: the per-IP rate limit, the mailer configuration
// check, form validation, the honeypot check, and delivery. Every call
// counts against the caller's limit, including ones that later fail.
func (s *ContactService) Submit(ctx context.Context, ip string, msg models.ContactMessage) error {
	if !s.limiter.Allow(ip) {
		s.metrics.RecordContactSubmission(metrics.ContactRateLimited)
		s.logger.Warn("contact submission rate limited", slog.String("ip", ip))
		return models.ErrRateLimitExceeded
	}

	if s.mailer == nil || !s.mailer.Configured() {
		s.metrics.RecordContactSubmission(metrics.ContactFailed)
		return models.ErrMailerNotConfigured
	}

	if err := ValidateContactMessage(&msg); err != nil {
		s.metrics.RecordContactSubmission(metrics.ContactInvalid)
		return err
	}

	if strings.TrimSpace(msg.Website) != "" {
		s.metrics.RecordContactSubmission(metrics.ContactHoneypot)
		s.logger.Warn("contact submission dropped by honeypot", slog.String("ip", ip))
		return nil
	}

	if err := s.mailer.SendContactMessage(ctx, msg, ip); err != nil {
		s.metrics.RecordContactSubmission(metrics.ContactFailed)
		return err
	}

	s.metrics.RecordContactSubmission(metrics.ContactSent)
	return nil
}
