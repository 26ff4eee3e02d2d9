package notification

import (
	"context"
	"strings"

	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/logging"
	"webinar_billing/internal/infrastructure/metrics"
	"webinar_billing/internal/usecase/interfaces"

	"github.com/rs/zerolog"
)

const (
	channelEmail    = "email"
	channelWhatsApp = "whatsapp"

	kindSuccess = "success"
	kindFailure = "failure"
)

// Content holds the deployment values rendered into notifications.
type Content struct {
	WebinarLink   string
	CommunityLink string
	SiteURL       string
	BrandName     string
	CountryCode   string
}

// Dispatcher sends registrant notifications. Either sender may be nil, in
// which case that channel is skipped.
type Dispatcher struct {
	email    EmailSender
	whatsapp MessageSender
	content  Content
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

var _ interfaces.INotificationDispatcher = (*Dispatcher)(nil)

func NewDispatcher(email EmailSender, whatsapp MessageSender, content Content, logger zerolog.Logger, m *metrics.Metrics) *Dispatcher {
	if content.BrandName == "" {
		content.BrandName = "Vinith Dcosta & Associates"
	}
	if content.CountryCode == "" {
		content.CountryCode = "91"
	}
	return &Dispatcher{
		email:    email,
		whatsapp: whatsapp,
		content:  content,
		log:      logging.Component(logger, "notification"),
		metrics:  m,
	}
}

// NotifySuccess sends the confirmation email and WhatsApp message.
func (d *Dispatcher) NotifySuccess(ctx context.Context, r entities.Registration) {
	d.sendSuccessEmail(ctx, r)
	d.sendSuccessWhatsApp(ctx, r)
}

// NotifyFailure sends the retry email.
func (d *Dispatcher) NotifyFailure(ctx context.Context, r entities.Registration) {
	log := d.log.With().Str("registration_id", r.ID).Str("kind", kindFailure).Logger()
	to := strings.TrimSpace(r.Email)
	if to == "" || d.email == nil {
		log.Info().Msg("SMTP not configured or email missing; skipping failure email")
		d.metrics.Notification(channelEmail, kindFailure, "skipped")
		return
	}
	if d.content.SiteURL == "" {
		log.Error().Msg("SITE_URL not set; cannot send failure email")
		d.metrics.Notification(channelEmail, kindFailure, "skipped")
		return
	}

	html, err := render(failureEmailTmpl, emailData{
		Name:    r.Name,
		SiteURL: d.content.SiteURL,
		Brand:   d.content.BrandName,
	})
	if err != nil {
		log.Error().Err(err).Msg("render failure email")
		d.metrics.Notification(channelEmail, kindFailure, "failed")
		return
	}
	d.deliverEmail(ctx, log, kindFailure, to, subjectFailure, html)
}

func (d *Dispatcher) sendSuccessEmail(ctx context.Context, r entities.Registration) {
	log := d.log.With().Str("registration_id", r.ID).Str("kind", kindSuccess).Logger()
	to := strings.TrimSpace(r.Email)
	if to == "" || d.email == nil {
		log.Info().Msg("SMTP not configured or email missing; skipping success email")
		d.metrics.Notification(channelEmail, kindSuccess, "skipped")
		return
	}
	if d.content.WebinarLink == "" {
		log.Error().Msg("WEBINAR_LINK not set; cannot send success email")
		d.metrics.Notification(channelEmail, kindSuccess, "skipped")
		return
	}

	html, err := render(successEmailTmpl, emailData{
		Name:          r.Name,
		WebinarLink:   d.content.WebinarLink,
		CommunityLink: d.content.CommunityLink,
		Brand:         d.content.BrandName,
	})
	if err != nil {
		log.Error().Err(err).Msg("render success email")
		d.metrics.Notification(channelEmail, kindSuccess, "failed")
		return
	}
	d.deliverEmail(ctx, log, kindSuccess, to, subjectSuccess, html)
}

func (d *Dispatcher) deliverEmail(ctx context.Context, log zerolog.Logger, kind, to, subject, html string) {
	if err := d.email.Send(ctx, to, subject, html); err != nil {
		log.Error().Err(err).Msg("email send failed")
		d.metrics.Notification(channelEmail, kind, "failed")
		return
	}
	log.Info().Msg("email sent")
	d.metrics.Notification(channelEmail, kind, "sent")
}

func (d *Dispatcher) sendSuccessWhatsApp(ctx context.Context, r entities.Registration) {
	log := d.log.With().Str("registration_id", r.ID).Str("kind", kindSuccess).Logger()
	to := entities.FormatPhone(r.WhatsApp, d.content.CountryCode)
	if d.whatsapp == nil || to == "" {
		log.Info().Msg("WhatsApp not configured or number missing; skipping")
		d.metrics.Notification(channelWhatsApp, kindSuccess, "skipped")
		return
	}
	if d.content.WebinarLink == "" {
		log.Error().Msg("WEBINAR_LINK not set; cannot send WhatsApp")
		d.metrics.Notification(channelWhatsApp, kindSuccess, "skipped")
		return
	}

	body := whatsAppText(r.Name, d.content.WebinarLink, d.content.CommunityLink)
	if err := d.whatsapp.SendText(ctx, to, body); err != nil {
		log.Error().Err(err).Msg("WhatsApp send failed")
		d.metrics.Notification(channelWhatsApp, kindSuccess, "failed")
		return
	}
	log.Info().Msg("WhatsApp sent")
	d.metrics.Notification(channelWhatsApp, kindSuccess, "sent")
}
