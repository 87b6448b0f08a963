package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"tradievoice/internal/common/config"
	"tradievoice/internal/common/logger"
	"tradievoice/internal/profile"
	"tradievoice/internal/quote"
)

// SESAPI is the slice of the SES client the notifier uses.
type SESAPI interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SNSAPI is the slice of the SNS client the notifier uses.
type SNSAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier sends upsell alerts to the business owner when a large quote
// comes through. Delivery is best effort: failures are logged and never
// surfaced to the caller.
type Notifier struct {
	cfg    config.NotificationConfig
	ses    SESAPI
	sns    SNSAPI
	logger logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, sesClient SESAPI, snsClient SNSAPI, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"component": "upsell-notifier"}),
	}
}

// NotifyUpsell alerts the business owner about a quote flagged as an upsell
// opportunity. A fresh timeout context is derived so a cancelled request
// cannot cut the notification short.
func (n *Notifier) NotifyUpsell(q *quote.QuoteData, p *profile.BusinessProfile) {
	if !n.cfg.Enabled || q == nil || !q.UpsellOpportunity {
		return
	}

	timeout := time.Duration(n.cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	subject := fmt.Sprintf("Upsell opportunity: %s quote for $%.2f", q.CustomerName, q.TotalAmount)
	body := fmt.Sprintf(
		"A quote for %s came in at $%.2f, above the upsell threshold.\n\nNotes: %s\n",
		q.CustomerName, q.TotalAmount, q.Notes)

	if n.cfg.AWS.SES.Enabled && n.ses != nil && p != nil && p.Email != "" {
		n.sendEmail(ctx, p.Email, subject, body)
	}
	if n.cfg.AWS.SNS.Enabled && n.sns != nil && n.cfg.AWS.SNS.PhoneNumber != "" {
		n.sendSMS(ctx, subject)
	}
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) {
	input := &ses.SendEmailInput{
		Source: aws.String(n.cfg.AWS.SES.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	}

	if _, err := n.ses.SendEmail(ctx, input); err != nil {
		n.logger.Error("failed to send upsell email", map[string]interface{}{
			"recipient": to,
			"error":     err.Error(),
		})
		return
	}
	n.logger.Info("upsell email sent", map[string]interface{}{"recipient": to})
}

func (n *Notifier) sendSMS(ctx context.Context, message string) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(n.cfg.AWS.SNS.PhoneNumber),
		Message:     aws.String(message),
	}

	if _, err := n.sns.Publish(ctx, input); err != nil {
		n.logger.Error("failed to send upsell SMS", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	n.logger.Info("upsell SMS sent", nil)
}
