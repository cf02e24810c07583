// internal/app/system/notify/sinks.go
package notify

import (
	"context"
	"fmt"

	"github.com/dalemusser/placementhub/internal/app/system/mailer"
	"github.com/go-resty/resty/v2"
)

// MailSink emails the student.
type MailSink struct {
	Mailer   *mailer.Mailer
	SiteName string
}

func (s MailSink) Name() string { return "mail" }

func (s MailSink) Deliver(ctx context.Context, n PlacementNotice) error {
	if n.StudentEmail == "" {
		return fmt.Errorf("student %s has no email", n.StudentID.Hex())
	}
	msg := mailer.BuildPlacementEmail(mailer.PlacementEmailData{
		SiteName:      s.SiteName,
		StudentName:   n.StudentName,
		JobTitle:      n.JobTitle,
		Company:       n.Company,
		Location:      n.Location,
		JobType:       n.JobType,
		PackageAmount: n.PackageAmount,
	})
	msg.To = n.StudentEmail
	return s.Mailer.Send(ctx, msg)
}

// WebhookSink posts the notice as JSON to an external endpoint, such as an
// SMS gateway or institution integration.
type WebhookSink struct {
	client *resty.Client
	url    string
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		client: resty.New().SetRetryCount(2),
		url:    url,
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, n PlacementNotice) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"event":     "placement_added",
			"placement": n,
		}).
		Post(s.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %s", resp.Status())
	}
	return nil
}
