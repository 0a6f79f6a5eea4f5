// Package ses provides email notification services via AWS SES.
// The advisory digest mails farmers their latest urgent insights.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "crop-advisory-engine/internal/config"
	"crop-advisory-engine/internal/models"
	"crop-advisory-engine/internal/utils"
)

// Service handles SES email operations.
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email.
type EmailParams struct {
	To        string
	Subject   string
	HTMLBody  string
	TextBody  string
	ReplyTo   string
	CC        []string
	BCC       []string
	ConfigSet string
}

// DigestParams contains data for an advisory digest email.
type DigestParams struct {
	FarmerName   string
	FarmerEmail  string
	Insights     []DigestInsight
	DashboardURL string
}

// DigestInsight is a single insight rendered in the digest.
type DigestInsight struct {
	PlotName    string
	Title       string
	Description string
	Priority    string
	ActionDate  string
}

// SendEmailResult contains the result of sending an email.
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service.
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	client := ses.NewFromConfig(cfg)

	return &Service{
		client:    client,
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email.
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	// Add HTML body if provided
	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	// Add text body if provided
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	// Add CC addresses
	if len(params.CC) > 0 {
		input.Destination.CcAddresses = params.CC
	}

	// Add BCC addresses
	if len(params.BCC) > 0 {
		input.Destination.BccAddresses = params.BCC
	}

	// Add reply-to
	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	// Add config set if specified
	if params.ConfigSet != "" {
		input.ConfigurationSetName = aws.String(params.ConfigSet)
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", *result.MessageId),
	)

	return &SendEmailResult{
		MessageID: *result.MessageId,
		SentAt:    time.Now(),
	}, nil
}

// SendAdvisoryDigest sends an advisory digest email to one farmer.
func (s *Service) SendAdvisoryDigest(ctx context.Context, params DigestParams) (*SendEmailResult, error) {
	htmlBody, err := s.renderDigestHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	textBody := s.renderDigestText(params)

	subject := fmt.Sprintf("Crop advisory for %s: %d actions need your attention", params.FarmerName, len(params.Insights))

	return s.SendEmail(ctx, EmailParams{
		To:       params.FarmerEmail,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// SendBatchDigests sends advisory digests to multiple farmers.
func (s *Service) SendBatchDigests(ctx context.Context, digests []DigestParams) ([]SendEmailResult, []error) {
	results := make([]SendEmailResult, 0, len(digests))
	errors := make([]error, 0)

	for _, digest := range digests {
		result, err := s.SendAdvisoryDigest(ctx, digest)
		if err != nil {
			errors = append(errors, fmt.Errorf("failed to send to %s: %w", digest.FarmerEmail, err))
			continue
		}
		results = append(results, *result)
	}

	utils.Logger.Info("Batch digests sent",
		zap.Int("total", len(digests)),
		zap.Int("success", len(results)),
		zap.Int("failed", len(errors)),
	)

	return results, errors
}

// BuildDigestParams assembles digest params from a farmer's cached
// insights. Only critical and warning insights make the email; normal
// ones stay in the app.
func BuildDigestParams(farmer *models.Farmer, records []*models.InsightRecord, dashboardURL string) DigestParams {
	insights := make([]DigestInsight, 0, len(records))

	for _, rec := range records {
		if rec.Priority == models.PriorityNormal {
			continue
		}
		insights = append(insights, DigestInsight{
			PlotName:    rec.PlotName,
			Title:       rec.Title,
			Description: rec.Description,
			Priority:    string(rec.Priority),
			ActionDate:  rec.ActionDate,
		})
	}

	return DigestParams{
		FarmerName:   farmer.Name,
		FarmerEmail:  farmer.Email,
		Insights:     insights,
		DashboardURL: dashboardURL,
	}
}

// renderDigestHTML renders the HTML email template.
func (s *Service) renderDigestHTML(params DigestParams) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #2e7d32 0%, #66bb6a 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .insight-card { background: white; border-radius: 8px; padding: 20px; margin: 15px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .insight-card h3 { margin: 0 0 10px 0; color: #2e7d32; }
        .insight-card .plot { color: #666; font-size: 14px; margin-bottom: 10px; }
        .insight-card .action-date { font-size: 12px; color: #999; margin-top: 10px; }
        .priority-critical { display: inline-block; background: #c62828; color: white; padding: 5px 12px; border-radius: 20px; font-weight: bold; font-size: 12px; }
        .priority-warning { display: inline-block; background: #ef6c00; color: white; padding: 5px 12px; border-radius: 20px; font-weight: bold; font-size: 12px; }
        .cta-button { display: inline-block; background: #2e7d32; color: white; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold; margin-top: 20px; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Your Crop Advisory</h1>
        <p>Hi {{.FarmerName}}, {{len .Insights}} actions need your attention</p>
    </div>
    <div class="content">
        <p>Based on your plots and the latest forecast, here is what needs doing:</p>

        {{range .Insights}}
        <div class="insight-card">
            <h3>{{.Title}}</h3>
            <p class="plot">{{.PlotName}}</p>
            <span class="priority-{{.Priority}}">{{.Priority}}</span>
            <p>{{.Description}}</p>
            <p class="action-date">Act by: {{.ActionDate}}</p>
        </div>
        {{end}}

        {{if .DashboardURL}}
        <div style="text-align: center;">
            <a href="{{.DashboardURL}}" class="cta-button">Open the App</a>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>This email was sent by Crop Advisory Engine</p>
        <p>You received this because urgent advisories were found for your plots.</p>
    </div>
</body>
</html>`

	t, err := template.New("advisory_digest").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// renderDigestText renders plain text version.
func (s *Service) renderDigestText(params DigestParams) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", params.FarmerName))
	buf.WriteString(fmt.Sprintf("%d advisories need your attention:\n\n", len(params.Insights)))

	for i, ins := range params.Insights {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s (%s)\n", i+1, ins.Priority, ins.Title, ins.PlotName))
		buf.WriteString(fmt.Sprintf("   %s\n", ins.Description))
		buf.WriteString(fmt.Sprintf("   Act by: %s\n\n", ins.ActionDate))
	}

	if params.DashboardURL != "" {
		buf.WriteString(fmt.Sprintf("Open the app: %s\n\n", params.DashboardURL))
	}

	buf.WriteString("Best regards,\nCrop Advisory Engine Team\n")

	return buf.String()
}

// VerifyEmailAddress verifies an email address for sending.
func (s *Service) VerifyEmailAddress(ctx context.Context, email string) error {
	input := &ses.VerifyEmailAddressInput{
		EmailAddress: aws.String(email),
	}

	_, err := s.client.VerifyEmailAddress(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	utils.Logger.Info("Email verification initiated", zap.String("email", email))
	return nil
}

// GetSendQuota returns the current SES sending quota.
func (s *Service) GetSendQuota(ctx context.Context) (*ses.GetSendQuotaOutput, error) {
	result, err := s.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get send quota: %w", err)
	}
	return result, nil
}
