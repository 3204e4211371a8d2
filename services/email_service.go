package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/formcraft/formcraft-backend/config"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// emailSender is the part of the Resend client we call.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailService sends form owners a notification for each accepted submission.
type EmailService struct {
	config  *config.EmailConfig
	emails  emailSender
	metrics *EmailMetrics
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress, "apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 2))
	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "formcraft_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formcraft_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "formcraft_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:  cfg,
		emails:  client.Emails,
		metrics: metrics,
	}
}

type submissionEmailData struct {
	FormName     string
	SubmittedAt  string
	Fields       []submissionEmailField
	DashboardURL string
}

type submissionEmailField struct {
	Label string
	Value string
}

// SendSubmissionNotification renders the accepted data in form field order.
// Values for keys not in the schema are skipped.
func (s *EmailService) SendSubmissionNotification(ctx context.Context, to string, form *types.Form, sub *types.Submission) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if to == "" {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("missing notification recipient")
	}

	data := submissionEmailData{
		FormName:    form.Name,
		SubmittedAt: sub.SubmittedAt.UTC().Format(time.RFC1123),
		Fields:      emailFields(form.Fields, sub.Data),
	}
	if s.config.DashboardURL != "" {
		data.DashboardURL = fmt.Sprintf("%s/forms/%s/submissions", s.config.DashboardURL, form.ID)
	}

	tmpl, err := template.New("submission").Parse(submissionEmailTemplate)
	if err != nil {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("failed to parse template: %w", err)
	}
	var html bytes.Buffer
	if err := tmpl.Execute(&html, data); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{to},
		Subject: fmt.Sprintf("New submission: %s", form.Name),
		Html:    html.String(),
	}

	if _, err := s.emails.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(to),
			"formID", form.ID)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Submission notification sent", "to", logger.MaskEmail(to), "formID", form.ID)
	return nil
}

func emailFields(fields types.Fields, data map[string]interface{}) []submissionEmailField {
	out := make([]submissionEmailField, 0, len(data))
	for _, f := range fields {
		v, ok := data[f.FieldID()]
		if !ok {
			continue
		}
		label := f.Spec().Label
		if label == "" {
			label = f.FieldID()
		}
		out = append(out, submissionEmailField{Label: label, Value: formatValue(v)})
	}
	return out
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, formatValue(p))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		if name, ok := val["name"].(string); ok {
			return name
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}

const submissionEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New submission</title>
    <style>
        body { font-family: sans-serif; background-color: #f7f7f7; color: #333333; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 24px; border-radius: 8px; }
        th { text-align: left; padding: 6px 12px 6px 0; color: #555555; vertical-align: top; }
        td { padding: 6px 0; }
        .button { display: inline-block; margin-top: 20px; padding: 10px 20px; background-color: #2F6FEB; color: #ffffff; border-radius: 6px; text-decoration: none; }
    </style>
</head>
<body>
    <div class="container">
        <h2>{{.FormName}} received a submission</h2>
        <p>{{.SubmittedAt}}</p>
        <table>
        {{range .Fields}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>
        {{end}}</table>
        {{if .DashboardURL}}<a href="{{.DashboardURL}}" class="button">View all submissions</a>{{end}}
    </div>
</body>
</html>`
