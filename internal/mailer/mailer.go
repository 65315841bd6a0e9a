package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/FaizanHaider108/lookvisa/internal/config"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipient = errors.New("no recipient provided for email")

const listingCreatedSubject = "Your investment listing has been created"

var listingCreatedTmpl = template.Must(template.New("listing_created").Parse(`<html>
<body>
<h2>Your listing is saved</h2>
<p>Your {{.Industry}} listing for {{.Country}} was created with status <b>{{.Status}}</b>.</p>
<p>Minimum investment: {{.MinimumInvestment}}</p>
<p>{{.Description}}</p>
{{if .Published}}<p>It is visible to investors for 30 days.</p>{{else}}<p>Publish it from your dashboard when you are ready.</p>{{end}}
</body>
</html>`))

type listingCreatedView struct {
	Industry          string
	Country           string
	Status            string
	MinimumInvestment string
	Description       string
	Published         bool
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers transactional listing mail over SMTP.
type SMTPMailer struct {
	from   string
	d      sender
	logger *logger.Logger
}

func NewSMTPMailer(cfg *config.SMTPConfig, log *logger.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	return &SMTPMailer{from: cfg.From, d: d, logger: log.Named("mailer")}, nil
}

// RenderListingCreated returns the HTML and plain text bodies of the listing created email.
func RenderListingCreated(listing *domain.Listing) (string, string, error) {
	view := listingCreatedView{
		Industry:          string(listing.InvestmentIndustry),
		Country:           listing.CountryForInvestment,
		Status:            string(listing.Status),
		MinimumInvestment: listing.MinimumInvestment,
		Description:       listing.ProjectDescription,
		Published:         listing.Status == domain.StatusPublished,
	}
	var buf bytes.Buffer
	if err := listingCreatedTmpl.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("failed to render listing email: %w", err)
	}
	text := fmt.Sprintf("Your %s listing for %s was created with status %s.\nMinimum investment: %s\n",
		view.Industry, view.Country, view.Status, view.MinimumInvestment)
	return buf.String(), text, nil
}

func (m *SMTPMailer) SendListingCreated(ctx context.Context, to string, listing *domain.Listing) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoRecipient
	}
	html, text, err := RenderListingCreated(listing)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", listingCreatedSubject)
	msg.SetBody("text/html", html)
	msg.AddAlternative("text/plain", text)

	done := make(chan error, 1)
	go func() {
		done <- m.d.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		m.logger.Warn("Email sending cancelled or timed out", zap.String("to", to), zap.Error(ctx.Err()))
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			m.logger.Error("Failed to send email", zap.String("to", to), zap.Error(err))
			return fmt.Errorf("failed to send email: %w", err)
		}
	}
	m.logger.Info("Listing created email sent", zap.String("to", to), zap.String("listing_id", listing.ID))
	return nil
}
