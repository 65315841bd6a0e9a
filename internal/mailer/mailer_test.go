package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/FaizanHaider108/lookvisa/internal/config"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

type blockingSender struct{ release chan struct{} }

func (b *blockingSender) DialAndSend(m ...*gomail.Message) error {
	<-b.release
	return nil
}

func testListing() *domain.Listing {
	return &domain.Listing{
		ID:                   "l1",
		CountryForInvestment: "Portugal",
		InvestmentIndustry:   domain.IndustryRealEstate,
		MinimumInvestment:    "$250,000",
		ProjectDescription:   "<script>x</script>Seaside hotel",
		Status:               domain.StatusPublished,
	}
}

func TestNewSMTPMailer_IncompleteConfig(t *testing.T) {
	_, err := NewSMTPMailer(&config.SMTPConfig{Host: "smtp.example.com"}, logger.NewNop())
	assert.Error(t, err)

	m, err := NewSMTPMailer(&config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}, logger.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestRenderListingCreated(t *testing.T) {
	html, text, err := RenderListingCreated(testListing())
	require.NoError(t, err)

	assert.Contains(t, html, "Portugal")
	assert.Contains(t, html, "visible to investors")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, text, "$250,000")

	draft := testListing()
	draft.Status = domain.StatusDraft
	html, _, err = RenderListingCreated(draft)
	require.NoError(t, err)
	assert.Contains(t, html, "Publish it from your dashboard")
}

func TestSendListingCreated(t *testing.T) {
	s := &captureSender{}
	m := &SMTPMailer{from: "noreply@example.com", d: s, logger: logger.NewNop()}

	require.NoError(t, m.SendListingCreated(context.Background(), " sponsor@example.com ", testListing()))
	require.Len(t, s.sent, 1)
	assert.Equal(t, []string{"sponsor@example.com"}, s.sent[0].GetHeader("To"))
	assert.Equal(t, []string{listingCreatedSubject}, s.sent[0].GetHeader("Subject"))

	var raw bytes.Buffer
	_, err := s.sent[0].WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "text/plain")
}

func TestSendListingCreated_Errors(t *testing.T) {
	m := &SMTPMailer{from: "noreply@example.com", d: &captureSender{}, logger: logger.NewNop()}
	assert.ErrorIs(t, m.SendListingCreated(context.Background(), "", testListing()), ErrNoRecipient)

	failing := &SMTPMailer{from: "noreply@example.com", d: &captureSender{err: errors.New("dial failed")}, logger: logger.NewNop()}
	assert.Error(t, failing.SendListingCreated(context.Background(), "a@example.com", testListing()))

	b := &blockingSender{release: make(chan struct{})}
	defer close(b.release)
	slow := &SMTPMailer{from: "noreply@example.com", d: b, logger: logger.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, slow.SendListingCreated(ctx, "a@example.com", testListing()), context.Canceled)
}
