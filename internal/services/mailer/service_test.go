package mailer

import (
	"context"
	"encoding/base64"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
)

func newTestMailer() (*Service, *capturedSend) {
	cfg := &common.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "memos@example.com",
		Password: "secret",
		From:     "memos@example.com",
		FromName: "Coverscribe",
		UseTLS:   true,
	}
	svc := NewService(cfg, arbor.NewLogger())
	captured := &capturedSend{}
	svc.send = captured.send
	return svc, captured
}

type capturedSend struct {
	addr string
	to   string
	msg  string
}

func (c *capturedSend) send(addr string, _ smtp.Auth, _, to, msg string, _ bool) error {
	c.addr = addr
	c.to = to
	c.msg = msg
	return nil
}

func TestSendReportHTMLOnly(t *testing.T) {
	svc, captured := newTestMailer()

	html := "<div class=\"memo\"><h1>ACME</h1></div>"
	err := svc.SendReport(context.Background(), "reader@example.com", "ACME Initiation", html, nil)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", captured.addr)
	assert.Equal(t, "reader@example.com", captured.to)
	assert.Contains(t, captured.msg, "Subject: ACME Initiation\r\n")
	assert.Contains(t, captured.msg, "From: Coverscribe <memos@example.com>\r\n")
	assert.Contains(t, captured.msg, "Content-Type: text/html")
	assert.NotContains(t, captured.msg, "multipart/mixed")
	assert.Contains(t, captured.msg, base64.StdEncoding.EncodeToString([]byte(html))[:40])
}

func TestSendReportWithPDFAttachment(t *testing.T) {
	svc, captured := newTestMailer()

	pdf := []byte("%PDF-1.7 fake")
	err := svc.SendReport(context.Background(), "reader@example.com", "ACME Initiation", "<p>memo</p>", pdf)
	require.NoError(t, err)

	assert.Contains(t, captured.msg, "multipart/mixed")
	assert.Contains(t, captured.msg, "Content-Type: application/pdf; name=\"ACME-Initiation.pdf\"")
	assert.Contains(t, captured.msg, "Content-Disposition: attachment")
	assert.Contains(t, captured.msg, base64.StdEncoding.EncodeToString(pdf))
}

func TestSendReportRequiresConfiguration(t *testing.T) {
	svc := NewService(&common.SMTPConfig{}, arbor.NewLogger())

	err := svc.SendReport(context.Background(), "reader@example.com", "subject", "<p>x</p>", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSendReportRequiresRecipient(t *testing.T) {
	svc, _ := newTestMailer()

	err := svc.SendReport(context.Background(), "", "subject", "<p>x</p>", nil)
	require.Error(t, err)
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "ACME-Initiation.pdf", attachmentName("ACME Initiation"))
	assert.Equal(t, "memo.pdf", attachmentName("///"))
}

func TestEncodeBase64LineLength(t *testing.T) {
	encoded := encodeBase64WithLineBreaks([]byte(strings.Repeat("a", 500)))
	for _, line := range strings.Split(encoded, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}
