// Package mailer delivers finished memos by email over SMTP.
package mailer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
)

// Service implements interfaces.MailerService over plain SMTP with TLS.
type Service struct {
	config *common.SMTPConfig
	logger arbor.ILogger

	// send is swapped out in tests to capture the assembled message.
	send func(addr string, auth smtp.Auth, from, to, msg string, useTLS bool) error
}

// NewService creates the mailer from static SMTP configuration.
func NewService(config *common.SMTPConfig, logger arbor.ILogger) *Service {
	s := &Service{
		config: config,
		logger: logger,
	}
	s.send = s.dial
	return s
}

var _ interfaces.MailerService = (*Service)(nil)

// IsConfigured reports whether the minimum SMTP settings are present.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != "" && s.config.From != ""
}

// SendReport emails the memo HTML, attaching the PDF when one is provided.
// The HTML body is base64-encoded: rendered memos routinely exceed the RFC
// 5322 line length limit.
func (s *Service) SendReport(ctx context.Context, to, subject, htmlBody string, pdf []byte) error {
	if !s.IsConfigured() {
		return fmt.Errorf("smtp is not configured")
	}
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	mixedBoundary := generateBoundary()

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.FromName, s.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")

	if len(pdf) > 0 {
		fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=\"%s\"\r\n\r\n", mixedBoundary)
		fmt.Fprintf(&msg, "--%s\r\n", mixedBoundary)
	}

	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(encodeBase64WithLineBreaks([]byte(htmlBody)))
	msg.WriteString("\r\n")

	if len(pdf) > 0 {
		filename := attachmentName(subject)
		fmt.Fprintf(&msg, "--%s\r\n", mixedBoundary)
		fmt.Fprintf(&msg, "Content-Type: application/pdf; name=\"%s\"\r\n", filename)
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&msg, "Content-Disposition: attachment; filename=\"%s\"\r\n", filename)
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(pdf))
		msg.WriteString("\r\n")
		fmt.Fprintf(&msg, "--%s--\r\n", mixedBoundary)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if err := s.send(addr, auth, s.config.From, to, msg.String(), s.config.UseTLS); err != nil {
		s.logger.Error().
			Err(err).
			Str("to", to).
			Msg("Failed to send memo email")
		return fmt.Errorf("failed to send memo email: %w", err)
	}

	s.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Bool("pdf_attached", len(pdf) > 0).
		Msg("Memo emailed")

	return nil
}

func (s *Service) dial(addr string, auth smtp.Auth, from, to, msg string, useTLS bool) error {
	if !useTLS {
		return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
	}

	host := strings.Split(addr, ":")[0]
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		// Port 587 servers expect a plain connection upgraded via STARTTLS.
		return s.dialSTARTTLS(addr, auth, from, to, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Close()

	return submit(client, auth, from, to, msg)
}

func (s *Service) dialSTARTTLS(addr string, auth smtp.Auth, from, to, msg string) error {
	host := strings.Split(addr, ":")[0]

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("failed to start tls: %w", err)
	}

	return submit(client, auth, from, to, msg)
}

func submit(client *smtp.Client, auth smtp.Auth, from, to, msg string) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp authentication failed: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

// attachmentName derives a PDF filename from the email subject.
func attachmentName(subject string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, subject)
	name = strings.Trim(name, "-")
	if name == "" {
		name = "memo"
	}
	return name + ".pdf"
}

// generateBoundary creates a unique MIME boundary string.
func generateBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "coverscribe_boundary_fallback"
	}
	return fmt.Sprintf("coverscribe_%x", b)
}

// encodeBase64WithLineBreaks encodes content with 76-character lines per
// RFC 2045.
func encodeBase64WithLineBreaks(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)

	var result strings.Builder
	const lineLen = 76
	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		result.WriteString(encoded[i:end])
		if end < len(encoded) {
			result.WriteString("\r\n")
		}
	}
	return result.String()
}
