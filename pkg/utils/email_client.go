package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"
)

// EmailSender sends notification emails for workflow actions
type EmailSender interface {
	SendEmail(message EmailMessage) error
}

// EmailMessage represents an outbound email
type EmailMessage struct {
	From        string            `json:"from"`
	To          []string          `json:"to"`
	Cc          []string          `json:"cc,omitempty"`
	Bcc         []string          `json:"bcc,omitempty"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	HTML        string            `json:"html,omitempty"`
	Attachments []EmailAttachment `json:"attachments,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// EmailAttachment represents an email attachment
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// EmailClient sends email over SMTP
type EmailClient struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailClient creates an SMTP email client
func NewEmailClient(host string, port int, username, password, from string) *EmailClient {
	return &EmailClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendEmail builds a multipart MIME message and sends it via SMTP
func (c *EmailClient) SendEmail(message EmailMessage) error {
	if len(message.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	from := message.From
	if from == "" {
		from = c.from
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(message.To, ", "))
	if len(message.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(message.Cc, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", message.Subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n", writer.Boundary())
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	for key, value := range message.Headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", key, value)
	}
	fmt.Fprintf(&buf, "\r\n")

	if message.Body != "" {
		textPart, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/plain; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return fmt.Errorf("failed to create text part: %w", err)
		}
		fmt.Fprintf(textPart, "%s", message.Body)
	}

	if message.HTML != "" {
		htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/html; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return fmt.Errorf("failed to create HTML part: %w", err)
		}
		fmt.Fprintf(htmlPart, "%s", message.HTML)
	}

	for _, attachment := range message.Attachments {
		contentType := attachment.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(attachment.Filename))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
		}

		attachmentPart, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, attachment.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachment.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return fmt.Errorf("failed to create attachment part: %w", err)
		}

		encoder := base64.NewEncoder(base64.StdEncoding, attachmentPart)
		encoder.Write(attachment.Content)
		encoder.Close()
	}

	writer.Close()

	recipients := make([]string, 0, len(message.To)+len(message.Cc)+len(message.Bcc))
	recipients = append(recipients, message.To...)
	recipients = append(recipients, message.Cc...)
	recipients = append(recipients, message.Bcc...)

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	if err := smtp.SendMail(addr, auth, from, recipients, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
