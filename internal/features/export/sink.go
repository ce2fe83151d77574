package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"go-league/internal/config"

	"go.uber.org/zap"
)

// Delivery is what a sink receives: the rendered document, the email
// summary and, for mail sinks, the recipients.
type Delivery struct {
	Document Document
	Email    EmailHandoff
	To       []string
}

// Sink performs the host side action for a finished export.
type Sink interface {
	Deliver(ctx context.Context, d Delivery) error
}

// DirSink saves documents into a directory.
type DirSink struct {
	Dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

func (s *DirSink) Deliver(ctx context.Context, d Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(d.Document.Filename))
	if err := os.WriteFile(path, d.Document.Body, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// MailSink sends the email summary over SMTP with the document attached.
type MailSink struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
	send   sendFunc
}

func NewMailSink(cfg config.SMTPConfig, logger *zap.Logger) *MailSink {
	return &MailSink{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Configured reports whether an SMTP host is set.
func (s *MailSink) Configured() bool {
	return s != nil && s.cfg.Host != "" && s.cfg.Port != 0
}

func (s *MailSink) Deliver(ctx context.Context, d Delivery) error {
	if !s.Configured() {
		return errors.New("invalid email configuration: missing host or port")
	}
	if len(d.To) == 0 {
		return errors.New("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.logger.Info("Sending report email",
		zap.Strings("to", d.To),
		zap.String("attachment", d.Document.Filename))
	if err := s.send(addr, auth, from, d.To, BuildMessage(from, d)); err != nil {
		return fmt.Errorf("failed to send email with attachment: %w", err)
	}
	return nil
}

const mimeBoundary = "LeagueReportBoundary"

// BuildMessage renders a multipart message with the summary as text and the
// document as a base64 attachment.
func BuildMessage(from string, d Delivery) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(d.To, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", d.Email.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n", mimeBoundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", mimeBoundary))
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(d.Email.Body, "\n", "\r\n"))
	buf.WriteString("\r\n")

	if len(d.Document.Body) > 0 {
		name := filepath.Base(d.Document.Filename)
		contentType := d.Document.MIMEType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		buf.WriteString(fmt.Sprintf("--%s\r\n", mimeBoundary))
		buf.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentType, name))
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		buf.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", name))
		buf.WriteString("\r\n")

		encoded := base64.StdEncoding.EncodeToString(d.Document.Body)
		for len(encoded) > 76 {
			buf.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		buf.WriteString(encoded + "\r\n")
	}

	buf.WriteString(fmt.Sprintf("--%s--\r\n", mimeBoundary))
	return buf.Bytes()
}
