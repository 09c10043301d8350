package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/rohankatakam/insightify/internal/output"
	"github.com/sirupsen/logrus"
)

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends the monthly report as an HTML message with the chart files
// attached. smtp.SendMail upgrades the connection with STARTTLS when the
// server offers it.
type Email struct {
	server   string
	port     int
	from     string
	to       string
	password string
	send     sendFunc
	now      func() time.Time
	logger   logrus.FieldLogger
}

// EmailConfigured reports whether cfg has everything needed to send.
func EmailConfigured(cfg config.EmailConfig) bool {
	return cfg.Enabled && cfg.From != "" && cfg.To != "" && cfg.Password != ""
}

func NewEmail(cfg config.EmailConfig, logger logrus.FieldLogger) *Email {
	return &Email{
		server:   cfg.SMTPServer,
		port:     cfg.SMTPPort,
		from:     cfg.From,
		to:       cfg.To,
		password: cfg.Password,
		send:     smtp.SendMail,
		now:      time.Now,
		logger:   logger.WithField("component", "email"),
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Supports(kind models.ReportKind) bool { return kind == models.KindMonthly }

func (e *Email) Notify(ctx context.Context, report models.Report) error {
	if report.Kind != models.KindMonthly || report.Monthly == nil {
		return fmt.Errorf("email supports monthly reports only")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := e.Message(report.Monthly)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(e.server, strconv.Itoa(e.port))
	auth := smtp.PlainAuth("", e.from, e.password, e.server)
	if err := e.send(addr, auth, e.from, []string{e.to}, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	e.logger.WithField("to", e.to).Info("monthly report emailed")
	return nil
}

// Message builds the multipart/mixed MIME message for r.
func (e *Email) Message(r *models.MonthlyRecord) ([]byte, error) {
	html, err := output.MonthlyHTML(r, e.now())
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(htmlPart, []byte(html)); err != nil {
		return nil, err
	}

	for _, path := range r.ChartPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			e.logger.WithFields(logrus.Fields{"path": path, "error": err}).Warn("skipping missing chart attachment")
			continue
		}
		name := filepath.Base(path)
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(contentType(name), map[string]string{"name": name})},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", e.to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", Subject(r)))
	fmt.Fprintf(&msg, "Date: %s\r\n", e.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// Subject is the monthly email subject line.
func Subject(r *models.MonthlyRecord) string {
	return "[Insightify] Monthly Report - " + orNA(r.Month)
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// writeBase64 encodes data in 76-column lines.
func writeBase64(w interface{ Write([]byte) (int, error) }, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := w.Write([]byte(encoded[:76] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := w.Write([]byte(encoded + "\r\n"))
	return err
}
