package notify

import (
	"io"

	"github.com/diewo77/foodshare/internal/config"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Message is one outbound notification.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Attachment is an optional binary payload (the confirmation PDF).
type Attachment struct {
	Filename string
	Data     []byte
}

// Mailer is the external notification transport. Tests and dev mode stub it.
type Mailer interface {
	Send(m Message) error
}

// NewMailer returns the SMTP transport when one is configured, otherwise a
// log-only mailer so local development works without credentials.
func NewMailer(cfg config.SMTPConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{Log: log}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer delivers through an SMTP server (STARTTLS on the usual 587).
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) Send(msg Message) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if msg.Attachment != nil {
		data := msg.Attachment.Data
		gm.Attach(msg.Attachment.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	return d.DialAndSend(gm)
}

// LogMailer records the message instead of sending it.
type LogMailer struct {
	Log *zap.Logger
}

func (m *LogMailer) Send(msg Message) error {
	log := m.Log
	if log == nil {
		log = zap.NewNop()
	}
	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	}
	if msg.Attachment != nil {
		fields = append(fields, zap.String("attachment", msg.Attachment.Filename), zap.Int("bytes", len(msg.Attachment.Data)))
	}
	log.Info("mock email sent", fields...)
	return nil
}
