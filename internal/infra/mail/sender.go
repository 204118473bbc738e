package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPTransport struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	http   *http.Client
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Secure
	if cfg.SkipVerify {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true}
	}

	return &SMTPTransport{
		cfg:    cfg,
		dialer: d,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SMTPTransport) DryRun() bool { return false }

func (s *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.compose(ctx, msg)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp email: %w", err)
	}
	return nil
}

func (s *SMTPTransport) compose(ctx context.Context, msg *Message) *gomail.Message {
	from := msg.From
	if from == "" {
		from = s.cfg.From
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	for _, a := range msg.Attachments {
		switch {
		case a.Path != "":
			m.Attach(a.Path, gomail.Rename(a.Filename))
		case a.URL != "":
			m.Attach(a.Filename, gomail.Rename(a.Filename), gomail.SetCopyFunc(s.download(ctx, a.URL)))
		}
	}

	return m
}

// download streams a remote attachment into the message while it is being written.
func (s *SMTPTransport) download(ctx context.Context, url string) func(io.Writer) error {
	return func(w io.Writer) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := s.http.Do(req)
		if err != nil {
			return fmt.Errorf("download attachment %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("download attachment %s: status %d", url, resp.StatusCode)
		}

		_, err = io.Copy(w, resp.Body)
		return err
	}
}
