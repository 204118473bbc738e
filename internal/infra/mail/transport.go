package mail

import (
	"context"

	"go.uber.org/zap"
)

// Transport delivers composed messages. DryRun reports the unconfigured variant,
// which accepts messages without any network or file I/O.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
	DryRun() bool
}

// NewTransport returns an SMTP transport, or a DryRunTransport when no SMTP host is configured.
func NewTransport(cfg SMTPConfig, log *zap.SugaredLogger) Transport {
	if cfg.Host == "" {
		log.Warnw("⚠️ SMTP host not configured, ebook emails will be logged only")
		return NewDryRunTransport(log)
	}
	return NewSMTPTransport(cfg)
}

type DryRunTransport struct {
	log *zap.SugaredLogger
}

func NewDryRunTransport(log *zap.SugaredLogger) *DryRunTransport {
	return &DryRunTransport{log: log}
}

func (t *DryRunTransport) Send(ctx context.Context, msg *Message) error {
	t.log.Infow("[MOCK EMAIL] message not sent",
		"to", msg.To,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return nil
}

func (t *DryRunTransport) DryRun() bool { return true }
