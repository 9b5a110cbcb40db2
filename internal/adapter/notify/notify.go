// Package notify is the out-of-band Secondary channel, delivered by email.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

// Config holds the SMTP server settings used to deliver secondary-channel
// messages (quantity-confirmation prompts and competitive-bidding advisories).
type Config struct {
	SMTPHost    string
	SMTPPort    int
	Username    string
	Password    string
	FromAddress string
}

var _ port.Secondary = (*Sender)(nil)

// Sender delivers messages to a user's SecondaryAddress by email.
type Sender struct {
	cfg    Config
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{cfg: cfg, logger: logger}
}

// Send is best-effort and blocks for the duration of the SMTP round trip;
// failures are logged and returned, never retried here. Callers on the
// engine's serialization goroutine must dispatch Send on their own
// goroutine rather than await it inline.
func (s *Sender) Send(ctx context.Context, user domain.User, message string) error {
	if user.SecondaryAddress == "" {
		s.logger.Warn("notify: user has no secondary address", zap.String("user_id", user.ID))
		return nil
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	body := fmt.Sprintf("To: %s\r\nSubject: Lot matching notice\r\n\r\n%s\r\n", user.SecondaryAddress, message)
	if err := smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{user.SecondaryAddress}, []byte(body)); err != nil {
		s.logger.Error("notify: send failed", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}
