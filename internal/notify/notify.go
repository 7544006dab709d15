// Package notify holds the outbound delivery collaborators. Delivery is
// fire-and-forget: a failed send is logged, never surfaced to the caller.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// EmailSender delivers an email verification secret to an address.
type EmailSender interface {
	SendEmailVerification(ctx context.Context, email, secret string) error
}

// SMSSender delivers a phone verification code to a number.
type SMSSender interface {
	SendPhoneCode(ctx context.Context, phoneNumber, code string) error
}

// LogNotifier writes notifications to the log instead of delivering them.
// It stands in for a real mail/SMS gateway in development.
type LogNotifier struct {
	logger *zap.Logger
}

var (
	_ EmailSender = (*LogNotifier)(nil)
	_ SMSSender   = (*LogNotifier)(nil)
)

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.L()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendEmailVerification(ctx context.Context, email, secret string) error {
	n.logger.Info("email verification issued",
		zap.String("email", email),
		zap.String("secret", secret),
	)
	return nil
}

func (n *LogNotifier) SendPhoneCode(ctx context.Context, phoneNumber, code string) error {
	n.logger.Info("phone verification code issued",
		zap.String("phone_number", phoneNumber),
		zap.String("code", code),
	)
	return nil
}
