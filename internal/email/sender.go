package email

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain"
)

// Sender define la interfaz para envio de codigos OTP por correo.
type Sender interface {
	SendOTP(ctx context.Context, toEmail string, purpose domain.OtpPurpose, code string, expiresAt time.Time) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendOTP(_ context.Context, _ string, _ domain.OtpPurpose, _ string, _ time.Time) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
