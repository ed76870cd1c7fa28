package verification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	sl "rillshop/internal/lib/logger/sl"
	"rillshop/internal/models"
)

type Publisher interface {
	SendMessage(ctx context.Context, msg models.VerificationMessage) error
}

// Link is the address a user opens to confirm their e-mail.
func Link(baseURL, token string) string {
	return fmt.Sprintf("%s/api/auth/verify?token=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(token))
}

// SendVerificationEmail queues a verification e-mail for email. Delivery is
// best effort: a failed publish is logged and the registration still stands.
func SendVerificationEmail(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	baseURL, email, token string,
) {
	if pub == nil {
		log.Debug("no publisher configured, verification email skipped")

		return
	}

	msg := models.VerificationMessage{
		Email:   email,
		Link:    Link(baseURL, token),
		Purpose: models.PurposeEmailVerification,
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to send verification link", sl.Err(err))

		return
	}

	log.Info("verification link queued")
}
