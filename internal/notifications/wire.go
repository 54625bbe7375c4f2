package notifications

import (
	"context"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	"github.com/angelmondragon/mia-backend/pkg/config"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"github.com/angelmondragon/mia-backend/pkg/sendgrid"
)

// FromConfig assembles the enabled price-drop channels. It returns nil when
// none is configured, which the tracker treats as "do not notify".
func FromConfig(ctx context.Context, cfg *config.Config, logg *logger.Logger) (tracking.Notifier, error) {
	var channels Fanout

	if cfg.FeatureFlags.PriceDropEmails && cfg.Sendgrid.Enabled() {
		client, err := sendgrid.NewClient(cfg.Sendgrid.APIKey, cfg.Sendgrid.DefaultFrom, cfg.Sendgrid.FromName)
		if err != nil {
			return nil, err
		}
		mailer, err := NewPriceDropMailer(client)
		if err != nil {
			return nil, err
		}
		channels = append(channels, mailer)
	} else if logg != nil {
		logg.Warn(ctx, "notifications.email_disabled")
	}

	if cfg.Telegram.Enabled() {
		alerter, err := NewTelegramAlerter(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		channels = append(channels, alerter)
	}

	switch len(channels) {
	case 0:
		return nil, nil
	case 1:
		return channels[0], nil
	default:
		return channels, nil
	}
}
