package notifications

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter copies every price-drop alert into an operations chat.
type TelegramAlerter struct {
	bot    telegramSender
	chatID int64
}

// NewTelegramAlerter logs the bot in and targets chatID.
func NewTelegramAlerter(botToken string, chatID int64) (*TelegramAlerter, error) {
	if strings.TrimSpace(botToken) == "" || chatID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "telegram bot token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "telegram bot login failed")
	}
	return newTelegramAlerter(bot, chatID), nil
}

func newTelegramAlerter(bot telegramSender, chatID int64) *TelegramAlerter {
	return &TelegramAlerter{bot: bot, chatID: chatID}
}

// NotifyPriceDrop implements tracking.Notifier.
func (a *TelegramAlerter) NotifyPriceDrop(ctx context.Context, email string, drop tracking.PriceDrop) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("📉 <b>%s</b>\n%s → <b>%s</b>\nwish %s",
		html.EscapeString(drop.ProductName),
		formatBRL(drop.OldPrice),
		formatBRL(drop.NewPrice),
		drop.WishID,
	)
	if email = strings.TrimSpace(email); email != "" {
		text += " (" + html.EscapeString(email) + ")"
	}
	if drop.Link != "" {
		text += "\n" + html.EscapeString(drop.Link)
	}

	msg := tgbotapi.NewMessage(a.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := a.bot.Send(msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "telegram send failed")
	}
	return nil
}

var _ tracking.Notifier = (*TelegramAlerter)(nil)
