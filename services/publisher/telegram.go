package publisher

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// TelegramPublisher implements Publisher using the Bot API sendPhoto call.
// Captions are pre-escaped MarkdownV2; the publisher does not touch them.
type TelegramPublisher struct {
	bot    *telego.Bot
	chatID int64
}

var _ Publisher = (*TelegramPublisher)(nil)

// NewTelegramPublisher creates a new Telegram publisher for a channel
func NewTelegramPublisher(token string, chatID int64) (*TelegramPublisher, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramPublisher{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// PublishPhoto posts one photo message with its MarkdownV2 caption
func (p *TelegramPublisher) PublishPhoto(ctx context.Context, imageURL, caption string) error {
	params := tu.Photo(
		tu.ID(p.chatID),
		tu.FileFromURL(imageURL),
	).WithCaption(caption).WithParseMode(telego.ModeMarkdownV2)

	if _, err := p.bot.SendPhoto(ctx, params); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// Close releases the underlying client. The Bot API client holds no
// persistent connection, so there is nothing to tear down.
func (p *TelegramPublisher) Close() error {
	return nil
}
