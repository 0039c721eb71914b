package telegram

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/GSKISBOT/fileconvertor/pkg/bot"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Poller long-polls getUpdates and forwards converted updates
type Poller struct {
	client  *Client
	timeout time.Duration
	logger  *logger.Logger
}

// NewPoller creates a poller; timeout is the server-side long-poll wait
func NewPoller(client *Client, timeout time.Duration, log *logger.Logger) *Poller {
	return &Poller{client: client, timeout: timeout, logger: log}
}

// Run polls until ctx is done, then closes out. Transient errors are
// retried with exponential backoff.
func (p *Poller) Run(ctx context.Context, out chan<- bot.Update) error {
	defer close(out)

	var offset int64
	backoff := minBackoff

	for {
		updates, err := p.client.getUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := backoff
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				wait = apiErr.RetryAfter
			}
			p.logger.Warn("getUpdates failed, retrying in %s: %v", wait, err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		for _, u := range updates {
			offset = int64(u.UpdateID) + 1
			upd, ok := convertUpdate(u)
			if !ok {
				continue
			}
			select {
			case out <- upd:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// convertUpdate maps a Bot API update to a bot update. Updates from other
// bots and unsupported kinds are dropped.
func convertUpdate(u tgbotapi.Update) (bot.Update, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil || cq.From == nil {
			return bot.Update{}, false
		}
		return bot.Update{
			ID:        int64(u.UpdateID),
			ChatID:    cq.Message.Chat.ID,
			MessageID: int64(cq.Message.MessageID),
			User:      bot.User{ID: cq.From.ID, Username: cq.From.UserName},
			Callback: &bot.Callback{
				ID:        cq.ID,
				Data:      cq.Data,
				MessageID: int64(cq.Message.MessageID),
			},
		}, true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.From.IsBot || m.Chat == nil {
			return bot.Update{}, false
		}
		upd := bot.Update{
			ID:        int64(u.UpdateID),
			ChatID:    m.Chat.ID,
			MessageID: int64(m.MessageID),
			User:      bot.User{ID: m.From.ID, Username: m.From.UserName},
			Text:      m.Text,
		}
		if m.Document != nil {
			upd.Document = &bot.Attachment{
				FileID:   m.Document.FileID,
				FileName: m.Document.FileName,
				Size:     int64(m.Document.FileSize),
			}
		}
		if largest, ok := largestPhoto(m.Photo); ok {
			upd.Photo = &bot.Attachment{FileID: largest.FileID, Size: int64(largest.FileSize)}
		}
		if upd.Text == "" && upd.Document == nil && upd.Photo == nil {
			return bot.Update{}, false
		}
		return upd, true
	}
	return bot.Update{}, false
}

func largestPhoto(sizes []tgbotapi.PhotoSize) (tgbotapi.PhotoSize, bool) {
	if len(sizes) == 0 {
		return tgbotapi.PhotoSize{}, false
	}
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best, true
}
