// Package telegram puts the Bot API client from go-telegram-bot-api behind
// the bot's chat transport and long-polls it for updates.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// APIError is a Bot API call that returned ok=false
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// ClientOptions configures a Client
type ClientOptions struct {
	// APIURL is the Bot API server; empty uses the public one
	APIURL string
	Token  string

	RequestTimeout time.Duration
	PollTimeout    time.Duration

	// MaxDownload bounds DownloadFile; zero means no bound
	MaxDownload int64
}

// Client calls the Bot API
type Client struct {
	api            *tgbotapi.BotAPI
	baseURL        string
	token          string
	http           *http.Client
	requestTimeout time.Duration
	maxDownload    int64
	logger         *logger.Logger
}

var _ interfaces.ChatTransport = (*Client)(nil)

// NewClient connects to the Bot API and checks the token with getMe
func NewClient(ctx context.Context, opts ClientOptions, log *logger.Logger) (*Client, error) {
	if opts.APIURL == "" {
		opts.APIURL = constants.DefaultTelegramAPIURL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = constants.DefaultRequestTimeout
	}

	c := &Client{
		baseURL:        strings.TrimRight(opts.APIURL, "/"),
		token:          opts.Token,
		http:           &http.Client{Timeout: opts.PollTimeout + opts.RequestTimeout},
		requestTimeout: opts.RequestTimeout,
		maxDownload:    opts.MaxDownload,
		logger:         log,
	}

	err := c.await(ctx, c.requestTimeout, func() error {
		api, err := tgbotapi.NewBotAPIWithClient(c.token, c.baseURL+"/bot%s/%s", c.http)
		if err != nil {
			return err
		}
		c.api = api
		return nil
	})
	if err != nil {
		return nil, c.wrap("getMe", err)
	}
	return c, nil
}

// Username returns the bot's own username as reported by getMe
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// SendMessage posts a new message and returns its id
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard interfaces.Keyboard) (int64, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := toMarkup(keyboard); markup != nil {
		msg.ReplyMarkup = *markup
	}

	var sent tgbotapi.Message
	err := c.await(ctx, c.requestTimeout, func() error {
		var err error
		sent, err = c.api.Send(msg)
		return err
	})
	if err != nil {
		return 0, c.wrap("sendMessage", err)
	}
	return int64(sent.MessageID), nil
}

// EditMessage replaces a message's text and keyboard. Editing to identical
// content is not an error.
func (c *Client) EditMessage(ctx context.Context, chatID, messageID int64, text string, keyboard interfaces.Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, int(messageID), text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = toMarkup(keyboard)

	err := c.request(ctx, "editMessageText", edit)
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified") {
		return nil
	}
	return err
}

// AnswerCallback acknowledges a button press
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.request(ctx, "answerCallbackQuery", tgbotapi.NewCallback(callbackID, ""))
}

// SendDocument uploads data as a file
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption

	c.logger.Debug("Uploading %s (%s)", filename, utils.FormatSize(int64(len(data))))
	return c.request(ctx, "sendDocument", doc)
}

// DownloadFile resolves a file id and downloads its content, refusing
// anything larger than the configured bound
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	var file tgbotapi.File
	err := c.await(ctx, c.requestTimeout, func() error {
		var err error
		file, err = c.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
		return err
	})
	if err != nil {
		return nil, c.wrap("getFile", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram getFile: no path for %s", fileID)
	}
	if size := int64(file.FileSize); c.maxDownload > 0 && size > c.maxDownload {
		return nil, utils.NewSizeLimitError(size, c.maxDownload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, utils.WrapError(redact(err, c.token), utils.ErrorTypeNetwork, "file download failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram file download: status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if c.maxDownload > 0 {
		body = io.LimitReader(resp.Body, c.maxDownload+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, utils.WrapError(redact(err, c.token), utils.ErrorTypeNetwork, "file download failed")
	}
	if c.maxDownload > 0 && int64(len(data)) > c.maxDownload {
		return nil, utils.NewSizeLimitError(int64(len(data)), c.maxDownload)
	}
	return data, nil
}

// getUpdates long-polls for updates after offset
func (c *Client) getUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]tgbotapi.Update, error) {
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = int(timeout.Seconds())
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	var updates []tgbotapi.Update
	err := c.await(ctx, timeout+c.requestTimeout, func() error {
		var err error
		updates, err = c.api.GetUpdates(cfg)
		return err
	})
	if err != nil {
		return nil, c.wrap("getUpdates", err)
	}
	return updates, nil
}

func (c *Client) request(ctx context.Context, method string, chattable tgbotapi.Chattable) error {
	err := c.await(ctx, c.requestTimeout, func() error {
		_, err := c.api.Request(chattable)
		return err
	})
	return c.wrap(method, err)
}

// await runs a blocking library call and gives up when ctx ends first.
// The http client's own timeout bounds an abandoned call.
func (c *Client) await(ctx context.Context, timeout time.Duration, call func() error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- call() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wrap turns library errors into APIError or a redacted network error
func (c *Client) wrap(method string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return &APIError{
			Method:      method,
			Code:        tgErr.Code,
			Description: tgErr.Message,
			RetryAfter:  time.Duration(tgErr.RetryAfter) * time.Second,
		}
	}
	return utils.WrapError(redact(err, c.token), utils.ErrorTypeNetwork, fmt.Sprintf("telegram %s failed", method))
}

// redact keeps the bot token out of logged transport errors
func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<token>"))
}

func toMarkup(kb interfaces.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
