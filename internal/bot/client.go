package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"finbot/internal/handlers"
)

// maxFileSize is the largest file the Bot API lets bots download.
const maxFileSize = 20 << 20

// Client sends messages through the Bot API and downloads files sent to the bot.
type Client struct {
	api     *tgbotapi.BotAPI
	http    *http.Client
	fileURL func(fileID string) (string, error)
}

// NewClient authenticates with the Bot API.
func NewClient(token string, debug bool) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = debug

	return &Client{
		api:     api,
		http:    &http.Client{Timeout: 60 * time.Second},
		fileURL: api.GetFileDirectURL,
	}, nil
}

// API exposes the underlying Bot API client.
func (c *Client) API() *tgbotapi.BotAPI {
	return c.api
}

// Username returns the bot's @username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Send sends a plain text message.
func (c *Client) Send(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

// DeleteMessage removes a message from the chat.
func (c *Client) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	if _, err := c.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}
	return nil
}

// Fetch downloads the file with the given id into w.
func (c *Client) Fetch(ctx context.Context, fileID string, w io.Writer) error {
	link, err := c.fileURL(fileID)
	if err != nil {
		return fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file %s: unexpected status %d", fileID, resp.StatusCode)
	}
	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxFileSize)); err != nil {
		return fmt.Errorf("write file %s: %w", fileID, err)
	}
	return nil
}

// SetWebhook registers url with Telegram. Telegram echoes secret in the
// X-Telegram-Bot-Api-Secret-Token header of every call.
func (c *Client) SetWebhook(url, secret string) error {
	params := tgbotapi.Params{}
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)
	if _, err := c.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// SetCommands publishes the command menu shown by Telegram clients.
func (c *Client) SetCommands(commands []handlers.Command) error {
	menu := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		menu = append(menu, tgbotapi.BotCommand{Command: cmd.Name, Description: cmd.Description})
	}
	if _, err := c.api.Request(tgbotapi.NewSetMyCommands(menu...)); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	return nil
}

// DeleteWebhook switches the bot back to long polling.
func (c *Client) DeleteWebhook() error {
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}
