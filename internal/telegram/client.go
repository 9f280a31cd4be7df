package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// BotClient is a minimal Telegram Bot API client; the backend only needs
// sendMessage for ticket notifications. Send failures are reported to the
// caller, which logs and moves on — a lost notification must never fail
// the request that produced it.
type BotClient struct {
	botToken string
	baseURL  string
	client   *http.Client
}

func NewBotClient(botToken string) *BotClient {
	return &BotClient{
		botToken: botToken,
		baseURL:  defaultAPIBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage delivers an HTML-formatted message to the given chat.
func (c *BotClient) SendMessage(ctx context.Context, chatID int64, text string) error {

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api status %d", resp.StatusCode)
	}

	return nil
}
