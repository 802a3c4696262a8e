package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Notifier delivers a rendered report summary to a chat channel. Delivery is
// best-effort: a failed send never fails the run.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TelegramNotifier posts via the Telegram bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Timeout  time.Duration
	// BaseURL overrides the API host, for tests.
	BaseURL string
}

func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	base := t.BaseURL
	if base == "" {
		base = "https://api.telegram.org"
	}
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{
		"chat_id": {t.ChatID},
		"text":    {text},
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", base, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage: unexpected status %d", resp.StatusCode)
	}
	return nil
}
