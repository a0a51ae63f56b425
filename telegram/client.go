// Package telegram — минимальный клиент Bot API: отправка сообщений и
// long polling обновлений. Внешних SDK не используется намеренно —
// боту нужны ровно два метода API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrAPIRequestFailed = errors.New("telegram api request failed")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		baseURL: "https://api.telegram.org/bot" + token,
		// Таймаут с запасом под long polling getUpdates.
		httpClient: &http.Client{Timeout: 65 * time.Second},
	}
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// SendMessage отправляет Markdown-сообщение в чат.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	_, err := c.call(ctx, "sendMessage", payload)
	return err
}

// GetUpdates забирает очередную пачку обновлений, начиная с offset.
// timeout — серверный таймаут long polling в секундах.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": timeout,
	}
	result, err := c.call(ctx, "getUpdates", payload)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("%w: decoding updates: %v", ErrAPIRequestFailed, err)
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshalling %s payload: %v", ErrAPIRequestFailed, method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAPIRequestFailed, method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %v", ErrAPIRequestFailed, method, err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("%w: %s: %s", ErrAPIRequestFailed, method, apiResp.Description)
	}
	return apiResp.Result, nil
}
