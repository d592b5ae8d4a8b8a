package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shenikar/disaster_report_bot/internal/conversation"
)

const defaultAPIURL = "https://api.telegram.org"

// Client - минимальный клиент Bot API: боту нужны только отправка
// сообщений с клавиатурами и подтверждение callback-запросов
type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
}

func NewClient(token, apiURL string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		token:      token,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendReply отправляет ответ машины состояний в чат, преобразуя
// Reply в текст с соответствующей клавиатурой
func (c *Client) SendReply(ctx context.Context, chatID int64, reply *conversation.Reply) error {
	req := sendMessageRequest{
		ChatID:      chatID,
		Text:        reply.Text,
		ReplyMarkup: buildMarkup(reply),
	}
	return c.call(ctx, "sendMessage", req)
}

// AnswerCallback подтверждает нажатие inline-кнопки, чтобы убрать
// индикатор загрузки в клиенте
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID})
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, apiResp.Description)
	}
	return nil
}

// buildMarkup собирает reply_markup из полей Reply.
// Inline-кнопки имеют приоритет над обычной клавиатурой.
func buildMarkup(reply *conversation.Reply) any {
	if len(reply.Choices) > 0 {
		rows := make([][]inlineKeyboardButton, 0, len(reply.Choices))
		for _, row := range reply.Choices {
			buttons := make([]inlineKeyboardButton, 0, len(row))
			for _, value := range row {
				buttons = append(buttons, inlineKeyboardButton{Text: value, CallbackData: value})
			}
			rows = append(rows, buttons)
		}
		return inlineKeyboardMarkup{InlineKeyboard: rows}
	}

	if reply.RequestLocation {
		return replyKeyboardMarkup{
			Keyboard: [][]keyboardButton{
				{{Text: "📍 Share Location", RequestLocation: true}},
			},
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		}
	}

	if len(reply.Buttons) > 0 {
		rows := make([][]keyboardButton, 0, len(reply.Buttons))
		for _, label := range reply.Buttons {
			rows = append(rows, []keyboardButton{{Text: label}})
		}
		return replyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
	}

	if reply.RemoveKeyboard {
		return replyKeyboardRemove{RemoveKeyboard: true}
	}
	return nil
}
