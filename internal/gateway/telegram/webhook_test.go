package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/disaster_report_bot/internal/conversation"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine записывает переданные события и возвращает заготовленный ответ
type stubEngine struct {
	userID   int64
	username string
	events   []conversation.Event
	reply    *conversation.Reply
	err      error
}

func (s *stubEngine) HandleEvent(_ context.Context, userID int64, username string, ev conversation.Event) (*conversation.Reply, error) {
	s.userID = userID
	s.username = username
	s.events = append(s.events, ev)
	return s.reply, s.err
}

// stubSender записывает отправленные ответы
type stubSender struct {
	chatID    int64
	replies   []*conversation.Reply
	callbacks []string
	sendErr   error
}

func (s *stubSender) SendReply(_ context.Context, chatID int64, reply *conversation.Reply) error {
	s.chatID = chatID
	s.replies = append(s.replies, reply)
	return s.sendErr
}

func (s *stubSender) AnswerCallback(_ context.Context, callbackID string) error {
	s.callbacks = append(s.callbacks, callbackID)
	return nil
}

func newTestGateway(engine *stubEngine, sender *stubSender) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	gateway := NewGateway(engine, sender, logger, "test-token")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	gateway.RegisterRoutes(router)
	return router
}

func postUpdate(router *gin.Engine, token string, update *Update) *httptest.ResponseRecorder {
	body, _ := json.Marshal(update)
	req := httptest.NewRequest("POST", "/telegram/webhook/"+token, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook_MessageDispatched(t *testing.T) {
	// Подготовка
	engine := &stubEngine{reply: &conversation.Reply{Text: "🔍 What type of disaster are you reporting?"}}
	sender := &stubSender{}
	router := newTestGateway(engine, sender)

	update := &Update{Message: &Message{
		From: &User{ID: 42, Username: "alice"},
		Chat: Chat{ID: 4242},
		Text: "/report",
	}}

	// Действие
	w := postUpdate(router, "test-token", update)

	// Проверки: событие дошло до машины состояний, ответ ушел в чат сообщения
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), engine.userID)
	assert.Equal(t, "alice", engine.username)
	require.Len(t, engine.events, 1)
	assert.Equal(t, conversation.KindCommand, engine.events[0].Kind)

	require.Len(t, sender.replies, 1)
	assert.Equal(t, int64(4242), sender.chatID)
	assert.Contains(t, sender.replies[0].Text, "What type of disaster")
}

func TestWebhook_CallbackAnswered(t *testing.T) {
	// Подготовка
	engine := &stubEngine{reply: &conversation.Reply{Text: "ok"}}
	sender := &stubSender{}
	router := newTestGateway(engine, sender)

	update := &Update{CallbackQuery: &CallbackQuery{
		ID:      "cb-77",
		From:    User{ID: 42, Username: "alice"},
		Message: &Message{Chat: Chat{ID: 4242}},
		Data:    "Flood",
	}}

	// Действие
	w := postUpdate(router, "test-token", update)

	// Проверки: callback подтвержден, выбор передан как selection
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"cb-77"}, sender.callbacks)
	require.Len(t, engine.events, 1)
	assert.Equal(t, conversation.KindSelection, engine.events[0].Kind)
	assert.Equal(t, "Flood", engine.events[0].Selection)
	assert.Equal(t, int64(4242), sender.chatID)
}

func TestWebhook_InvalidToken(t *testing.T) {
	// Подготовка
	engine := &stubEngine{}
	sender := &stubSender{}
	router := newTestGateway(engine, sender)

	update := &Update{Message: &Message{
		From: &User{ID: 42},
		Chat: Chat{ID: 42},
		Text: "hi",
	}}

	// Действие
	w := postUpdate(router, "wrong-token", update)

	// Проверки
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, engine.events)
}

func TestWebhook_ConversationErrorStillReplies(t *testing.T) {
	// Подготовка: машина состояний вернула ошибку вместе с подсказкой
	engine := &stubEngine{
		reply: &conversation.Reply{Text: "❌ Session expired. Please start a new report with /report"},
		err:   conversation.ErrNoActiveSession,
	}
	sender := &stubSender{}
	router := newTestGateway(engine, sender)

	update := &Update{Message: &Message{
		From: &User{ID: 42, Username: "alice"},
		Chat: Chat{ID: 42},
		Text: "some text",
	}}

	// Действие
	w := postUpdate(router, "test-token", update)

	// Проверки: подсказка все равно отправлена, вебхук ответил 200
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sender.replies, 1)
	assert.Contains(t, sender.replies[0].Text, "Session expired")
}

func TestWebhook_UnsupportedUpdateIgnored(t *testing.T) {
	// Подготовка
	engine := &stubEngine{}
	sender := &stubSender{}
	router := newTestGateway(engine, sender)

	// Действие: обновление без сообщения
	w := postUpdate(router, "test-token", &Update{UpdateID: 99})

	// Проверки
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, engine.events)
	assert.Empty(t, sender.replies)
}

func TestBuildMarkup(t *testing.T) {
	// Inline-кнопки имеют приоритет
	markup := buildMarkup(&conversation.Reply{
		Choices: [][]string{{"Flood", "Fire"}},
		Buttons: []string{"Submit Report"},
	})
	inline, ok := markup.(inlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, inline.InlineKeyboard, 1)
	assert.Equal(t, "Flood", inline.InlineKeyboard[0][0].CallbackData)

	// Запрос локации - одна кнопка с request_location
	markup = buildMarkup(&conversation.Reply{RequestLocation: true})
	kb, ok := markup.(replyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.Keyboard[0][0].RequestLocation)

	// Обычные кнопки
	markup = buildMarkup(&conversation.Reply{Buttons: []string{"Submit Report", "Skip Photos"}})
	kb, ok = markup.(replyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.Keyboard, 2)

	// Снятие клавиатуры
	markup = buildMarkup(&conversation.Reply{RemoveKeyboard: true})
	remove, ok := markup.(replyKeyboardRemove)
	require.True(t, ok)
	assert.True(t, remove.RemoveKeyboard)

	// Без клавиатуры
	assert.Nil(t, buildMarkup(&conversation.Reply{Text: "plain"}))
}
