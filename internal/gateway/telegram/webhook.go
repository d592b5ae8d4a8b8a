package telegram

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/disaster_report_bot/internal/conversation"
	"github.com/sirupsen/logrus"
)

// EventHandler обрабатывает событие чата и возвращает ответ пользователю
type EventHandler interface {
	HandleEvent(ctx context.Context, userID int64, username string, ev conversation.Event) (*conversation.Reply, error)
}

// Sender отправляет ответы обратно в Telegram
type Sender interface {
	SendReply(ctx context.Context, chatID int64, reply *conversation.Reply) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// Gateway принимает вебхуки Bot API и связывает их с машиной состояний
type Gateway struct {
	engine EventHandler
	sender Sender
	logger *logrus.Logger
	token  string
}

func NewGateway(engine EventHandler, sender Sender, logger *logrus.Logger, token string) *Gateway {
	return &Gateway{
		engine: engine,
		sender: sender,
		logger: logger,
		token:  token,
	}
}

// RegisterRoutes регистрирует маршрут вебхука. Токен в пути служит
// секретом: Telegram знает URL целиком, посторонние - нет.
func (g *Gateway) RegisterRoutes(router gin.IRouter) {
	router.POST("/telegram/webhook/:token", g.handleWebhook)
}

func (g *Gateway) handleWebhook(c *gin.Context) {
	if c.Param("token") != g.token {
		g.logger.Warn("Webhook called with invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var update Update
	if err := c.ShouldBindJSON(&update); err != nil {
		g.logger.WithError(err).Warn("Failed to decode webhook update")
		// 200, иначе Telegram будет бесконечно повторять доставку
		c.Status(http.StatusOK)
		return
	}

	userID, username, ev, ok := eventFromUpdate(&update)
	if !ok {
		c.Status(http.StatusOK)
		return
	}
	log := g.logger.WithFields(logrus.Fields{
		"component": "telegram",
		"user_id":   userID,
		"kind":      ev.Kind,
	})

	ctx := c.Request.Context()
	if update.CallbackQuery != nil {
		if err := g.sender.AnswerCallback(ctx, update.CallbackQuery.ID); err != nil {
			log.WithError(err).Warn("Failed to answer callback query")
		}
	}

	reply, err := g.engine.HandleEvent(ctx, userID, username, ev)
	if err != nil {
		// Ошибки диалога не фатальны: reply уже содержит подсказку,
		// пользователь исправится следующим сообщением
		log.WithError(err).Debug("Conversation returned error")
	}
	if reply != nil {
		chatID := chatIDFromUpdate(&update, userID)
		if err := g.sender.SendReply(ctx, chatID, reply); err != nil {
			log.WithError(err).Error("Failed to send reply")
		}
	}

	c.Status(http.StatusOK)
}

// chatIDFromUpdate определяет чат для ответа; в личной переписке
// совпадает с идентификатором пользователя
func chatIDFromUpdate(update *Update, userID int64) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return userID
}
