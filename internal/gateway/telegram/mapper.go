package telegram

import (
	"strings"

	"github.com/shenikar/disaster_report_bot/internal/conversation"
	"github.com/shenikar/disaster_report_bot/internal/models"
)

// Кнопки главного меню дублируют команды
var menuCommands = map[string]string{
	"🚨 Report Disaster": conversation.CmdReport,
	"🆘 Emergency":       conversation.CmdEmergency,
	"ℹ️ Help":            conversation.CmdHelp,
	"📊 My Reports":      conversation.CmdStatus,
}

// eventFromUpdate преобразует обновление Bot API в событие машины состояний.
// Возвращает идентификатор пользователя, его имя и событие; ok=false для
// обновлений, которые бот не обрабатывает.
func eventFromUpdate(update *Update) (userID int64, username string, ev conversation.Event, ok bool) {
	if cb := update.CallbackQuery; cb != nil {
		// Старые клиенты могут слать значения с UI-префиксами,
		// машина состояний ждет чистое значение
		value := strings.TrimPrefix(cb.Data, "type_")
		value = strings.TrimPrefix(value, "severity_")
		return cb.From.ID, cb.From.Username, conversation.Event{
			Kind:      conversation.KindSelection,
			Selection: value,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return 0, "", conversation.Event{}, false
	}
	userID = msg.From.ID
	username = msg.From.Username
	if username == "" {
		username = msg.From.FirstName
	}

	switch {
	case msg.Location != nil:
		return userID, username, conversation.Event{
			Kind:      conversation.KindLocation,
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}, true

	case len(msg.Photo) > 0:
		// Photo содержит варианты размеров, последний - самый крупный
		return userID, username, conversation.Event{
			Kind: conversation.KindAttachment,
			Attachment: models.Attachment{
				FileID:   msg.Photo[len(msg.Photo)-1].FileID,
				FileType: "photo",
			},
		}, true

	case msg.Document != nil:
		return userID, username, conversation.Event{
			Kind: conversation.KindAttachment,
			Attachment: models.Attachment{
				FileID:   msg.Document.FileID,
				FileType: "document",
			},
		}, true

	case msg.Video != nil:
		return userID, username, conversation.Event{
			Kind: conversation.KindAttachment,
			Attachment: models.Attachment{
				FileID:   msg.Video.FileID,
				FileType: "video",
			},
		}, true

	case strings.HasPrefix(msg.Text, "/"):
		command := strings.TrimPrefix(strings.Fields(msg.Text)[0], "/")
		// Команда в группе может прийти как /report@botname
		if at := strings.Index(command, "@"); at != -1 {
			command = command[:at]
		}
		return userID, username, conversation.Event{
			Kind:    conversation.KindCommand,
			Command: command,
		}, true

	case msg.Text != "":
		if command, isMenu := menuCommands[msg.Text]; isMenu {
			return userID, username, conversation.Event{
				Kind:    conversation.KindCommand,
				Command: command,
			}, true
		}
		return userID, username, conversation.Event{
			Kind: conversation.KindText,
			Text: msg.Text,
		}, true
	}

	return 0, "", conversation.Event{}, false
}
