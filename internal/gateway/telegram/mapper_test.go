package telegram

import (
	"testing"

	"github.com/shenikar/disaster_report_bot/internal/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageUpdate(msg *Message) *Update {
	if msg.From == nil {
		msg.From = &User{ID: 42, Username: "alice"}
	}
	if msg.Chat.ID == 0 {
		msg.Chat = Chat{ID: 42}
	}
	return &Update{UpdateID: 1, Message: msg}
}

func TestEventFromUpdate_Command(t *testing.T) {
	// Подготовка
	update := messageUpdate(&Message{Text: "/report"})

	// Действие
	userID, username, ev, ok := eventFromUpdate(update)

	// Проверки
	require.True(t, ok)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "alice", username)
	assert.Equal(t, conversation.KindCommand, ev.Kind)
	assert.Equal(t, conversation.CmdReport, ev.Command)
}

func TestEventFromUpdate_CommandWithBotMention(t *testing.T) {
	// Команда в группе приходит с упоминанием бота
	update := messageUpdate(&Message{Text: "/emergency@disaster_bot now"})

	_, _, ev, ok := eventFromUpdate(update)

	require.True(t, ok)
	assert.Equal(t, conversation.KindCommand, ev.Kind)
	assert.Equal(t, conversation.CmdEmergency, ev.Command)
}

func TestEventFromUpdate_MenuButtons(t *testing.T) {
	// Кнопки главного меню эквивалентны командам
	cases := map[string]string{
		"🚨 Report Disaster": conversation.CmdReport,
		"🆘 Emergency":       conversation.CmdEmergency,
		"ℹ️ Help":            conversation.CmdHelp,
		"📊 My Reports":      conversation.CmdStatus,
	}

	for label, expected := range cases {
		update := messageUpdate(&Message{Text: label})
		_, _, ev, ok := eventFromUpdate(update)
		require.True(t, ok, label)
		assert.Equal(t, conversation.KindCommand, ev.Kind, label)
		assert.Equal(t, expected, ev.Command, label)
	}
}

func TestEventFromUpdate_PlainText(t *testing.T) {
	update := messageUpdate(&Message{Text: "street flooded"})

	_, _, ev, ok := eventFromUpdate(update)

	require.True(t, ok)
	assert.Equal(t, conversation.KindText, ev.Kind)
	assert.Equal(t, "street flooded", ev.Text)
}

func TestEventFromUpdate_Location(t *testing.T) {
	update := messageUpdate(&Message{Location: &Location{Latitude: 12.9, Longitude: 77.6}})

	_, _, ev, ok := eventFromUpdate(update)

	require.True(t, ok)
	assert.Equal(t, conversation.KindLocation, ev.Kind)
	assert.Equal(t, 12.9, ev.Latitude)
	assert.Equal(t, 77.6, ev.Longitude)
}

func TestEventFromUpdate_PhotoPicksLargest(t *testing.T) {
	// Bot API присылает варианты размеров по возрастанию
	update := messageUpdate(&Message{Photo: []PhotoSize{
		{FileID: "small", Width: 90},
		{FileID: "medium", Width: 320},
		{FileID: "large", Width: 800},
	}})

	_, _, ev, ok := eventFromUpdate(update)

	require.True(t, ok)
	assert.Equal(t, conversation.KindAttachment, ev.Kind)
	assert.Equal(t, "large", ev.Attachment.FileID)
	assert.Equal(t, "photo", ev.Attachment.FileType)
}

func TestEventFromUpdate_Document(t *testing.T) {
	update := messageUpdate(&Message{Document: &Document{FileID: "doc-1"}})

	_, _, ev, ok := eventFromUpdate(update)

	require.True(t, ok)
	assert.Equal(t, conversation.KindAttachment, ev.Kind)
	assert.Equal(t, "doc-1", ev.Attachment.FileID)
	assert.Equal(t, "document", ev.Attachment.FileType)
}

func TestEventFromUpdate_CallbackStripsPrefixes(t *testing.T) {
	// Подготовка
	cases := map[string]string{
		"type_Flood":    "Flood",
		"severity_High": "High",
		"Flood":         "Flood",
	}

	for data, expected := range cases {
		update := &Update{CallbackQuery: &CallbackQuery{
			ID:   "cb-1",
			From: User{ID: 42, Username: "alice"},
			Data: data,
		}}

		// Действие
		userID, _, ev, ok := eventFromUpdate(update)

		// Проверки
		require.True(t, ok, data)
		assert.Equal(t, int64(42), userID)
		assert.Equal(t, conversation.KindSelection, ev.Kind)
		assert.Equal(t, expected, ev.Selection, data)
	}
}

func TestEventFromUpdate_FirstNameFallback(t *testing.T) {
	// Без username используется имя
	update := &Update{Message: &Message{
		From: &User{ID: 42, FirstName: "Alice"},
		Chat: Chat{ID: 42},
		Text: "hi",
	}}

	_, username, _, ok := eventFromUpdate(update)

	require.True(t, ok)
	assert.Equal(t, "Alice", username)
}

func TestEventFromUpdate_UnsupportedUpdate(t *testing.T) {
	// Обновление без сообщения и callback игнорируется
	_, _, _, ok := eventFromUpdate(&Update{UpdateID: 7})
	assert.False(t, ok)

	// Сообщение без поддерживаемого содержимого тоже
	_, _, _, ok = eventFromUpdate(messageUpdate(&Message{}))
	assert.False(t, ok)
}
