package conversation

import "github.com/shenikar/disaster_report_bot/internal/models"

// Kind - тип входящего события чата
type Kind string

const (
	KindCommand    Kind = "command"
	KindText       Kind = "text"
	KindLocation   Kind = "location"
	KindAttachment Kind = "attachment"
	// KindSelection - нажатие inline-кнопки; адаптер транспорта передает
	// чистое значение, без UI-префиксов
	KindSelection Kind = "selection"
)

// Команды, понимаемые машиной состояний
const (
	CmdStart     = "start"
	CmdHelp      = "help"
	CmdReport    = "report"
	CmdEmergency = "emergency"
	CmdCancel    = "cancel"
	CmdStatus    = "status"
)

// Текстовые сентинелы, продублированные кнопками в чате
const (
	SkipSentinel       = "Skip Description"
	SkipPhotosSentinel = "Skip Photos"
	SubmitSentinel     = "Submit Report"
)

// Event - одно входящее событие от пользователя
type Event struct {
	Kind       Kind
	Command    string
	Text       string
	Latitude   float64
	Longitude  float64
	Attachment models.Attachment
	Selection  string
}

// Reply - подсказка, которую транспорт отрисует пользователю после перехода
type Reply struct {
	Text string
	// Choices - ряды inline-кнопок (значение = подпись)
	Choices [][]string
	// Buttons - кнопки обычной клавиатуры
	Buttons []string
	// RequestLocation - показать кнопку отправки геолокации
	RequestLocation bool
	RemoveKeyboard  bool
}
