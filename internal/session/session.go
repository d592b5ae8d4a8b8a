package session

import (
	"errors"
	"time"

	"github.com/shenikar/disaster_report_bot/internal/models"
)

// ErrNotFound возвращается, когда активной сессии у пользователя нет
// (в том числе когда она истекла по бездействию)
var ErrNotFound = errors.New("session not found")

// Step - текущий шаг диалога сбора отчета
type Step string

const (
	StepSelectType     Step = "select_type"
	StepSelectSeverity Step = "select_severity"
	StepShareLocation  Step = "share_location"
	StepDescribe       Step = "describe"
	StepAttachMedia    Step = "attach_media"
)

// Mode - сценарий диалога
type Mode string

const (
	// ModeStandard - полный путь: тип, серьезность, локация, описание, вложения
	ModeStandard Mode = "standard"
	// ModeEmergency - короткий путь: только локация, отправка сразу после нее
	ModeEmergency Mode = "emergency"
)

// Session - эфемерное состояние диалога одного пользователя.
// Существует только пока отчет собирается: удаляется при отправке,
// отмене или истечении по бездействию.
type Session struct {
	UserID         int64
	Username       string
	Mode           Mode
	Step           Step
	Draft          *models.Draft
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// Expired сообщает, истекла ли сессия по бездействию
func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.LastActivityAt) > ttl
}
