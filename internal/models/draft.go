package models

import (
	"errors"
	"fmt"
	"time"
)

// SkippedDescription записывается в отчет, когда пользователь пропустил описание
const SkippedDescription = "No description provided"

// ReportSource помечает отчеты, собранные ботом
const ReportSource = "Telegram Bot"

// ErrDraftIncomplete возвращается при попытке финализировать незаполненный черновик
var ErrDraftIncomplete = errors.New("draft is incomplete")

// Draft - черновик отчета, заполняемый по шагам диалога.
// Указатели отличают "не задано" от нулевого значения.
type Draft struct {
	Type        *DisasterType
	Severity    *Severity
	Latitude    *float64
	Longitude   *float64
	Description *string
	Attachments []Attachment
	// Emergency: тип и серьезность предзаполнены, обязательны только координаты
	Emergency bool
}

// NewDraft создает пустой черновик для стандартного сценария
func NewDraft() *Draft {
	return &Draft{}
}

// NewEmergencyDraft создает черновик экстренного сценария с предзаполненными полями
func NewEmergencyDraft() *Draft {
	dt := DisasterEmergency
	sev := SeverityCritical
	return &Draft{Type: &dt, Severity: &sev, Emergency: true}
}

func (d *Draft) SetType(t DisasterType) {
	d.Type = &t
}

func (d *Draft) SetSeverity(s Severity) {
	d.Severity = &s
}

// SetLocation сохраняет координаты; диапазоны проверяет вызывающая сторона
func (d *Draft) SetLocation(lat, lng float64) {
	d.Latitude = &lat
	d.Longitude = &lng
}

func (d *Draft) SetDescription(text string) {
	d.Description = &text
}

func (d *Draft) AddAttachment(a Attachment) {
	d.Attachments = append(d.Attachments, a)
}

// MissingField возвращает имя первого незаполненного обязательного поля
// или пустую строку, если черновик готов к финализации
func (d *Draft) MissingField() string {
	switch {
	case d.Type == nil:
		return "disaster_type"
	case d.Severity == nil:
		return "severity"
	case d.Latitude == nil || d.Longitude == nil:
		return "location"
	case !d.Emergency && d.Description == nil:
		return "description"
	}
	return ""
}

// Finalize собирает неизменяемый отчет из черновика. Полнота и корректность
// полей проверяются здесь повторно - независимо от того, как машина состояний
// дошла до этой точки.
func (d *Draft) Finalize(userID, username string) (*Report, error) {
	if field := d.MissingField(); field != "" {
		return nil, fmt.Errorf("%w: missing %s", ErrDraftIncomplete, field)
	}
	if !ValidCoordinates(*d.Latitude, *d.Longitude) {
		return nil, fmt.Errorf("%w: coordinates out of range", ErrDraftIncomplete)
	}

	description := ""
	if d.Description != nil {
		description = *d.Description
	}
	if username == "" {
		username = "Anonymous"
	}

	attachments := d.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}

	now := time.Now().UTC()
	report := &Report{
		ID:          NewReportID(),
		UserID:      userID,
		Username:    username,
		Type:        *d.Type,
		Severity:    *d.Severity,
		Latitude:    *d.Latitude,
		Longitude:   *d.Longitude,
		Description: description,
		Attachments: attachments,
		Status:      StatusPending,
		Source:      ReportSource,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDraftIncomplete, err)
	}
	return report, nil
}
