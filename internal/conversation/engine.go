package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/shenikar/disaster_report_bot/internal/service"
	"github.com/shenikar/disaster_report_bot/internal/session"
	"github.com/sirupsen/logrus"
)

// Engine - машина состояний диалога сбора отчета. Все события одного
// пользователя сериализуются его персональным мьютексом: гонка двух
// сообщений не может рассинхронизировать шаг и черновик. События разных
// пользователей обрабатываются параллельно.
type Engine struct {
	sessions  session.Store
	submitter Submitter
	reports   service.ReportService
	logger    *logrus.Logger

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func NewEngine(sessions session.Store, submitter Submitter, reports service.ReportService, logger *logrus.Logger) *Engine {
	return &Engine{
		sessions:  sessions,
		submitter: submitter,
		reports:   reports,
		logger:    logger,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// lockFor возвращает персональный мьютекс пользователя.
// Записи не удаляются: мьютекс мал, а число пользователей ограничено.
func (e *Engine) lockFor(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// HandleEvent валидирует событие против текущего шага диалога и либо
// продвигает состояние, либо возвращает повторный запрос. Reply возвращается
// всегда, когда есть что показать пользователю; ошибка дополняет его для
// логирования и ветвления вызывающей стороны, но никогда не фатальна.
func (e *Engine) HandleEvent(ctx context.Context, userID int64, username string, ev Event) (*Reply, error) {
	lock := e.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	log := e.logger.WithFields(logrus.Fields{
		"component": "conversation",
		"user_id":   userID,
		"kind":      ev.Kind,
	})

	if ev.Kind == KindCommand {
		return e.handleCommand(ctx, userID, username, ev.Command, log)
	}

	sess, err := e.sessions.Get(userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			log.Debug("Event without active session")
			return restartReply(), ErrNoActiveSession
		}
		return restartReply(), fmt.Errorf("conversation: get session: %w", err)
	}

	reply, err := e.advance(ctx, sess, ev, log)
	if err == nil {
		// Принятое событие продлевает жизнь сессии; после отправки или
		// отмены сессии уже нет и Touch безвреден
		e.sessions.Touch(userID)
	}
	return reply, err
}

func (e *Engine) handleCommand(ctx context.Context, userID int64, username, command string, log *logrus.Entry) (*Reply, error) {
	switch command {
	case CmdStart:
		return welcomeReply(username), nil

	case CmdHelp:
		return helpReply(), nil

	case CmdReport:
		// Повторный /report - явный сброс: старая сессия перезаписывается
		e.sessions.Create(userID, username, session.ModeStandard)
		log.Info("Standard report session started")
		return typePrompt(), nil

	case CmdEmergency:
		e.sessions.Create(userID, username, session.ModeEmergency)
		log.Info("Emergency report session started")
		return emergencyLocationPrompt(), nil

	case CmdCancel:
		if _, err := e.sessions.Get(userID); err != nil {
			return nothingToCancelReply(), nil
		}
		e.sessions.Delete(userID)
		log.Info("Session cancelled, draft discarded")
		return cancelledReply(), nil

	case CmdStatus:
		reports, err := e.reports.GetUserReports(ctx, strconv.FormatInt(userID, 10), 5)
		if err != nil {
			log.WithError(err).Error("Failed to fetch user reports")
			return &Reply{Text: "❌ Unable to fetch your reports. Please try again later."}, nil
		}
		return statusReply(reports), nil

	default:
		return unknownReply(), nil
	}
}

// advance применяет событие к текущему шагу сессии
func (e *Engine) advance(ctx context.Context, sess *session.Session, ev Event, log *logrus.Entry) (*Reply, error) {
	log = log.WithField("step", sess.Step)

	switch sess.Step {
	case session.StepSelectType:
		dt, ok := models.ParseDisasterType(selectionValue(ev))
		if !ok {
			log.Debug("Rejected input: not a disaster type")
			return typePrompt(), ErrInvalidInput
		}
		sess.Draft.SetType(dt)
		sess.Step = session.StepSelectSeverity
		return severityPrompt(dt), nil

	case session.StepSelectSeverity:
		sev, ok := models.ParseSeverity(selectionValue(ev))
		if !ok {
			log.Debug("Rejected input: not a severity level")
			return severityPrompt(*sess.Draft.Type), ErrInvalidInput
		}
		sess.Draft.SetSeverity(sev)
		sess.Step = session.StepShareLocation
		return locationPrompt(), nil

	case session.StepShareLocation:
		if ev.Kind != KindLocation || !models.ValidCoordinates(ev.Latitude, ev.Longitude) {
			log.Debug("Rejected input: missing or out-of-range coordinates")
			if sess.Mode == session.ModeEmergency {
				return emergencyLocationPrompt(), ErrInvalidInput
			}
			return locationPrompt(), ErrInvalidInput
		}
		sess.Draft.SetLocation(ev.Latitude, ev.Longitude)
		if sess.Mode == session.ModeEmergency {
			// Экстренный путь: координаты приняты - отправляем сразу,
			// описание и вложения не требуются
			return e.submit(ctx, sess, log)
		}
		sess.Step = session.StepDescribe
		return describePrompt(), nil

	case session.StepDescribe:
		if ev.Kind != KindText {
			log.Debug("Rejected input: expected text description")
			return describePrompt(), ErrInvalidInput
		}
		if ev.Text == SkipSentinel {
			sess.Draft.SetDescription(models.SkippedDescription)
		} else {
			sess.Draft.SetDescription(ev.Text)
		}
		sess.Step = session.StepAttachMedia
		return attachPrompt(), nil

	case session.StepAttachMedia:
		switch {
		case ev.Kind == KindAttachment:
			sess.Draft.AddAttachment(ev.Attachment)
			return attachAck(len(sess.Draft.Attachments)), nil
		case ev.Kind == KindText && ev.Text == SubmitSentinel:
			return e.submit(ctx, sess, log)
		case ev.Kind == KindText && ev.Text == SkipPhotosSentinel:
			// Пропуск фото равносилен отправке без вложений
			return e.submit(ctx, sess, log)
		default:
			log.Debug("Rejected input: expected attachment or submit")
			return attachPrompt(), ErrInvalidInput
		}

	default:
		log.WithField("step", sess.Step).Error("Session in unknown step")
		e.sessions.Delete(sess.UserID)
		return restartReply(), ErrNoActiveSession
	}
}

// submit передает сессию диспетчеру и переводит результат в ответ пользователю
func (e *Engine) submit(ctx context.Context, sess *session.Session, log *logrus.Entry) (*Reply, error) {
	report, err := e.submitter.Submit(ctx, sess)
	if err != nil {
		if errors.Is(err, models.ErrDraftIncomplete) {
			// Ошибка переходов машины состояний: логируем и возвращаем
			// пользователя на шаг недостающего поля вместо падения
			log.WithError(err).Error("Draft incomplete at submit, reprompting")
			return e.repromptMissing(sess), err
		}
		if errors.Is(err, ErrSubmissionFailed) {
			// Сессия сохранена; кнопка Submit Report повторит попытку
			sess.Step = session.StepAttachMedia
			return submissionFailedReply(), err
		}
		log.WithError(err).Error("Unexpected submit failure")
		return submissionFailedReply(), err
	}
	return successReply(report), nil
}

// repromptMissing возвращает диалог на шаг первого недостающего поля
func (e *Engine) repromptMissing(sess *session.Session) *Reply {
	switch sess.Draft.MissingField() {
	case "disaster_type":
		sess.Step = session.StepSelectType
		return typePrompt()
	case "severity":
		sess.Step = session.StepSelectSeverity
		return severityPrompt(models.DisasterOther)
	case "location":
		sess.Step = session.StepShareLocation
		return locationPrompt()
	case "description":
		sess.Step = session.StepDescribe
		return describePrompt()
	}
	return attachPrompt()
}

// selectionValue достает выбранное значение из события выбора или текста
func selectionValue(ev Event) string {
	switch ev.Kind {
	case KindSelection:
		return ev.Selection
	case KindText:
		return ev.Text
	}
	return ""
}
