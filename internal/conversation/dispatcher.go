package conversation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shenikar/disaster_report_bot/internal/alert"
	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/shenikar/disaster_report_bot/internal/service"
	"github.com/shenikar/disaster_report_bot/internal/session"
	"github.com/sirupsen/logrus"
)

// Submitter определяет контракт финализации и отправки собранного черновика
type Submitter interface {
	Submit(ctx context.Context, sess *session.Session) (*models.Report, error)
}

// Dispatcher финализирует черновик в неизменяемый отчет, передает его
// коллектору и при необходимости публикует экстренное оповещение
type Dispatcher struct {
	reports       service.ReportService
	alerts        alert.Publisher
	sessions      session.Store
	logger        *logrus.Logger
	submitTimeout time.Duration
}

func NewDispatcher(reports service.ReportService, alerts alert.Publisher, sessions session.Store, logger *logrus.Logger, submitTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		reports:       reports,
		alerts:        alerts,
		sessions:      sessions,
		logger:        logger,
		submitTimeout: submitTimeout,
	}
}

// Submit выполняет полный цикл отправки:
//  1. финализация черновика с повторной проверкой полноты;
//  2. запись отчета в коллектор с ограниченным таймаутом - при сбое сессия
//     НЕ удаляется, чтобы пользователь мог повторить отправку без повторного
//     прохождения диалога;
//  3. для Critical - публикация оповещения; сбой публикации только логируется,
//     отчет уже надежно сохранен;
//  4. удаление сессии.
func (d *Dispatcher) Submit(ctx context.Context, sess *session.Session) (*models.Report, error) {
	log := d.logger.WithFields(logrus.Fields{
		"component": "dispatcher",
		"user_id":   sess.UserID,
		"mode":      sess.Mode,
	})

	userID := strconv.FormatInt(sess.UserID, 10)
	report, err := sess.Draft.Finalize(userID, sess.Username)
	if err != nil {
		// Сюда попадаем только при ошибке в переходах машины состояний
		log.WithError(err).Error("Draft failed finalize validation")
		return nil, fmt.Errorf("dispatcher: finalize: %w", err)
	}

	submitCtx, cancel := context.WithTimeout(ctx, d.submitTimeout)
	defer cancel()

	if err := d.reports.CreateReport(submitCtx, report); err != nil {
		log.WithError(err).Error("Collector rejected report, keeping session for retry")
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	if report.Severity == models.SeverityCritical {
		if err := d.alerts.Publish(ctx, alert.NewEvent(report)); err != nil {
			// Best-effort: оповещение не откатывает уже сохраненный отчет
			log.WithError(err).WithField("report_id", report.ID).Error("Failed to publish critical alert")
		}
	}

	d.sessions.Delete(sess.UserID)
	log.WithField("report_id", report.ID).Info("Report submitted successfully")
	return report, nil
}
