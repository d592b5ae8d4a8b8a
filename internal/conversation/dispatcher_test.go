package conversation

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shenikar/disaster_report_bot/internal/alert"
	alert_mocks "github.com/shenikar/disaster_report_bot/internal/alert/mocks"
	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/shenikar/disaster_report_bot/internal/service/mocks"
	"github.com/shenikar/disaster_report_bot/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestDispatcher - вспомогательная функция для создания диспетчера с моками
func newTestDispatcher(t *testing.T) (*Dispatcher, *mocks.MockReportService, *alert_mocks.MockPublisher, *session.MemoryStore) {
	ctrl := gomock.NewController(t)
	serviceMock := mocks.NewMockReportService(ctrl)
	alertMock := alert_mocks.NewMockPublisher(ctrl)
	store := session.NewMemoryStore(15 * time.Minute)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	dispatcher := NewDispatcher(serviceMock, alertMock, store, logger, 5*time.Second)
	return dispatcher, serviceMock, alertMock, store
}

// completeSession создает сессию с полностью заполненным черновиком
func completeSession(store *session.MemoryStore, severity models.Severity) *session.Session {
	sess := store.Create(42, "alice", session.ModeStandard)
	sess.Draft.SetType(models.DisasterFlood)
	sess.Draft.SetSeverity(severity)
	sess.Draft.SetLocation(12.9, 77.6)
	sess.Draft.SetDescription("street flooded")
	sess.Step = session.StepAttachMedia
	return sess
}

func TestDispatcher_Submit_Success(t *testing.T) {
	// Подготовка
	dispatcher, serviceMock, alertMock, store := newTestDispatcher(t)
	ctx := context.Background()
	sess := completeSession(store, models.SeverityHigh)

	// Ожидания: отчет записывается, оповещение для High не публикуется
	serviceMock.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)
	alertMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	report, err := dispatcher.Submit(ctx, sess)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "42", report.UserID)
	assert.Equal(t, models.DisasterFlood, report.Type)
	assert.Equal(t, models.StatusPending, report.Status)

	// Сессия удалена после успешной отправки
	_, err = store.Get(42)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestDispatcher_Submit_CriticalPublishesAlert(t *testing.T) {
	// Подготовка
	dispatcher, serviceMock, alertMock, store := newTestDispatcher(t)
	ctx := context.Background()
	sess := completeSession(store, models.SeverityCritical)

	// Ожидания: ровно одно оповещение с данными отчета
	serviceMock.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)
	alertMock.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, event alert.Event) {
			assert.Equal(t, models.DisasterFlood, event.DisasterType)
			assert.Equal(t, models.SeverityCritical, event.Severity)
			assert.Equal(t, 12.9, event.Latitude)
			assert.NotEmpty(t, event.ReportID)
		}).
		Return(nil).
		Times(1)

	// Действие
	_, err := dispatcher.Submit(ctx, sess)

	// Проверки
	require.NoError(t, err)
}

func TestDispatcher_Submit_AlertFailureDoesNotFailSubmit(t *testing.T) {
	// Подготовка
	dispatcher, serviceMock, alertMock, store := newTestDispatcher(t)
	ctx := context.Background()
	sess := completeSession(store, models.SeverityCritical)

	// Ожидания: оповещение падает, отправка отчета все равно успешна
	serviceMock.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)
	alertMock.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("queue unavailable")).
		Times(1)

	// Действие
	report, err := dispatcher.Submit(ctx, sess)

	// Проверки
	require.NoError(t, err)
	assert.NotNil(t, report)
	_, err = store.Get(42)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestDispatcher_Submit_StoreFailureKeepsSession(t *testing.T) {
	// Подготовка
	dispatcher, serviceMock, alertMock, store := newTestDispatcher(t)
	ctx := context.Background()
	sess := completeSession(store, models.SeverityCritical)

	// Ожидания: коллектор недоступен, оповещение не публикуется
	serviceMock.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("db down")).
		Times(1)
	alertMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	report, err := dispatcher.Submit(ctx, sess)

	// Проверки: сессия сохранена для повторной отправки
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrSubmissionFailed)

	kept, getErr := store.Get(42)
	require.NoError(t, getErr)
	assert.Same(t, sess, kept)
}

func TestDispatcher_Submit_IncompleteDraft(t *testing.T) {
	// Подготовка: черновик без локации
	dispatcher, serviceMock, alertMock, store := newTestDispatcher(t)
	ctx := context.Background()
	sess := store.Create(42, "alice", session.ModeStandard)
	sess.Draft.SetType(models.DisasterFire)
	sess.Draft.SetSeverity(models.SeverityLow)

	// Ожидания: до коллектора дело не доходит
	serviceMock.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0)
	alertMock.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	report, err := dispatcher.Submit(ctx, sess)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, models.ErrDraftIncomplete)
}
