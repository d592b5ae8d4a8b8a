package session

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper - фоновая очистка брошенных сессий. Пассивная проверка в Get
// уже делает истекшую сессию недостижимой; свипер лишь освобождает память.
type Sweeper struct {
	store    Store
	logger   *logrus.Logger
	interval time.Duration
}

func NewSweeper(store Store, logger *logrus.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		logger:   logger,
		interval: interval,
	}
}

// Start запускает горутину периодической очистки
func (w *Sweeper) Start(ctx context.Context) {
	w.logger.Info("Starting session sweeper...")
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping session sweeper.")
				return
			case <-ticker.C:
				if removed := w.store.DeleteExpired(); removed > 0 {
					w.logger.WithField("removed", removed).Info("Swept expired sessions")
				}
			}
		}
	}()
}
