package session

import (
	"sync"
	"time"

	"github.com/shenikar/disaster_report_bot/internal/models"
)

// Store определяет контракт хранилища сессий. Все операции над одним
// userID линеаризуемы; операции над разными пользователями независимы.
type Store interface {
	Create(userID int64, username string, mode Mode) *Session
	Get(userID int64) (*Session, error)
	Touch(userID int64)
	Delete(userID int64)
	Len() int
	DeleteExpired() int
}

// MemoryStore - потокобезопасное in-memory хранилище сессий
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
	// подменяется в тестах
	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create создает новую сессию, перезаписывая существующую без предупреждения:
// повторный /report - это явный сброс диалога, а не ошибка
func (s *MemoryStore) Create(userID int64, username string, mode Mode) *Session {
	draft := models.NewDraft()
	step := StepSelectType
	if mode == ModeEmergency {
		draft = models.NewEmergencyDraft()
		step = StepShareLocation
	}

	now := s.now()
	sess := &Session{
		UserID:         userID,
		Username:       username,
		Mode:           mode,
		Step:           step,
		Draft:          draft,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()
	return sess
}

// Get возвращает активную сессию пользователя. Истекшая сессия удаляется
// на месте и неотличима от отсутствующей.
func (s *MemoryStore) Get(userID int64) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if sess.Expired(s.ttl, s.now()) {
		s.mu.Lock()
		// перепроверка: сессию могли пересоздать между RUnlock и Lock
		if cur, ok := s.sessions[userID]; ok && cur == sess {
			delete(s.sessions, userID)
		}
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return sess, nil
}

// Touch обновляет время последней активности; вызывается на каждом принятом событии
func (s *MemoryStore) Touch(userID int64) {
	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		sess.LastActivityAt = s.now()
	}
	s.mu.Unlock()
}

// Delete удаляет сессию; вызывается при отправке, отмене или истечении
func (s *MemoryStore) Delete(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// DeleteExpired удаляет все истекшие сессии и возвращает их количество
func (s *MemoryStore) DeleteExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, sess := range s.sessions {
		if sess.Expired(s.ttl, now) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}
