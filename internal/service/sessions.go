// sessions.go — сессии редактора релизов.
//
// UI Shell открывает сессию на пару (identifier, version_number);
// сессия владеет одним конечным автоматом релиза и его хранилищами.
// Машина конструируется явно и передаётся по ссылке — никакого
// глобального изменяемого состояния. Неактивные сессии вычищаются
// фоновым sweeper-ом (Dispose отбрасывает поздние ответы сети).
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/modelstore/editor-module/internal/release"
)

// Prometheus-метрики сессий.
var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "em_editor_sessions_active",
		Help: "Количество активных сессий редактора.",
	})
	sessionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "em_editor_sessions_opened_total",
		Help: "Общее количество открытых сессий редактора.",
	})
	sessionsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "em_editor_sessions_expired_total",
		Help: "Общее количество сессий, закрытых по TTL.",
	})
)

// ErrSessionNotFound — сессия не существует или истекла.
var ErrSessionNotFound = errors.New("сессия редактора не найдена")

// Session — одна сессия редактирования релиза.
type Session struct {
	// ID — идентификатор сессии (выдаётся клиенту)
	ID string
	// Identifier — идентификатор codebase
	Identifier string
	// VersionNumber — номер версии релиза
	VersionNumber string
	// Machine — конечный автомат релиза
	Machine *release.Machine

	mu         sync.Mutex
	lastAccess time.Time
}

// touch обновляет время последнего обращения.
func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
}

// idleSince возвращает время последнего обращения.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}

// EditorService — реестр сессий редактора.
type EditorService struct {
	client   release.ResourceClient
	logger   *slog.Logger
	debounce time.Duration
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewEditorService создаёт реестр сессий.
// debounce — интервал дебаунса пополевой валидации,
// ttl — срок жизни неактивной сессии.
func NewEditorService(client release.ResourceClient, debounce, ttl time.Duration, logger *slog.Logger) *EditorService {
	return &EditorService{
		client:   client,
		logger:   logger.With(slog.String("component", "editor_service")),
		debounce: debounce,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Open открывает сессию: создаёт машину и выполняет Initialize.
// При сбое инициализации сессия не регистрируется.
func (s *EditorService) Open(ctx context.Context, identifier, versionNumber string) (*Session, error) {
	machine := release.NewMachine(s.client, s.debounce, s.logger)
	if err := machine.Initialize(ctx, identifier, versionNumber); err != nil {
		return nil, err
	}

	session := &Session{
		ID:            uuid.NewString(),
		Identifier:    identifier,
		VersionNumber: versionNumber,
		Machine:       machine,
		lastAccess:    time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	sessionsOpenedTotal.Inc()
	sessionsActive.Inc()
	s.logger.Info("Сессия редактора открыта",
		slog.String("session_id", session.ID),
		slog.String("identifier", identifier),
		slog.String("version", versionNumber),
	)
	return session, nil
}

// Get возвращает сессию по идентификатору и продлевает её TTL.
func (s *EditorService) Get(id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.touch()
	return session, nil
}

// Close закрывает сессию и освобождает её ресурсы.
func (s *EditorService) Close(id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.Machine.Dispose()
	sessionsActive.Dec()
	s.logger.Info("Сессия редактора закрыта", slog.String("session_id", id))
	return nil
}

// StartSweeper запускает фоновую чистку неактивных сессий.
// Останавливается при отмене контекста.
func (s *EditorService) StartSweeper(ctx context.Context) {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// sweep закрывает сессии, неактивные дольше TTL.
func (s *EditorService) sweep() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*Session
	for id, session := range s.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.Machine.Dispose()
		sessionsActive.Dec()
		sessionsExpiredTotal.Inc()
		s.logger.Info("Сессия редактора закрыта по TTL",
			slog.String("session_id", session.ID),
		)
	}
}
