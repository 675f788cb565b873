// Пакет release — конечный автомат редактирования релиза codebase.
//
// Состояния: Uninitialized → Loading → {Draft, Live}.
// Переход Draft → Live (публикация) односторонний и необратимый;
// перехода Live → Draft не существует. Машина — единственный компонент,
// выполняющий release-level запросы к Repository API; файловое хранилище
// и ростер работают со своими sub-resources и отчитываются в общее
// состояние машины.
//
// Повторный Initialize не блокируется: обе последовательности выборок
// выполняются, но результаты вытесненного вызова отбрасываются по
// счётчику поколений (иначе поздний ответ молча откатил бы состояние).
package release

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/domain/schema"
	"github.com/bigkaa/modelstore/editor-module/internal/files"
	"github.com/bigkaa/modelstore/editor-module/internal/roster"
)

// Prometheus-метрики конечного автомата.
var (
	initializationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "em_release_initializations_total",
		Help: "Общее количество инициализаций релиза по результату (ok, error, superseded).",
	}, []string{"result"})
	publishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "em_release_publishes_total",
		Help: "Общее количество попыток публикации по результату (ok, precondition, error).",
	}, []string{"result"})
	stateErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "em_release_state_errors_total",
		Help: "Количество операций, отклонённых из-за состояния релиза (нарушение контракта UI).",
	})
)

// State — состояние конечного автомата релиза.
type State string

const (
	// StateUninitialized — машина создана, Initialize не вызывался.
	StateUninitialized State = "uninitialized"
	// StateLoading — выполняется последовательность выборок Initialize.
	// Сбой сети оставляет машину в Loading: безопасного частичного
	// состояния нет, решение о повторе — за вызывающим.
	StateLoading State = "loading"
	// StateDraft — релиз редактируемый.
	StateDraft State = "draft"
	// StateLive — релиз опубликован (терминально для структурных правок).
	StateLive State = "live"
)

// ResourceClient — транспорт Repository API, используемый машиной
// и передаваемый вложенным хранилищам. Реализуется repoclient.Client.
type ResourceClient interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
	UploadFile(ctx context.Context, path, filename string, r io.Reader, onProgress func(written int64)) error
}

// Machine — конечный автомат редактирования одного релиза.
// Конструируется явно и передаётся по ссылке (никаких неявных
// синглтонов); жизненный цикл — Initialize → операции → Dispose.
type Machine struct {
	client   ResourceClient
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.RWMutex
	state   State
	release *model.Release
	files   *files.Store
	roster  *roster.Roster
	engine  *schema.Engine
	// seq — общий счётчик поколений валидации: ValidateAll всегда
	// последний писатель относительно дебаунс-валидаторов.
	seq *schema.Sequence
	// generation — счётчик поколений Initialize: результаты
	// вытесненного вызова отбрасываются.
	generation uint64
}

// NewMachine создаёт машину релиза.
// debounce — интервал дебаунса пополевой валидации.
func NewMachine(client ResourceClient, debounce time.Duration, logger *slog.Logger) *Machine {
	return &Machine{
		client:   client,
		logger:   logger.With(slog.String("component", "release_machine")),
		debounce: debounce,
		state:    StateUninitialized,
		seq:      &schema.Sequence{},
	}
}

// detailPath — detail endpoint релиза.
func detailPath(identifier, versionNumber string) string {
	return fmt.Sprintf("/api/codebases/%s/releases/%s/", identifier, versionNumber)
}

// Initialize загружает релиз и зависимые sub-resources.
//
// Жёсткий порядок: сначала release detail (из него берутся адреса
// категорий и признак редактируемости), затем media, затем — только
// для редактируемого релиза — последовательно каждая файловая категория.
// При сбое машина остаётся в Loading, состояние не откатывается.
// Вытесненный вызов возвращает ErrSuperseded, его результаты отброшены.
func (m *Machine) Initialize(ctx context.Context, identifier, versionNumber string) error {
	m.mu.Lock()
	m.state = StateLoading
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	// 1. Release detail — до любых зависимых выборок.
	var rel model.Release
	if err := m.client.Get(ctx, detailPath(identifier, versionNumber), &rel); err != nil {
		initializationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("получение release detail: %w", err)
	}

	if m.superseded(gen) {
		initializationsTotal.WithLabelValues("superseded").Inc()
		return ErrSuperseded
	}

	engine, err := newMetadataEngine(rel.PossibleLicenses)
	if err != nil {
		initializationsTotal.WithLabelValues("error").Inc()
		return err
	}

	categoryURLs := make(map[model.FileCategory]string, len(rel.URLs.OriginalFiles))
	for cat, url := range rel.URLs.OriginalFiles {
		categoryURLs[model.FileCategory(cat)] = url
	}
	fileStore := files.NewStore(m.client, categoryURLs, rel.URLs.Media, m.logger)

	contributorRoster := roster.New(m.client, rel.URLs.Contributors, m.logger)
	contributorRoster.Load(rel.Contributors)

	// 2. Media — всегда.
	if _, err := fileStore.ListMedia(ctx); err != nil {
		initializationsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("инициализация: %w", err)
	}

	// 3. Оригинальные файлы — последовательно, только для неопубликованного
	// релиза. Признак canEditOriginals на выборку не влияет: черновик с
	// запретом редактирования (импортированный пакет) может уже иметь
	// файлы на сервере, и гейт публикации считает по их снимку.
	if !rel.Live {
		for _, cat := range model.FileCategories {
			if _, ok := categoryURLs[cat]; !ok {
				continue
			}
			if _, err := fileStore.List(ctx, cat); err != nil {
				initializationsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("инициализация: %w", err)
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		initializationsTotal.WithLabelValues("superseded").Inc()
		return ErrSuperseded
	}

	// Мутации файлов блокируются локально, если сервер их не примет.
	if rel.Live || !rel.CanEditOriginals {
		fileStore.WithdrawEditing()
	}

	m.release = &rel
	m.files = fileStore
	m.roster = contributorRoster
	m.engine = engine
	if rel.Live {
		m.state = StateLive
	} else {
		m.state = StateDraft
	}

	initializationsTotal.WithLabelValues("ok").Inc()
	m.logger.Info("Релиз инициализирован",
		slog.String("identifier", identifier),
		slog.String("version", versionNumber),
		slog.String("state", string(m.state)),
	)
	return nil
}

// superseded проверяет, не вытеснено ли поколение gen.
func (m *Machine) superseded(gen uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return gen != m.generation
}

// State возвращает текущее состояние машины.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsLive сообщает, опубликован ли релиз.
func (m *Machine) IsLive() bool {
	return m.State() == StateLive
}

// Release возвращает копию агрегата релиза.
// Ошибка ErrNotInitialized до завершения Initialize.
func (m *Machine) Release() (*model.Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.release == nil {
		return nil, ErrNotInitialized
	}
	rel := *m.release
	return &rel, nil
}

// Files возвращает файловое хранилище релиза (nil до Initialize).
func (m *Machine) Files() *files.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files
}

// Roster возвращает ростер участников релиза (nil до Initialize).
func (m *Machine) Roster() *roster.Roster {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.roster
}

// RequiredFields возвращает карту обязательности полей метаданных
// (UI-подсказки; публикацию гейтит Publish, а не эта карта).
func (m *Machine) RequiredFields() (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.engine == nil {
		return nil, ErrNotInitialized
	}
	return m.engine.RequiredMap(), nil
}

// FieldValidator возвращает дебаунс-валидатор поля метаданных,
// разделяющий счётчик поколений с ValidateMetadata (последняя
// полная валидация всегда побеждает отложенную пополевую).
func (m *Machine) FieldValidator(field string) (*schema.FieldValidator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.engine == nil {
		return nil, ErrNotInitialized
	}
	return m.engine.NewFieldValidator(field, m.debounce, m.seq), nil
}

// ValidateMetadata выполняет полную валидацию метаданных.
// Инкрементирует счётчик поколений: незавершённые дебаунс-проверки
// отбрасываются (ValidateAll — последний писатель).
func (m *Machine) ValidateMetadata() (*schema.ValidationError, error) {
	m.mu.RLock()
	engine, rel := m.engine, m.release
	m.mu.RUnlock()
	if engine == nil || rel == nil {
		return nil, ErrNotInitialized
	}

	m.seq.Bump()
	return engine.ValidateAll(rel.Metadata.FieldValues()), nil
}

// Dispose закрывает машину: файловое хранилище перестаёт принимать
// поздние ответы сети. Машина после Dispose не переиспользуется.
func (m *Machine) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files != nil {
		m.files.Dispose()
	}
}
