// publish.go — необратимый переход Draft → Live.
//
// Перед сетевым вызовом выполняется клиентская проверка предусловий,
// зеркалирующая серверную валидацию: хотя бы один участник, файлы кода
// и документации (если релиз не импортирован пакетом), полные
// обязательные метаданные. Гейт пересчитывается здесь независимо от
// Progress — представление для отображения никогда не используется
// как гейт (защита от расхождения логики отображения и запрета).
package release

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/domain/schema"
)

// Publish публикует релиз.
//
// Допустим только из Draft. При провале предусловий возвращается
// *PreconditionError с полным списком недостающего, сетевой вызов
// не выполняется. Успешная публикация переводит машину в Live и
// безвозвратно отзывает редактирование файлов.
func (m *Machine) Publish(ctx context.Context) error {
	m.mu.RLock()
	state := m.state
	rel := m.release
	m.mu.RUnlock()

	if state != StateDraft {
		stateErrorsTotal.Inc()
		return &StateError{Op: "Publish", State: state, Reason: "публикация допустима только из draft"}
	}

	if missing := m.missingPreconditions(); len(missing) > 0 {
		publishesTotal.WithLabelValues("precondition").Inc()
		return &PreconditionError{Missing: missing}
	}

	var published model.Release
	if err := m.client.Post(ctx, rel.URLs.Publish, nil, &published); err != nil {
		publishesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("публикация релиза: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateLive
	m.release.Live = true
	// Редактирование оригинальных файлов отозвано навсегда:
	// и во флаге агрегата, и в самом хранилище.
	m.release.CanEditOriginals = false
	m.files.WithdrawEditing()
	if published.FirstPublishedAt != nil {
		m.release.FirstPublishedAt = published.FirstPublishedAt
	}

	publishesTotal.WithLabelValues("ok").Inc()
	m.logger.Info("Релиз опубликован",
		slog.String("identifier", m.release.Identifier),
		slog.String("version", m.release.VersionNumber),
	)
	return nil
}

// missingPreconditions пересчитывает предусловия публикации.
// Независимая реализация гейта: не через Progress.
func (m *Machine) missingPreconditions() []string {
	m.mu.RLock()
	rel := m.release
	fileStore := m.files
	contributorRoster := m.roster
	engine := m.engine
	m.mu.RUnlock()

	var missing []string

	if contributorRoster.Len() == 0 {
		missing = append(missing, "не зарегистрирован ни один участник")
	}

	// Импортированный пакет публикуется без оригинальных файлов.
	if !rel.HasImportedPackage {
		if !fileStore.HasFiles(model.CategoryCode) {
			missing = append(missing, "не загружен ни один файл кода")
		}
		if !fileStore.HasFiles(model.CategoryDocs) {
			missing = append(missing, "не загружен ни один файл документации")
		}
	}

	values := rel.Metadata.FieldValues()
	required := engine.RequiredMap()
	for _, field := range sortedRequired(required) {
		if schema.IsEmpty(values[field]) {
			missing = append(missing, fmt.Sprintf("не заполнено обязательное поле %q", field))
		}
	}

	return missing
}

// sortedRequired возвращает обязательные поля в стабильном порядке.
func sortedRequired(required map[string]bool) []string {
	fields := make([]string, 0, len(required))
	for field, isRequired := range required {
		if isRequired {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}
