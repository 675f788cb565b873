// metadata.go — обновление метаданных релиза с гейтом Live/Draft.
//
// После публикации редактируемыми остаются только документационные
// поля (release_notes). Запись структурного поля в Live отклоняется
// клиентски, до сетевого вызова — это зеркало серверного ограничения,
// а не его замена. Локальное состояние меняется только после
// подтверждения сервера (никакого оптимистичного коммита).
package release

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
)

// MetadataPatch — частичное обновление метаданных.
// nil-поле — «не менять». Эмбарго снимается флагом ClearEmbargoEndDate.
type MetadataPatch struct {
	// ReleaseNotes — заметки к релизу (документационное поле,
	// редактируемо и после публикации)
	ReleaseNotes *string
	// EmbargoEndDate — новая дата окончания эмбарго
	EmbargoEndDate *time.Time
	// ClearEmbargoEndDate — снять эмбарго
	ClearEmbargoEndDate bool
	// OS — операционная система
	OS *string
	// Platforms — теги платформ
	Platforms []string
	// ProgrammingLanguages — теги языков программирования
	ProgrammingLanguages []string
	// License — имя лицензии из possible_licenses
	License *string
}

// structuralTouched возвращает имена структурных полей, затронутых патчем.
func (p *MetadataPatch) structuralTouched() []string {
	var touched []string
	if p.EmbargoEndDate != nil || p.ClearEmbargoEndDate {
		touched = append(touched, fieldEmbargoEndDate)
	}
	if p.OS != nil {
		touched = append(touched, fieldOS)
	}
	if p.Platforms != nil {
		touched = append(touched, fieldPlatforms)
	}
	if p.ProgrammingLanguages != nil {
		touched = append(touched, fieldProgrammingLanguages)
	}
	if p.License != nil {
		touched = append(touched, fieldLicense)
	}
	return touched
}

// apply накладывает патч на копию метаданных.
func (p *MetadataPatch) apply(meta model.Metadata, possibleLicenses []model.License) (model.Metadata, error) {
	if p.ReleaseNotes != nil {
		meta.ReleaseNotes = *p.ReleaseNotes
	}
	if p.ClearEmbargoEndDate {
		meta.EmbargoEndDate = nil
	} else if p.EmbargoEndDate != nil {
		d := *p.EmbargoEndDate
		meta.EmbargoEndDate = &d
	}
	if p.OS != nil {
		meta.OS = *p.OS
	}
	if p.Platforms != nil {
		meta.Platforms = append([]string(nil), p.Platforms...)
	}
	if p.ProgrammingLanguages != nil {
		meta.ProgrammingLanguages = append([]string(nil), p.ProgrammingLanguages...)
	}
	if p.License != nil {
		lic, ok := findLicense(possibleLicenses, *p.License)
		if !ok {
			return meta, fmt.Errorf("лицензия %q отсутствует в possible_licenses", *p.License)
		}
		meta.License = &lic
	}
	return meta, nil
}

// findLicense ищет лицензию по имени в допустимом наборе.
func findLicense(possible []model.License, name string) (model.License, bool) {
	for _, lic := range possible {
		if lic.Name == name {
			return lic, true
		}
	}
	return model.License{}, false
}

// UpdateMetadata применяет частичное обновление метаданных.
//
// В состоянии Live структурные поля отклоняются StateError до сети.
// Обновлённые метаданные валидируются целиком (ValidateAll — последний
// писатель относительно дебаунс-валидаторов), затем отправляются PUT
// на detail endpoint. Локальное состояние коммитится только после
// успешного ответа сервера.
func (m *Machine) UpdateMetadata(ctx context.Context, patch MetadataPatch) error {
	m.mu.RLock()
	state := m.state
	rel := m.release
	engine := m.engine
	m.mu.RUnlock()

	switch state {
	case StateDraft, StateLive:
		// Допустимо.
	default:
		return &StateError{Op: "UpdateMetadata", State: state}
	}

	if state == StateLive {
		if touched := patch.structuralTouched(); len(touched) > 0 {
			stateErrorsTotal.Inc()
			return &StateError{
				Op:     "UpdateMetadata",
				State:  state,
				Reason: fmt.Sprintf("релиз уже опубликован, структурные поля заморожены: %v", touched),
			}
		}
	}

	updated, err := patch.apply(rel.Metadata, rel.PossibleLicenses)
	if err != nil {
		return err
	}

	// Полная валидация обновлённых метаданных до сетевого вызова.
	m.seq.Bump()
	if verr := engine.ValidateAll(updated.FieldValues()); verr != nil {
		return verr
	}

	var saved model.Release
	if err := m.client.Put(ctx, rel.URLs.Detail, metadataBody(updated), &saved); err != nil {
		return fmt.Errorf("обновление метаданных: %w", err)
	}

	// Коммит только после подтверждения сервера.
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release.Metadata = updated

	m.logger.Info("Метаданные обновлены",
		slog.String("identifier", rel.Identifier),
		slog.String("version", rel.VersionNumber),
	)
	return nil
}

// metadataBody — тело частичного PUT метаданных.
func metadataBody(meta model.Metadata) map[string]any {
	var license any
	if meta.License != nil {
		license = meta.License
	}
	return map[string]any{
		"release_notes":         meta.ReleaseNotes,
		"embargo_end_date":      meta.EmbargoEndDate,
		"os":                    meta.OS,
		"platforms":             meta.Platforms,
		"programming_languages": meta.ProgrammingLanguages,
		"license":               license,
	}
}
