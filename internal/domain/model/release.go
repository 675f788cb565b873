// Пакет model — доменные модели Editor Module.
// Release — агрегат релиза codebase, получаемый из Repository API.
package model

import "time"

// Состояния публикации релиза.
const (
	// StatusDraft — релиз редактируемый (не опубликован).
	StatusDraft = "draft"
	// StatusLive — релиз опубликован (публикация необратима).
	StatusLive = "live"
)

// Допустимые значения поля OS.
var OSOptions = []string{"other", "linux", "macos", "platform_independent", "windows"}

// License — лицензия релиза.
type License struct {
	// Name — SPDX-имя лицензии (например, MIT, GPL-3.0)
	Name string `json:"name"`
	// URL — ссылка на текст лицензии
	URL string `json:"url"`
}

// Metadata — редактируемые метаданные релиза.
// Поля структурные (OS, Platforms, ProgrammingLanguages, License, EmbargoEndDate)
// после публикации неизменяемы; ReleaseNotes остаётся редактируемым.
type Metadata struct {
	// ReleaseNotes — заметки к релизу (markdown)
	ReleaseNotes string `json:"release_notes"`
	// EmbargoEndDate — дата окончания эмбарго (nil — без эмбарго)
	EmbargoEndDate *time.Time `json:"embargo_end_date"`
	// OS — операционная система (см. OSOptions)
	OS string `json:"os"`
	// Platforms — теги платформ (NetLogo, Mesa, ...)
	Platforms []string `json:"platforms"`
	// ProgrammingLanguages — теги языков программирования
	ProgrammingLanguages []string `json:"programming_languages"`
	// License — выбранная лицензия (nil — не выбрана)
	License *License `json:"license"`
}

// Codebase — сведения о родительском codebase (вложены в ответ Repository API).
type Codebase struct {
	// Identifier — идентификатор codebase
	Identifier string `json:"identifier"`
	// Title — название модели
	Title string `json:"title"`
	// Description — описание модели
	Description string `json:"description"`
	// RepositoryURL — ссылка на внешний VCS-репозиторий (опционально)
	RepositoryURL string `json:"repository_url,omitempty"`
}

// Release — агрегат релиза codebase.
// Идентичность (Identifier, VersionNumber) неизменяема после создания.
type Release struct {
	// Identifier — идентификатор codebase
	Identifier string `json:"identifier"`
	// VersionNumber — номер версии релиза (semver-подобный, например 1.0.0)
	VersionNumber string `json:"version_number"`
	// Live — флаг публикации; true — терминальное состояние
	Live bool `json:"live"`
	// CanEditOriginals — разрешено ли изменение оригинальных файлов
	// (false после публикации или для импортированных пакетов)
	CanEditOriginals bool `json:"can_edit_originals"`
	// HasImportedPackage — релиз создан из импортированного пакета
	// (оригинальные файлы необязательны для публикации)
	HasImportedPackage bool `json:"has_imported_package"`
	// Metadata — редактируемые метаданные
	Metadata Metadata `json:"metadata"`
	// Codebase — родительский codebase
	Codebase Codebase `json:"codebase"`
	// Contributors — упорядоченный список участников релиза
	Contributors []ReleaseContributor `json:"release_contributors"`
	// PossibleLicenses — допустимые лицензии для выбора
	PossibleLicenses []License `json:"possible_licenses"`
	// URLs — адреса sub-resources релиза (выдаются Repository API)
	URLs ReleaseURLs `json:"urls"`
	// FirstPublishedAt — время первой публикации (nil для draft)
	FirstPublishedAt *time.Time `json:"first_published_at"`
	// CreatedAt — время создания релиза
	CreatedAt time.Time `json:"date_created"`
}

// ReleaseURLs — адреса sub-resources релиза.
// Пути выдаются сервером в ответе detail и используются как есть
// (клиент не конструирует их самостоятельно).
type ReleaseURLs struct {
	// Detail — detail endpoint релиза
	Detail string `json:"detail"`
	// Publish — publish endpoint (POST без тела)
	Publish string `json:"publish"`
	// Contributors — contributors sub-resource (PUT всего списка)
	Contributors string `json:"contributors"`
	// OriginalFiles — шаблонные адреса файловых категорий (ключ — категория)
	OriginalFiles map[string]string `json:"original_files"`
	// Media — media sub-resource
	Media string `json:"media"`
}

// FieldValues возвращает метаданные в виде карты поле → значение
// для валидации через schema.Engine.
func (m *Metadata) FieldValues() map[string]any {
	var embargo any
	if m.EmbargoEndDate != nil {
		embargo = *m.EmbargoEndDate
	}
	var license any
	if m.License != nil {
		license = m.License.Name
	}
	return map[string]any{
		"release_notes":         m.ReleaseNotes,
		"embargo_end_date":      embargo,
		"os":                    m.OS,
		"platforms":             m.Platforms,
		"programming_languages": m.ProgrammingLanguages,
		"license":               license,
	}
}
