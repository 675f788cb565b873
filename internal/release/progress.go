// progress.go — производное представление полноты релиза.
// Чистая читающая проекция для UI (чек-лист «что осталось сделать»);
// гейтом публикации НЕ является — Publish пересчитывает предусловия
// самостоятельно. Тесты следят, чтобы два расчёта не расходились.
package release

import (
	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/domain/schema"
)

// UploadProgress — полнота загрузки файлов по категориям.
type UploadProgress struct {
	// HasCode — есть хотя бы один файл кода
	HasCode bool `json:"has_code"`
	// HasData — есть файлы данных (необязательно для публикации)
	HasData bool `json:"has_data"`
	// HasDocs — есть хотя бы один файл документации
	HasDocs bool `json:"has_docs"`
	// HasResults — есть файлы результатов (необязательно)
	HasResults bool `json:"has_results"`
	// HasMedia — есть медиа-файлы (необязательно)
	HasMedia bool `json:"has_media"`
	// Complete — загрузка достаточна для публикации
	Complete bool `json:"complete"`
}

// MetadataProgress — полнота метаданных.
type MetadataProgress struct {
	// OSChosen — выбрана операционная система
	OSChosen bool `json:"os_chosen"`
	// PlatformsChosen — указана хотя бы одна платформа
	PlatformsChosen bool `json:"platforms_chosen"`
	// LanguagesChosen — указан хотя бы один язык программирования
	LanguagesChosen bool `json:"languages_chosen"`
	// LicenseChosen — выбрана лицензия
	LicenseChosen bool `json:"license_chosen"`
	// Complete — все обязательные поля заполнены
	Complete bool `json:"complete"`
}

// Progress — сводка полноты релиза для UI.
type Progress struct {
	// Upload — полнота файлов
	Upload UploadProgress `json:"upload"`
	// Contributors — есть хотя бы один участник
	Contributors bool `json:"contributors"`
	// Metadata — полнота метаданных
	Metadata MetadataProgress `json:"metadata"`
}

// Progress вычисляет сводку полноты из текущего состояния.
// Ошибка ErrNotInitialized до завершения Initialize.
func (m *Machine) Progress() (*Progress, error) {
	m.mu.RLock()
	rel := m.release
	fileStore := m.files
	contributorRoster := m.roster
	engine := m.engine
	m.mu.RUnlock()

	if rel == nil {
		return nil, ErrNotInitialized
	}

	upload := UploadProgress{
		HasCode:    fileStore.HasFiles(model.CategoryCode),
		HasData:    fileStore.HasFiles(model.CategoryData),
		HasDocs:    fileStore.HasFiles(model.CategoryDocs),
		HasResults: fileStore.HasFiles(model.CategoryResults),
		HasMedia:   len(fileStore.Media()) > 0,
	}
	upload.Complete = rel.HasImportedPackage || (upload.HasCode && upload.HasDocs)

	values := rel.Metadata.FieldValues()
	meta := MetadataProgress{
		OSChosen:        !schema.IsEmpty(values[fieldOS]),
		PlatformsChosen: !schema.IsEmpty(values[fieldPlatforms]),
		LanguagesChosen: !schema.IsEmpty(values[fieldProgrammingLanguages]),
		LicenseChosen:   !schema.IsEmpty(values[fieldLicense]),
	}
	meta.Complete = true
	for field, isRequired := range engine.RequiredMap() {
		if isRequired && schema.IsEmpty(values[field]) {
			meta.Complete = false
			break
		}
	}

	return &Progress{
		Upload:       upload,
		Contributors: contributorRoster.Len() > 0,
		Metadata:     meta,
	}, nil
}
