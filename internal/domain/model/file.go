package model

// FileCategory — категория оригинальных файлов релиза.
type FileCategory string

const (
	// CategoryCode — исходный код модели.
	CategoryCode FileCategory = "code"
	// CategoryData — входные данные.
	CategoryData FileCategory = "data"
	// CategoryDocs — документация.
	CategoryDocs FileCategory = "docs"
	// CategoryResults — результаты запусков.
	CategoryResults FileCategory = "results"
)

// FileCategories — все категории в порядке отображения.
var FileCategories = []FileCategory{CategoryCode, CategoryData, CategoryDocs, CategoryResults}

// ValidCategory проверяет, что категория известна.
func ValidCategory(c FileCategory) bool {
	for _, known := range FileCategories {
		if c == known {
			return true
		}
	}
	return false
}

// FileInfo — запись об оригинальном файле категории.
// Формируется только из ответа Repository API (listing), никогда локально:
// распаковка архивов на сервере может превратить одну загрузку
// в несколько файлов.
type FileInfo struct {
	// Name — имя файла
	Name string `json:"name"`
	// Identifier — идентификатор файла (для delete)
	Identifier string `json:"identifier"`
}

// MediaFile — медиа-файл релиза (изображения), вне файловых категорий.
type MediaFile struct {
	// Name — имя файла
	Name string `json:"name"`
	// Identifier — идентификатор файла
	Identifier string `json:"identifier"`
	// URL — адрес для отображения
	URL string `json:"url,omitempty"`
}
