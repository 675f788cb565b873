// errors.go — ошибки загрузки с различением стадий.
// UI должен отличать транзитный сетевой сбой (повторить загрузку)
// от отказа серверной обработки архива (исправить сам архив).
package files

import (
	"errors"
	"fmt"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/repoclient"
)

// UploadStage — стадия, на которой провалилась загрузка.
type UploadStage string

const (
	// StageUpload — сбой передачи файла (сеть, 5xx, отказ доступа).
	StageUpload UploadStage = "upload"
	// StageUnpack — файл передан, но серверная обработка архива
	// отвергла содержимое (400 с пополевыми ошибками).
	StageUnpack UploadStage = "post-upload unpack"
)

// UploadError — структурная ошибка загрузки файла.
type UploadError struct {
	// Stage — стадия сбоя
	Stage UploadStage
	// Category — категория, в которую шла загрузка
	Category model.FileCategory
	// Filename — имя загружаемого файла
	Filename string
	// Err — исходная ошибка
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("загрузка %q в категорию %s: стадия %s: %v",
		e.Filename, e.Category, e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// classifyUploadError определяет стадию сбоя по виду ошибки.
// 400 с пополевыми ошибками означает, что файл дошёл до сервера
// и был отвергнут обработкой содержимого; всё остальное — стадия передачи.
func classifyUploadError(category model.FileCategory, filename string, err error) *UploadError {
	stage := StageUpload
	var apiErr *repoclient.APIError
	if errors.As(err, &apiErr) && apiErr.IsValidation() {
		stage = StageUnpack
	}
	return &UploadError{
		Stage:    stage,
		Category: category,
		Filename: filename,
		Err:      err,
	}
}
