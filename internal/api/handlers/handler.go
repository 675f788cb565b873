// Пакет handlers — HTTP handlers Editor Module.
// Тонкий фасад над сервисным слоем: JSON in/out, маппинг доменных
// ошибок в стандартный формат ответов, ноль бизнес-логики.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/modelstore/editor-module/internal/api/errors"
	"github.com/bigkaa/modelstore/editor-module/internal/domain/schema"
	"github.com/bigkaa/modelstore/editor-module/internal/files"
	"github.com/bigkaa/modelstore/editor-module/internal/release"
	"github.com/bigkaa/modelstore/editor-module/internal/repoclient"
	"github.com/bigkaa/modelstore/editor-module/internal/roster"
	"github.com/bigkaa/modelstore/editor-module/internal/service"
)

// EditorHandler — обработчик editor endpoints.
type EditorHandler struct {
	editor *service.EditorService
	search *roster.SearchService
	logger *slog.Logger
}

// NewEditorHandler создаёт обработчик editor endpoints.
func NewEditorHandler(editor *service.EditorService, search *roster.SearchService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		editor: editor,
		search: search,
		logger: logger.With(slog.String("component", "editor_handler")),
	}
}

// writeJSON сериализует ответ с указанным статус-кодом.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainError отображает доменную ошибку в стандартный ответ API.
// Таксономия: валидация и предусловия — пользовательские (4xx, без
// логирования как исключительных); StateError — нарушение контракта UI,
// логируется громко; транспорт upstream — 502.
func (h *EditorHandler) writeDomainError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		apierrors.FieldValidationError(w, "ошибка валидации метаданных", verr.Errors)
		return
	}

	var perr *release.PreconditionError
	if errors.As(err, &perr) {
		apierrors.PreconditionFailed(w, "публикация невозможна", perr.Missing)
		return
	}

	var serr *release.StateError
	if errors.As(err, &serr) {
		// Нарушение контракта UI/core: элементы управления должны были
		// быть отключены. Сообщаем громко.
		h.logger.Error("Операция отклонена состоянием релиза",
			slog.String("op", serr.Op),
			slog.String("state", string(serr.State)),
			slog.String("reason", serr.Reason),
		)
		apierrors.ReleaseLive(w, serr.Error())
		return
	}

	if errors.Is(err, files.ErrEditingWithdrawn) {
		// Та же категория, что StateError: контролы должны были быть
		// отключены после публикации.
		h.logger.Error("Мутация файлов отклонена: редактирование отозвано",
			slog.String("error", err.Error()),
		)
		apierrors.ReleaseLive(w, err.Error())
		return
	}

	var uploadErr *files.UploadError
	if errors.As(err, &uploadErr) {
		if uploadErr.Stage == files.StageUnpack {
			apierrors.ValidationError(w, uploadErr.Error())
			return
		}
		apierrors.UpstreamError(w, uploadErr.Error())
		return
	}

	var saveErr *roster.SaveError
	if errors.As(err, &saveErr) {
		if len(saveErr.RowErrors) == 0 {
			apierrors.UpstreamError(w, saveErr.Error())
			return
		}
		fields := make(map[string][]string, len(saveErr.RowErrors))
		for _, re := range saveErr.RowErrors {
			key := fmt.Sprintf("contributors[%d]", re.Position)
			for field, msgs := range re.Fields {
				for _, msg := range msgs {
					fields[key] = append(fields[key], field+": "+msg)
				}
			}
		}
		apierrors.FieldValidationError(w, saveErr.Error(), fields)
		return
	}

	var apiErr *repoclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsValidation():
			apierrors.FieldValidationError(w, "Repository API отверг запрос", apiErr.FieldErrors)
		case apiErr.StatusCode == http.StatusNotFound:
			apierrors.NotFound(w, "ресурс не найден в Repository API")
		default:
			apierrors.UpstreamError(w, apiErr.Error())
		}
		return
	}

	if errors.Is(err, service.ErrSessionNotFound) {
		apierrors.NotFound(w, err.Error())
		return
	}
	if errors.Is(err, release.ErrNotInitialized) || errors.Is(err, files.ErrDisposed) {
		apierrors.NotFound(w, err.Error())
		return
	}
	if errors.Is(err, files.ErrUnknownCategory) {
		apierrors.ValidationError(w, err.Error())
		return
	}

	h.logger.Error("Внутренняя ошибка", slog.String("error", err.Error()))
	apierrors.InternalError(w, "внутренняя ошибка Editor Module")
}
