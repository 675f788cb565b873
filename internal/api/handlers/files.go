// files.go — HTTP handlers файлов релиза.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/modelstore/editor-module/internal/api/errors"
	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/files"
)

// maxUploadMemory — порог буферизации multipart-формы в памяти.
const maxUploadMemory = 32 << 20

// filesResponse — листинг категории после операции.
type filesResponse struct {
	Category model.FileCategory `json:"category"`
	Files    []model.FileInfo   `json:"files"`
}

// categoryStore достаёт файловое хранилище сессии и проверяет категорию.
func (h *EditorHandler) categoryStore(w http.ResponseWriter, r *http.Request) (*files.Store, model.FileCategory, bool) {
	session, err := h.editor.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.writeDomainError(w, err)
		return nil, "", false
	}

	store := session.Machine.Files()
	if store == nil {
		h.writeDomainError(w, files.ErrDisposed)
		return nil, "", false
	}

	category := model.FileCategory(chi.URLParam(r, "category"))
	if !model.ValidCategory(category) {
		apierrors.ValidationError(w, "неизвестная категория файлов: "+string(category))
		return nil, "", false
	}
	return store, category, true
}

// ListFiles обрабатывает GET /api/v1/editor/sessions/{sid}/files/{category}.
// Листинг всегда запрашивается у репозитория заново.
func (h *EditorHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	store, category, ok := h.categoryStore(w, r)
	if !ok {
		return
	}

	list, err := store.List(r.Context(), category)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Category: category, Files: list})
}

// UploadFile обрабатывает POST /api/v1/editor/sessions/{sid}/files/{category}.
// После загрузки листинг категории перечитывается: состав файлов после
// распаковки архива известен только серверу.
func (h *EditorHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	store, category, ok := h.categoryStore(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		apierrors.ValidationError(w, "некорректная multipart-форма: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "поле формы 'file' обязательно")
		return
	}
	defer file.Close()

	if err := store.Upload(r.Context(), category, header.Filename, file, nil); err != nil {
		h.writeDomainError(w, err)
		return
	}

	list, err := store.List(r.Context(), category)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, filesResponse{Category: category, Files: list})
}

// DeleteFile обрабатывает DELETE /api/v1/editor/sessions/{sid}/files/{category}/{fileID}.
func (h *EditorHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	store, category, ok := h.categoryStore(w, r)
	if !ok {
		return
	}

	if err := store.Delete(r.Context(), chi.URLParam(r, "fileID")); err != nil {
		h.writeDomainError(w, err)
		return
	}

	list, err := store.List(r.Context(), category)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Category: category, Files: list})
}

// ClearCategory обрабатывает DELETE /api/v1/editor/sessions/{sid}/files/{category}.
func (h *EditorHandler) ClearCategory(w http.ResponseWriter, r *http.Request) {
	store, category, ok := h.categoryStore(w, r)
	if !ok {
		return
	}

	if err := store.ClearCategory(r.Context(), category); err != nil {
		h.writeDomainError(w, err)
		return
	}

	list, err := store.List(r.Context(), category)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Category: category, Files: list})
}

// ListMedia обрабатывает GET /api/v1/editor/sessions/{sid}/media.
func (h *EditorHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	session, err := h.editor.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	store := session.Machine.Files()
	if store == nil {
		h.writeDomainError(w, files.ErrDisposed)
		return
	}

	list, err := store.ListMedia(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.MediaFile{"media": list})
}
