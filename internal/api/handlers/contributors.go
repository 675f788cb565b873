// contributors.go — HTTP handlers ростера участников и поиска.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/modelstore/editor-module/internal/api/errors"
	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/roster"
)

// rosterResponse — текущее состояние ростера.
type rosterResponse struct {
	Contributors []roster.Row `json:"contributors"`
	// Dirty — есть несохранённые правки
	Dirty bool `json:"dirty"`
	// DuplicateIdentities — участники, встречающиеся более чем в одной строке
	DuplicateIdentities []string `json:"duplicate_identities,omitempty"`
}

// sessionRoster достаёт ростер сессии.
func (h *EditorHandler) sessionRoster(w http.ResponseWriter, r *http.Request) (*roster.Roster, bool) {
	session, err := h.editor.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.writeDomainError(w, err)
		return nil, false
	}
	ros := session.Machine.Roster()
	if ros == nil {
		apierrors.NotFound(w, "ростер недоступен: сессия не инициализирована")
		return nil, false
	}
	return ros, true
}

// GetContributors обрабатывает GET /api/v1/editor/sessions/{sid}/contributors.
func (h *EditorHandler) GetContributors(w http.ResponseWriter, r *http.Request) {
	ros, ok := h.sessionRoster(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{
		Contributors:        ros.Rows(),
		Dirty:               ros.Dirty(),
		DuplicateIdentities: ros.DuplicateIdentities(),
	})
}

// PutContributors обрабатывает PUT /api/v1/editor/sessions/{sid}/contributors.
// Тело — полный упорядоченный список строк; строки без row_id считаются
// новыми. Локальный ростер приводится к присланному списку (upsert,
// удаление отсутствующих, порядок) и сохраняется одним запросом.
func (h *EditorHandler) PutContributors(w http.ResponseWriter, r *http.Request) {
	ros, ok := h.sessionRoster(w, r)
	if !ok {
		return
	}

	var submitted []roster.Row
	if err := json.NewDecoder(r.Body).Decode(&submitted); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return
	}

	order := make([]string, 0, len(submitted))
	keep := make(map[string]bool, len(submitted))
	for _, row := range submitted {
		rowID := ros.Upsert(row)
		order = append(order, rowID)
		keep[rowID] = true
	}
	for _, row := range ros.Rows() {
		if !keep[row.RowID] {
			ros.Remove(row.RowID)
		}
	}
	if err := ros.Reorder(order); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	if err := ros.Save(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rosterResponse{
		Contributors:        ros.Rows(),
		Dirty:               ros.Dirty(),
		DuplicateIdentities: ros.DuplicateIdentities(),
	})
}

// SearchContributors обрабатывает GET /api/v1/editor/contributors/search?q=.
// Поиск по всему реестру участников репозитория, с LRU-кэшом запросов.
func (h *EditorHandler) SearchContributors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		apierrors.ValidationError(w, "параметр 'q' обязателен")
		return
	}

	found, err := h.search.Search(r.Context(), query)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Contributor{"contributors": found})
}
