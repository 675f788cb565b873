// sessions.go — HTTP handlers сессий редактора.
// Открытие/чтение/закрытие сессии, обновление метаданных, публикация.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/modelstore/editor-module/internal/api/errors"
	"github.com/bigkaa/modelstore/editor-module/internal/release"
	"github.com/bigkaa/modelstore/editor-module/internal/service"
)

// openSessionRequest — тело POST /api/v1/editor/sessions.
type openSessionRequest struct {
	Identifier    string `json:"identifier"`
	VersionNumber string `json:"version_number"`
}

// sessionResponse — представление сессии для UI Shell.
// UI потребляет производное состояние машины только на чтение.
type sessionResponse struct {
	SessionID     string            `json:"session_id"`
	Identifier    string            `json:"identifier"`
	VersionNumber string            `json:"version_number"`
	State         release.State     `json:"state"`
	IsLive        bool              `json:"is_live"`
	Release       any               `json:"release"`
	Progress      *release.Progress `json:"progress"`
	RequiredMap   map[string]bool   `json:"required_fields"`
}

// OpenSession обрабатывает POST /api/v1/editor/sessions.
// Выполняет полную последовательность Initialize; при сбое сессия
// не создаётся (повтор — новый запрос).
func (h *EditorHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return
	}
	if req.Identifier == "" || req.VersionNumber == "" {
		apierrors.ValidationError(w, "поля 'identifier' и 'version_number' обязательны")
		return
	}

	session, err := h.editor.Open(r.Context(), req.Identifier, req.VersionNumber)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp, err := h.sessionResponse(session)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetSession обрабатывает GET /api/v1/editor/sessions/{sid}.
func (h *EditorHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.editor.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp, err := h.sessionResponse(session)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// CloseSession обрабатывает DELETE /api/v1/editor/sessions/{sid}.
func (h *EditorHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.Close(chi.URLParam(r, "sid")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionResponse собирает представление сессии.
func (h *EditorHandler) sessionResponse(session *service.Session) (*sessionResponse, error) {
	machine := session.Machine

	rel, err := machine.Release()
	if err != nil {
		return nil, err
	}
	progress, err := machine.Progress()
	if err != nil {
		return nil, err
	}
	required, err := machine.RequiredFields()
	if err != nil {
		return nil, err
	}

	return &sessionResponse{
		SessionID:     session.ID,
		Identifier:    session.Identifier,
		VersionNumber: session.VersionNumber,
		State:         machine.State(),
		IsLive:        machine.IsLive(),
		Release:       rel,
		Progress:      progress,
		RequiredMap:   required,
	}, nil
}

// metadataRequest — тело PUT /api/v1/editor/sessions/{sid}/metadata.
// nil-поле — «не менять»; clear_embargo_end_date снимает эмбарго.
type metadataRequest struct {
	ReleaseNotes         *string    `json:"release_notes"`
	EmbargoEndDate       *time.Time `json:"embargo_end_date"`
	ClearEmbargoEndDate  bool       `json:"clear_embargo_end_date"`
	OS                   *string    `json:"os"`
	Platforms            []string   `json:"platforms"`
	ProgrammingLanguages []string   `json:"programming_languages"`
	License              *string    `json:"license"`
}

// UpdateMetadata обрабатывает PUT /api/v1/editor/sessions/{sid}/metadata.
func (h *EditorHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	session, err := h.editor.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса: "+err.Error())
		return
	}

	patch := release.MetadataPatch{
		ReleaseNotes:         req.ReleaseNotes,
		EmbargoEndDate:       req.EmbargoEndDate,
		ClearEmbargoEndDate:  req.ClearEmbargoEndDate,
		OS:                   req.OS,
		Platforms:            req.Platforms,
		ProgrammingLanguages: req.ProgrammingLanguages,
		License:              req.License,
	}

	if err := session.Machine.UpdateMetadata(r.Context(), patch); err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp, err := h.sessionResponse(session)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Publish обрабатывает POST /api/v1/editor/sessions/{sid}/publish.
func (h *EditorHandler) Publish(w http.ResponseWriter, r *http.Request) {
	session, err := h.editor.Get(chi.URLParam(r, "sid"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := session.Machine.Publish(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp, err := h.sessionResponse(session)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
