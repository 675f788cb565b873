// save.go — атомарное сохранение ростера одним PUT.
//
// Сервер может принять часть строк и отвергнуть остальные: ответ 400 —
// параллельный массив построчных объектов ошибок (пустой объект —
// строка принята). Клиент сверяет ошибки с отправленным массивом
// по позиции и называет виновного участника в итоговом сообщении.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/repoclient"
)

// Prometheus-метрики сохранения ростера.
var (
	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "em_roster_saves_total",
		Help: "Общее количество сохранений ростера по результату (ok, rejected, error).",
	}, []string{"result"})
)

// RowError — ошибка валидации одной строки ростера.
type RowError struct {
	// Position — позиция строки в отправленном массиве
	Position int
	// RowID — клиентский идентификатор строки
	RowID string
	// DisplayName — отображаемое имя участника строки
	DisplayName string
	// Fields — поле → сообщения
	Fields map[string][]string
}

// SaveError — отказ сервера при сохранении ростера.
type SaveError struct {
	// RowErrors — отвергнутые строки (по позиции отправки)
	RowErrors []RowError
	// Err — исходная ошибка транспорта
	Err error
}

func (e *SaveError) Error() string {
	if len(e.RowErrors) == 0 {
		return fmt.Sprintf("сохранение ростера: %v", e.Err)
	}
	names := make([]string, 0, len(e.RowErrors))
	for _, re := range e.RowErrors {
		names = append(names, re.DisplayName)
	}
	return fmt.Sprintf("сохранение ростера: отвергнуты участники: %s", strings.Join(names, ", "))
}

func (e *SaveError) Unwrap() error { return e.Err }

// wireContributor — формат строки для PUT contributors sub-resource.
type wireContributor struct {
	Contributor       model.Contributor `json:"contributor"`
	Roles             []string          `json:"roles"`
	IncludeInCitation bool              `json:"include_in_citation"`
	Index             int               `json:"index"`
}

// Save отправляет весь упорядоченный список одним PUT.
// При успехе снимок сохранённого состояния обновляется (Dirty → false)
// и идентичности участников замещаются ответом сервера (назначенные ID).
// При построчном отказе возвращается *SaveError с ошибками, сопоставленными
// строкам по позиции; локальное состояние не меняется.
func (r *Roster) Save(ctx context.Context) error {
	r.mu.RLock()
	submitted := cloneRows(r.rows)
	r.mu.RUnlock()

	payload := make([]wireContributor, len(submitted))
	for i, row := range submitted {
		payload[i] = wireContributor{
			Contributor:       row.Contributor,
			Roles:             row.Roles,
			IncludeInCitation: row.IncludeInCitation,
			Index:             i,
		}
	}

	var saved []model.ReleaseContributor
	if err := r.client.Put(ctx, r.url, payload, &saved); err != nil {
		saveErr := r.reconcile(submitted, err)
		if len(saveErr.RowErrors) > 0 {
			savesTotal.WithLabelValues("rejected").Inc()
			r.logger.Warn("Сервер отверг строки ростера",
				slog.Int("rejected", len(saveErr.RowErrors)),
				slog.Int("submitted", len(submitted)),
			)
		} else {
			savesTotal.WithLabelValues("error").Inc()
		}
		return saveErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Идентичности из ответа сервера (назначенные ID участников)
	// применяются по позиции; RowID строк сохраняются.
	if len(saved) == len(r.rows) {
		for i := range r.rows {
			r.rows[i].Contributor = saved[i].Contributor
		}
	}
	r.saved = cloneRows(r.rows)

	savesTotal.WithLabelValues("ok").Inc()
	r.logger.Info("Ростер сохранён", slog.Int("rows", len(r.rows)))
	return nil
}

// reconcile сопоставляет ответ сервера с отправленным массивом.
// Тело 400 — параллельный массив объектов поле → сообщения
// (пустой объект — строка без ошибок).
func (r *Roster) reconcile(submitted []Row, err error) *SaveError {
	saveErr := &SaveError{Err: err}

	var apiErr *repoclient.APIError
	if !errors.As(err, &apiErr) || !apiErr.IsValidation() {
		return saveErr
	}

	var perRow []map[string][]string
	if jsonErr := json.Unmarshal(apiErr.Body, &perRow); jsonErr != nil {
		return saveErr
	}

	for i, fields := range perRow {
		if len(fields) == 0 || i >= len(submitted) {
			continue
		}
		saveErr.RowErrors = append(saveErr.RowErrors, RowError{
			Position:    i,
			RowID:       submitted[i].RowID,
			DisplayName: submitted[i].Contributor.DisplayName(),
			Fields:      fields,
		})
	}
	return saveErr
}
