// Пакет roster — управление списком участников релиза.
//
// Список редактируется локально как батч (upsert/remove/reorder) и
// атомарно отправляется целиком одним PUT при Save. Построчный
// идентификатор строки (RowID) назначается клиентом и не совпадает
// с идентичностью участника: две строки могут намеренно ссылаться
// на одного участника с разными ролями.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
)

// ResourceClient — узкий интерфейс транспорта, используемый ростером.
// Реализуется repoclient.Client.
type ResourceClient interface {
	Get(ctx context.Context, path string, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

// Row — строка ростера: участие одного Contributor в релизе.
type Row struct {
	// RowID — стабильный клиентский идентификатор строки
	RowID string `json:"row_id"`
	// Contributor — идентичность участника
	Contributor model.Contributor `json:"contributor"`
	// Roles — упорядоченный набор ролей
	Roles []string `json:"roles"`
	// IncludeInCitation — включать ли в цитирование
	IncludeInCitation bool `json:"include_in_citation"`
}

// Roster — упорядоченный список участников релиза.
// Потокобезопасен; сетевые вызовы — только в Save.
type Roster struct {
	client ResourceClient
	logger *slog.Logger
	// url — contributors sub-resource релиза (PUT всего списка)
	url string

	mu   sync.RWMutex
	rows []Row
	// saved — снимок последнего успешного сохранения (для Dirty)
	saved []Row
}

// New создаёт ростер для contributors sub-resource по адресу url.
func New(client ResourceClient, url string, logger *slog.Logger) *Roster {
	return &Roster{
		client: client,
		logger: logger.With(slog.String("component", "roster")),
		url:    url,
	}
}

// Load инициализирует ростер из release detail.
// Каждой строке назначается свежий RowID; снимок сохранённого
// состояния совпадает с загруженным (Dirty() == false).
func (r *Roster) Load(contributors []model.ReleaseContributor) {
	rows := make([]Row, 0, len(contributors))
	for _, rc := range contributors {
		rows = append(rows, Row{
			RowID:             uuid.NewString(),
			Contributor:       rc.Contributor,
			Roles:             append([]string(nil), rc.Roles...),
			IncludeInCitation: rc.IncludeInCitation,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
	r.saved = cloneRows(rows)
}

// Rows возвращает копию текущего списка строк в порядке цитирования.
func (r *Roster) Rows() []Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRows(r.rows)
}

// Len возвращает количество строк.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// Upsert добавляет или заменяет строку.
// Строка с пустым RowID считается новой: ей назначается идентификатор
// и она добавляется в конец. Строка с известным RowID заменяется
// на месте (позиция сохраняется). Возвращает RowID строки.
func (r *Roster) Upsert(row Row) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row.RowID == "" {
		row.RowID = uuid.NewString()
		r.rows = append(r.rows, row)
		return row.RowID
	}

	for i := range r.rows {
		if r.rows[i].RowID == row.RowID {
			r.rows[i] = row
			return row.RowID
		}
	}

	// Неизвестный RowID — строка могла быть удалена параллельно; добавляем.
	r.rows = append(r.rows, row)
	return row.RowID
}

// Remove удаляет строку по RowID. Возвращает false, если строка не найдена.
func (r *Roster) Remove(rowID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].RowID == rowID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return true
		}
	}
	return false
}

// Reorder переставляет строки в порядок order (перестановка RowID).
// Нетронутые строки сохраняют идентичность (копирование не выполняется).
// Ошибка, если order не является перестановкой текущих RowID.
func (r *Roster) Reorder(order []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(order) != len(r.rows) {
		return fmt.Errorf("reorder: получено %d идентификаторов, строк %d", len(order), len(r.rows))
	}

	byID := make(map[string]int, len(r.rows))
	for i := range r.rows {
		byID[r.rows[i].RowID] = i
	}

	next := make([]Row, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		idx, ok := byID[id]
		if !ok {
			return fmt.Errorf("reorder: неизвестный RowID %q", id)
		}
		if seen[id] {
			return fmt.Errorf("reorder: RowID %q повторяется", id)
		}
		seen[id] = true
		next = append(next, r.rows[idx])
	}

	r.rows = next
	return nil
}

// Dirty сообщает о несохранённых изменениях: структурное сравнение
// с последним успешно сохранённым снимком. Используется UI для
// предупреждения перед навигацией.
func (r *Roster) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !reflect.DeepEqual(r.rows, r.saved)
}

// DuplicateIdentities возвращает отображаемые имена участников,
// на которых ссылается более одной строки. Дубликаты допустимы
// (разные роли), но UI должен их подсветить.
func (r *Roster) DuplicateIdentities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var dups []string
	for i := range r.rows {
		for j := i + 1; j < len(r.rows); j++ {
			if r.rows[i].Contributor.SameIdentity(&r.rows[j].Contributor) {
				name := r.rows[i].Contributor.DisplayName()
				if !containsString(dups, name) {
					dups = append(dups, name)
				}
			}
		}
	}
	return dups
}

// cloneRows — глубокая копия списка строк.
func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = row
		out[i].Roles = append([]string(nil), row.Roles...)
		out[i].Contributor.Affiliations = append([]model.Affiliation(nil), row.Contributor.Affiliations...)
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
