// errors.go — таксономия ошибок конечного автомата релиза.
//
// Четыре категории:
//   - schema.ValidationError — пополевые, исправляются пользователем
//   - PreconditionError — провал publish-гейта, список пунктов
//   - repoclient.APIError / сетевые — транспорт, повтор той же операции
//   - StateError — структурно запрещённая операция (баг UI-контракта):
//     отклоняется до сети и сообщается громко, не проглатывается
package release

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSuperseded — результат Initialize вытеснен более поздним вызовом
// (счётчик поколений) и отброшен.
var ErrSuperseded = errors.New("инициализация вытеснена более поздним вызовом")

// ErrNotInitialized — операция до завершения Initialize.
var ErrNotInitialized = errors.New("релиз не инициализирован")

// StateError — операция запрещена в текущем состоянии релиза.
// Признак нарушения контракта UI/core: элементы управления должны были
// быть отключены. Отклоняется клиентски, до какого-либо сетевого вызова.
type StateError struct {
	// Op — имя отклонённой операции
	Op string
	// State — состояние, в котором операция запрещена
	State State
	// Reason — уточнение причины
	Reason string
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("операция %q запрещена в состоянии %s", e.Op, e.State)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// PreconditionError — провал клиентской проверки перед publish.
// Зеркалирует серверную валидацию, не замещая её. Сетевой вызов
// при провале не выполняется.
type PreconditionError struct {
	// Missing — список недостающих предусловий
	Missing []string
}

func (e *PreconditionError) Error() string {
	return "публикация невозможна: " + strings.Join(e.Missing, "; ")
}
