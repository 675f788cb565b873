// rules.go — правила валидации полей схемы.
// Правило проверяет значение поля в контексте всего объекта и возвращает
// список сообщений об ошибках (пустой — значение корректно).
package schema

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Rule — одно правило валидации поля.
type Rule interface {
	// Check проверяет значение value поля field в состоянии state.
	// Возвращает сообщения об ошибках (nil/пусто — ошибок нет).
	Check(field string, value any, state map[string]any) []string
}

// dependentRule — правило, зависящее от других полей.
// Валидация любого из полей пересекающейся пары перезапускает оба конца.
type dependentRule interface {
	Rule
	// DependsOn возвращает имена полей, от которых зависит правило.
	DependsOn() []string
}

// assertRule — правило-утверждение обязательности (required / non-null).
// Используется при построении карты обязательных полей.
type assertRule interface {
	Rule
	requiredAssertion()
}

// shortCircuitRule — правило, прерывающее сканирование цепочки
// при построении карты обязательных полей (условная валидация).
type shortCircuitRule interface {
	Rule
	shortCircuits()
}

// IsEmpty сообщает, является ли значение «пустым» в смысле Required:
// nil, пустая/пробельная строка или пустой список.
// Экспортирован: проверка полноты обязательных полей (publish-гейт,
// progress) использует то же определение пустоты, что и валидация.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

// Required — поле обязательно: не nil, не пустая строка, не пустой список.
type Required struct {
	// Message — сообщение об ошибке (опционально)
	Message string
}

func (r Required) Check(field string, value any, _ map[string]any) []string {
	if !IsEmpty(value) {
		return nil
	}
	if r.Message != "" {
		return []string{r.Message}
	}
	return []string{fmt.Sprintf("поле %q обязательно", field)}
}

func (Required) requiredAssertion() {}

// NonNull — поле не может быть nil (пустое значение допустимо).
type NonNull struct{}

func (NonNull) Check(field string, value any, _ map[string]any) []string {
	if value == nil {
		return []string{fmt.Sprintf("поле %q не может отсутствовать", field)}
	}
	return nil
}

func (NonNull) requiredAssertion() {}

// URLFormat — строка должна быть абсолютным http(s) URL.
// Пустое значение пропускается (обязательность — отдельное правило Required).
type URLFormat struct{}

func (URLFormat) Check(field string, value any, _ map[string]any) []string {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []string{fmt.Sprintf("поле %q должно быть корректным URL", field)}
	}
	return nil
}

// MaxLength — ограничение длины строки.
type MaxLength struct {
	// Max — максимальная длина в рунах
	Max int
}

func (r MaxLength) Check(field string, value any, _ map[string]any) []string {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if len([]rune(s)) > r.Max {
		return []string{fmt.Sprintf("поле %q длиннее %d символов", field, r.Max)}
	}
	return nil
}

// AfterDate — дата поля должна быть строго позже даты другого поля.
// Кросс-полевое правило: изменение любого из концов перевалидирует оба.
type AfterDate struct {
	// Other — имя поля с начальной датой
	Other string
}

func (r AfterDate) Check(field string, value any, state map[string]any) []string {
	end, ok := value.(time.Time)
	if !ok {
		return nil
	}
	start, ok := state[r.Other].(time.Time)
	if !ok {
		return nil
	}
	if !end.After(start) {
		return []string{fmt.Sprintf("поле %q должно быть позже поля %q", field, r.Other)}
	}
	return nil
}

func (r AfterDate) DependsOn() []string { return []string{r.Other} }

// FutureDate — дата должна быть в будущем. nil пропускается.
type FutureDate struct{}

func (FutureDate) Check(field string, value any, _ map[string]any) []string {
	d, ok := value.(time.Time)
	if !ok {
		return nil
	}
	if !d.After(time.Now()) {
		return []string{fmt.Sprintf("поле %q должно быть датой в будущем", field)}
	}
	return nil
}

// When — условная цепочка правил: Then применяется только если
// предикат истинен. Прерывает выведение обязательности: правила внутри
// When не делают поле безусловно обязательным.
type When struct {
	// Cond — предикат над состоянием объекта
	Cond func(state map[string]any) bool
	// Then — правила, применяемые при истинном предикате
	Then []Rule
}

func (r When) Check(field string, value any, state map[string]any) []string {
	if r.Cond == nil || !r.Cond(state) {
		return nil
	}
	var msgs []string
	for _, inner := range r.Then {
		msgs = append(msgs, inner.Check(field, value, state)...)
	}
	return msgs
}

func (When) shortCircuits() {}
