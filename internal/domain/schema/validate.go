// validate.go — валидация объекта по схеме.
// ValidateAll — полная валидация без short-circuit: сообщаются все
// некорректные поля сразу. Ошибки валидации всегда восстановимые
// и предназначены пользователю, никогда не фатальные.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError — результат неуспешной валидации.
// Ключ карты — путь поля; ключ "" — ошибки уровня объекта.
type ValidationError struct {
	// Errors — путь поля → сообщения
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	paths := make([]string, 0, len(e.Errors))
	for p := range e.Errors {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString("ошибка валидации")
	for _, p := range paths {
		label := p
		if label == "" {
			label = "(объект)"
		}
		fmt.Fprintf(&b, "; %s: %s", label, strings.Join(e.Errors[p], ", "))
	}
	return b.String()
}

// ValidateAll валидирует весь объект.
// Возвращает nil при успехе либо *ValidationError со всеми найденными
// ошибками (без остановки на первой).
func (e *Engine) ValidateAll(state map[string]any) *ValidationError {
	errs := map[string][]string{}

	for _, name := range e.Fields() {
		msgs := e.checkField(name, state)
		if len(msgs) > 0 {
			errs[name] = msgs
		}
	}

	// Правила уровня объекта — ошибки без пути.
	for _, rule := range e.root.Rules {
		msgs := rule.Check("", state, state)
		if len(msgs) > 0 {
			errs[""] = append(errs[""], msgs...)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// ValidateField валидирует одно поле вместе с кросс-полевыми соседями.
// Возвращает карту путь → сообщения только для затронутых полей
// (пустые списки не включаются).
func (e *Engine) ValidateField(field string, state map[string]any) map[string][]string {
	out := map[string][]string{}

	fields := append([]string{field}, e.Related(field)...)
	for _, name := range fields {
		if _, ok := e.root.Fields[name]; !ok {
			continue
		}
		if msgs := e.checkField(name, state); len(msgs) > 0 {
			out[name] = msgs
		}
	}
	return out
}

// checkField применяет цепочку правил поля, включая вложенные объекты.
func (e *Engine) checkField(name string, state map[string]any) []string {
	node := e.root.Fields[name]
	value := state[name]

	var msgs []string
	for _, rule := range fieldRules(node) {
		msgs = append(msgs, rule.Check(name, value, state)...)
	}

	// Валидация литералов enum: непустое значение вне набора — ошибка.
	// Пустое значение — вопрос обязательности, а не принадлежности набору.
	if enum, ok := node.(*EnumNode); ok && !IsEmpty(value) && len(enum.Literals) > 0 {
		if !containsLiteral(enum.Literals, value) {
			msgs = append(msgs, fmt.Sprintf("поле %q: значение вне допустимого набора", name))
		}
	}

	return msgs
}
