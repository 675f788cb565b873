package schema

import (
	"strings"
	"testing"
	"time"
)

// validState — состояние, проходящее валидацию testSchema.
func validState() map[string]any {
	return map[string]any{
		"title":       "Модель миграции",
		"homepage":    "https://example.org/model",
		"archived":    false,
		"start_date":  nil,
		"end_date":    nil,
		"tags":        []any{},
		"visibility":  "public",
		"maintainers": []any{"иванов"},
	}
}

// TestValidateAll_Valid проверяет успешную полную валидацию.
func TestValidateAll_Valid(t *testing.T) {
	eng := testSchema(t)
	if err := eng.ValidateAll(validState()); err != nil {
		t.Errorf("ожидался nil, получено: %v", err)
	}
}

// TestValidateAll_AllErrorsReported проверяет, что сообщаются все
// некорректные поля сразу, без остановки на первой ошибке.
func TestValidateAll_AllErrorsReported(t *testing.T) {
	eng := testSchema(t)
	state := validState()
	state["title"] = "   "                       // Required: пробельная строка пустая
	state["homepage"] = "ftp://example.org"      // URLFormat: не http(s)
	state["visibility"] = "secret"               // Enum: вне набора
	state["start_date"] = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	state["end_date"] = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) // AfterDate нарушено

	verr := eng.ValidateAll(state)
	if verr == nil {
		t.Fatal("ожидалась ошибка валидации, получен nil")
	}

	for _, field := range []string{"title", "homepage", "visibility", "end_date"} {
		if len(verr.Errors[field]) == 0 {
			t.Errorf("ожидалась ошибка поля %s, ошибки: %v", field, verr.Errors)
		}
	}
	if len(verr.Errors["start_date"]) != 0 {
		t.Errorf("поле start_date корректно, получены ошибки: %v", verr.Errors["start_date"])
	}
}

// TestValidateAll_ObjectLevelRules проверяет правила уровня объекта.
func TestValidateAll_ObjectLevelRules(t *testing.T) {
	objectRule := ruleFunc(func(_ string, _ any, state map[string]any) []string {
		if state["a"] == state["b"] {
			return []string{"поля a и b не могут совпадать"}
		}
		return nil
	})
	eng, err := New(&ObjectNode{
		Fields: map[string]Node{
			"a": &StringNode{},
			"b": &StringNode{},
		},
		Rules: []Rule{objectRule},
	})
	if err != nil {
		t.Fatalf("Ошибка создания Engine: %v", err)
	}

	verr := eng.ValidateAll(map[string]any{"a": "x", "b": "x"})
	if verr == nil {
		t.Fatal("ожидалась ошибка уровня объекта")
	}
	if len(verr.Errors[""]) != 1 {
		t.Errorf("ожидалась одна ошибка с пустым путём, получено %v", verr.Errors)
	}
}

// ruleFunc — адаптер функции к Rule для тестов.
type ruleFunc func(field string, value any, state map[string]any) []string

func (f ruleFunc) Check(field string, value any, state map[string]any) []string {
	return f(field, value, state)
}

// TestValidateField_Related проверяет, что валидация поля затрагивает
// оба конца кросс-полевого правила.
func TestValidateField_Related(t *testing.T) {
	eng := testSchema(t)
	state := validState()
	state["start_date"] = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	state["end_date"] = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	// Правка start_date перевалидирует и end_date (ошибка на нём)
	result := eng.ValidateField("start_date", state)
	if len(result["end_date"]) == 0 {
		t.Errorf("ожидалась ошибка end_date при валидации start_date, получено %v", result)
	}

	// Чужие поля не включаются даже при их некорректности
	state["title"] = ""
	result = eng.ValidateField("start_date", state)
	if _, ok := result["title"]; ok {
		t.Errorf("поле title не связано со start_date, получено %v", result)
	}
}

// TestValidateField_Clean проверяет пустую карту при корректном поле.
func TestValidateField_Clean(t *testing.T) {
	eng := testSchema(t)
	result := eng.ValidateField("title", validState())
	if len(result) != 0 {
		t.Errorf("ожидалась пустая карта, получено %v", result)
	}
}

// TestValidationError_Message проверяет, что сообщение перечисляет поля.
func TestValidationError_Message(t *testing.T) {
	verr := &ValidationError{Errors: map[string][]string{
		"title": {"поле \"title\" обязательно"},
		"":      {"ошибка объекта"},
	}}
	msg := verr.Error()
	if !strings.Contains(msg, "title") || !strings.Contains(msg, "(объект)") {
		t.Errorf("неполное сообщение: %s", msg)
	}
}

// TestWhen_ConditionalValidation проверяет условную цепочку правил.
func TestWhen_ConditionalValidation(t *testing.T) {
	eng := testSchema(t)
	state := validState()
	state["maintainers"] = []any{}

	// archived=false — Required внутри When активен
	verr := eng.ValidateAll(state)
	if verr == nil || len(verr.Errors["maintainers"]) == 0 {
		t.Errorf("ожидалась ошибка maintainers при archived=false, получено %v", verr)
	}

	// archived=true — предикат ложен, правило не применяется
	state["archived"] = true
	if verr := eng.ValidateAll(state); verr != nil {
		t.Errorf("ожидался nil при archived=true, получено %v", verr)
	}
}

// TestIsEmpty проверяет определение пустоты Required.
func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"пустая строка", "", true},
		{"пробельная строка", "  \t ", true},
		{"строка", "x", false},
		{"пустой список", []any{}, true},
		{"пустой список строк", []string{}, true},
		{"непустой список", []any{1}, false},
		{"false не пусто", false, false},
		{"ноль не пуст", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.value); got != tt.want {
				t.Errorf("IsEmpty(%v): ожидалось %v, получено %v", tt.value, tt.want, got)
			}
		})
	}
}
