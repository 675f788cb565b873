package schema

import (
	"reflect"
	"sort"
	"testing"
	"time"
)

// testSchema — схема с разными видами узлов и правил.
func testSchema(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(&ObjectNode{
		Fields: map[string]Node{
			"title":       &StringNode{Rules: []Rule{Required{}, MaxLength{Max: 100}}},
			"homepage":    &StringNode{Rules: []Rule{URLFormat{}}},
			"archived":    &BoolNode{},
			"start_date":  &DateNode{Nullable: true},
			"end_date":    &DateNode{Nullable: true, Rules: []Rule{AfterDate{Other: "start_date"}}},
			"tags":        &ArrayNode{},
			"visibility":  &EnumNode{Literals: []any{"public", "private"}},
			"maintainers": &ArrayNode{Rules: []Rule{When{Cond: func(state map[string]any) bool { return state["archived"] == false }, Then: []Rule{Required{}}}}},
		},
	})
	if err != nil {
		t.Fatalf("Ошибка создания Engine: %v", err)
	}
	return eng
}

// TestNew_InvalidSchema проверяет, что некорректная схема отвергается при создании.
func TestNew_InvalidSchema(t *testing.T) {
	tests := []struct {
		name string
		root *ObjectNode
	}{
		{name: "nil корень", root: nil},
		{name: "объект без полей", root: &ObjectNode{Fields: map[string]Node{}}},
		{name: "nil-узел поля", root: &ObjectNode{Fields: map[string]Node{"a": nil}}},
		{
			name: "default enum вне набора",
			root: &ObjectNode{Fields: map[string]Node{
				"e": &EnumNode{Literals: []any{"x", "y"}, Default: "z"},
			}},
		},
		{
			name: "висячая кросс-полевая ссылка",
			root: &ObjectNode{Fields: map[string]Node{
				"end": &DateNode{Nullable: true, Rules: []Rule{AfterDate{Other: "нет_такого"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.root); err == nil {
				t.Error("ожидалась ошибка конфигурации схемы, получен nil")
			}
		})
	}
}

// TestCreateDefault проверяет синтез значений по умолчанию.
func TestCreateDefault(t *testing.T) {
	eng := testSchema(t)
	defaults := eng.CreateDefault()

	// Каждое поле схемы присутствует, лишних нет
	if len(defaults) != len(eng.Fields()) {
		t.Errorf("ожидалось %d полей, получено %d", len(eng.Fields()), len(defaults))
	}

	if defaults["title"] != "" {
		t.Errorf("ожидалась пустая строка для title, получено %v", defaults["title"])
	}
	if defaults["archived"] != false {
		t.Errorf("ожидалось false для archived, получено %v", defaults["archived"])
	}
	if defaults["start_date"] != nil {
		t.Errorf("ожидался nil для nullable даты, получено %v", defaults["start_date"])
	}
	if arr, ok := defaults["tags"].([]any); !ok || len(arr) != 0 {
		t.Errorf("ожидался пустой список для tags, получено %v", defaults["tags"])
	}
	// Enum без Default — первый литерал
	if defaults["visibility"] != "public" {
		t.Errorf("ожидалось public для visibility, получено %v", defaults["visibility"])
	}

	// Детерминизм: повторный вызов даёт эквивалентное дерево
	if !reflect.DeepEqual(defaults, eng.CreateDefault()) {
		t.Error("повторный CreateDefault дал другое дерево")
	}
}

// TestCreateDefault_ExplicitDefault проверяет приоритет явного Default.
func TestCreateDefault_ExplicitDefault(t *testing.T) {
	s := "draft"
	b := true
	d := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	eng, err := New(&ObjectNode{
		Fields: map[string]Node{
			"status":  &StringNode{Default: &s},
			"visible": &BoolNode{Default: &b},
			"since":   &DateNode{Default: &d},
			"kinds":   &ArrayNode{Default: []any{"a"}},
			"level":   &EnumNode{Literals: []any{"low", "high"}, Default: "high"},
		},
	})
	if err != nil {
		t.Fatalf("Ошибка создания Engine: %v", err)
	}

	defaults := eng.CreateDefault()
	if defaults["status"] != "draft" {
		t.Errorf("ожидалось draft, получено %v", defaults["status"])
	}
	if defaults["visible"] != true {
		t.Errorf("ожидалось true, получено %v", defaults["visible"])
	}
	if !defaults["since"].(time.Time).Equal(d) {
		t.Errorf("ожидалось %v, получено %v", d, defaults["since"])
	}
	if defaults["level"] != "high" {
		t.Errorf("ожидалось high, получено %v", defaults["level"])
	}
}

// TestRequiredMap проверяет выведение обязательности из цепочек правил.
func TestRequiredMap(t *testing.T) {
	eng := testSchema(t)
	required := eng.RequiredMap()

	tests := []struct {
		field string
		want  bool
	}{
		{"title", true},        // Required в цепочке
		{"homepage", false},    // только правило формата
		{"archived", false},    // без правил
		{"end_date", false},    // кросс-полевое правило, не утверждение
		{"maintainers", false}, // Required внутри When не делает поле безусловно обязательным
	}

	for _, tt := range tests {
		if required[tt.field] != tt.want {
			t.Errorf("поле %s: ожидалось required=%v, получено %v", tt.field, tt.want, required[tt.field])
		}
	}
}

// TestRelated проверяет двунаправленный граф кросс-полевых зависимостей.
func TestRelated(t *testing.T) {
	eng := testSchema(t)

	got := eng.Related("end_date")
	if !reflect.DeepEqual(got, []string{"start_date"}) {
		t.Errorf("ожидалось [start_date], получено %v", got)
	}

	// Обратное направление: изменение start_date перевалидирует end_date
	got = eng.Related("start_date")
	if !reflect.DeepEqual(got, []string{"end_date"}) {
		t.Errorf("ожидалось [end_date], получено %v", got)
	}

	if len(eng.Related("title")) != 0 {
		t.Errorf("ожидался пустой список для title, получено %v", eng.Related("title"))
	}
}

// TestFields проверяет сортированный список полей.
func TestFields(t *testing.T) {
	eng := testSchema(t)
	fields := eng.Fields()
	if !sort.StringsAreSorted(fields) {
		t.Errorf("ожидался отсортированный список, получено %v", fields)
	}
	if len(fields) != 8 {
		t.Errorf("ожидалось 8 полей, получено %d", len(fields))
	}
}
