// engine.go — интерпретатор схемы: проверка конфигурации, значения
// по умолчанию, карта обязательных полей.
package schema

import (
	"fmt"
	"sort"
	"time"
)

// Engine — интерпретатор одной схемы объекта.
// Все методы чистые и потокобезопасные: Engine после создания неизменяем.
type Engine struct {
	root *ObjectNode
	// related — поле → множество полей, перевалидируемых вместе с ним
	// (оба конца каждого кросс-полевого правила).
	related map[string][]string
}

// New создаёт Engine, проверяя корректность схемы.
// Некорректная схема (nil-узлы, висячие кросс-полевые ссылки,
// пустой объект) — ошибка конфигурации, возвращается немедленно.
func New(root *ObjectNode) (*Engine, error) {
	if root == nil {
		return nil, fmt.Errorf("schema: корневой узел не задан")
	}
	if len(root.Fields) == 0 {
		return nil, fmt.Errorf("schema: объект без полей")
	}
	if err := checkNode("", root); err != nil {
		return nil, err
	}

	e := &Engine{
		root:    root,
		related: map[string][]string{},
	}

	// Строим граф кросс-полевых зависимостей: изменение любого конца
	// пары перевалидирует оба.
	for name, node := range root.Fields {
		for _, rule := range fieldRules(node) {
			dep, ok := rule.(dependentRule)
			if !ok {
				continue
			}
			for _, other := range dep.DependsOn() {
				if _, exists := root.Fields[other]; !exists {
					return nil, fmt.Errorf("schema: правило поля %q ссылается на неизвестное поле %q", name, other)
				}
				e.related[name] = appendUnique(e.related[name], other)
				e.related[other] = appendUnique(e.related[other], name)
			}
		}
	}

	return e, nil
}

// checkNode рекурсивно проверяет корректность узла.
func checkNode(path string, n Node) error {
	if n == nil {
		return fmt.Errorf("schema: nil-узел в поле %q", path)
	}
	switch v := n.(type) {
	case *ObjectNode:
		for name, child := range v.Fields {
			if err := checkNode(joinPath(path, name), child); err != nil {
				return err
			}
		}
	case *EnumNode:
		if v.Default != nil && len(v.Literals) > 0 && !containsLiteral(v.Literals, v.Default) {
			return fmt.Errorf("schema: default поля %q вне набора литералов", path)
		}
	case *StringNode, *BoolNode, *DateNode, *ArrayNode:
		// Листовые узлы без дополнительных инвариантов.
	default:
		// Недостижимо для узлов этого пакета; защита от будущих видов.
		return fmt.Errorf("schema: неизвестный вид узла %q в поле %q", n.kind(), path)
	}
	return nil
}

// CreateDefault синтезирует дерево значений по умолчанию.
// Детерминирован: повторный вызов даёт эквивалентное дерево
// (за исключением DateNode без Nullable — текущий момент).
func (e *Engine) CreateDefault() map[string]any {
	return defaultObject(e.root)
}

// defaultObject строит значения по умолчанию для объекта.
func defaultObject(obj *ObjectNode) map[string]any {
	out := make(map[string]any, len(obj.Fields))
	for name, node := range obj.Fields {
		out[name] = defaultValue(node)
	}
	return out
}

// defaultValue — значение по умолчанию одного узла.
// Явный Default всегда имеет приоритет над правилом вида.
func defaultValue(n Node) any {
	switch v := n.(type) {
	case *ObjectNode:
		return defaultObject(v)
	case *StringNode:
		if v.Default != nil {
			return *v.Default
		}
		return ""
	case *BoolNode:
		if v.Default != nil {
			return *v.Default
		}
		return false
	case *DateNode:
		if v.Default != nil {
			return *v.Default
		}
		if v.Nullable {
			return nil
		}
		return time.Now().UTC()
	case *ArrayNode:
		if v.Default != nil {
			return append([]any(nil), v.Default...)
		}
		return []any{}
	case *EnumNode:
		if v.Default != nil {
			return v.Default
		}
		if len(v.Literals) > 0 {
			return v.Literals[0]
		}
		return nil
	}
	return nil
}

// RequiredMap возвращает карту поле → обязательность.
// Поле обязательно, если в его цепочке правил встречается утверждение
// required/non-null до первого условного (short-circuit) правила.
// Карта используется только для UI-подсказок, не для блокировки submit.
func (e *Engine) RequiredMap() map[string]bool {
	out := make(map[string]bool, len(e.root.Fields))
	for name, node := range e.root.Fields {
		out[name] = requiredByRules(fieldRules(node))
	}
	return out
}

// requiredByRules сканирует цепочку правил до первого short-circuit.
func requiredByRules(rules []Rule) bool {
	for _, r := range rules {
		if _, ok := r.(shortCircuitRule); ok {
			return false
		}
		if _, ok := r.(assertRule); ok {
			return true
		}
	}
	return false
}

// Fields возвращает отсортированные имена полей корневого объекта.
func (e *Engine) Fields() []string {
	names := make([]string, 0, len(e.root.Fields))
	for name := range e.root.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Related возвращает поля, перевалидируемые вместе с указанным
// (кросс-полевые правила), без самого поля.
func (e *Engine) Related(field string) []string {
	return e.related[field]
}

// joinPath соединяет путь и имя поля через точку.
func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// appendUnique добавляет значение, если его ещё нет в срезе.
func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// containsLiteral проверяет наличие литерала в наборе.
func containsLiteral(literals []any, v any) bool {
	for _, lit := range literals {
		if lit == v {
			return true
		}
	}
	return false
}
