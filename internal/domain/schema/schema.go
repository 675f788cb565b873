// Пакет schema — декларативные схемы объектов и интерпретатор над ними.
//
// Схема — закрытое размеченное объединение видов узлов:
// Object | String | Bool | Date | Array | Enum. Из схемы выводятся:
//   - дерево значений по умолчанию (CreateDefault)
//   - карта обязательных полей (RequiredMap)
//   - дебаунс-валидаторы отдельных полей (NewFieldValidator)
//   - полная валидация объекта без short-circuit (ValidateAll)
//
// Некорректная схема — фатальная ошибка конфигурации: обнаруживается
// при создании Engine, а не при валидации. Валидация чистая и
// детерминированная, без I/O.
package schema

import "time"

// Node — узел схемы. Закрытый интерфейс: реализации ограничены
// этим пакетом, неизвестные виды узлов невозможны по построению.
type Node interface {
	kind() string
}

// ObjectNode — объект с именованными полями.
type ObjectNode struct {
	// Fields — поля объекта (имя → узел)
	Fields map[string]Node
	// Rules — правила уровня объекта (ошибки без пути)
	Rules []Rule
}

// StringNode — строковое поле. Значение по умолчанию — "".
type StringNode struct {
	// Default — явное значение по умолчанию (приоритет над "")
	Default *string
	// Rules — цепочка правил валидации
	Rules []Rule
}

// BoolNode — булево поле. Значение по умолчанию — false.
type BoolNode struct {
	// Default — явное значение по умолчанию (приоритет над false)
	Default *bool
	// Rules — цепочка правил валидации
	Rules []Rule
}

// DateNode — поле даты/времени.
// По умолчанию nil для nullable-поля, иначе текущий момент.
type DateNode struct {
	// Nullable — допустимо ли отсутствие значения
	Nullable bool
	// Default — явное значение по умолчанию
	Default *time.Time
	// Rules — цепочка правил валидации
	Rules []Rule
}

// ArrayNode — поле-список. Значение по умолчанию — пустой список.
type ArrayNode struct {
	// Default — явное значение по умолчанию
	Default []any
	// Rules — цепочка правил валидации
	Rules []Rule
}

// EnumNode — поле с перечислимым набором литералов.
// По умолчанию первый литерал; при пустом наборе — nil.
type EnumNode struct {
	// Literals — допустимые значения
	Literals []any
	// Default — явное значение по умолчанию
	Default any
	// Rules — цепочка правил валидации
	Rules []Rule
}

func (*ObjectNode) kind() string { return "object" }
func (*StringNode) kind() string { return "string" }
func (*BoolNode) kind() string   { return "bool" }
func (*DateNode) kind() string   { return "date" }
func (*ArrayNode) kind() string  { return "array" }
func (*EnumNode) kind() string   { return "enum" }

// fieldRules возвращает цепочку правил узла-поля.
func fieldRules(n Node) []Rule {
	switch v := n.(type) {
	case *ObjectNode:
		return v.Rules
	case *StringNode:
		return v.Rules
	case *BoolNode:
		return v.Rules
	case *DateNode:
		return v.Rules
	case *ArrayNode:
		return v.Rules
	case *EnumNode:
		return v.Rules
	}
	return nil
}
