// debounce.go — дебаунс-валидация отдельных полей.
//
// Быстрый ввод не должен порождать валидацию на каждое нажатие:
// FieldValidator откладывает проверку на заданный интервал и сбрасывает
// таймер при каждом новом Trigger. Гонка с ValidateAll при submit
// разрешается через Sequence: ValidateAll всегда последний писатель —
// отложенный результат с устаревшим номером последовательности
// отбрасывается без вызова callback.
package schema

import (
	"sync"
	"sync/atomic"
	"time"
)

// Sequence — монотонный счётчик поколений валидации.
// Общий для всех FieldValidator одного объекта; полная валидация
// (submit) инкрементирует его через Bump.
type Sequence struct {
	n atomic.Uint64
}

// Bump инкрементирует счётчик, обесценивая все отложенные проверки.
func (s *Sequence) Bump() { s.n.Add(1) }

// Current возвращает текущее значение счётчика.
func (s *Sequence) Current() uint64 { return s.n.Load() }

// FieldValidator — дебаунс-валидатор одного поля.
// Потокобезопасен; callback вызывается из горутины таймера.
type FieldValidator struct {
	eng   *Engine
	field string
	delay time.Duration
	seq   *Sequence

	mu    sync.Mutex
	timer *time.Timer
}

// NewFieldValidator создаёт дебаунс-валидатор поля.
// seq — общий счётчик поколений (nil — без защиты от гонки с ValidateAll).
func (e *Engine) NewFieldValidator(field string, delay time.Duration, seq *Sequence) *FieldValidator {
	if seq == nil {
		seq = &Sequence{}
	}
	return &FieldValidator{
		eng:   e,
		field: field,
		delay: delay,
		seq:   seq,
	}
}

// Trigger планирует валидацию поля после интервала дебаунса.
// Повторный Trigger до срабатывания сбрасывает таймер. deliver получает
// карту путь → сообщения для поля и его кросс-полевых соседей
// (пустая карта — ошибок нет). Если между планированием и срабатыванием
// произошёл Bump общего Sequence, результат отбрасывается.
func (v *FieldValidator) Trigger(state map[string]any, deliver func(map[string][]string)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.timer != nil {
		v.timer.Stop()
	}

	scheduled := v.seq.Current()
	v.timer = time.AfterFunc(v.delay, func() {
		result := v.eng.ValidateField(v.field, state)
		if v.seq.Current() != scheduled {
			// ValidateAll успел отработать — его результат новее.
			return
		}
		deliver(result)
	})
}

// Cancel отменяет отложенную валидацию, если она ещё не сработала.
func (v *FieldValidator) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}
