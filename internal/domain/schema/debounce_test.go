package schema

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestFieldValidator_Debounce проверяет, что серия Trigger даёт
// ровно одну доставку результата.
func TestFieldValidator_Debounce(t *testing.T) {
	eng := testSchema(t)
	v := eng.NewFieldValidator("title", 30*time.Millisecond, nil)
	defer v.Cancel()

	var calls atomic.Int32
	state := validState()
	state["title"] = ""

	for i := 0; i < 5; i++ {
		v.Trigger(state, func(map[string][]string) { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("ожидалась одна доставка, получено %d", got)
	}
}

// TestFieldValidator_DeliversResult проверяет содержимое доставленной карты.
func TestFieldValidator_DeliversResult(t *testing.T) {
	eng := testSchema(t)
	v := eng.NewFieldValidator("title", 10*time.Millisecond, nil)
	defer v.Cancel()

	state := validState()
	state["title"] = ""

	resultCh := make(chan map[string][]string, 1)
	v.Trigger(state, func(result map[string][]string) { resultCh <- result })

	select {
	case result := <-resultCh:
		if len(result["title"]) == 0 {
			t.Errorf("ожидалась ошибка title, получено %v", result)
		}
	case <-time.After(time.Second):
		t.Fatal("результат не доставлен")
	}
}

// TestFieldValidator_SupersededBySequence проверяет, что Bump общего
// счётчика между планированием и срабатыванием отбрасывает результат:
// полная валидация — всегда последний писатель.
func TestFieldValidator_SupersededBySequence(t *testing.T) {
	eng := testSchema(t)
	seq := &Sequence{}
	v := eng.NewFieldValidator("title", 30*time.Millisecond, seq)
	defer v.Cancel()

	var delivered atomic.Bool
	v.Trigger(validState(), func(map[string][]string) { delivered.Store(true) })

	// Имитация submit: ValidateAll инкрементирует счётчик
	seq.Bump()

	time.Sleep(100 * time.Millisecond)
	if delivered.Load() {
		t.Error("устаревший результат дебаунс-валидации не должен доставляться")
	}
}

// TestFieldValidator_Cancel проверяет отмену отложенной валидации.
func TestFieldValidator_Cancel(t *testing.T) {
	eng := testSchema(t)
	v := eng.NewFieldValidator("title", 30*time.Millisecond, nil)

	var delivered atomic.Bool
	v.Trigger(validState(), func(map[string][]string) { delivered.Store(true) })
	v.Cancel()

	time.Sleep(100 * time.Millisecond)
	if delivered.Load() {
		t.Error("отменённая валидация не должна доставлять результат")
	}
}

// TestSequence проверяет монотонность счётчика поколений.
func TestSequence(t *testing.T) {
	seq := &Sequence{}
	if seq.Current() != 0 {
		t.Errorf("ожидался 0, получено %d", seq.Current())
	}
	seq.Bump()
	seq.Bump()
	if seq.Current() != 2 {
		t.Errorf("ожидалось 2, получено %d", seq.Current())
	}
}
