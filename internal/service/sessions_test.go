package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/release"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeRepo — минимальный ResourceClient: отдаёт release detail
// и пустые листинги.
type fakeRepo struct {
	detail model.Release
	getErr error
}

func (f *fakeRepo) Get(_ context.Context, path string, out any) error {
	if f.getErr != nil {
		return f.getErr
	}
	if out == nil {
		return nil
	}
	if rel, ok := out.(*model.Release); ok {
		*rel = f.detail
		return nil
	}
	// Листинги файлов/медиа — пустой список
	raw, _ := json.Marshal(map[string]any{"files": []any{}})
	return json.Unmarshal(raw, out)
}

func (f *fakeRepo) Post(_ context.Context, _ string, _, _ any) error { return nil }
func (f *fakeRepo) Put(_ context.Context, _ string, _, _ any) error  { return nil }
func (f *fakeRepo) Delete(_ context.Context, _ string) error         { return nil }
func (f *fakeRepo) UploadFile(_ context.Context, _, _ string, r io.Reader, _ func(int64)) error {
	io.Copy(io.Discard, r)
	return nil
}

var _ release.ResourceClient = (*fakeRepo)(nil)

// testDetail — минимальный редактируемый релиз.
func testDetail() model.Release {
	return model.Release{
		Identifier:       "demo-model",
		VersionNumber:    "1.0.0",
		CanEditOriginals: true,
		PossibleLicenses: []model.License{{Name: "MIT"}},
		URLs: model.ReleaseURLs{
			Detail:        "/api/codebases/demo-model/releases/1.0.0/",
			Contributors:  "/api/codebases/demo-model/releases/1.0.0/contributors/",
			Media:         "/api/codebases/demo-model/releases/1.0.0/media/",
			OriginalFiles: map[string]string{"code": "/api/files/code/"},
		},
	}
}

// TestEditorService_OpenGetClose проверяет жизненный цикл сессии.
func TestEditorService_OpenGetClose(t *testing.T) {
	svc := NewEditorService(&fakeRepo{detail: testDetail()}, 10*time.Millisecond, time.Hour, testLogger())

	session, err := svc.Open(context.Background(), "demo-model", "1.0.0")
	if err != nil {
		t.Fatalf("Ошибка Open: %v", err)
	}
	if session.ID == "" {
		t.Fatal("ожидался назначенный идентификатор сессии")
	}
	if session.Machine.State() != release.StateDraft {
		t.Errorf("ожидалось состояние draft, получено %s", session.Machine.State())
	}

	got, err := svc.Get(session.ID)
	if err != nil {
		t.Fatalf("Ошибка Get: %v", err)
	}
	if got != session {
		t.Error("Get должен возвращать ту же сессию")
	}

	if err := svc.Close(session.ID); err != nil {
		t.Fatalf("Ошибка Close: %v", err)
	}
	if _, err := svc.Get(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("ожидался ErrSessionNotFound после Close, получено %v", err)
	}
	if err := svc.Close(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("повторный Close — ErrSessionNotFound, получено %v", err)
	}
}

// TestEditorService_OpenFailure проверяет, что сбой Initialize
// не регистрирует сессию.
func TestEditorService_OpenFailure(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("connection refused")}
	svc := NewEditorService(repo, 10*time.Millisecond, time.Hour, testLogger())

	if _, err := svc.Open(context.Background(), "demo-model", "1.0.0"); err == nil {
		t.Fatal("ожидалась ошибка Open")
	}

	svc.mu.RLock()
	count := len(svc.sessions)
	svc.mu.RUnlock()
	if count != 0 {
		t.Errorf("несостоявшаяся сессия не должна регистрироваться, сессий: %d", count)
	}
}

// TestEditorService_Sweep проверяет чистку неактивных сессий по TTL.
func TestEditorService_Sweep(t *testing.T) {
	svc := NewEditorService(&fakeRepo{detail: testDetail()}, 10*time.Millisecond, 50*time.Millisecond, testLogger())

	stale, err := svc.Open(context.Background(), "demo-model", "1.0.0")
	if err != nil {
		t.Fatalf("Ошибка Open: %v", err)
	}

	time.Sleep(80 * time.Millisecond)

	fresh, err := svc.Open(context.Background(), "demo-model", "1.0.0")
	if err != nil {
		t.Fatalf("Ошибка Open: %v", err)
	}

	svc.sweep()

	if _, err := svc.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("просроченная сессия должна быть закрыта, получено %v", err)
	}
	if _, err := svc.Get(fresh.ID); err != nil {
		t.Errorf("активная сессия должна пережить sweep: %v", err)
	}
}

// TestEditorService_GetProlongsTTL проверяет продление TTL при обращении.
func TestEditorService_GetProlongsTTL(t *testing.T) {
	svc := NewEditorService(&fakeRepo{detail: testDetail()}, 10*time.Millisecond, 60*time.Millisecond, testLogger())

	session, err := svc.Open(context.Background(), "demo-model", "1.0.0")
	if err != nil {
		t.Fatalf("Ошибка Open: %v", err)
	}

	// Регулярные обращения удерживают сессию живой дольше TTL
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		if _, err := svc.Get(session.ID); err != nil {
			t.Fatalf("Ошибка Get: %v", err)
		}
		svc.sweep()
	}

	if _, err := svc.Get(session.ID); err != nil {
		t.Errorf("сессия с регулярными обращениями не должна истекать: %v", err)
	}
}
