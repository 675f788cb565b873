package release

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/roster"
)

// TestEditorLifecycle проходит полный путь редактора:
// пустой черновик → загрузка файлов → участник → метаданные →
// публикация → отказ структурной правки.
func TestEditorLifecycle(t *testing.T) {
	ctx := context.Background()

	rel := draftRelease()
	rel.Metadata = model.Metadata{}
	rel.Contributors = nil

	repo := newFakeRepo()
	repo.responses["GET "+detailURL] = rel
	repo.responses["GET "+mediaURL] = map[string]any{"files": []any{}}
	for _, cat := range model.FileCategories {
		repo.responses["GET "+categoryURL(cat)] = map[string]any{"files": []any{}}
	}

	m := NewMachine(repo, 10*time.Millisecond, testLogger())
	if err := m.Initialize(ctx, "demo-model", "1.0.0"); err != nil {
		t.Fatalf("Ошибка Initialize: %v", err)
	}

	// Пустой черновик: ничего не готово
	progress, err := m.Progress()
	if err != nil {
		t.Fatalf("Ошибка Progress: %v", err)
	}
	if progress.Upload.Complete || progress.Contributors || progress.Metadata.Complete {
		t.Fatalf("пустой черновик не должен быть готов: %+v", progress)
	}

	// Загрузка по одному файлу кода и документации; сервер после
	// распаковки отдаёт обновлённый листинг, клиент его перечитывает
	store := m.Files()
	for cat, file := range map[model.FileCategory]map[string]string{
		model.CategoryCode: {"name": "model.py", "identifier": "f1"},
		model.CategoryDocs: {"name": "README.md", "identifier": "f2"},
	} {
		if err := store.Upload(ctx, cat, file["name"], strings.NewReader("содержимое"), nil); err != nil {
			t.Fatalf("Ошибка Upload %s: %v", cat, err)
		}
		repo.responses["GET "+categoryURL(cat)] = map[string]any{"files": []map[string]string{file}}
		listed, err := store.List(ctx, cat)
		if err != nil {
			t.Fatalf("Ошибка List %s: %v", cat, err)
		}
		if len(listed) != 1 {
			t.Fatalf("ожидался один файл в %s, получено %d", cat, len(listed))
		}
	}

	progress, _ = m.Progress()
	if !progress.Upload.Complete {
		t.Error("код и документация загружены, upload должен быть готов")
	}
	if progress.Upload.HasData || progress.Upload.HasResults {
		t.Error("данные и результаты не загружались")
	}

	// Один участник с ролью author
	ros := m.Roster()
	ros.Upsert(roster.Row{
		Contributor:       model.Contributor{GivenName: "Анна", FamilyName: "Иванова", Type: model.ContributorTypePerson},
		Roles:             []string{model.RoleAuthor},
		IncludeInCitation: true,
	})
	if err := ros.Save(ctx); err != nil {
		t.Fatalf("Ошибка Save: %v", err)
	}

	progress, _ = m.Progress()
	if !progress.Contributors {
		t.Error("участник добавлен, contributors должен быть готов")
	}
	if progress.Metadata.Complete {
		t.Error("метаданные ещё не заполнены")
	}

	// Публикация до заполнения метаданных — отказ по предусловиям
	var precondErr *PreconditionError
	if err := m.Publish(ctx); !errors.As(err, &precondErr) {
		t.Fatalf("ожидался PreconditionError, получено %v", err)
	}

	// Заполнение обязательных метаданных
	osName, license := "linux", "MIT"
	patch := MetadataPatch{
		OS:                   &osName,
		Platforms:            []string{"NetLogo"},
		ProgrammingLanguages: []string{"Python"},
		License:              &license,
	}
	if err := m.UpdateMetadata(ctx, patch); err != nil {
		t.Fatalf("Ошибка UpdateMetadata: %v", err)
	}

	progress, _ = m.Progress()
	if !progress.Metadata.Complete {
		t.Errorf("обязательные метаданные заполнены: %+v", progress.Metadata)
	}

	if err := m.Publish(ctx); err != nil {
		t.Fatalf("Ошибка Publish: %v", err)
	}
	if m.State() != StateLive {
		t.Fatalf("ожидалось состояние live, получено %s", m.State())
	}

	// Структурная правка после публикации отвергается без сети
	putsBefore := repo.countCalls("PUT " + detailURL)
	windows := "windows"
	var stateErr *StateError
	if err := m.UpdateMetadata(ctx, MetadataPatch{OS: &windows}); !errors.As(err, &stateErr) {
		t.Fatalf("ожидался StateError, получено %v", err)
	}
	if repo.countCalls("PUT "+detailURL) != putsBefore {
		t.Error("отказ структурной правки должен происходить до сетевого вызова")
	}

	// Примечания к релизу редактируемы и на live
	notes := "обновлённые примечания"
	if err := m.UpdateMetadata(ctx, MetadataPatch{ReleaseNotes: &notes}); err != nil {
		t.Fatalf("Ошибка UpdateMetadata (примечания на live): %v", err)
	}
}
