package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
)

// fakeSearchClient считает запросы к upstream.
type fakeSearchClient struct {
	calls   int
	lastURL string
	results []model.Contributor
	getErr  error
}

func (f *fakeSearchClient) Get(_ context.Context, url string, out any) error {
	f.calls++
	f.lastURL = url
	if f.getErr != nil {
		return f.getErr
	}
	out.(*searchResponse).Results = f.results
	return nil
}

func (f *fakeSearchClient) Put(_ context.Context, _ string, _, _ any) error { return nil }

// TestSearch_CachesResults проверяет, что повторный запрос не идёт в upstream.
func TestSearch_CachesResults(t *testing.T) {
	client := &fakeSearchClient{results: []model.Contributor{person(1, "Анна", "Иванова")}}
	svc := NewSearchService(client, "/api/contributors/search/", 16, time.Minute, testLogger())

	for i := 0; i < 3; i++ {
		found, err := svc.Search(context.Background(), "иванова")
		if err != nil {
			t.Fatalf("Ошибка Search: %v", err)
		}
		if len(found) != 1 || found[0].ID != 1 {
			t.Fatalf("ожидался один результат, получено %v", found)
		}
	}

	if client.calls != 1 {
		t.Errorf("ожидался один запрос к upstream, получено %d", client.calls)
	}
}

// TestSearch_NormalizesQuery проверяет нормализацию ключа кэша.
func TestSearch_NormalizesQuery(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(client, "/api/contributors/search/", 16, time.Minute, testLogger())

	for _, q := range []string{"Иванова", "  иванова ", "ИВАНОВА"} {
		if _, err := svc.Search(context.Background(), q); err != nil {
			t.Fatalf("Ошибка Search(%q): %v", q, err)
		}
	}

	if client.calls != 1 {
		t.Errorf("варианты регистра и пробелов — один ключ кэша, запросов: %d", client.calls)
	}
}

// TestSearch_EmptyQuery проверяет, что пустой запрос не идёт в сеть.
func TestSearch_EmptyQuery(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(client, "/api/contributors/search/", 16, time.Minute, testLogger())

	found, err := svc.Search(context.Background(), "   ")
	if err != nil || found != nil {
		t.Errorf("ожидался пустой результат без ошибки, получено %v, %v", found, err)
	}
	if client.calls != 0 {
		t.Errorf("пустой запрос не должен ходить в upstream")
	}
}

// TestSearch_ErrorNotCached проверяет, что ошибка upstream не кэшируется.
func TestSearch_ErrorNotCached(t *testing.T) {
	client := &fakeSearchClient{getErr: errors.New("timeout")}
	svc := NewSearchService(client, "/api/contributors/search/", 16, time.Minute, testLogger())

	if _, err := svc.Search(context.Background(), "анна"); err == nil {
		t.Fatal("ожидалась ошибка upstream")
	}

	client.getErr = nil
	if _, err := svc.Search(context.Background(), "анна"); err != nil {
		t.Fatalf("Ошибка Search после восстановления: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("ошибка не должна кэшироваться, запросов: %d", client.calls)
	}
}

// TestSearch_QueryEscaping проверяет экранирование запроса в URL.
func TestSearch_QueryEscaping(t *testing.T) {
	client := &fakeSearchClient{}
	svc := NewSearchService(client, "/api/contributors/search/", 16, time.Minute, testLogger())

	if _, err := svc.Search(context.Background(), "анна и"); err != nil {
		t.Fatalf("Ошибка Search: %v", err)
	}
	want := "/api/contributors/search/?query=" + "%D0%B0%D0%BD%D0%BD%D0%B0+%D0%B8"
	if client.lastURL != want {
		t.Errorf("ожидался URL %s, получено %s", want, client.lastURL)
	}
}
