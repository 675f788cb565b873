// Пакет files — хранилище файловых категорий релиза.
//
// Списки файлов формируются только из ответов Repository API
// (fetch-and-replace): распаковка загруженных архивов — асинхронная
// серверная работа, и локальное предсказание итогового списка невозможно.
// Любая мутация (upload/delete/clear) требует последующего List —
// хранилище никогда не вычисляет результирующий список само.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
)

// Prometheus-метрики файловых операций.
var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "em_file_uploads_total",
		Help: "Общее количество успешных загрузок файлов по категориям.",
	}, []string{"category"})
	uploadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "em_file_upload_failures_total",
		Help: "Общее количество неуспешных загрузок по стадиям (upload, unpack).",
	}, []string{"stage"})
	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "em_file_upload_bytes_total",
		Help: "Общий объём загруженных байт.",
	})
)

// ResourceClient — узкий интерфейс транспорта, используемый хранилищем.
// Реализуется repoclient.Client.
type ResourceClient interface {
	Get(ctx context.Context, path string, out any) error
	Delete(ctx context.Context, path string) error
	UploadFile(ctx context.Context, path, filename string, r io.Reader, onProgress func(written int64)) error
}

// ErrUnknownCategory — запрошена неизвестная файловая категория.
var ErrUnknownCategory = errors.New("неизвестная файловая категория")

// ErrDisposed — операция над закрытым хранилищем.
var ErrDisposed = errors.New("хранилище файлов закрыто")

// ErrEditingWithdrawn — мутация оригинальных файлов после отзыва
// редактирования (публикация релиза или запрет сервера). Нарушение
// контракта UI: элементы управления должны были быть отключены.
var ErrEditingWithdrawn = errors.New("редактирование оригинальных файлов отозвано")

// Store — состояние файловых категорий одного релиза.
// Потокобезопасен. После Dispose ответы сети игнорируются (no-op),
// чтобы переживать навигацию пользователя во время долгих загрузок.
type Store struct {
	client ResourceClient
	logger *slog.Logger

	mu sync.RWMutex
	// urls — адрес list/upload endpoint по категориям (из release detail)
	urls map[model.FileCategory]string
	// mediaURL — адрес media sub-resource
	mediaURL string
	// originals — локальные снимки списков оригинальных файлов
	originals map[model.FileCategory][]model.FileInfo
	// media — снимок списка медиа-файлов
	media    []model.MediaFile
	disposed bool
	// withdrawn — мутации запрещены (релиз опубликован); чтение работает
	withdrawn bool
}

// NewStore создаёт хранилище файловых категорий.
// urls — адреса категорий из ReleaseURLs.OriginalFiles.
func NewStore(client ResourceClient, urls map[model.FileCategory]string, mediaURL string, logger *slog.Logger) *Store {
	return &Store{
		client:    client,
		logger:    logger.With(slog.String("component", "file_store")),
		urls:      urls,
		mediaURL:  mediaURL,
		originals: make(map[model.FileCategory][]model.FileInfo, len(urls)),
	}
}

// listResponse — ответ Repository API на GET списка файлов категории.
type listResponse struct {
	Files []model.FileInfo `json:"files"`
}

// List запрашивает авторитетный список файлов категории и замещает
// локальный снимок целиком (никогда не сливает со старым состоянием —
// иначе после серверной распаковки архива возможны дубликаты).
func (s *Store) List(ctx context.Context, category model.FileCategory) ([]model.FileInfo, error) {
	url, err := s.categoryURL(category)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := s.client.Get(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("список файлов категории %s: %w", category, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		// Потребитель ушёл — ответ устарел, состояние не трогаем.
		return resp.Files, nil
	}
	s.originals[category] = resp.Files
	return resp.Files, nil
}

// ListMedia запрашивает список медиа-файлов релиза (fetch-and-replace).
func (s *Store) ListMedia(ctx context.Context) ([]model.MediaFile, error) {
	var resp struct {
		Files []model.MediaFile `json:"files"`
	}
	if err := s.client.Get(ctx, s.mediaURL, &resp); err != nil {
		return nil, fmt.Errorf("список медиа-файлов: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return resp.Files, nil
	}
	s.media = resp.Files
	return resp.Files, nil
}

// WithdrawEditing навсегда запрещает мутации оригинальных файлов.
// Вызывается при публикации релиза и при инициализации релизом,
// редактирование которого сервер не разрешает. Чтение снимков и List
// продолжают работать; отзыв необратим.
func (s *Store) WithdrawEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawn = true
}

// EditingWithdrawn сообщает, отозвано ли редактирование.
func (s *Store) EditingWithdrawn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withdrawn
}

// checkEditable отклоняет мутацию до любого сетевого вызова.
func (s *Store) checkEditable() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return ErrDisposed
	}
	if s.withdrawn {
		return ErrEditingWithdrawn
	}
	return nil
}

// Upload загружает один файл в категорию.
// Успех НЕ означает актуальность локального снимка: итоговый список
// (после распаковки архива) известен только после последующего List.
// Отказ сервера для опубликованного релиза возвращается ошибкой,
// никогда не проглатывается.
func (s *Store) Upload(ctx context.Context, category model.FileCategory, filename string, r io.Reader, onProgress func(written int64)) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	url, err := s.categoryURL(category)
	if err != nil {
		return err
	}

	var written int64
	progress := func(n int64) {
		written = n
		if onProgress != nil {
			onProgress(n)
		}
	}

	if err := s.client.UploadFile(ctx, url, filename, r, progress); err != nil {
		uploadErr := classifyUploadError(category, filename, err)
		uploadFailuresTotal.WithLabelValues(string(uploadErr.Stage)).Inc()
		s.logger.Warn("Загрузка файла не удалась",
			slog.String("category", string(category)),
			slog.String("filename", filename),
			slog.String("stage", string(uploadErr.Stage)),
			slog.String("error", err.Error()),
		)
		return uploadErr
	}

	uploadsTotal.WithLabelValues(string(category)).Inc()
	uploadBytesTotal.Add(float64(written))
	s.logger.Info("Файл загружен",
		slog.String("category", string(category)),
		slog.String("filename", filename),
		slog.Int64("bytes", written),
	)
	return nil
}

// Delete удаляет файл по идентификатору.
// Локальный снимок не модифицируется — вызывающий обязан выполнить List.
func (s *Store) Delete(ctx context.Context, fileIdentifier string) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	if err := s.client.Delete(ctx, fileIdentifier); err != nil {
		return fmt.Errorf("удаление файла %s: %w", fileIdentifier, err)
	}
	return nil
}

// ClearCategory удаляет все файлы категории.
// Локальный снимок не модифицируется — вызывающий обязан выполнить List.
func (s *Store) ClearCategory(ctx context.Context, category model.FileCategory) error {
	if err := s.checkEditable(); err != nil {
		return err
	}
	url, err := s.categoryURL(category)
	if err != nil {
		return err
	}
	if err := s.client.Delete(ctx, url+"clear_category/"); err != nil {
		return fmt.Errorf("очистка категории %s: %w", category, err)
	}
	return nil
}

// Files возвращает локальный снимок списка файлов категории.
func (s *Store) Files(category model.FileCategory) []model.FileInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.FileInfo(nil), s.originals[category]...)
}

// Media возвращает локальный снимок списка медиа-файлов.
func (s *Store) Media() []model.MediaFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.MediaFile(nil), s.media...)
}

// HasFiles сообщает, есть ли файлы в категории (по локальному снимку).
func (s *Store) HasFiles(category model.FileCategory) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.originals[category]) > 0
}

// Dispose закрывает хранилище: поздние ответы сети игнорируются.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
}

// categoryURL возвращает адрес endpoint категории.
func (s *Store) categoryURL(category model.FileCategory) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return "", ErrDisposed
	}
	url, ok := s.urls[category]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return url, nil
}
