// search.go — поиск переиспользуемых идентичностей участников.
// Обёртка над contributors index Repository API с expirable LRU-кэшем:
// автодополнение в UI повторяет одни и те же префиксные запросы,
// кэш снимает нагрузку с upstream.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
)

// Prometheus-метрики кэша поиска участников.
var (
	searchCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "em_contributor_search_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш поиска участников.",
	})
	searchCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "em_contributor_search_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша поиска участников.",
	})
)

// SearchService — поиск участников с LRU-кэшем результатов.
// Каждый экземпляр Editor Module держит собственный in-memory кэш.
type SearchService struct {
	client ResourceClient
	logger *slog.Logger
	// searchURL — адрес contributors index (GET ?query=)
	searchURL string
	cache     *expirable.LRU[string, []model.Contributor]
}

// NewSearchService создаёт сервис поиска участников.
// maxSize — максимальное количество закэшированных запросов,
// ttl — время жизни записи кэша.
func NewSearchService(client ResourceClient, searchURL string, maxSize int, ttl time.Duration, logger *slog.Logger) *SearchService {
	return &SearchService{
		client:    client,
		logger:    logger.With(slog.String("component", "contributor_search")),
		searchURL: searchURL,
		cache:     expirable.NewLRU[string, []model.Contributor](maxSize, nil, ttl),
	}
}

// searchResponse — ответ contributors index.
type searchResponse struct {
	Results []model.Contributor `json:"results"`
}

// Search ищет участников по префиксу имени/email.
// Результаты кэшируются по нормализованному запросу.
func (s *SearchService) Search(ctx context.Context, query string) ([]model.Contributor, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil, nil
	}

	if cached, ok := s.cache.Get(key); ok {
		searchCacheHitsTotal.Inc()
		return cached, nil
	}
	searchCacheMissesTotal.Inc()

	var resp searchResponse
	path := s.searchURL + "?query=" + url.QueryEscape(key)
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("поиск участников %q: %w", query, err)
	}

	s.cache.Add(key, resp.Results)
	s.logger.Debug("Поиск участников",
		slog.String("query", key),
		slog.Int("results", len(resp.Results)),
	)
	return resp.Results, nil
}
