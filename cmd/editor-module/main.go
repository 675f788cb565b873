// Точка входа Editor Module — редактор релизов кодовых баз Modelstore.
// Загружает конфигурацию, создаёт клиент Repository API, сервис сессий
// редактора и поиск участников, запускает фоновые задачи (sweeper сессий,
// topologymetrics), HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bigkaa/modelstore/editor-module/internal/api/handlers"
	"github.com/bigkaa/modelstore/editor-module/internal/api/middleware"
	"github.com/bigkaa/modelstore/editor-module/internal/config"
	"github.com/bigkaa/modelstore/editor-module/internal/repoclient"
	"github.com/bigkaa/modelstore/editor-module/internal/roster"
	"github.com/bigkaa/modelstore/editor-module/internal/server"
	"github.com/bigkaa/modelstore/editor-module/internal/service"
)

// contributorSearchPath — endpoint поиска участников Repository API.
const contributorSearchPath = "/api/contributors/search/"

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Editor Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("EM_DEPHEALTH_GROUP") == "" {
		logger.Warn("EM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Клиент Repository API
	var tokenProvider repoclient.TokenProvider
	if cfg.RepoToken != "" {
		token := cfg.RepoToken
		tokenProvider = func(_ context.Context) (string, error) { return token, nil }
	}
	repoClient := repoclient.New(cfg.RepoURL, cfg.RepoTimeout, tokenProvider, logger)
	logger.Info("Клиент Repository API создан",
		slog.String("url", cfg.RepoURL),
		slog.String("timeout", cfg.RepoTimeout.String()),
	)

	// 4. Сервис сессий редактора
	ctx := context.Background()
	editorSvc := service.NewEditorService(repoClient, cfg.ValidateDebounce, cfg.SessionTTL, logger)
	editorSvc.StartSweeper(ctx)

	// 5. Поиск участников с LRU-кэшом
	searchSvc := roster.NewSearchService(
		repoClient,
		contributorSearchPath,
		cfg.SearchCacheSize,
		cfg.SearchCacheTTL,
		logger,
	)

	// 6. topologymetrics — мониторинг зависимости Repository API
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"editor-module",
		cfg.DephealthGroup,
		cfg.RepoURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 7. Handlers
	var readiness handlers.ReadinessChecker
	if dephealthErr == nil {
		readiness = dephealthSvc
	}
	healthHandler := handlers.NewHealthHandler(readiness)
	editorHandler := handlers.NewEditorHandler(editorSvc, searchSvc, logger)

	// 8. HTTP-сервер (metrics до logging — считаем и залогированные отказы)
	srv := server.New(cfg, logger, editorHandler, healthHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 9. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Editor Module остановлен")
}
