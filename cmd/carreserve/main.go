// Точка входа Web Module — веб-интерфейс бронирования служебных автомобилей.
// Загружает конфигурацию, создаёт клиент REST backend, хранилище сессий
// (зашифрованный cookie или Redis), локализацию и страницы,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	apihandlers "github.com/bigkaa/carreserve/web-module/internal/api/handlers"
	"github.com/bigkaa/carreserve/web-module/internal/backend"
	"github.com/bigkaa/carreserve/web-module/internal/config"
	"github.com/bigkaa/carreserve/web-module/internal/server"
	"github.com/bigkaa/carreserve/web-module/internal/service"
	"github.com/bigkaa/carreserve/web-module/internal/ui/auth"
	uihandlers "github.com/bigkaa/carreserve/web-module/internal/ui/handlers"
	"github.com/bigkaa/carreserve/web-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/pages"
	"github.com/bigkaa/carreserve/web-module/internal/ui/session"
)

// redisPingTimeout — таймаут проверки Redis при старте.
const redisPingTimeout = 5 * time.Second

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Web Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("backend_url", cfg.BackendURL),
	)

	if os.Getenv("CR_DEPHEALTH_GROUP") == "" {
		logger.Warn("CR_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Клиент REST backend
	client, err := backend.New(cfg.BackendURL, cfg.BackendTimeout, cfg.BackendCACertPath, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Локализация и страницы
	bundle := i18n.NewBundle(cfg.DefaultLang, logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	pageSet := pages.New(bundle)

	// 5. Хранилище учётных данных
	var (
		store        auth.CredentialStore
		storeChecker apihandlers.ReadinessChecker
	)
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		redisStore := auth.NewRedisStore(rdb, cfg.SessionSecureCookie, cfg.SessionMaxAge)
		pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		err := redisStore.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Error("Redis недоступен", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = redisStore
		storeChecker = service.NewStoreChecker(redisStore)
		logger.Info("Сессии хранятся в Redis", slog.String("addr", cfg.RedisAddr), slog.Int("db", cfg.RedisDB))
	} else {
		cookieStore, err := auth.NewCookieStore(cfg.SessionSecret, cfg.SessionSecureCookie, cfg.SessionMaxAge)
		if err != nil {
			logger.Error("Ошибка создания хранилища сессий", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if cfg.SessionSecret == "" {
			logger.Warn("CR_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
		}
		store = cookieStore
	}

	// 6. Состояние аутентификации и защита страниц
	provider := session.NewProvider(client.Auth, store, cfg.SessionValidateTTL, logger)

	deps := uihandlers.Deps{
		Pages:        pageSet,
		Bundle:       bundle,
		Provider:     provider,
		Client:       client,
		SecureCookie: cfg.SessionSecureCookie,
	}
	loading := uihandlers.NewLoadingHandler(deps, logger)

	uiComponents := &server.UIComponents{
		Bundle:              bundle,
		Guard:               uimiddleware.NewGuard(provider, loading, logger),
		AuthHandler:         uihandlers.NewAuthHandler(deps, loading, logger),
		LanguageHandler:     uihandlers.NewLanguageHandler(bundle, cfg.SessionSecureCookie),
		DashboardHandler:    uihandlers.NewDashboardHandler(deps, logger),
		CalendarHandler:     uihandlers.NewCalendarHandler(deps, logger),
		VehiclesHandler:     uihandlers.NewVehiclesHandler(deps, logger),
		ReservationsHandler: uihandlers.NewReservationsHandler(deps, logger),
		AdminHandler:        uihandlers.NewAdminHandler(deps, logger),
	}

	// 7. topologymetrics — мониторинг REST backend
	ctx := context.Background()
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"web-module",
		cfg.DephealthGroup,
		cfg.BackendURL,
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
		}
	}

	// nil-сервис отвечает "degraded"
	healthHandler := apihandlers.NewHealthHandler(dephealthSvc, storeChecker)

	// 8. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, healthHandler, uiComponents)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Web Module остановлен")
}
