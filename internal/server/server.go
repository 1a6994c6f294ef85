// Пакет server — HTTP-сервер Web Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apihandlers "github.com/bigkaa/carreserve/web-module/internal/api/handlers"
	"github.com/bigkaa/carreserve/web-module/internal/api/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/config"
	"github.com/bigkaa/carreserve/web-module/internal/ui/handlers"
	"github.com/bigkaa/carreserve/web-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/carreserve/web-module/internal/ui/middleware"
	"github.com/bigkaa/carreserve/web-module/internal/ui/static"
)

// UIComponents — компоненты страниц для регистрации маршрутов.
type UIComponents struct {
	Bundle              *i18n.Bundle
	Guard               *uimiddleware.Guard
	AuthHandler         *handlers.AuthHandler
	LanguageHandler     *handlers.LanguageHandler
	DashboardHandler    *handlers.DashboardHandler
	CalendarHandler     *handlers.CalendarHandler
	VehiclesHandler     *handlers.VehiclesHandler
	ReservationsHandler *handlers.ReservationsHandler
	AdminHandler        *handlers.AdminHandler
}

// Server — HTTP-сервер Web Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, health *apihandlers.HealthHandler, ui *UIComponents) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, health, ui),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает таблицу маршрутов.
//
//	/health/*, /metrics, /static/*  — без сессии
//	/login, /logout, /set-language  — без сессии
//	/, /calendar, /vehicles, ...    — подтверждённая сессия
//	/admin/*, архивирование         — администратор автопарка
func NewRouter(logger *slog.Logger, health *apihandlers.HealthHandler, ui *UIComponents) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Health и metrics проверяются Kubernetes напрямую
	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Group(func(r chi.Router) {
		r.Use(ui.Bundle.Middleware())

		r.Get("/login", ui.AuthHandler.HandleLoginPage)
		r.Post("/login", ui.AuthHandler.HandleLogin)
		r.Post("/logout", ui.AuthHandler.HandleLogout)
		r.Post("/set-language", ui.LanguageHandler.HandleSetLanguage)

		r.Group(func(r chi.Router) {
			r.Use(ui.Guard.RequireSession)

			r.Get("/", ui.DashboardHandler.HandleDashboard)
			r.Get("/calendar", ui.CalendarHandler.HandleCalendar)
			r.Get("/vehicles", ui.VehiclesHandler.HandleList)
			r.Get("/vehicles/{id}", ui.VehiclesHandler.HandleDetail)
			r.Get("/my-reservations", ui.ReservationsHandler.HandleMy)
			r.Post("/reservations/{id}/cancel", ui.ReservationsHandler.HandleCancel)

			r.Group(func(r chi.Router) {
				r.Use(ui.Guard.RequireAdmin)

				r.Post("/vehicles/{id}/archive", ui.VehiclesHandler.HandleArchive)

				r.Route("/admin", func(r chi.Router) {
					r.Get("/reservations", ui.ReservationsHandler.HandleAdminList)
					r.Get("/users", ui.AdminHandler.HandleUsers)
					r.Post("/users/{id}/role", ui.AdminHandler.HandleUpdateRole)
					r.Post("/users/{id}/status", ui.AdminHandler.HandleUpdateStatus)
					r.Post("/roles", ui.AdminHandler.HandleCreateRole)
					r.Get("/service-records", ui.AdminHandler.HandleServiceRecords)
					r.Post("/service-records/{id}/delete", ui.AdminHandler.HandleDeleteServiceRecord)
					r.Get("/damage-records", ui.AdminHandler.HandleDamageRecords)
					r.Post("/damage-records/{id}/delete", ui.AdminHandler.HandleDeleteDamageRecord)
				})
			})
		})
	})

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
