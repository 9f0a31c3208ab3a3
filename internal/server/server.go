package server

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"employee-directory/internal/domain"
	"employee-directory/internal/logger"
	"employee-directory/internal/refresh"
)

// Directory is what the HTTP layer needs from the refresher.
type Directory interface {
	Refresh(ctx context.Context) (refresh.Result, error)
	Snapshot() (refresh.Snapshot, error)
	Employee(key string) (domain.Employee, bool, error)
}

var _ Directory = (*refresh.Refresher)(nil)

func NewRouter(dir Directory, log *zap.Logger, cfgLogger *logger.Config, srvTimeout time.Duration) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.MiddlewareLogger(log, cfgLogger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", Healthz())
	router.Get("/employees", ListEmployees(dir, log))
	router.Get("/employees/{key}", GetEmployee(dir, log))
	router.Post("/refresh", Refresh(dir, srvTimeout, log))

	return router
}
