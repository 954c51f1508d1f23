package wire

import (
	"context"
	"net/http"
	"time"

	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/gateway"
	"travel-booking/internal/notification"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/database"
	"travel-booking/pkg/middleware"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds what the commands need after wiring.
type App struct {
	Router  *chi.Mux
	Repo    *repository.Repository
	Service *usecase.Service
}

// Wiring builds repositories, services, handlers and the router.
func Wiring(
	db database.PgxIface,
	gw gateway.Client,
	dispatcher notification.Dispatcher,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	repo := repository.NewRepository(db, logger)
	service := usecase.NewService(repo, gw, dispatcher, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(handler, repo, db, logger)

	return &App{
		Router:  router,
		Repo:    repo,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	db database.PgxIface,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	wirePayment(r, handler.Payment, repo, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseServiceUnavailable(w, "database unavailable")
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	})

	return r
}
