package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/amankv/dime-backend/internal/handlers"
	"github.com/amankv/dime-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewLoggerMiddleware(deps.Log).LoggerMiddleware)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	handlers.NewTransactionHandlers(deps).Register(r)
	handlers.NewCardHandlers(deps).Register(r)
	handlers.NewMerchantHandlers(deps).Register(r)
	handlers.NewAnalyticsHandlers(deps).Register(r)
	handlers.NewChatHandlers(deps).Register(r)
	handlers.NewKnotHandlers(deps).Register(r)
	handlers.NewAdminHandlers(deps).Register(r)

	return r
}
