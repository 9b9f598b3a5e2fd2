package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Vivek1819/FinBoard/internal/handlers"
	"github.com/Vivek1819/FinBoard/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(lm.LoggerMiddleware)

	dh := handlers.NewDashboardHandlers(deps)
	fh := handlers.NewFieldHandlers(deps)
	ph := handlers.NewProxyHandlers(deps)

	r.Mount("/dashboard", dh.DashboardRoutes())
	r.Get("/tickers/popular", dh.PopularTickers)
	r.Mount("/fields", fh.FieldRoutes())
	r.Mount("/api", ph.ProxyRoutes())

	return r
}
