package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Vivek1819/FinBoard/internal/config"
	"github.com/Vivek1819/FinBoard/internal/handlers"
	"github.com/Vivek1819/FinBoard/internal/marketdata"
	"github.com/Vivek1819/FinBoard/internal/poller"
	"github.com/Vivek1819/FinBoard/internal/response"
	"github.com/Vivek1819/FinBoard/internal/router"
	"github.com/Vivek1819/FinBoard/internal/services"
	"github.com/Vivek1819/FinBoard/internal/store"
	"github.com/Vivek1819/FinBoard/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	cfg := config.New()
	log := logger.New(cfg.LogLevel, logger.NewJSONHandler)

	// stores
	dstore, err := store.NewDashboardStore(cfg.DataPath)
	exitOnError("store init failed", err, log)
	defer dstore.Close()

	// market data cache shared by the pollers and field previews
	cache := marketdata.NewCache(&http.Client{Timeout: 15 * time.Second})
	go func() {
		for range time.Tick(time.Minute) {
			cache.Sweep()
		}
	}()

	// pollers
	registry := poller.NewRegistry(cache, log)
	defer registry.StopAll()

	// services
	templates := services.BuiltinTemplates("http://localhost:" + cfg.Port)
	dserv := services.NewDashboardService(dstore, registry, templates)
	fserv := services.NewFieldService(cache)

	err = dserv.Resume(context.Background())
	exitOnError("poller resume failed", err, log)

	// response handler
	rh := response.New(log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = log
	deps.Config = cfg
	deps.ResponseHandler = rh
	deps.DashboardSvc = dserv
	deps.FieldSvc = fserv
	deps.ProxyClient = &http.Client{Timeout: 15 * time.Second}

	// router
	r := router.NewRouter(deps)
	log.Info("listening", "port", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, r)
	exitOnError("server start failed", err, log)
}
