package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "realty_catalog/internal/adapters/http_server"
	"realty_catalog/internal/adapters/observability"
	redisad "realty_catalog/internal/adapters/redis"
	"realty_catalog/internal/adapters/tenantfile"
	"realty_catalog/internal/app"
	"realty_catalog/internal/domain"
	"realty_catalog/internal/shared"
	"realty_catalog/internal/storage/memory"
	mysqlrepo "realty_catalog/internal/storage/mysql"
)

type store interface {
	domain.PropertyRepository
	domain.LeadRepository
}

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo    store
		tenants domain.TenantSource
		db      *sql.DB
	)
	if cfg.Store == "mysql" {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	} else {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		repo = memory.New()
	}

	if cfg.TenantSource == "mysql" {
		tenants = mysqlrepo.NewTenantSource(db)
	} else {
		tenants = tenantfile.New(cfg.TenantsFile)
	}
	registry := app.NewRegistry(tenants)
	if err := registry.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("load tenants")
	}
	go reloadOnHUP(ctx, registry)

	var cache domain.Cache = app.NopCache{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPrefix)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable; cache calls will fail open")
		}
		cache = rc
	}

	// deps
	q := app.NewQueryService(repo, cache, cfg.CacheTTL())
	c := app.NewCommandService(repo, registry, cache)
	l := app.NewLeadService(repo, registry)

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: c, L: l, Tenants: registry, LeadRatePerMinute: cfg.LeadRatePerMinute})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// reloadOnHUP re-reads the tenant table on SIGHUP. A failed reload keeps the
// previous table.
func reloadOnHUP(ctx context.Context, r *app.Registry) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := r.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("tenant reload failed")
			}
		}
	}
}
