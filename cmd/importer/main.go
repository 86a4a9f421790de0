package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"realty_catalog/internal/adapters/observability"
	redisad "realty_catalog/internal/adapters/redis"
	"realty_catalog/internal/adapters/strapi"
	"realty_catalog/internal/adapters/tenantfile"
	"realty_catalog/internal/app"
	"realty_catalog/internal/domain"
	"realty_catalog/internal/shared"
	mysqlrepo "realty_catalog/internal/storage/mysql"
)

// importer pulls listings from Strapi into MySQL for every usable tenant, or
// only for the tenant slugs given as arguments.
func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("base", cfg.StrapiBase).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	if err := cfg.ImporterErrors(); err != nil {
		log.Fatal().Err(err).Msg("importer config")
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	var src domain.TenantSource = tenantfile.New(cfg.TenantsFile)
	if cfg.TenantSource == "mysql" {
		src = mysqlrepo.NewTenantSource(db)
	}
	registry := app.NewRegistry(src)
	if err := registry.Refresh(ctx); err != nil {
		log.Fatal().Err(err).Msg("load tenants")
	}

	client, err := strapi.New(cfg.StrapiBase, cfg.StrapiToken, cfg.StrapiRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Strapi client")
	}

	var cache domain.Cache = app.NopCache{}
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPrefix)
		defer rc.Close()
		cache = rc
	}

	cmd := app.NewCommandService(mysqlrepo.New(db), registry, cache)
	ing := app.NewIngestionService(client, cmd)

	only := os.Args[1:]
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)

	for _, t := range registry.All() {
		if !t.Usable() || (len(only) > 0 && !slices.Contains(only, t.Slug)) {
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("import interrupted")
			break
		}

		wg.Add(1)
		go func(t domain.Tenant) {
			defer wg.Done()
			defer sem.Release(1)

			rep, err := ing.IngestTenant(ctx, t)
			observability.ObserveImport(t.ID, rep.Created, rep.Updated, rep.Skipped)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("tenant", t.Slug).Err(err).Msg("import failed")
				return
			}
			log.Info().
				Str("tenant", t.Slug).
				Int("created", rep.Created).
				Int("updated", rep.Updated).
				Int("skipped", rep.Skipped).
				Msg("import ok")
		}(t)
	}

	wg.Wait()
	if n := failed.Load(); n > 0 {
		log.Error().Int32("tenants", n).Msg("import completed with failures")
		os.Exit(1)
	}
	log.Info().Msg("import completed")
}
