package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guilhem-Bonnet/akd/internal/adapters/httpapi"
	"github.com/Guilhem-Bonnet/akd/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/akd/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/akd/internal/app"
	"github.com/Guilhem-Bonnet/akd/internal/buildinfo"
	"github.com/Guilhem-Bonnet/akd/internal/config"
	"github.com/Guilhem-Bonnet/akd/internal/logger"
)

func main() {
	configFile := flag.String("config", "", "Fichier de configuration (défaut: ./akd.yaml si présent)")
	addr := flag.String("addr", "", "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", "", "Chemin SQLite (ex: akd.db)")
	logFormat := flag.String("log-format", "", "Format des logs: json|console")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err == nil {
		cfg, err = cfg.Apply(config.Overrides{Addr: *addr, DBPath: *dbPath, LogFormat: *logFormat})
	}
	if err != nil {
		bootLog := logger.New("console", "info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogFormat, cfg.LogLevel).With().Str("app", "akd-server").Logger()
	log.Info().Interface("build", buildinfo.Current()).Str("db", cfg.DBPath).Str("api", cfg.APIBaseURL).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	showcase, err := app.LoadShowcase(cfg.ShowcasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load showcase")
	}

	bus := memorybus.New()
	defer bus.Close()
	kv := sqlite.NewKVRepository(db.SQL)

	catalog := app.NewCatalogService().
		WithEndpoint(cfg.APIBaseURL).
		WithTimeout(cfg.HTTPTimeout).
		WithConcurrency(cfg.CatalogConcurrency)
	cache := app.NewCatalogCache(catalog, log, cfg.CacheTTL)
	browse := app.NewBrowseService(log, bus, app.DefaultFeeds(catalog))

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Scheduler: préchauffage du cache + éviction des sessions de navigation.
	scheduler := app.NewScheduler(log)
	if err := scheduler.AddJob(app.JobCatalogWarm, cfg.WarmCron, app.WarmCatalogJob(cache)); err != nil {
		log.Fatal().Err(err).Msg("invalid warm_cron")
	}
	if err := scheduler.AddJob(app.JobBrowseEvict, cfg.EvictCron, app.EvictBrowseJob(browse, cfg.BrowseIdle)); err != nil {
		log.Fatal().Err(err).Msg("invalid evict_cron")
	}
	scheduler.Start()
	go func() {
		if err := scheduler.RunNow(shutdownCtx, app.JobCatalogWarm); err != nil {
			log.Warn().Err(err).Msg("initial catalog warm-up failed")
		}
	}()

	srv := httpapi.NewServer(log, httpapi.Services{
		MyList:   app.NewMyListService(kv, bus, log),
		Liked:    app.NewLikedService(kv, bus, log),
		Catalog:  catalog,
		Cache:    cache,
		Episodes: app.NewEpisodeService(catalog),
		Showcase: showcase,
		Browse:   browse,
		Bus:      bus,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
	// ferme les flux SSE avant Shutdown, qui attend la fin des requêtes
	bus.Close()
	_ = httpServer.Shutdown(ctx)
	log.Info().Msg("bye")
}
