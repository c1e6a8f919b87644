package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/stilmark/fashion-scraper/internal/config"
	"github.com/stilmark/fashion-scraper/internal/database"
	"github.com/stilmark/fashion-scraper/internal/embeddings"
	"github.com/stilmark/fashion-scraper/internal/fetch"
	"github.com/stilmark/fashion-scraper/internal/models"
	"github.com/stilmark/fashion-scraper/internal/scraper"
	"github.com/stilmark/fashion-scraper/internal/server"
	syncengine "github.com/stilmark/fashion-scraper/internal/sync"
	"github.com/stilmark/fashion-scraper/pkg/logger"
)

func main() {
	var (
		sitesFlag  = flag.String("sites", "all", "Comma-separated site names to scrape, or 'all'")
		configPath = flag.String("config", "sites.yaml", "Path to the sites configuration file")
		doSync     = flag.Bool("sync", false, "Sync scraped products to the database")
		testDB     = flag.Bool("test-db", false, "Test the database connection and exit")
		outPath    = flag.String("out", "", "Write the scraped batch to a JSON file")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info().Msg("starting fashion catalog scraper")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	var store *database.ProductStore
	if *doSync || *testDB {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to database")
			os.Exit(1)
		}
		defer db.Close()
		store = database.NewProductStore(db)
	}

	if *testDB {
		count, err := store.Count(ctx, "")
		if err != nil {
			log.Error().Err(err).Msg("database connection test failed")
			os.Exit(1)
		}
		log.Info().Int("products", count).Msg("database connection test passed")
		return
	}

	sites, err := config.LoadSites(*configPath)
	if err != nil {
		log.Error().Err(err).Str("path", *configPath).Msg("failed to load sites config")
		os.Exit(1)
	}

	var cache *embeddings.VectorCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		cache = embeddings.NewVectorCache(rdb, cfg.Redis.CacheTTL, logger.For(log, "embedding_cache"))
	}

	embedder := embeddings.NewService(embeddings.Options{
		BaseURL:     cfg.Embeddings.BaseURL,
		Model:       cfg.Embeddings.Model,
		Dimension:   cfg.Embeddings.Dimension,
		ChunkSize:   cfg.Embeddings.ChunkSize,
		MaxDocChars: cfg.Embeddings.MaxDocChars,
		Timeout:     cfg.Embeddings.Timeout,
		UserAgent:   cfg.Fetch.UserAgent,
	}, cache, logger.For(log, "embeddings"))

	stats := &scraper.Stats{}
	if cfg.Server.StatusAddr != "" {
		server.NewStatusServer(stats, logger.For(log, "status_server")).Start(cfg.Server.StatusAddr)
	}

	selected := selectSites(sites, *sitesFlag)
	if len(selected) == 0 {
		log.Error().Str("sites", *sitesFlag).Msg("no matching sites in config")
		os.Exit(1)
	}

	total := 0
	var exportBatch []models.Product
	syncFailed := false

	for name, site := range selected {
		log.Info().Str("site", name).Msg("scraping site")

		fetcher := fetch.NewClient(cfg.Fetch.UserAgent, cfg.Fetch.Timeout, site.Delay(), logger.For(log, "fetch"))
		s, err := scraper.NewSiteScraper(site, fetcher, embedder, stats, logger.For(log, "scraper"))
		if err != nil {
			log.Error().Err(err).Str("site", name).Msg("invalid site configuration")
			os.Exit(1)
		}

		products, err := s.Run(ctx)
		if err != nil {
			log.Error().Err(err).Str("site", name).Msg("scrape aborted")
			break
		}
		total += len(products)
		exportBatch = append(exportBatch, products...)

		if *doSync {
			engine := syncengine.NewEngine(store, site.IdentityKey, logger.For(log, "sync"))
			if err := engine.Sync(ctx, site.Source, products); err != nil {
				log.Error().Err(err).Str("site", name).Msg("sync failed")
				syncFailed = true
				continue
			}
			stats.Synced.Add(int64(len(products)))

			if count, err := store.Count(ctx, site.Source); err == nil {
				log.Info().Str("source", site.Source).Int("stored", count).Msg("sync complete")
			}
		}
	}

	if *outPath != "" {
		if err := exportJSON(*outPath, exportBatch); err != nil {
			log.Error().Err(err).Str("path", *outPath).Msg("failed to write export file")
		}
	}

	snap := stats.Snapshot()
	log.Info().
		Int("total", total).
		Int64("attempted", snap.Attempted).
		Int64("dropped", snap.Dropped).
		Int64("skipped", snap.Skipped).
		Int64("synced", snap.Synced).
		Msg("scraping completed")

	if syncFailed {
		os.Exit(1)
	}
}

func selectSites(sites map[string]*config.Site, flagValue string) map[string]*config.Site {
	if flagValue == "all" || flagValue == "" {
		return sites
	}

	selected := make(map[string]*config.Site)
	for _, name := range strings.Split(flagValue, ",") {
		name = strings.TrimSpace(name)
		if site, ok := sites[name]; ok {
			selected[name] = site
		}
	}
	return selected
}

func exportJSON(path string, products []models.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
