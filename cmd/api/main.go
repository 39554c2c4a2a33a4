package main

import (
  "fmt"
  "os"
  "github.com/rarchives/ir/internal/app"
  "github.com/rarchives/ir/internal/cache"
  "github.com/rarchives/ir/internal/db"
  "github.com/rarchives/ir/internal/fetch"
  "github.com/rarchives/ir/internal/handlers"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/media"
  "github.com/rarchives/ir/internal/middleware"
  "github.com/rarchives/ir/internal/repos"
  "github.com/rarchives/ir/internal/server"
  "github.com/rarchives/ir/internal/services"
  "github.com/rarchives/ir/internal/urls"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  cfg := app.LoadConfig(log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  postRepo := repos.NewPostRepo(thePG, log)
  commentRepo := repos.NewCommentRepo(thePG, log)
  imageRepo := repos.NewImageRepo(thePG, log)
  videoRepo := repos.NewVideoRepo(thePG, log)
  albumRepo := repos.NewAlbumRepo(thePG, log)
  searchRepo := repos.NewSearchRepo(thePG, log)

  // Cache
  var searchCache cache.Cache
  if cfg.CacheBackend == "redis" {
    searchCache, err = cache.NewRedis(cfg.RedisAddr, cfg.CachePrefix, log)
    if err != nil {
      log.Warn("Redis unavailable, falling back to in-process cache", "error", err)
      searchCache = cache.NewMemory()
    }
  } else {
    searchCache = cache.NewMemory()
  }
  defer searchCache.Close()

  // Media tooling
  fetcher, err := fetch.New(cfg.HTTPProxy, cfg.FetchTimeout, log)
  if err != nil {
    log.Error("Fetcher init failed", "error", err)
    os.Exit(1)
  }
  extractor := media.NewExtractor(cfg.ThumbSize, log)
  resolver := urls.NewRedditResolver(log)

  // Services
  log.Info("Setting up Services from main...")
  searchService := services.NewSearchService(
    imageRepo, videoRepo, postRepo, commentRepo, albumRepo, searchRepo,
    fetcher, extractor, resolver, cfg.StaticRoot, log,
  )

  // Handlers
  log.Info("Setting up Handlers from main...")
  searchHandler := handlers.NewSearchHandler(searchService, searchCache)
  uploadHandler := handlers.NewUploadHandler(searchService)
  statusHandler := handlers.NewStatusHandler(searchService, searchCache)
  subredditsHandler := handlers.NewSubredditsHandler(searchService, searchCache)
  videoThumbsHandler := handlers.NewVideoThumbsHandler(searchService, searchCache)
  indexHandler := handlers.NewIndexHandler(cfg.StaticRoot, cfg.NSFW)
  requestLog := middleware.NewRequestLogMiddleware(log)

  // Router
  router := server.NewRouter(server.RouterConfig{
    SearchHandler:      searchHandler,
    UploadHandler:      uploadHandler,
    StatusHandler:      statusHandler,
    SubredditsHandler:  subredditsHandler,
    VideoThumbsHandler: videoThumbsHandler,
    IndexHandler:       indexHandler,
    RequestLog:         requestLog,
    StaticRoot:         cfg.StaticRoot,
  })

  log.Info("Starting API server", "addr", cfg.HTTPAddr)
  if err := router.Run(cfg.HTTPAddr); err != nil {
    log.Error("Server exited", "error", err)
    os.Exit(1)
  }
}
