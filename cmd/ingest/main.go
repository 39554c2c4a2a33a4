package main

import (
  "context"
  "fmt"
  "os"
  "os/signal"
  "syscall"
  "github.com/rarchives/ir/internal/app"
  "github.com/rarchives/ir/internal/db"
  "github.com/rarchives/ir/internal/ingest"
  "github.com/rarchives/ir/internal/logger"
  "github.com/rarchives/ir/internal/media"
  "github.com/rarchives/ir/internal/repos"
  "github.com/rarchives/ir/internal/urls"
  "github.com/rarchives/ir/internal/utils"
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

  subs, err := utils.LoadList(cfg.SubsFile)
  if err != nil {
    log.Error("Failed to load subreddit list", "file", cfg.SubsFile, "error", err)
    os.Exit(1)
  }
  if len(subs) == 0 {
    log.Error("Subreddit list is empty", "file", cfg.SubsFile)
    os.Exit(1)
  }

  skipRules, err := urls.LoadSkipRules(cfg.SkipFile)
  if err != nil {
    log.Error("Failed to load skip rules", "file", cfg.SkipFile, "error", err)
    os.Exit(1)
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Error("Postgres auto migration failed", "error", err)
    os.Exit(1)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  postRepo := repos.NewPostRepo(thePG, log)
  commentRepo := repos.NewCommentRepo(thePG, log)
  imageRepo := repos.NewImageRepo(thePG, log)
  videoRepo := repos.NewVideoRepo(thePG, log)
  albumRepo := repos.NewAlbumRepo(thePG, log)
  mediaURLRepo := repos.NewMediaURLRepo(thePG, log)

  // Media tooling
  extractor := media.NewExtractor(cfg.ThumbSize, log)
  ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
  defer stop()
  if err := extractor.AssertReady(ctx); err != nil {
    log.Error("Media tooling missing", "error", err)
    os.Exit(1)
  }
  thumbs := media.NewThumbStore(cfg.StaticRoot, cfg.ThumbSize, log)
  expander := urls.NewGalleryDLExpander(log)
  resolver := urls.NewRedditResolver(log)

  // Pipeline
  pipeline := ingest.NewPipeline(
    postRepo, commentRepo, imageRepo, videoRepo, albumRepo, mediaURLRepo,
    extractor, expander, resolver, thumbs, skipRules, log,
  )

  // Consumer
  consumer := ingest.NewConsumer(
    cfg.AMQPURL, subs, cfg.WorkerCount, cfg.HTTPProxy, cfg.FetchTimeout,
    pipeline, log,
  )

  log.Info("Starting ingest", "subs", len(subs), "workers", cfg.WorkerCount)
  if err := consumer.Run(ctx); err != nil && err != context.Canceled {
    log.Error("Consumer exited", "error", err)
    os.Exit(1)
  }
  log.Info("Ingest stopped")
}
