package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "github.com/rarchives/ir/internal/handlers"
  "github.com/rarchives/ir/internal/middleware"
)

type RouterConfig struct {
  SearchHandler      *handlers.SearchHandler
  UploadHandler      *handlers.UploadHandler
  StatusHandler      *handlers.StatusHandler
  SubredditsHandler  *handlers.SubredditsHandler
  VideoThumbsHandler *handlers.VideoThumbsHandler
  IndexHandler       *handlers.IndexHandler
  RequestLog         *middleware.RequestLogMiddleware
  StaticRoot         string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.New()
  router.Use(gin.Recovery())
  router.Use(cfg.RequestLog.Handler())

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins:     []string{"*"},
    AllowMethods:     []string{"GET", "POST", "OPTIONS"},
    AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
    AllowCredentials: false,
  }))

  router.GET("/", cfg.IndexHandler.Index)
  router.GET("/favicon.ico", cfg.IndexHandler.Favicon)
  router.GET("/healthcheck", cfg.IndexHandler.Health)

  router.GET("/search", cfg.SearchHandler.Search)
  router.POST("/upload", cfg.UploadHandler.Upload)
  router.GET("/status", cfg.StatusHandler.Status)
  router.GET("/subreddits", cfg.SubredditsHandler.Subreddits)
  router.GET("/video_thumbs", cfg.VideoThumbsHandler.VideoThumbs)
  router.GET("/video_thumbs/:id", cfg.VideoThumbsHandler.VideoThumbsByID)

  // Thumbnails and frontend assets.
  router.Static("/static", cfg.StaticRoot)

  return router
}
