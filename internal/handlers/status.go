package handlers

import (
  "encoding/json"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/rarchives/ir/internal/cache"
  "github.com/rarchives/ir/internal/services"
)

type StatusHandler struct {
  searchService   *services.SearchService
  cache           cache.Cache
}

func NewStatusHandler(searchService *services.SearchService, c cache.Cache) *StatusHandler {
  return &StatusHandler{searchService: searchService, cache: c}
}

// Status reports per-table row counts. Counting the frame table is a
// full scan on a big corpus, so the result is cached.
func (sh *StatusHandler) Status(c *gin.Context) {
  const key = "status"
  if cached, ok := sh.cache.Get(c.Request.Context(), key); ok {
    c.Data(http.StatusOK, "application/json", []byte(cached))
    return
  }

  counts, err := sh.searchService.Status(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  raw, err := json.Marshal(gin.H{"status": counts})
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  sh.cache.Set(c.Request.Context(), key, string(raw), cache.StatusTTL)
  c.Data(http.StatusOK, "application/json", raw)
}
