package handlers

import (
  "encoding/json"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/rarchives/ir/internal/cache"
  "github.com/rarchives/ir/internal/services"
)

type SubredditsHandler struct {
  searchService   *services.SearchService
  cache           cache.Cache
}

func NewSubredditsHandler(searchService *services.SearchService, c cache.Cache) *SubredditsHandler {
  return &SubredditsHandler{searchService: searchService, cache: c}
}

func (sh *SubredditsHandler) Subreddits(c *gin.Context) {
  const key = "subreddits"
  if cached, ok := sh.cache.Get(c.Request.Context(), key); ok {
    c.Data(http.StatusOK, "application/json", []byte(cached))
    return
  }

  subs, err := sh.searchService.Subreddits(c.Request.Context())
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  payload := gin.H{"subreddits": subs}
  raw, err := json.Marshal(payload)
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  sh.cache.Set(c.Request.Context(), key, string(raw), cache.ListingTTL)
  c.Data(http.StatusOK, "application/json", raw)
}
