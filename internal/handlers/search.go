package handlers

import (
  "encoding/json"
  "net/http"
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/rarchives/ir/internal/cache"
  "github.com/rarchives/ir/internal/services"
  "github.com/rarchives/ir/internal/types"
)

// SearchHandler serves /search. Failures are part of the payload, not
// the status line: clients always get 200 with an error field, the way
// the frontend expects.
type SearchHandler struct {
  searchService   *services.SearchService
  cache           cache.Cache
}

func NewSearchHandler(searchService *services.SearchService, c cache.Cache) *SearchHandler {
  return &SearchHandler{searchService: searchService, cache: c}
}

func (sh *SearchHandler) Search(c *gin.Context) {
  key := "search:" + c.Request.URL.RawQuery
  if cached, ok := sh.cache.Get(c.Request.Context(), key); ok {
    c.Data(http.StatusOK, "application/json", []byte(cached))
    return
  }

  // Album searches answer with their own {url, images} shape; every
  // other term shares the hits envelope.
  if album := c.Query("album"); album != "" {
    albumResults, err := sh.searchService.SearchAlbum(c.Request.Context(), album)
    if err != nil {
      c.JSON(http.StatusOK, gin.H{"error": err.Error()})
      return
    }
    raw, err := json.Marshal(albumResults)
    if err != nil {
      c.JSON(http.StatusOK, gin.H{"error": err.Error()})
      return
    }
    sh.cache.Set(c.Request.Context(), key, string(raw), cache.SearchTTL)
    c.Data(http.StatusOK, "application/json", raw)
    return
  }

  results := sh.dispatch(c)
  raw, err := json.Marshal(results)
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  if results.Error == "" {
    sh.cache.Set(c.Request.Context(), key, string(raw), cache.SearchTTL)
  }
  c.Data(http.StatusOK, "application/json", raw)
}

func (sh *SearchHandler) dispatch(c *gin.Context) types.SearchResults {
  ctx := c.Request.Context()
  d := intQuery(c, "d", 0)
  f := intQuery(c, "f", services.DefaultMinFrames)

  if img := c.Query("img"); img != "" {
    return sh.searchService.SearchImageURL(ctx, img, d)
  }
  if vid := c.Query("vid"); vid != "" {
    return sh.searchService.SearchVideoURL(ctx, vid, d, f)
  }
  if user := c.Query("user"); user != "" {
    return sh.searchService.SearchUser(ctx, user)
  }
  if text := c.Query("text"); text != "" {
    return sh.searchService.SearchText(ctx, text)
  }
  return types.SearchResults{Hits: []types.SearchHit{}, Error: "no search term given"}
}

func intQuery(c *gin.Context, name string, fallback int) int {
  raw := c.Query(name)
  if raw == "" {
    return fallback
  }
  n, err := strconv.Atoi(raw)
  if err != nil {
    return fallback
  }
  return n
}
