package handlers

import (
  "encoding/json"
  "net/http"
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/rarchives/ir/internal/cache"
  "github.com/rarchives/ir/internal/services"
)

const defaultVideoThumbCount = 12

type VideoThumbsHandler struct {
  searchService   *services.SearchService
  cache           cache.Cache
}

func NewVideoThumbsHandler(searchService *services.SearchService, c cache.Cache) *VideoThumbsHandler {
  return &VideoThumbsHandler{searchService: searchService, cache: c}
}

// VideoThumbs lists the latest indexed videos with their frame
// thumbnail paths, for the landing page.
func (vh *VideoThumbsHandler) VideoThumbs(c *gin.Context) {
  const key = "video_thumbs"
  if cached, ok := vh.cache.Get(c.Request.Context(), key); ok {
    c.Data(http.StatusOK, "application/json", []byte(cached))
    return
  }

  thumbs, err := vh.searchService.RecentVideoThumbs(c.Request.Context(), defaultVideoThumbCount)
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  payload := gin.H{"videos": thumbs}
  raw, err := json.Marshal(payload)
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  vh.cache.Set(c.Request.Context(), key, string(raw), cache.VideoThumbTTL)
  c.Data(http.StatusOK, "application/json", raw)
}

// VideoThumbsByID lists the frame ids of one indexed video; thumbnail
// paths follow from the ids.
func (vh *VideoThumbsHandler) VideoThumbsByID(c *gin.Context) {
  id, err := strconv.ParseInt(c.Param("id"), 10, 64)
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": "invalid video id"})
    return
  }
  frameIDs, err := vh.searchService.VideoFrameIDs(c.Request.Context(), id)
  if err != nil {
    c.JSON(http.StatusOK, gin.H{"error": err.Error()})
    return
  }
  c.JSON(http.StatusOK, gin.H{"thumbs": frameIDs})
}
