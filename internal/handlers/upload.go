package handlers

import (
  "net/http"
  "strconv"
  "github.com/gin-gonic/gin"
  "github.com/rarchives/ir/internal/services"
)

type UploadHandler struct {
  searchService   *services.SearchService
}

func NewUploadHandler(searchService *services.SearchService) *UploadHandler {
  return &UploadHandler{searchService: searchService}
}

// Upload runs an image search on posted bytes. The form contract is
// fname=image with data carrying the data URL a FileReader produces;
// a JSON body {image, d} is accepted as well. Uploads are never
// cached: the same bytes rarely come twice.
func (uh *UploadHandler) Upload(c *gin.Context) {
  var image string
  d := 0
  if c.PostForm("fname") == "image" {
    image = c.PostForm("data")
    if raw := c.PostForm("d"); raw != "" {
      if n, err := strconv.Atoi(raw); err == nil {
        d = n
      }
    }
  } else {
    var body struct {
      Image string `json:"image"`
      D     int    `json:"d"`
    }
    if err := c.ShouldBindJSON(&body); err != nil {
      c.JSON(http.StatusOK, gin.H{"error": err.Error()})
      return
    }
    image = body.Image
    d = body.D
  }
  if image == "" {
    c.JSON(http.StatusOK, gin.H{"error": "no image given"})
    return
  }
  results := uh.searchService.SearchUpload(c.Request.Context(), image, d)
  c.JSON(http.StatusOK, results)
}
