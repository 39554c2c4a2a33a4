package handlers

import (
  "net/http"
  "path/filepath"
  "github.com/gin-gonic/gin"
)

type IndexHandler struct {
  staticRoot      string
  nsfw            bool
}

func NewIndexHandler(staticRoot string, nsfw bool) *IndexHandler {
  return &IndexHandler{staticRoot: staticRoot, nsfw: nsfw}
}

func (ih *IndexHandler) Index(c *gin.Context) {
  c.File(filepath.Join(ih.staticRoot, "index.html"))
}

// Favicon switches icons depending on whether the deploy indexes
// adult subreddits, so tabs are distinguishable.
func (ih *IndexHandler) Favicon(c *gin.Context) {
  name := "favicon.ico"
  if ih.nsfw {
    name = "favicon-nsfw.ico"
  }
  c.File(filepath.Join(ih.staticRoot, name))
}

func (ih *IndexHandler) Health(c *gin.Context) {
  c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
