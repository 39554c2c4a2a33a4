package handlers

import (
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "testing"
  "github.com/gin-gonic/gin"
)

func videoThumbsRouter(t *testing.T, videos *stubVideoRepo) *gin.Engine {
  t.Helper()
  svc, c := newTestService(testDeps{videos: videos})
  router := gin.New()
  router.GET("/video_thumbs/:id", NewVideoThumbsHandler(svc, c).VideoThumbsByID)
  return router
}

func TestVideoThumbsByIDListsFrameIDs(t *testing.T) {
  router := videoThumbsRouter(t, &stubVideoRepo{
    frameIDs: map[int64][]int64{7: {31, 32, 33}},
  })

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/video_thumbs/7", nil)
  router.ServeHTTP(rec, req)

  var body struct {
    Thumbs []int64 `json:"thumbs"`
  }
  if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
    t.Fatalf("unmarshal: %v", err)
  }
  if len(body.Thumbs) != 3 || body.Thumbs[0] != 31 || body.Thumbs[2] != 33 {
    t.Fatalf("thumbs = %v, want [31 32 33]", body.Thumbs)
  }
}

func TestVideoThumbsByIDUnknownVideoEmptyList(t *testing.T) {
  router := videoThumbsRouter(t, &stubVideoRepo{})

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/video_thumbs/999", nil)
  router.ServeHTTP(rec, req)

  var body map[string]json.RawMessage
  if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
    t.Fatalf("unmarshal: %v", err)
  }
  if _, ok := body["error"]; ok {
    t.Fatalf("unknown video should not error: %s", rec.Body.String())
  }
  if string(body["thumbs"]) != "[]" {
    t.Fatalf("thumbs = %s, want []", body["thumbs"])
  }
}

func TestVideoThumbsByIDBadID(t *testing.T) {
  router := videoThumbsRouter(t, &stubVideoRepo{})

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodGet, "/video_thumbs/nope", nil)
  router.ServeHTTP(rec, req)

  var body struct {
    Error string `json:"error"`
  }
  if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
    t.Fatalf("unmarshal: %v", err)
  }
  if body.Error == "" {
    t.Fatalf("non-numeric id should report an error")
  }
}
