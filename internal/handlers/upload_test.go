package handlers

import (
  "bytes"
  "encoding/base64"
  "encoding/json"
  "image"
  "image/color"
  "image/png"
  "net/http"
  "net/http/httptest"
  "net/url"
  "strings"
  "testing"
  "github.com/gin-gonic/gin"
)

func uploadRouter(t *testing.T) *gin.Engine {
  t.Helper()
  svc, _ := newTestService(testDeps{})
  router := gin.New()
  router.POST("/upload", NewUploadHandler(svc).Upload)
  return router
}

func testDataURL(t *testing.T) string {
  t.Helper()
  img := image.NewRGBA(image.Rect(0, 0, 16, 16))
  for x := 0; x < 16; x++ {
    for y := 0; y < 16; y++ {
      img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), A: 255})
    }
  }
  var buf bytes.Buffer
  if err := png.Encode(&buf, img); err != nil {
    t.Fatalf("encode png: %v", err)
  }
  return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestUploadAcceptsFormPost(t *testing.T) {
  router := uploadRouter(t)

  form := url.Values{}
  form.Set("fname", "image")
  form.Set("data", testDataURL(t))
  form.Set("d", "4")

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(form.Encode()))
  req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
  router.ServeHTTP(rec, req)

  var body map[string]json.RawMessage
  if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
    t.Fatalf("unmarshal: %v", err)
  }
  if raw, ok := body["error"]; ok && string(raw) != "null" {
    t.Fatalf("form upload failed: %s", rec.Body.String())
  }
  if string(body["result_count"]) != "0" {
    t.Fatalf("result_count = %s, want 0", body["result_count"])
  }
}

func TestUploadFormWithoutData(t *testing.T) {
  router := uploadRouter(t)

  form := url.Values{}
  form.Set("fname", "image")

  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(form.Encode()))
  req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
  router.ServeHTTP(rec, req)

  var body struct {
    Error string `json:"error"`
  }
  if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
    t.Fatalf("unmarshal: %v", err)
  }
  if body.Error != "no image given" {
    t.Fatalf("error = %q, want %q", body.Error, "no image given")
  }
}

func TestUploadStillAcceptsJSONBody(t *testing.T) {
  router := uploadRouter(t)

  payload, err := json.Marshal(map[string]any{"image": testDataURL(t), "d": 2})
  if err != nil {
    t.Fatalf("marshal: %v", err)
  }
  rec := httptest.NewRecorder()
  req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
  req.Header.Set("Content-Type", "application/json")
  router.ServeHTTP(rec, req)

  var body map[string]json.RawMessage
  if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
    t.Fatalf("unmarshal: %v", err)
  }
  if raw, ok := body["error"]; ok && string(raw) != "null" {
    t.Fatalf("json upload failed: %s", rec.Body.String())
  }
}
