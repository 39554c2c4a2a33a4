package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rarchives/ir/internal/logger"
)

func testFetcher(t *testing.T) *Fetcher {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	f, err := New("", 5*time.Second, log)
	if err != nil {
		t.Fatalf("fetcher: %v", err)
	}
	return f
}

func TestDownloadOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "payload-bytes")
	}))
	defer srv.Close()

	body, err := testFetcher(t).Download(srv.URL)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(body) != "payload-bytes" {
		t.Fatalf("body = %q", body)
	}
}

func TestDownloadNotFoundBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		fmt.Fprint(w, "<html>error 404: gone</html>")
	}))
	defer srv.Close()

	_, err := testFetcher(t).Download(srv.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadErrorAnnotatedWithStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream broke")
	}))
	defer srv.Close()

	_, err := testFetcher(t).Download(srv.URL)
	if err == nil || !strings.Contains(err.Error(), "HTTP502") {
		t.Fatalf("expected HTTP502 annotation, got %v", err)
	}
}

func TestDownloadRetriesTruncation(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Advertise more bytes than we send, then drop the
			// connection so the client sees a truncated body.
			w.Header().Set("Content-Length", "100")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "short")
			if fl, ok := w.(http.Flusher); ok {
				fl.Flush()
			}
			if hj, ok := w.(http.Hijacker); ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		fmt.Fprint(w, "full body")
	}))
	defer srv.Close()

	body, err := testFetcher(t).Download(srv.URL)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(body) != "full body" {
		t.Fatalf("body = %q", body)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}
