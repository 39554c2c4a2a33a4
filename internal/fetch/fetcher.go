package fetch

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rarchives/ir/internal/logger"
)

// ErrNotFound marks a non-200 response whose body carries the upstream
// "404" marker; callers skip these silently.
var ErrNotFound = errors.New("resource not found")

const truncationRetries = 3

// Fetcher downloads media bytes through the outbound proxy. Upstream
// hosts are heterogeneous and frequently misconfigured, so peer
// verification is off and the timeout is long. Each ingest worker owns
// its own Fetcher so connection pools are never shared across workers.
type Fetcher struct {
	client *http.Client
	log    *logger.Logger
}

func New(proxyAddr string, timeout time.Duration, baseLog *logger.Logger) (*Fetcher, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	if proxyAddr != "" {
		proxyURL, err := url.Parse(proxyAddr)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: baseLog.With("service", "Fetcher"),
	}, nil
}

// Download fetches the full body at rawURL. Transport-level truncation
// ("transfer closed" mid-body) retries up to three times; any other
// non-200 either maps to ErrNotFound (body contains "404") or surfaces
// annotated with the status code.
func (f *Fetcher) Download(rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= truncationRetries; attempt++ {
		body, err := f.downloadOnce(rawURL)
		if err == nil {
			return body, nil
		}
		if !isTruncation(err) {
			return nil, err
		}
		lastErr = err
		f.log.Warn("Transfer truncated, retrying", "url", rawURL, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("download %s: %w", rawURL, lastErr)
}

func (f *Fetcher) downloadOnce(rawURL string) ([]byte, error) {
	resp, err := f.client.Get(rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if strings.Contains(string(body), "404") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("HTTP%d fetching %s", resp.StatusCode, rawURL)
	}
	return body, nil
}

func isTruncation(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "transfer closed")
}
