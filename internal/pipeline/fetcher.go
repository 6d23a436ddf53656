package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/polarity/internal/cache"
	"github.com/ppiankov/polarity/internal/model"
	"github.com/ppiankov/polarity/internal/util"
	"github.com/ppiankov/polarity/internal/worker"
)

// ErrRobotsDisallowed is returned when robots.txt forbids downloading a dataset
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

const maxFetchAttempts = 3

// fetchSleepFunc is replaced in tests
var fetchSleepFunc = sleepContext

// sleepContext waits for d or until ctx is done, whichever comes first
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StatusError is a non-2xx HTTP response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Fetcher resolves a dataset source (local path or http(s) URL) to bytes
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots.txt is ignored
	limiter    *worker.Limiter     // nil disables throttling
	cache      cache.Cache         // nil disables caching
	cacheTTL   time.Duration
}

// NewFetcher creates a fetcher from HTTP settings
func NewFetcher(cfg model.HTTPConfig, limiter *worker.Limiter, c cache.Cache, cacheTTL time.Duration) *Fetcher {
	client := util.NewHTTPClient(cfg.Timeout, cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return fmt.Errorf("stopped after 5 redirects")
		}
		return nil
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		limiter:    limiter,
		cache:      c,
		cacheTTL:   cacheTTL,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, client)
	}
	return f
}

// FetchResult is a resolved dataset
type FetchResult struct {
	Data      []byte
	Subject   string
	Location  string // absolute path or final URL
	Remote    bool
	FromCache bool
}

// Resolve reads a local dataset or downloads a remote one
func (f *Fetcher) Resolve(ctx context.Context, source string) (*FetchResult, error) {
	if isRemote(source) {
		return f.fetchRemote(ctx, source)
	}
	return readLocal(source)
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func readLocal(source string) (*FetchResult, error) {
	path, err := ExpandPath(source)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	return &FetchResult{
		Data:     data,
		Subject:  subjectFromPath(path),
		Location: path,
	}, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, rawURL string) (*FetchResult, error) {
	key := cache.CacheKey(rawURL)
	if f.cache != nil {
		if data, ok := f.cache.Get(key); ok {
			slog.Debug("dataset cache hit", "url", rawURL, "bytes", len(data))
			return &FetchResult{
				Data:      data,
				Subject:   extractSubject(rawURL),
				Location:  rawURL,
				Remote:    true,
				FromCache: true,
			}, nil
		}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
		if delay > 0 {
			slog.Debug("honoring crawl delay", "url", rawURL, "delay", delay)
			if err := fetchSleepFunc(ctx, delay); err != nil {
				return nil, fmt.Errorf("crawl delay: %w", err)
			}
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(key, result.Data, f.cacheTTL); err != nil {
			slog.Warn("could not cache dataset", "url", rawURL, "error", err)
		}
	}

	return result, nil
}

// FetchWithRetry downloads rawURL, retrying transient failures with backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	backoff := time.Second

	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < maxFetchAttempts {
			slog.Debug("retrying dataset download", "url", rawURL, "attempt", attempt, "backoff", backoff, "error", err)
			if err := fetchSleepFunc(ctx, backoff); err != nil {
				return nil, fmt.Errorf("retry backoff: %w", err)
			}
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxFetchAttempts, lastErr)
}

// Fetch performs one download
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("dataset exceeds %d bytes", f.maxBytes)
	}

	finalURL := resp.Request.URL.String()
	return &FetchResult{
		Data:     body,
		Subject:  extractSubject(finalURL),
		Location: finalURL,
		Remote:   true,
	}, nil
}

// isRetryableFetchError reports 429, 5xx and transport failures
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= 500
	}

	return strings.HasPrefix(err.Error(), "fetch: ")
}

// ExpandPath resolves a leading ~ and returns an absolute path
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

func subjectFromPath(path string) string {
	base := filepath.Base(path)
	return deslug(strings.TrimSuffix(base, filepath.Ext(base)))
}

// extractSubject turns ".../Amazon_Unlocked_Mobile.csv" into "Amazon Unlocked Mobile"
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}
	return deslug(last)
}

func deslug(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ReplaceAll(s, "-", " ")
}
