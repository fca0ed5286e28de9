// Package verify checks the outbound links of a rendered catalog. Pages are
// scanned for external URLs, each unique URL is fetched once with bounded
// concurrency and retries, and results are cached in NATS JetStream when a
// server is configured so periodic runs stay cheap.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/metrics"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/retry"
)

// userAgent identifies the checker to remote servers.
const userAgent = "patterns-linkcheck/1.0"

// ErrAlreadyRunning is returned when a verification run overlaps another.
var ErrAlreadyRunning = errors.New("verification already running")

// ResultStore caches check results between runs and carries broken-link
// events to subscribers. Implemented by NATSStore.
type ResultStore interface {
	Get(ctx context.Context, url string) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
	Fresh(entry *CacheEntry) bool
	PublishBroken(ctx context.Context, event *BrokenLink) error
	Close() error
}

// Result is the outcome of checking one URL.
type Result struct {
	URL    string   `json:"url"`
	Status int      `json:"status"`
	OK     bool     `json:"ok"`
	Cached bool     `json:"cached"`
	Error  string   `json:"error,omitempty"`
	Pages  []string `json:"pages"`
}

// Report summarizes a verification run.
type Report struct {
	RunID    string        `json:"run_id"`
	Pages    int           `json:"pages"`
	Checked  int           `json:"checked"`
	Cached   int           `json:"cached"`
	Skipped  int           `json:"skipped"`
	Broken   []Result      `json:"broken"`
	Duration time.Duration `json:"duration"`
}

// Service runs link verification over a rendered site directory.
type Service struct {
	cfg      manifest.Verify
	store    ResultStore
	client   *http.Client
	policy   retry.Policy
	recorder metrics.Recorder
	bus      *events.Bus
	log      *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewService builds a checker from manifest settings. A NATS store is wired
// when a server URL is configured; recorder and bus may be nil.
func NewService(cfg manifest.Verify, recorder metrics.Recorder, bus *events.Bus) (*Service, error) {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	var store ResultStore
	if cfg.NATS.URL != "" {
		natsStore, err := OpenNATSStore(cfg.NATS, cfg.CacheTTL.Std())
		if err != nil {
			return nil, err
		}
		store = natsStore
	}

	retries := cfg.Attempts - 1
	if retries < 0 {
		retries = 0
	}

	// Cloning the default transport keeps HTTP_PROXY handling intact.
	transport := http.DefaultTransport.(*http.Transport).Clone()

	return &Service{
		cfg:   cfg,
		store: store,
		client: &http.Client{
			Timeout:   cfg.Timeout.Std(),
			Transport: transport,
		},
		policy:   retry.NewPolicy(retry.BackoffLinear, time.Second, 10*time.Second, retries),
		recorder: recorder,
		bus:      bus,
		log:      slog.Default(),
	}, nil
}

// Run verifies every external link referenced by HTML files under siteDir.
func (s *Service) Run(ctx context.Context, siteDir string) (*Report, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	runID := uuid.NewString()
	s.recorder.SetVerifyConcurrency(s.cfg.Concurrency)

	pages, targets, skipped, err := collectLinks(siteDir)
	if err != nil {
		return nil, err
	}

	s.log.Info("link verification started",
		logfields.BuildID(runID),
		slog.Int("pages", pages),
		slog.Int("urls", len(targets)))

	urls := make([]string, 0, len(targets))
	for u := range targets {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	var (
		wg      sync.WaitGroup
		resMu   sync.Mutex
		results = make([]Result, 0, len(urls))
		sem     = make(chan struct{}, s.cfg.Concurrency)
	)

	for _, u := range urls {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(u string, pages []string) {
			defer wg.Done()
			defer func() { <-sem }()

			res := s.checkOne(ctx, u, pages)
			resMu.Lock()
			results = append(results, res)
			resMu.Unlock()
		}(u, targets[u])
	}
	wg.Wait()

	report := &Report{
		RunID:    runID,
		Pages:    pages,
		Skipped:  skipped,
		Duration: time.Since(start),
	}
	for _, res := range results {
		switch {
		case res.Cached:
			report.Cached++
		default:
			report.Checked++
		}
		if !res.OK {
			report.Broken = append(report.Broken, res)
		}
	}
	sort.Slice(report.Broken, func(i, j int) bool {
		return report.Broken[i].URL < report.Broken[j].URL
	})

	if s.bus != nil {
		err := s.bus.Publish(ctx, events.Event{
			BuildID: runID,
			Type:    events.TypeVerifyCompleted,
			Payload: events.VerifyCompleted{
				Checked: report.Checked,
				Broken:  len(report.Broken),
				Cached:  report.Cached,
			},
		})
		if err != nil {
			s.log.Warn("publish verify event failed", logfields.Error(err))
		}
	}

	s.log.Info("link verification completed",
		logfields.BuildID(runID),
		slog.Int("checked", report.Checked),
		slog.Int("cached", report.Cached),
		slog.Int("broken", len(report.Broken)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))

	return report, nil
}

// Close releases the result store, if any.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// collectLinks walks the rendered site and gathers checkable URLs with the
// pages that reference them.
func collectLinks(siteDir string) (pages int, targets map[string][]string, skipped int, err error) {
	targets = make(map[string][]string)

	err = filepath.WalkDir(siteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}

		rel, err := filepath.Rel(siteDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages++

		links, err := ExtractLinks(path)
		if err != nil {
			return fmt.Errorf("extract links from %s: %w", rel, err)
		}

		seen := make(map[string]bool, len(links))
		for _, link := range links {
			if !ShouldCheck(link) {
				skipped++
				continue
			}
			if seen[link.URL] {
				continue
			}
			seen[link.URL] = true
			targets[link.URL] = append(targets[link.URL], rel)
		}
		return nil
	})
	if err != nil {
		return 0, nil, 0, fmt.Errorf("scan site %s: %w", siteDir, err)
	}
	return pages, targets, skipped, nil
}

// checkOne resolves a single URL through cache, HTTP, and bookkeeping.
func (s *Service) checkOne(ctx context.Context, url string, pages []string) Result {
	start := time.Now()

	var prior *CacheEntry
	if s.store != nil {
		cached, err := s.store.Get(ctx, url)
		if err != nil {
			s.log.Debug("cache lookup failed", logfields.URL(url), logfields.Error(err))
		} else {
			prior = cached
		}
		if s.store.Fresh(prior) {
			s.recorder.ObserveLinkCheck(time.Since(start), "cached")
			return Result{URL: url, Status: prior.Status, OK: true, Cached: true, Pages: pages}
		}
	}

	status, checkErr := s.check(ctx, url)

	entry := &CacheEntry{
		URL:       url,
		Status:    status,
		OK:        checkErr == nil,
		CheckedAt: time.Now(),
	}
	if checkErr != nil {
		entry.Error = checkErr.Error()
		entry.Failures = 1
		if prior != nil {
			entry.Failures = prior.Failures + 1
		}
	}

	if s.store != nil {
		if err := s.store.Put(ctx, entry); err != nil {
			s.log.Warn("cache update failed", logfields.URL(url), logfields.Error(err))
		}
		if checkErr != nil {
			event := &BrokenLink{
				URL:       url,
				Status:    status,
				Error:     entry.Error,
				Pages:     pages,
				Failures:  entry.Failures,
				CheckedAt: entry.CheckedAt,
			}
			if err := s.store.PublishBroken(ctx, event); err != nil {
				s.log.Error("publish broken link failed", logfields.URL(url), logfields.Error(err))
			}
		}
	}

	result := "ok"
	if checkErr != nil {
		result = "broken"
		s.log.Warn("broken link",
			logfields.URL(url),
			slog.Int("status", status),
			slog.String("pages", strings.Join(pages, ", ")),
			logfields.Error(checkErr))
	}
	s.recorder.ObserveLinkCheck(time.Since(start), result)

	res := Result{URL: url, Status: status, OK: checkErr == nil, Pages: pages}
	if checkErr != nil {
		res.Error = checkErr.Error()
	}
	return res
}

// check fetches a URL, retrying transport errors and server-side failures
// per the service policy. Definitive client errors fail immediately.
func (s *Service) check(ctx context.Context, url string) (int, error) {
	var status int
	err := retry.Do(ctx, s.policy, func() error {
		st, err := s.request(ctx, url)
		status = st
		if err != nil {
			return err
		}
		if st >= 500 || st == http.StatusTooManyRequests {
			return fmt.Errorf("HTTP %d: %s", st, http.StatusText(st))
		}
		return nil
	})
	if err != nil {
		return status, err
	}
	if status >= 400 && !authStatus(status) {
		return status, fmt.Errorf("HTTP %d: %s", status, http.StatusText(status))
	}
	return status, nil
}

// request performs a single HEAD request and discards the response body.
func (s *Service) request(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// authStatus reports status codes that mean the URL exists but wants
// credentials or a different method. Those links are not broken.
func authStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}
