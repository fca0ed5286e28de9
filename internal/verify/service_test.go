package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/retry"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func newTestService(t *testing.T, attempts int) *Service {
	t.Helper()
	cfg := manifest.Verify{
		Concurrency: 4,
		Timeout:     manifest.Duration(2 * time.Second),
		Attempts:    attempts,
	}
	svc, err := NewService(cfg, nil, nil)
	require.NoError(t, err)
	svc.policy = retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, attempts-1)
	return svc
}

// newCountingServer serves statuses chosen per path and hit number, and
// returns a hit counter alongside the server.
func newCountingServer(t *testing.T, status func(path string, hit int) int) (*httptest.Server, func(path string) int) {
	t.Helper()
	var mu sync.Mutex
	hits := make(map[string]int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		n := hits[r.URL.Path]
		mu.Unlock()
		w.WriteHeader(status(r.URL.Path, n))
	}))
	t.Cleanup(srv.Close)
	return srv, func(path string) int {
		mu.Lock()
		defer mu.Unlock()
		return hits[path]
	}
}

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
	broken  []*BrokenLink
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*CacheEntry)}
}

func (f *fakeStore) Get(_ context.Context, url string) (*CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[url], nil
}

func (f *fakeStore) Put(_ context.Context, entry *CacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.URL] = entry
	return nil
}

func (f *fakeStore) Fresh(entry *CacheEntry) bool {
	return entry != nil && entry.OK && time.Since(entry.CheckedAt) < time.Hour
}

func (f *fakeStore) PublishBroken(_ context.Context, event *BrokenLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = append(f.broken, event)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func TestRun_ReportsHealthyLinks(t *testing.T) {
	srv, _ := newCountingServer(t, func(string, int) int { return http.StatusOK })

	dir := writeSite(t, map[string]string{
		"index.html": `<body>
<a href="` + srv.URL + `/guide">Guide</a>
<a href="state/stores/">Stores</a>
<a href="#top">Top</a>
</body>`,
		"state/stores/index.html": `<body>
<a href="` + srv.URL + `/guide">Guide</a>
<a href="` + srv.URL + `/api">API</a>
<a href="mailto:team@example.com">Mail</a>
</body>`,
	})

	svc := newTestService(t, 1)
	report, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, 2, report.Pages)
	require.Equal(t, 2, report.Checked)
	require.Equal(t, 0, report.Cached)
	require.Equal(t, 3, report.Skipped)
	require.Empty(t, report.Broken)
	require.NotEmpty(t, report.RunID)
}

func TestRun_FlagsBrokenLinks(t *testing.T) {
	srv, count := newCountingServer(t, func(path string, _ int) int {
		if path == "/missing" {
			return http.StatusNotFound
		}
		return http.StatusOK
	})

	dir := writeSite(t, map[string]string{
		"index.html": `<body>
<a href="` + srv.URL + `/guide">Guide</a>
<a href="` + srv.URL + `/missing">Gone</a>
</body>`,
	})

	svc := newTestService(t, 3)
	report, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, 2, report.Checked)
	require.Len(t, report.Broken, 1)
	require.Equal(t, srv.URL+"/missing", report.Broken[0].URL)
	require.Equal(t, http.StatusNotFound, report.Broken[0].Status)
	require.Contains(t, report.Broken[0].Error, "404")
	require.Equal(t, []string{"index.html"}, report.Broken[0].Pages)

	// Client errors are definitive, retries would not change the answer.
	require.Equal(t, 1, count("/missing"))
}

func TestRun_AuthProtectedLinksAreHealthy(t *testing.T) {
	srv, _ := newCountingServer(t, func(path string, _ int) int {
		switch path {
		case "/private":
			return http.StatusUnauthorized
		case "/forbidden":
			return http.StatusForbidden
		case "/nohead":
			return http.StatusMethodNotAllowed
		}
		return http.StatusOK
	})

	dir := writeSite(t, map[string]string{
		"index.html": `<body>
<a href="` + srv.URL + `/private">Private</a>
<a href="` + srv.URL + `/forbidden">Forbidden</a>
<a href="` + srv.URL + `/nohead">No HEAD</a>
</body>`,
	})

	svc := newTestService(t, 1)
	report, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, 3, report.Checked)
	require.Empty(t, report.Broken)
}

func TestRun_RetriesServerErrors(t *testing.T) {
	srv, count := newCountingServer(t, func(path string, hit int) int {
		if path == "/flaky" && hit <= 2 {
			return http.StatusServiceUnavailable
		}
		return http.StatusOK
	})

	dir := writeSite(t, map[string]string{
		"index.html": `<body><a href="` + srv.URL + `/flaky">Flaky</a></body>`,
	})

	svc := newTestService(t, 3)
	report, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Empty(t, report.Broken)
	require.Equal(t, 3, count("/flaky"))
}

func TestRun_ServerErrorExhaustsRetries(t *testing.T) {
	srv, count := newCountingServer(t, func(string, int) int {
		return http.StatusServiceUnavailable
	})

	dir := writeSite(t, map[string]string{
		"index.html": `<body><a href="` + srv.URL + `/down">Down</a></body>`,
	})

	svc := newTestService(t, 2)
	report, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, report.Broken, 1)
	require.Equal(t, http.StatusServiceUnavailable, report.Broken[0].Status)
	require.Equal(t, 2, count("/down"))
}

func TestRun_UsesFreshCacheEntries(t *testing.T) {
	srv, count := newCountingServer(t, func(string, int) int { return http.StatusOK })

	dir := writeSite(t, map[string]string{
		"index.html": `<body><a href="` + srv.URL + `/guide">Guide</a></body>`,
	})

	store := newFakeStore()
	store.entries[srv.URL+"/guide"] = &CacheEntry{
		URL:       srv.URL + "/guide",
		Status:    http.StatusOK,
		OK:        true,
		CheckedAt: time.Now(),
	}

	svc := newTestService(t, 1)
	svc.store = store

	report, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, 1, report.Cached)
	require.Equal(t, 0, report.Checked)
	require.Equal(t, 0, count("/guide"))
}

func TestRun_RecordsBrokenLinksInStore(t *testing.T) {
	srv, _ := newCountingServer(t, func(string, int) int { return http.StatusNotFound })

	dir := writeSite(t, map[string]string{
		"index.html": `<body><a href="` + srv.URL + `/gone">Gone</a></body>`,
	})

	store := newFakeStore()
	svc := newTestService(t, 1)
	svc.store = store

	_, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	entry := store.entries[srv.URL+"/gone"]
	require.NotNil(t, entry)
	require.False(t, entry.OK)
	require.Equal(t, 1, entry.Failures)
	require.Len(t, store.broken, 1)
	require.Equal(t, []string{"index.html"}, store.broken[0].Pages)

	// Failed entries are never fresh, so a second run rechecks and bumps
	// the failure count.
	_, err = svc.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, store.entries[srv.URL+"/gone"].Failures)
	require.Len(t, store.broken, 2)
	require.Equal(t, 2, store.broken[1].Failures)
}

func TestRun_PublishesVerifyEvent(t *testing.T) {
	srv, _ := newCountingServer(t, func(string, int) int { return http.StatusOK })

	dir := writeSite(t, map[string]string{
		"index.html": `<body><a href="` + srv.URL + `/guide">Guide</a></body>`,
	})

	bus := events.NewBus(nil)
	var got []events.Event
	bus.Subscribe(events.TypeVerifyCompleted, func(e events.Event) error {
		got = append(got, e)
		return nil
	})

	cfg := manifest.Verify{Concurrency: 2, Timeout: manifest.Duration(2 * time.Second), Attempts: 1}
	svc, err := NewService(cfg, nil, bus)
	require.NoError(t, err)

	report, err := svc.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, got, 1)
	require.Equal(t, report.RunID, got[0].BuildID)
	payload, ok := got[0].Payload.(events.VerifyCompleted)
	require.True(t, ok)
	require.Equal(t, 1, payload.Checked)
	require.Equal(t, 0, payload.Broken)
}

func TestRun_EmptySite(t *testing.T) {
	svc := newTestService(t, 1)
	report, err := svc.Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 0, report.Pages)
	require.Equal(t, 0, report.Checked)
	require.Empty(t, report.Broken)
}

func TestRun_RejectsOverlappingRuns(t *testing.T) {
	svc := newTestService(t, 1)
	svc.running = true

	_, err := svc.Run(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestNewService_Defaults(t *testing.T) {
	cfg := manifest.Verify{Concurrency: 8, Timeout: manifest.Duration(10 * time.Second), Attempts: 3}
	svc, err := NewService(cfg, nil, nil)
	require.NoError(t, err)

	require.Nil(t, svc.store)
	require.Equal(t, 2, svc.policy.MaxRetries)
	require.Equal(t, 10*time.Second, svc.client.Timeout)
}
