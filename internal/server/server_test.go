package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/version"
)

const serverManifest = `site:
  title: Vue Design Patterns
  description: A field guide to component patterns.
nav:
  - title: Component APIs
    items:
      - label: Overview
        path: index.md
      - label: Controlled Props
        path: components/controlled-props.md
  - title: State
    items:
      - label: Stores
        path: state/stores.md
`

const serverIndexDoc = `---
title: Welcome
description: Start here.
---

Pick a pattern from the sidebar.

## Getting started

Each pattern page explains when to reach for it.
`

const serverPropsDoc = `---
title: Controlled Props
description: Let the parent own the state.
tags: [props, events]
---

A controlled component mirrors its value prop.

## When to use it

When two views must agree on one value.
`

const serverStoresDoc = `---
title: Stores
description: Shared reactive state.
tags: [state]
---

A store centralizes state shared across components.

## Defining a store

Keep the store in its own module.
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer writes a catalog fixture plus the given manifest and wires a
// Server on it.
func newTestServer(t *testing.T, manifestYAML string) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "patterns.yaml"), manifestYAML)
	writeFile(t, filepath.Join(dir, "docs", "index.md"), serverIndexDoc)
	writeFile(t, filepath.Join(dir, "docs", "components", "controlled-props.md"), serverPropsDoc)
	writeFile(t, filepath.Join(dir, "docs", "state", "stores.md"), serverStoresDoc)

	s, err := New(filepath.Join(dir, "patterns.yaml"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s, dir
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNew_RejectsMissingManifest(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"), discardLogger())
	require.Error(t, err)
}

func TestHandleHealthz_ReportsVersionAndUptime(t *testing.T) {
	s, _ := newTestServer(t, serverManifest)
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	require.Equal(t, "ok", health["status"])
	require.Equal(t, version.Version, health["version"])
	require.NotEmpty(t, health["uptime"])
}

func TestSiteHandler_ServesRenderedSite(t *testing.T) {
	s, _ := newTestServer(t, serverManifest)
	require.NoError(t, s.runBuild(context.Background(), "cli"))
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<title>Vue Design Patterns</title>")

	resp, body = get(t, srv.URL+"/state/stores/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Defining a store")

	resp, _ = get(t, srv.URL+"/assets/site.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")

	resp, _ = get(t, srv.URL+"/search.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestSiteHandler_UnknownPathGetsGenerated404(t *testing.T) {
	s, _ := newTestServer(t, serverManifest)
	require.NoError(t, s.runBuild(context.Background(), "cli"))
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/no/such/page/")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, "Page not found")
}

func TestSiteHandler_RejectsWriteMethods(t *testing.T) {
	s, _ := newTestServer(t, serverManifest)
	require.NoError(t, s.runBuild(context.Background(), "cli"))
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSiteHandler_HonorsBasePath(t *testing.T) {
	manifestYAML := strings.Replace(serverManifest,
		"site:\n", "site:\n  base_path: /patterns/\n", 1)
	s, _ := newTestServer(t, manifestYAML)
	require.NoError(t, s.runBuild(context.Background(), "cli"))
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/patterns/", resp.Header.Get("Location"))

	resp, body := get(t, srv.URL+"/patterns/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<title>Vue Design Patterns</title>")

	resp, _ = get(t, srv.URL+"/patterns/assets/site.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/elsewhere")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleStatus_ReportsLastBuild(t *testing.T) {
	s, _ := newTestServer(t, serverManifest)
	require.NoError(t, s.runBuild(context.Background(), "cli"))
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/api/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status statusResponse
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	require.False(t, status.Building)
	require.NotNil(t, status.LastBuild)
	require.Equal(t, "success", status.LastBuild.Outcome)
	require.Equal(t, "cli", status.LastBuild.Trigger)
	require.Equal(t, 3, status.LastBuild.Pages)
}

func TestHandleBuilds_ListsBuildsSkippingWatchEvents(t *testing.T) {
	s, _ := newTestServer(t, serverManifest)
	ctx := context.Background()
	require.NoError(t, s.runBuild(ctx, "cli"))
	require.NoError(t, s.bus.Publish(ctx, events.Event{
		Type:    events.TypeWatchChanged,
		Payload: events.WatchChanged{Path: "docs/index.md"},
	}))

	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/api/builds")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Builds []events.BuildSummary `json:"builds"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &listing))
	require.Len(t, listing.Builds, 1)

	s.mu.Lock()
	wantID := s.lastReport.BuildID
	s.mu.Unlock()
	require.Equal(t, wantID, listing.Builds[0].BuildID)
	require.Equal(t, events.TypeBuildCompleted, listing.Builds[0].LastEvent)

	resp, _ = get(t, srv.URL+"/api/builds?limit=zero")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoutes_MetricsGatedByManifest(t *testing.T) {
	enabled, _ := newTestServer(t, serverManifest+"metrics:\n  enabled: true\n  namespace: previewtest\n")
	require.NoError(t, enabled.runBuild(context.Background(), "cli"))
	srv := httptest.NewServer(enabled.routes())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "previewtest_pages_built 3")

	disabled, _ := newTestServer(t, serverManifest)
	srv2 := httptest.NewServer(disabled.routes())
	defer srv2.Close()

	resp, _ = get(t, srv2.URL+"/metrics")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHub_StreamsBuildNotifications(t *testing.T) {
	hub := NewHub(discardLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	require.Equal(t, ": connected", waitLine(t, lines))
	require.Equal(t, 1, hub.Clients())

	hub.Broadcast("b-123")
	for {
		line := waitLine(t, lines)
		if line == "" {
			continue
		}
		require.Equal(t, "data: b-123", line)
		break
	}

	hub.Shutdown()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				require.Equal(t, 0, hub.Clients())
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after shutdown")
		}
	}
}

func waitLine(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case line, ok := <-lines:
		if !ok {
			t.Fatal("stream closed early")
		}
		return line
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for stream line")
		return ""
	}
}

func TestSourceWatcher_NotifiesOnMarkdownAndManifest(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	manifestPath := filepath.Join(dir, "patterns.yaml")
	writeFile(t, manifestPath, "site:\n  title: X\n")
	writeFile(t, filepath.Join(docs, "a.md"), "# a\n")

	changes := make(chan string, 8)
	sw, err := newSourceWatcher(docs, manifestPath,
		func(p string) { changes <- p }, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sw.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sw.run(ctx)

	writeFile(t, filepath.Join(docs, "a.md"), "# a changed\n")
	require.Equal(t, filepath.Join(docs, "a.md"), waitChange(t, changes))

	writeFile(t, manifestPath, "site:\n  title: Y\n")
	require.Equal(t, manifestPath, waitChange(t, changes))

	writeFile(t, filepath.Join(docs, "notes.txt"), "scratch\n")
	select {
	case p := <-changes:
		t.Fatalf("unexpected notification for %s", p)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestSourceWatcher_FollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	manifestPath := filepath.Join(dir, "patterns.yaml")
	writeFile(t, manifestPath, "site:\n  title: X\n")
	writeFile(t, filepath.Join(docs, "a.md"), "# a\n")

	changes := make(chan string, 8)
	sw, err := newSourceWatcher(docs, manifestPath,
		func(p string) { changes <- p }, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sw.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sw.run(ctx)

	sub := filepath.Join(docs, "advanced")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// let the new directory watch land before writing into it
	time.Sleep(300 * time.Millisecond)

	writeFile(t, filepath.Join(sub, "b.md"), "# b\n")
	require.Equal(t, filepath.Join(sub, "b.md"), waitChange(t, changes))
}

func waitChange(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return ""
	}
}

func TestRequestRebuild_CoalescesWhileQueued(t *testing.T) {
	s := &Server{rebuilds: make(chan string, 1)}
	s.requestRebuild("watch")
	s.requestRebuild("watch")
	s.requestRebuild("schedule")
	require.Len(t, s.rebuilds, 1)
	require.Equal(t, "watch", <-s.rebuilds)
}

func TestPreviewURL_MapsWildcardHosts(t *testing.T) {
	require.Equal(t, "http://localhost:4173/", previewURL(":4173", "/"))
	require.Equal(t, "http://localhost:4173/", previewURL("[::]:4173", "/"))
	require.Equal(t, "http://127.0.0.1:8080/patterns/", previewURL("127.0.0.1:8080", "/patterns/"))
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	s, _ := newTestServer(t, serverManifest+"serve:\n  addr: 127.0.0.1:0\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var addr string
	require.Eventually(t, func() bool {
		addr = s.Addr()
		return addr != ""
	}, 10*time.Second, 20*time.Millisecond)

	resp, body := get(t, "http://"+addr+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<title>Vue Design Patterns</title>")
	// livereload listener is embedded when serving
	require.Contains(t, body, "__livereload")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
