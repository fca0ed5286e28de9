// Package server runs the local preview: it serves the rendered site,
// rebuilds when sources change, streams livereload notifications to open
// pages, and exposes build history plus optional Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/events"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/logfields"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/metrics"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/site"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/verify"
)

const shutdownGrace = 5 * time.Second

// Server is the preview server. Server-level settings (listen address,
// metrics, journal location, verify schedule) are read once at startup;
// content, nav, and site changes flow in through watch-triggered rebuilds.
type Server struct {
	manifestPath string
	baseDir      string
	contentDir   string
	cfg          *manifest.Manifest
	log          *slog.Logger

	gen      *site.Generator
	bus      *events.Bus
	journal  *events.Journal
	registry *prom.Registry
	recorder metrics.Recorder
	hub      *Hub

	// rebuilds holds at most one queued trigger; a build already waiting
	// will pick up whatever changed since.
	rebuilds chan string

	mu         sync.Mutex
	addr       string
	outputDir  string
	lastReport *site.BuildReport
	building   bool
	started    time.Time

	verifyMu sync.Mutex
	verifier *verify.Service
}

// New wires a preview server for the manifest at path. Pass a nil logger to
// use the default.
func New(manifestPath string, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}
	m, err := manifest.Load(abs)
	if err != nil {
		return nil, err
	}
	baseDir := filepath.Dir(abs)

	journal, err := events.OpenJournal(resolvePath(baseDir, m.Events.Path))
	if err != nil {
		return nil, err
	}
	bus := events.NewJournaledBus(journal, log)

	var (
		registry *prom.Registry
		recorder metrics.Recorder = metrics.NoopRecorder{}
	)
	if m.Metrics.Enabled {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry, m.Metrics.Namespace)
	}

	s := &Server{
		manifestPath: abs,
		baseDir:      baseDir,
		contentDir:   resolvePath(baseDir, m.Content.Dir),
		cfg:          m,
		log:          log,
		gen:          site.New(abs).SetRecorder(recorder).SetBus(bus).SetLiveReload(true),
		bus:          bus,
		journal:      journal,
		registry:     registry,
		recorder:     recorder,
		hub:          NewHub(log),
		rebuilds:     make(chan string, 1),
		outputDir:    resolvePath(baseDir, m.Build.OutputDir),
		started:      time.Now(),
	}
	bus.Subscribe(events.TypeBuildCompleted, func(e events.Event) error {
		s.hub.Broadcast(e.BuildID)
		return nil
	})
	return s, nil
}

// Run builds once, then serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.runBuild(ctx, "serve"); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.log.Warn("initial build failed, serving previous output if any")
	}

	watcher, err := newSourceWatcher(s.contentDir, s.manifestPath,
		func(path string) { s.sourceChanged(ctx, path) }, s.log)
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()
	go watcher.run(ctx)
	go s.rebuildLoop(ctx)

	scheduler, err := s.startVerifySchedule(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() {
			_ = scheduler.Shutdown()
		}()
	}

	// Bind before declaring readiness so a taken port fails fast.
	ln, err := net.Listen("tcp", s.cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Serve.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	httpSrv := &http.Server{
		Handler:     s.routes(),
		ReadTimeout: 30 * time.Second,
		// WriteTimeout stays zero so livereload streams are never cut off.
		IdleTimeout: 300 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("preview server listening",
		slog.String("addr", ln.Addr().String()),
		logfields.URL(previewURL(ln.Addr().String(), s.cfg.Site.BasePath)))

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down preview server")
	// Livereload streams never go idle; disconnect them first so the
	// graceful shutdown below is not stuck waiting on them.
	s.hub.Shutdown()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("http shutdown incomplete", logfields.Error(err))
	}
	return nil
}

// Close releases the journal and, when created, the link verifier.
func (s *Server) Close() error {
	s.hub.Shutdown()

	var errs []error
	s.verifyMu.Lock()
	if s.verifier != nil {
		if err := s.verifier.Close(); err != nil {
			errs = append(errs, err)
		}
		s.verifier = nil
	}
	s.verifyMu.Unlock()

	if err := s.journal.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// rebuildLoop serializes builds; triggers land here from the watcher.
func (s *Server) rebuildLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-s.rebuilds:
			_ = s.runBuild(ctx, trigger)
		}
	}
}

func (s *Server) requestRebuild(trigger string) {
	select {
	case s.rebuilds <- trigger:
	default:
		// a rebuild is already queued
	}
}

func (s *Server) runBuild(ctx context.Context, trigger string) error {
	s.mu.Lock()
	s.building = true
	s.mu.Unlock()

	report, err := s.gen.Build(ctx, trigger)

	s.mu.Lock()
	s.building = false
	if report != nil {
		s.lastReport = report
	}
	if dir := s.gen.OutputDir(); dir != "" {
		s.outputDir = dir
	}
	s.mu.Unlock()
	return err
}

// sourceChanged runs after the watch debounce settles: journal the change,
// then queue a rebuild.
func (s *Server) sourceChanged(ctx context.Context, path string) {
	rel := path
	if r, err := filepath.Rel(s.baseDir, path); err == nil {
		rel = filepath.ToSlash(r)
	}
	s.log.Info("source changed, scheduling rebuild", logfields.Path(rel))

	err := s.bus.Publish(ctx, events.Event{
		Type:    events.TypeWatchChanged,
		Payload: events.WatchChanged{Path: rel},
	})
	if err != nil {
		s.log.Warn("publish watch event failed", logfields.Error(err))
	}
	s.requestRebuild("watch")
}

// startVerifySchedule arms periodic link verification when the manifest
// carries a cron schedule. Returns nil without error when disabled.
func (s *Server) startVerifySchedule(ctx context.Context) (gocron.Scheduler, error) {
	expr := s.cfg.Verify.Schedule
	if expr == "" {
		return nil, nil
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() { s.runScheduledVerify(ctx) }),
		gocron.WithName("verify-links"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule link verification %q: %w", expr, err)
	}
	scheduler.Start()
	s.log.Info("link verification scheduled", slog.String("schedule", expr))
	return scheduler, nil
}

func (s *Server) runScheduledVerify(ctx context.Context) {
	svc, err := s.verifyService()
	if err != nil {
		s.log.Error("link verification unavailable", logfields.Error(err))
		return
	}
	report, err := svc.Run(ctx, s.siteDir())
	if errors.Is(err, verify.ErrAlreadyRunning) {
		s.log.Warn("link verification still running, skipping this tick")
		return
	}
	if err != nil {
		s.log.Error("link verification failed", logfields.Error(err))
		return
	}
	if len(report.Broken) > 0 {
		s.log.Warn("scheduled link verification found broken links",
			slog.Int("broken", len(report.Broken)))
	}
}

// verifyService creates the link checker on first use so a missing NATS
// server only hurts when verification actually runs.
func (s *Server) verifyService() (*verify.Service, error) {
	s.verifyMu.Lock()
	defer s.verifyMu.Unlock()
	if s.verifier != nil {
		return s.verifier, nil
	}
	svc, err := verify.NewService(s.cfg.Verify, s.recorder, s.bus)
	if err != nil {
		return nil, err
	}
	s.verifier = svc
	return svc, nil
}

// Addr returns the bound listen address once Run is serving, or "" before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// SetAddr overrides the manifest listen address. Call before Run.
func (s *Server) SetAddr(addr string) {
	s.cfg.Serve.Addr = addr
}

// siteDir is the directory the static handler serves from. It follows the
// most recent successful build.
func (s *Server) siteDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputDir
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// previewURL renders a clickable address for the startup log.
func previewURL(addr, basePath string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + basePath
	}
	switch host {
	case "", "::", "0.0.0.0":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + basePath
}
