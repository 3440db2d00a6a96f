// Command starview is the interactive terminal planetarium: it loads a
// star catalog, starts the simulation clock, and hands control to the
// Bubble Tea front end.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/internal/config"
	"github.com/signalsfoundry/starview-simulator/internal/events"
	"github.com/signalsfoundry/starview-simulator/internal/favorites"
	"github.com/signalsfoundry/starview-simulator/internal/logging"
	"github.com/signalsfoundry/starview-simulator/internal/observability"
	"github.com/signalsfoundry/starview-simulator/internal/ui"
	"github.com/signalsfoundry/starview-simulator/timectrl"
	"github.com/signalsfoundry/starview-simulator/universe"
)

func main() {
	catalogPath := flag.String("catalog", "configs/catalog.json", "Path to the JSON star catalog")
	bookmarksPath := flag.String("bookmarks", "bookmarks.json", "Path to the bookmarks file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	ctx, log := logging.WithSessionLogger(context.Background(), log)

	if cfg.Catalog.Path != "" {
		*catalogPath = cfg.Catalog.Path
	}

	u := universe.New()
	summary := loadCatalog(ctx, log, u, *catalogPath)

	sim := core.NewSimulation(u)
	sim.SetTime(timectrl.TimeToJD(time.Now()))
	sim.SetTimeScale(cfg.Sim.TimeScale)
	sim.SetPauseState(cfg.Sim.StartPaused)

	queue := events.NewQueue(64)
	sim.SetNotifier(queue)

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		collector, err := observability.NewSimCollector(nil)
		if err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
			os.Exit(1)
		}
		sim.SetRecorder(collector)
		metricsSrv = serveMetrics(cfg.Metrics.Addr, collector, log)
	}

	views := core.NewViewSet(sim)
	bookmarks := loadBookmarks(ctx, log, *bookmarksPath)

	log.Info(ctx, "catalog loaded",
		logging.String("path", *catalogPath),
		logging.Int("stars", summary.Stars),
		logging.Int("bodies", summary.Bodies),
		logging.Int("locations", summary.Locations),
	)

	p := tea.NewProgram(ui.New(sim, views, queue, bookmarks, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "starview: %v\n", err)
		os.Exit(1)
	}

	saveBookmarks(ctx, log, bookmarks, *bookmarksPath)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func loadCatalog(ctx context.Context, log logging.Logger, u *universe.Universe, path string) *universe.CatalogSummary {
	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open catalog", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	summary, err := universe.LoadCatalog(u, f)
	if err != nil {
		log.Error(ctx, "failed to load catalog", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	return summary
}

func loadBookmarks(ctx context.Context, log logging.Logger, path string) *favorites.Store {
	store := favorites.NewStore()
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(ctx, "skipping bookmarks load", logging.String("path", path), logging.String("error", err.Error()))
		}
		return store
	}
	defer f.Close()

	if err := store.Load(f); err != nil {
		log.Warn(ctx, "failed to parse bookmarks", logging.String("path", path), logging.String("error", err.Error()))
	}
	return store
}

func saveBookmarks(ctx context.Context, log logging.Logger, store *favorites.Store, path string) {
	if len(store.All()) == 0 {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Warn(ctx, "failed to save bookmarks", logging.String("path", path), logging.String("error", err.Error()))
		return
	}
	defer f.Close()

	if err := store.Save(f); err != nil {
		log.Warn(ctx, "failed to write bookmarks", logging.String("path", path), logging.String("error", err.Error()))
	}
}

func serveMetrics(addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
