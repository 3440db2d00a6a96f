// Command navsim runs the simulation headless: it loads a catalog,
// plays a navigation script against it at a fixed tick rate, and logs
// the events the script produces. Useful for soak runs and for
// verifying scripts before loading them into the interactive UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/internal/config"
	"github.com/signalsfoundry/starview-simulator/internal/events"
	"github.com/signalsfoundry/starview-simulator/internal/logging"
	"github.com/signalsfoundry/starview-simulator/internal/observability"
	"github.com/signalsfoundry/starview-simulator/internal/script"
	"github.com/signalsfoundry/starview-simulator/timectrl"
	"github.com/signalsfoundry/starview-simulator/universe"
)

func main() {
	catalogPath := flag.String("catalog", "configs/catalog.json", "Path to the JSON star catalog")
	scriptPath := flag.String("script", "", "Path to a navigation script to play")
	duration := flag.Duration("duration", 60*time.Second, "Maximum wall-clock run time (0 = until the script finishes)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	ctx, log := logging.WithSessionLogger(context.Background(), log)
	ctx = logging.ContextWithLogger(ctx, log)

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	if cfg.Catalog.Path != "" {
		*catalogPath = cfg.Catalog.Path
	}

	u := universe.New()
	f, err := os.Open(*catalogPath)
	if err != nil {
		log.Error(ctx, "failed to open catalog", logging.String("path", *catalogPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	summary, err := universe.LoadCatalog(u, f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load catalog", logging.String("path", *catalogPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "catalog loaded",
		logging.String("path", *catalogPath),
		logging.Int("stars", summary.Stars),
		logging.Int("bodies", summary.Bodies),
	)

	sim := core.NewSimulation(u)
	sim.SetTime(timectrl.TimeToJD(time.Now()))
	sim.SetTimeScale(cfg.Sim.TimeScale)
	sim.SetPauseState(cfg.Sim.StartPaused)

	queue := events.NewQueue(64)
	sim.SetNotifier(queue)

	var (
		collector  *observability.SimCollector
		metricsSrv *http.Server
	)
	if cfg.Metrics.Enabled {
		collector, err = observability.NewSimCollector(nil)
		if err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
			os.Exit(1)
		}
		sim.SetRecorder(collector)
		metricsSrv = serveMetrics(cfg.Metrics.Addr, collector, log)
	}

	views := core.NewViewSet(sim)
	runner := loadScript(ctx, log, sim, views, *scriptPath, cfg.Metrics.Enabled)

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	runLoop(stopCtx, log, sim, views, queue, runner, collector, cfg.Sim.TickInterval, *duration)

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func loadScript(ctx context.Context, log logging.Logger, sim *core.Simulation, views *core.ViewSet, path string, withMetrics bool) *script.Runner {
	if path == "" {
		return nil
	}

	runner := script.NewRunner(sim, views, log)
	if withMetrics {
		if sc, err := observability.NewScriptCollector(nil); err == nil {
			runner.SetMetrics(sc)
		} else {
			log.Warn(ctx, "script metrics disabled", logging.String("error", err.Error()))
		}
	}

	f, err := os.Open(path)
	if err != nil {
		log.Error(ctx, "failed to open script", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	if err := runner.Load(f); err != nil {
		log.Error(ctx, "failed to load script", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info(ctx, "script loaded", logging.String("path", path))
	return runner
}

func runLoop(ctx context.Context, log logging.Logger, sim *core.Simulation, views *core.ViewSet, queue *events.Queue, runner *script.Runner, collector *observability.SimCollector, tick, duration time.Duration) {
	tracer := otel.Tracer("navsim")
	ctx, span := tracer.Start(ctx, "run")
	defer span.End()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		deadline = timer.C
	}

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "interrupted")
			return

		case <-deadline:
			log.Info(ctx, "run complete", logging.Float64("jd", sim.Time()))
			return

		case now := <-ticker.C:
			sim.Update(now.Sub(last).Seconds())
			last = now

			if runner != nil {
				runner.Tick(ctx)
			}
			for _, e := range queue.Drain() {
				log.Info(ctx, "event", logging.String("detail", e.String()))
			}
			if collector != nil {
				collector.SetViewCount(len(views.Leaves()))
				collector.SetTimeRate(sim.TimeScale())
			}

			if runner != nil && runner.Done() {
				log.Info(ctx, "script finished", logging.Float64("jd", sim.Time()))
				return
			}
		}
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
