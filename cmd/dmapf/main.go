// Command dmapf runs a grid simulation headless or in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/config"
	"github.com/elektrokombinacija/dmapf/internal/logger"
	"github.com/elektrokombinacija/dmapf/internal/metrics"
	"github.com/elektrokombinacija/dmapf/internal/sim"
	"github.com/elektrokombinacija/dmapf/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Config file (.toml or .yaml)")
	useTUI := flag.Bool("tui", false, "Interactive terminal view")
	fast := flag.Bool("fast", false, "Headless: tick without waiting")
	timed := flag.Bool("timed", false, "Headless: plan with reservations before running")
	trace := flag.Bool("trace", false, "Log every search expansion at debug level")
	export := flag.String("export", "", "Write run metrics as JSON to this file")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for random agents in the terminal view")
	flag.Parse()

	logger.Init()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("loading config")
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)
	log := logger.For("dmapf")

	scfg := sim.ConfigFrom(cfg)
	if *trace {
		logger.Log.SetLevel(logrus.DebugLevel)
		scfg.Tracer = algo.NewLogTracer(log)
	}

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		scfg.Observer = metrics.NewCollector(reg)
		go serveMetrics(cfg.Metrics.Addr, reg, log)
	}

	s := sim.NewSimulation(scfg)
	if !cfg.Scenario.Empty() {
		if err := s.ApplyScenario(cfg.Scenario); err != nil {
			log.WithError(err).Fatal("applying scenario")
		}
	}

	if *useTUI {
		// The terminal owns stdout.
		logger.Log.SetOutput(os.Stderr)
		if *configPath == "" {
			logger.Log.SetLevel(logrus.WarnLevel)
		}
		if err := tui.Run(s, cfg.TickInterval(), *seed); err != nil {
			log.WithError(err).Fatal("terminal view")
		}
		return
	}

	if len(s.Agents()) == 0 {
		log.Fatal("no agents: give a config with a scenario, or use -tui")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := cfg.TickInterval()
	if *fast {
		interval = 0
	}
	if *timed {
		s.PlanAllTimed()
	}

	runner := sim.NewRunner(s, interval)
	runner.MaxTicks = cfg.Sim.MaxTicks
	runner.OnTick = func(res sim.TickResult) {
		log.WithFields(logrus.Fields{
			"tick":    res.TickIndex,
			"moved":   res.Moved,
			"arrived": res.Arrived,
		}).Debug("tick")
	}

	m, err := runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("run aborted")
	}

	if *export != "" {
		if err := runner.ExportMetrics(*export); err != nil {
			log.WithError(err).Fatal("exporting metrics")
		}
		log.WithField("file", *export).Info("metrics exported")
	}
	if m.Arrived < m.Agents {
		os.Exit(2)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, log *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.WithField("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}
