// Command dmapfvis opens a window on a grid simulation.
package main

import (
	"flag"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/dmapf/internal/config"
	"github.com/elektrokombinacija/dmapf/internal/logger"
	"github.com/elektrokombinacija/dmapf/internal/sim"
	"github.com/elektrokombinacija/dmapf/internal/vis"
)

func main() {
	configPath := flag.String("config", "", "Config file (.toml or .yaml)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for random agents")
	flag.Parse()

	logger.Init()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("loading config")
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	s := sim.NewSimulation(sim.ConfigFrom(cfg))
	if !cfg.Scenario.Empty() {
		if err := s.ApplyScenario(cfg.Scenario); err != nil {
			logger.Log.WithError(err).Fatal("applying scenario")
		}
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("dmapf"),
			app.Size(unit.Dp(900), unit.Dp(960)),
		)

		application := vis.NewApp(s, cfg.TickInterval(), *seed)
		if err := application.Run(window); err != nil {
			logger.Log.WithError(err).Fatal("window closed with error")
		}
		os.Exit(0)
	}()
	app.Main()
}
