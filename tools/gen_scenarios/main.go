// Package main generates random scenario files for benchmarks.
// Output is deterministic for a given seed and parameter set.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/config"
	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/logger"
	"github.com/elektrokombinacija/dmapf/internal/sim"
)

// ScenarioParams defines parameters for scenario generation.
type ScenarioParams struct {
	Seed      int64
	Size      int
	Agents    int
	Obstacles float64 // Fraction of cells that are obstacles
	Solvable  bool    // Re-roll obstacles until every agent has a path
}

// maxAttempts bounds obstacle re-rolls for solvable scenarios.
const maxAttempts = 50

// generateScenario lays out obstacles and agents on a scratch simulation
// and returns them as a config with explicit coordinates.
func generateScenario(params ScenarioParams) (config.Config, error) {
	rng := rand.New(rand.NewSource(params.Seed))

	cfg := config.Default()
	cfg.Grid.Size = params.Size
	cfg.Sim.MaxTicks = 4 * params.Size * params.Size

	scfg := sim.DefaultConfig()
	scfg.Size = params.Size
	scfg.MarkPaths = false
	scfg.Logger = logger.For("gen")
	s := sim.NewSimulation(scfg)

	for attempt := 1; ; attempt++ {
		s.Reset()
		obstacles := placeObstacles(s, rng, params.Obstacles)

		for i := 0; i < params.Agents; i++ {
			if _, err := s.AddRandomAgent(rng); err != nil {
				return config.Config{}, fmt.Errorf("agent %d of %d: %w", i+1, params.Agents, err)
			}
		}

		planned := sim.CountPlanned(s.PlanAll())
		if !params.Solvable || planned == params.Agents {
			cfg.Scenario = config.Scenario{
				Name:      scenarioName(params),
				Obstacles: obstacles,
				Agents:    agentSpecs(s.Agents()),
				Seed:      params.Seed,
			}
			return cfg, nil
		}
		if attempt == maxAttempts {
			return config.Config{}, fmt.Errorf("no solvable layout after %d attempts (%d of %d agents planned)",
				attempt, planned, params.Agents)
		}
	}
}

func placeObstacles(s *sim.Simulation, rng *rand.Rand, density float64) []config.Cell {
	n := s.Size()
	var cells []config.Cell
	for _, idx := range rng.Perm(n * n)[:int(density*float64(n*n))] {
		p := core.Pt(idx%n, idx/n)
		if err := s.SetObstacle(p); err == nil {
			cells = append(cells, config.Cell{X: p.X, Y: p.Y})
		}
	}
	return cells
}

func agentSpecs(agents []core.Agent) []config.AgentSpec {
	specs := make([]config.AgentSpec, 0, len(agents))
	for _, a := range agents {
		specs = append(specs, config.AgentSpec{
			Start: config.Cell{X: a.Start.X, Y: a.Start.Y},
			Goal:  config.Cell{X: a.Goal.X, Y: a.Goal.Y},
		})
	}
	return specs
}

func scenarioName(params ScenarioParams) string {
	return fmt.Sprintf("dmapf_%d_%dx%d_o%02d_%d",
		params.Agents, params.Size, params.Size, int(math.Round(params.Obstacles*100)), params.Seed)
}

func main() {
	// Parse flags
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	size := flag.Int("size", 12, "Grid side length")
	agents := flag.Int("agents", 6, "Number of agents")
	obstacles := flag.Float64("obstacles", 0.15, "Obstacle density (0-1)")
	solvable := flag.Bool("solvable", true, "Only keep layouts where every agent has a path")
	format := flag.String("format", "yaml", "Output format: yaml or toml")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate scaling scenarios (8, 12, 16, 24, 32 grids)")

	flag.Parse()
	logger.Init()

	if *obstacles < 0 || *obstacles > 0.6 {
		logger.Log.Fatalf("obstacle density %.2f outside [0, 0.6]", *obstacles)
	}
	if *format != "yaml" && *format != "toml" {
		logger.Log.Fatalf("unknown format %q", *format)
	}

	var params []ScenarioParams
	if *scalingMode {
		// Agent count grows with the grid side
		for _, n := range []int{8, 12, 16, 24, 32} {
			params = append(params, ScenarioParams{
				Seed:      *seed,
				Size:      n,
				Agents:    n / 2,
				Obstacles: *obstacles,
				Solvable:  *solvable,
			})
		}
	} else {
		params = append(params, ScenarioParams{
			Seed:      *seed,
			Size:      *size,
			Agents:    *agents,
			Obstacles: *obstacles,
			Solvable:  *solvable,
		})
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Log.WithError(err).Fatal("creating output directory")
	}

	failed := 0
	for _, p := range params {
		cfg, err := generateScenario(p)
		if err != nil {
			logger.Log.WithError(err).WithField("size", p.Size).Error("generation failed")
			failed++
			continue
		}

		filename := filepath.Join(*outputDir, cfg.Scenario.Name+"."+*format)
		if err := config.Save(filename, cfg); err != nil {
			logger.Log.WithError(err).WithField("file", filename).Error("write failed")
			failed++
			continue
		}

		logger.Log.WithFields(logrus.Fields{
			"file":      filename,
			"agents":    len(cfg.Scenario.Agents),
			"obstacles": len(cfg.Scenario.Obstacles),
			"grid":      fmt.Sprintf("%dx%d", p.Size, p.Size),
		}).Info("generated")
	}
	if failed > 0 {
		os.Exit(1)
	}
}
