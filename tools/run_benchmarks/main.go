// Package main runs scenario files to halt and collects metrics.
// Each scenario runs once per planning mode.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/config"
	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/logger"
	"github.com/elektrokombinacija/dmapf/internal/sim"
)

// Planning modes
const (
	ModeSpatial = "spatial" // PlanAll, then tick
	ModeTimed   = "timed"   // PlanAllTimed, then tick
)

var modes = []string{ModeSpatial, ModeTimed}

// BenchmarkResult stores results from a single run.
type BenchmarkResult struct {
	Timestamp     string  `json:"timestamp"`
	CommitHash    string  `json:"commit_hash"`
	GoVersion     string  `json:"go_version"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
	Scenario      string  `json:"scenario"`
	GridSize      int     `json:"grid_size"`
	NumAgents     int     `json:"num_agents"`
	Mode          string  `json:"mode"`
	Planned       int     `json:"planned"`
	PlanConflicts int     `json:"plan_conflicts"`
	Ticks         int     `json:"ticks"`
	Moves         int     `json:"moves"`
	Arrived       int     `json:"arrived"`
	Halted        bool    `json:"halted"`
	Success       bool    `json:"success"`
	Searches      int     `json:"searches"`
	NodesExpanded int     `json:"nodes_expanded"`
	Pruned        int     `json:"pruned"`
	RuntimeMs     float64 `json:"runtime_ms"`
	Error         string  `json:"error,omitempty"`
}

// ModeMetrics holds per-mode aggregated metrics.
type ModeMetrics struct {
	Name           string
	TotalRuns      int
	Successes      int
	TotalRuntimeMs float64
	TotalTicks     int
	TotalExpanded  int
}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func findScenarios(dir string) ([]string, error) {
	var files []string
	for _, ext := range []string{"*.yaml", "*.yml", "*.toml"} {
		matches, err := filepath.Glob(filepath.Join(dir, ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// runScenario applies cfg's scenario to a fresh simulation and runs it
// to halt in the given mode.
func runScenario(ctx context.Context, cfg config.Config, mode string, maxTicks int) *BenchmarkResult {
	result := &BenchmarkResult{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Scenario:  cfg.Scenario.Name,
		GridSize:  cfg.Grid.Size,
		Mode:      mode,
	}

	tracer := &algo.CountingTracer{}
	scfg := sim.ConfigFrom(cfg)
	scfg.MarkPaths = false
	scfg.Tracer = tracer
	scfg.Logger = logger.For("bench").WithFields(logrus.Fields{"scenario": cfg.Scenario.Name, "mode": mode})
	s := sim.NewSimulation(scfg)

	if err := s.ApplyScenario(cfg.Scenario); err != nil {
		result.Error = err.Error()
		return result
	}
	result.NumAgents = len(s.Agents())

	start := time.Now()
	var plans map[core.AgentID]core.Path
	switch mode {
	case ModeTimed:
		plans = s.PlanAllTimed()
	default:
		plans = s.PlanAll()
	}
	result.Planned = sim.CountPlanned(plans)
	result.PlanConflicts = len(algo.FindAllConflicts(plans))

	r := sim.NewRunner(s, 0)
	r.MaxTicks = maxTicks
	m, err := r.Run(ctx)
	result.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		result.Error = err.Error()
	}

	result.Ticks = m.Ticks
	result.Moves = m.Moves
	result.Arrived = m.Arrived
	result.Halted = m.Halted
	result.Success = m.Arrived == result.NumAgents
	result.Searches = tracer.Searches
	result.NodesExpanded = tracer.Expanded
	for _, n := range tracer.Pruned {
		result.Pruned += n
	}
	return result
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	// Header
	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "grid_size", "num_agents", "mode",
		"planned", "plan_conflicts", "ticks", "moves", "arrived", "halted", "success",
		"searches", "nodes_expanded", "pruned", "runtime_ms", "error",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	// Data rows
	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, strconv.Itoa(r.GridSize), strconv.Itoa(r.NumAgents), r.Mode,
			strconv.Itoa(r.Planned), strconv.Itoa(r.PlanConflicts), strconv.Itoa(r.Ticks),
			strconv.Itoa(r.Moves), strconv.Itoa(r.Arrived),
			strconv.FormatBool(r.Halted), strconv.FormatBool(r.Success),
			strconv.Itoa(r.Searches), strconv.Itoa(r.NodesExpanded), strconv.Itoa(r.Pruned),
			fmt.Sprintf("%.3f", r.RuntimeMs), r.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(results []*BenchmarkResult, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(results []*BenchmarkResult) {
	// Aggregate by mode
	metrics := make(map[string]*ModeMetrics)
	for _, r := range results {
		m, ok := metrics[r.Mode]
		if !ok {
			m = &ModeMetrics{Name: r.Mode}
			metrics[r.Mode] = m
		}
		m.TotalRuns++
		if r.Success {
			m.Successes++
			m.TotalRuntimeMs += r.RuntimeMs
			m.TotalTicks += r.Ticks
			m.TotalExpanded += r.NodesExpanded
		}
	}

	// Print summary table
	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-10s %6s %8s %12s %10s %12s\n",
		"Mode", "Runs", "Success", "Avg Time(ms)", "Avg Ticks", "Avg Expanded")
	fmt.Println(strings.Repeat("-", 63))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		var avgTime, avgTicks, avgExpanded float64
		if m.Successes > 0 {
			n := float64(m.Successes)
			avgTime = m.TotalRuntimeMs / n
			avgTicks = float64(m.TotalTicks) / n
			avgExpanded = float64(m.TotalExpanded) / n
		}
		fmt.Printf("%-10s %6d %8d %12.2f %10.1f %12.1f\n",
			m.Name, m.TotalRuns, m.Successes, avgTime, avgTicks, avgExpanded)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output file (.csv or .json)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout per run")
	modeFilter := flag.String("mode", "", "Run only these modes (comma-separated: spatial,timed)")
	maxTicks := flag.Int("max-ticks", 0, "Tick limit per run (0 = scenario's sim.max_ticks)")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()
	logger.Init()
	if !*verbose {
		logger.Log.SetLevel(logrus.WarnLevel)
	}

	// Create output directory
	if err := os.MkdirAll(filepath.Dir(*outputFile), 0o755); err != nil {
		logger.Log.WithError(err).Fatal("creating output directory")
	}

	files, err := findScenarios(*inputDir)
	if err != nil {
		logger.Log.WithError(err).Fatal("finding scenario files")
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_scenarios first: go run ./tools/gen_scenarios -scaling -output %s\n", *inputDir)
		os.Exit(1)
	}

	activeModes := modes
	if *modeFilter != "" {
		activeModes = strings.Split(*modeFilter, ",")
	}

	commit := getGitCommit()
	var results []*BenchmarkResult
	totalRuns := len(files) * len(activeModes)
	currentRun := 0

	fmt.Printf("Running benchmarks: %d scenarios x %d modes = %d runs\n",
		len(files), len(activeModes), totalRuns)
	fmt.Printf("Timeout per run: %v\n\n", *timeout)

	for _, file := range files {
		cfg, err := config.Load(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		if cfg.Scenario.Name == "" {
			cfg.Scenario.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		limit := cfg.Sim.MaxTicks
		if *maxTicks > 0 {
			limit = *maxTicks
		}

		for _, mode := range activeModes {
			currentRun++
			if *verbose {
				fmt.Printf("[%d/%d] %s / %s ... ", currentRun, totalRuns, cfg.Scenario.Name, mode)
			} else {
				fmt.Printf("\r[%d/%d] Running...", currentRun, totalRuns)
			}

			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			result := runScenario(ctx, cfg, mode, limit)
			cancel()
			result.CommitHash = commit
			results = append(results, result)

			if *verbose {
				if result.Success {
					fmt.Printf("OK (%.2fms, %d ticks)\n", result.RuntimeMs, result.Ticks)
				} else {
					fmt.Printf("FAILED (%d/%d arrived) %s\n", result.Arrived, result.NumAgents, result.Error)
				}
			}
		}
	}

	fmt.Println()

	// Write results
	write := writeCSV
	if filepath.Ext(*outputFile) == ".json" {
		write = writeJSON
	}
	if err := write(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	// Print summary
	printSummary(results)
}
