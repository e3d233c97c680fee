package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/goionize/mcrt/pkg/config"
	"github.com/goionize/mcrt/pkg/core"
	"github.com/goionize/mcrt/pkg/engine"
	"github.com/goionize/mcrt/pkg/grid"
	"github.com/goionize/mcrt/pkg/ionization"
	"github.com/goionize/mcrt/pkg/physics"
	"github.com/goionize/mcrt/pkg/source"
	"github.com/goionize/mcrt/pkg/spectrum"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		paramsPath  string
		threads     int
		seed        int64
		verbose     bool
		dryRun      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:          "mcrt",
		Short:        "Monte Carlo photoionization radiative transfer",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			cfg := config.Default()
			if paramsPath != "" {
				var err error
				cfg, err = config.Load(paramsPath)
				if err != nil {
					return err
				}
				logger.Info("loaded parameter file", "path", paramsPath)
			} else {
				logger.Info("no parameter file given, using defaults")
			}
			if cmd.Flags().Changed("threads") {
				cfg.Workers = threads
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			if dryRun {
				logger.Info("dry run requested, all components check out, halting")
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger, metricsAddr)
		},
	}

	cmd.Flags().StringVarP(&paramsPath, "params", "p", "", "parameter file with the simulation parameters")
	cmd.Flags().IntVarP(&threads, "threads", "t", 0, "number of parallel threads (0 = number of CPUs)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "base random seed")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "set up all components and halt before the transport loop")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")

	return cmd
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, metricsAddr string) error {
	crossSections := physics.HydrogenicCrossSections{}
	abundances := physics.DefaultAbundances()

	g := grid.New(
		core.NewVec3(cfg.Grid.Min[0], cfg.Grid.Min[1], cfg.Grid.Min[2]),
		core.NewVec3(cfg.Grid.Max[0], cfg.Grid.Max[1], cfg.Grid.Max[2]),
		cfg.Grid.Cells[0], cfg.Grid.Cells[1], cfg.Grid.Cells[2],
		cfg.Grid.Density, cfg.Grid.Temperature)
	logger.Info("constructed density grid", "cells", g.NumCells())

	srcCfg := source.Config{
		DiscreteFraction: cfg.Photons.DiscreteFraction,
		Abundances:       abundances,
		CrossSections:    crossSections,
		Logger:           logger,
	}
	if len(cfg.Sources.Stars) > 0 {
		srcCfg.Distribution = starDistribution(cfg.Sources.Stars)
		srcCfg.DiscreteSpectrum = buildSpectrum(cfg.Sources.Spectrum)
	}
	if cfg.Sources.Continuous.Flux > 0 {
		srcCfg.Continuous = source.BoxSurface{
			Min:  core.NewVec3(cfg.Grid.Min[0], cfg.Grid.Min[1], cfg.Grid.Min[2]),
			Max:  core.NewVec3(cfg.Grid.Max[0], cfg.Grid.Max[1], cfg.Grid.Max[2]),
			Flux: cfg.Sources.Continuous.Flux,
		}
		srcCfg.ContinuousSpectrum = buildSpectrum(cfg.Sources.Spectrum)
	}

	src, err := source.New(srcCfg)
	if err != nil {
		return err
	}

	solver := ionization.NewSolver(src.TotalLuminosity(), abundances, g, logger)

	registry := prometheus.NewRegistry()
	metrics := engine.NewMetrics(registry)
	if metricsAddr != "" {
		go serveMetrics(metricsAddr, registry, logger)
	}

	sim := engine.NewSimulation(engine.SimulationConfig{
		InitialPhotons: cfg.Photons.Initial,
		MaxIterations:  cfg.Iterations.Max,
		Tolerance:      cfg.Iterations.Tolerance,
		Workers:        cfg.Workers,
		Seed:           cfg.Seed,
	}, src, g, solver, metrics, logger)

	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	status := "exhausted"
	if result.Converged {
		status = "converged"
	}
	logger.Info("run finished",
		"status", status,
		"iterations", result.Iterations,
		"photonsLastIteration", result.TotalPhotons)
	return nil
}

// starDistribution converts the configured stars into a discrete source
// distribution with weights normalized by luminosity.
func starDistribution(stars []config.StarConfig) source.PointSources {
	total := 0.0
	for _, star := range stars {
		total += star.Luminosity
	}
	dist := source.PointSources{
		Positions:  make([]core.Vec3, len(stars)),
		Weights:    make([]float64, len(stars)),
		Luminosity: total,
	}
	for i, star := range stars {
		dist.Positions[i] = core.NewVec3(star.Position[0], star.Position[1], star.Position[2])
		dist.Weights[i] = star.Luminosity / total
	}
	return dist
}

func buildSpectrum(cfg config.SpectrumConfig) spectrum.Spectrum {
	switch cfg.Type {
	case "uniform":
		return spectrum.Uniform{Min: physics.FrequencyH, Max: 4 * physics.FrequencyH}
	case "monochromatic":
		return spectrum.Monochromatic{Frequency: cfg.Frequency}
	default:
		return spectrum.NewPlanck(cfg.Temperature)
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info("serving metrics", "addr", fmt.Sprintf("http://%s/metrics", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}
