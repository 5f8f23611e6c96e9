package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/starspot-simulator/core"
	"github.com/signalsfoundry/starspot-simulator/internal/logging"
	"github.com/signalsfoundry/starspot-simulator/internal/observability"
	"github.com/signalsfoundry/starspot-simulator/internal/store"
	"github.com/signalsfoundry/starspot-simulator/orbit"
)

var (
	outFile       string
	metricsAddr   string
	storePath     string
	traceExporter string
	traceEndpoint string
)

// lightcurveCmd represents the lightcurve command
var lightcurveCmd = &cobra.Command{
	Use:   "lightcurve <scenario.yaml>",
	Short: "Synthesize a light curve from a scenario file",
	Long: `Load a scenario and compute the light curve it describes.

Without a planet block the scenario's phase grid drives the stellar
rotation and the output has one flux column per inclination realization.
With a planet block the observation times drive both rotation and orbit,
occulted spots are corrected for, and the output has a single column.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLightCurve(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(lightcurveCmd)

	lightcurveCmd.Flags().StringVarP(&outFile, "output", "o", "", "CSV output path (default: stdout)")
	lightcurveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	lightcurveCmd.Flags().StringVar(&storePath, "store", "", "SQLite archive to record the run into")
	lightcurveCmd.Flags().StringVar(&traceExporter, "trace", "", "trace exporter: stdout or otlp (default: tracing off)")
	lightcurveCmd.Flags().StringVar(&traceEndpoint, "trace-endpoint", "localhost:4317", "OTLP gRPC collector endpoint")

	viper.BindPFlag("store", lightcurveCmd.Flags().Lookup("store"))
	viper.BindPFlag("metrics-addr", lightcurveCmd.Flags().Lookup("metrics-addr"))
}

func runLightCurve(ctx context.Context, scenarioPath string) error {
	log := logging.NewFromEnv()
	ctx, log = logging.WithRunLogger(ctx, log)

	raw, err := os.ReadFile(scenarioPath)
	if err != nil {
		return fmt.Errorf("read scenario: %w", err)
	}
	sc, err := core.LoadScenario(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("load scenario %q: %w", scenarioPath, err)
	}
	log.Info(ctx, "scenario loaded",
		logging.String("path", scenarioPath),
		logging.Int("spots", sc.Spots.NSpots()),
		logging.Int("inclinations", len(sc.Inclinations)))

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:  traceExporter != "",
		Exporter: traceExporter,
		Endpoint: traceEndpoint,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	var collector *observability.EngineCollector
	if addr := viper.GetString("metrics-addr"); addr != "" {
		collector, err = observability.NewEngineCollector(nil)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		srv := &http.Server{Addr: addr, Handler: collector.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn(ctx, "metrics server stopped", logging.Any("error", err))
			}
		}()
		defer srv.Close()
	}

	estimator, err := buildEstimator(sc.Overlap, log)
	if err != nil {
		return err
	}
	cfg := sc.Star
	cfg.Estimator = estimator
	cfg.Logger = log

	star, err := core.NewStar(cfg)
	if err != nil {
		return fmt.Errorf("configure star: %w", err)
	}

	var transit *core.TransitConfig
	mode := "rotation"
	if sc.Planet != nil {
		tm, err := orbit.NewModel(*sc.Planet, star.LimbDarkening())
		if err != nil {
			return fmt.Errorf("configure orbit: %w", err)
		}
		transit = &core.TransitConfig{
			Planet: *sc.Planet,
			Model:  tm,
			Times:  sc.Times,
		}
		mode = "transit"
	}

	start := time.Now()
	res, err := star.LightCurve(ctx, sc.Spots, sc.Inclinations, transit)
	if err != nil {
		return fmt.Errorf("compute light curve: %w", err)
	}
	elapsed := time.Since(start)
	log.Info(ctx, "light curve computed",
		logging.String("mode", mode),
		logging.Int("samples", len(res.Flux)),
		logging.Int("transit_events", res.TransitEvents),
		logging.Any("elapsed", elapsed))

	if collector != nil {
		collector.ObserveRun(mode, elapsed, res.TransitEvents, res.OverlapEvaluations, sc.Spots.NSpots())
	}

	axis := timeAxis(sc, transit != nil)
	if err := writeCSV(outFile, mode, axis, res.Flux); err != nil {
		return err
	}

	if path := viper.GetString("store"); path != "" {
		db, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer db.Close()
		runID, err := db.SaveRun(ctx, mode, string(raw), axis, res.Flux)
		if err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		log.Info(ctx, "run archived", logging.String("path", path), logging.Any("run_id", runID))
	}

	return nil
}

// buildEstimator maps the scenario's overlap block onto an estimator.
func buildEstimator(choice core.OverlapChoice, log logging.Logger) (core.OverlapEstimator, error) {
	switch choice.Strategy {
	case "", "exact":
		return core.NewExactOverlap(), nil
	case "montecarlo":
		samples := choice.Samples
		if samples <= 0 {
			samples = core.DefaultMonteCarloSamples
		}
		rng := rand.New(rand.NewSource(choice.Seed))
		return core.NewMonteCarloOverlap(samples, rng, log), nil
	default:
		return nil, fmt.Errorf("unknown overlap strategy %q", choice.Strategy)
	}
}

// timeAxis reconstructs the independent axis of the output: observation
// times in transit mode, rotational phases otherwise.
func timeAxis(sc *core.Scenario, hasTransit bool) []float64 {
	if hasTransit {
		return sc.Times
	}
	if sc.Star.Phases != nil {
		return sc.Star.Phases
	}
	axis := make([]float64, sc.Star.NPhases)
	for i := range axis {
		axis[i] = 2 * math.Pi * float64(i) / float64(sc.Star.NPhases)
	}
	return axis
}

func writeCSV(path, mode string, axis []float64, flux [][]float64) error {
	var out io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	defer w.Flush()

	label := "phase"
	if mode == "transit" {
		label = "time"
	}
	nCols := 0
	if len(flux) > 0 {
		nCols = len(flux[0])
	}
	header := make([]string, 0, nCols+1)
	header = append(header, label)
	for j := 0; j < nCols; j++ {
		header = append(header, "flux_"+strconv.Itoa(j))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, nCols+1)
	for i, t := range axis {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, f := range flux[i] {
			row[j+1] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return nil
}
