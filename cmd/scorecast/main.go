// Command scorecast trains and evaluates student score regression models.
//
// Usage:
//
//	scorecast --model linear --make-plots
//	scorecast --model poly --degree auto --degrees 2,3,4 --save-model
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/YuminosukeSato/scorecast/internal/config"
	"github.com/YuminosukeSato/scorecast/internal/pipeline"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "scorecast: %v\n", err)
		return 1
	}

	if err := setupLogging(cfg, stderr); err != nil {
		fmt.Fprintf(stderr, "scorecast: %v\n", err)
		return 1
	}
	defer log.InstallWarningSink(nil)

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		log.GetLogger().Error("run failed", log.ErrAttr(err))
		fmt.Fprintf(stderr, "scorecast: %v\n", err)
		return 1
	}
	printSummary(stdout, res)
	return 0
}

// parseConfig layers defaults, the optional YAML file, the environment and
// finally the flags that were set explicitly.
func parseConfig(args []string, stderr io.Writer) (config.Config, error) {
	def := config.Default()

	fs := flag.NewFlagSet("scorecast", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to a YAML config file")
	dataPath := fs.String("data-path", def.DataPath, "path to the CSV data file")
	target := fs.String("target", def.Target, "target column name")
	features := fs.String("features", strings.Join(def.Features, ","), "comma separated feature column names")
	model := fs.String("model", "", "model to train: linear or poly (required)")
	degree := fs.String("degree", def.Degree, `polynomial degree (integer) or "auto" for cross-validated selection`)
	degrees := fs.String("degrees", joinInts(def.Degrees), "comma separated candidate degrees for --degree auto")
	cvFolds := fs.Int("cv-folds", def.CVFolds, "number of cross-validation folds")
	workers := fs.Int("workers", def.Workers, "parallel cross-validation workers (0 = one per CPU)")
	testSize := fs.Float64("test-size", def.TestSize, "test set proportion")
	seed := fs.Int64("random-state", def.RandomSeed, "random seed")
	outputDir := fs.String("output-dir", def.OutputDir, "output directory")
	saveModel := fs.Bool("save-model", false, "save the trained model")
	makePlots := fs.Bool("make-plots", false, "generate and save plots")
	noTrain := fs.Bool("no-train", false, "only run EDA plots, skip training")
	logLevel := fs.String("log-level", def.Logging.Level, "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", def.Logging.Format, "log format: console or json")

	if err := fs.Parse(args); err != nil {
		return def, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv()

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-path":
			cfg.DataPath = *dataPath
		case "target":
			cfg.Target = *target
		case "features":
			cfg.Features = config.ParseList(*features)
		case "model":
			cfg.Model = *model
		case "degree":
			cfg.Degree = *degree
		case "degrees":
			ds, err := config.ParseDegrees(*degrees)
			if err != nil {
				flagErr = err
			}
			cfg.Degrees = ds
		case "cv-folds":
			cfg.CVFolds = *cvFolds
		case "workers":
			cfg.Workers = *workers
		case "test-size":
			cfg.TestSize = *testSize
		case "random-state":
			cfg.RandomSeed = *seed
		case "output-dir":
			cfg.OutputDir = *outputDir
		case "save-model":
			cfg.SaveModel = *saveModel
		case "make-plots":
			cfg.MakePlots = *makePlots
		case "no-train":
			cfg.NoTrain = *noTrain
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-format":
			cfg.Logging.Format = *logFormat
		}
	})
	if flagErr != nil {
		return cfg, flagErr
	}

	if *model == "" && *configPath == "" {
		return cfg, errors.NewValueError("scorecast", "--model is required (linear or poly)")
	}
	return cfg, cfg.Validate()
}

func setupLogging(cfg config.Config, w io.Writer) error {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return errors.NewValueError("scorecast", err.Error())
	}
	if cfg.Logging.Format == "json" {
		log.SetupLoggerWithWriter(w, cfg.Logging.Level)
		log.InstallWarningSink(log.GetLogger())
		return nil
	}
	zl := log.NewZerologLogger(w, "console", level)
	log.SetProvider(log.NewZerologProvider(zl))
	log.InstallWarningSink(zl)
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "run %s\n", res.RunID)
	fmt.Fprintf(w, "data: %s (%d rows, fingerprint %s)\n", res.DataPath, res.Rows, res.Fingerprint)
	if res.Metrics == nil {
		fmt.Fprintln(w, "EDA complete, training skipped")
		printFigures(w, res.Figures)
		return
	}

	title := "Linear Regression Results"
	if res.Model.Degree() > 0 {
		title = fmt.Sprintf("Polynomial Regression Results (degree=%d)", res.Model.Degree())
	}
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "MAE:  %.4f\nMSE:  %.4f\nRMSE: %.4f\nR2:   %.4f\n",
		res.Metrics.MAE, res.Metrics.MSE, res.Metrics.RMSE, res.Metrics.R2)

	if res.Search != nil {
		fmt.Fprintln(w, "\nCV results:")
		for _, r := range res.Search.Results {
			fmt.Fprintf(w, "  degree %d: RMSE = %.4f ± %.4f\n", r.Degree, r.MeanRMSE, r.StdRMSE)
		}
	}

	fmt.Fprintf(w, "\nmetrics: %s\n", res.MetricsPath)
	if res.ModelPath != "" {
		fmt.Fprintf(w, "model:   %s\n", res.ModelPath)
	}
	printFigures(w, res.Figures)
}

func printFigures(w io.Writer, figs []string) {
	for _, f := range figs {
		fmt.Fprintf(w, "figure:  %s\n", f)
	}
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
