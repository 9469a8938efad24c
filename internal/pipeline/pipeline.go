// Package pipeline runs one end-to-end training and evaluation pass: load,
// clean, split, train, evaluate, persist and plot.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/scorecast/dataset"
	"github.com/YuminosukeSato/scorecast/internal/config"
	"github.com/YuminosukeSato/scorecast/internal/runstore"
	"github.com/YuminosukeSato/scorecast/linear"
	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/modelselection"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// MetricsDocument is the JSON written to metrics_<kind>.json.
type MetricsDocument struct {
	RunID       string   `json:"run_id"`
	Model       string   `json:"model"`
	MAE         float64  `json:"mae"`
	MSE         float64  `json:"mse"`
	RMSE        float64  `json:"rmse"`
	R2          float64  `json:"r2"`
	Degree      int      `json:"degree,omitempty"`
	Features    []string `json:"features"`
	Target      string   `json:"target"`
	Fingerprint string   `json:"dataset_fingerprint"`

	CVResults []modelselection.DegreeResult `json:"cv_results,omitempty"`
}

// Report returns the four metrics of the document.
func (d MetricsDocument) Report() metrics.Report {
	return metrics.Report{MAE: d.MAE, MSE: d.MSE, RMSE: d.RMSE, R2: d.R2}
}

// Result summarises a finished run.
type Result struct {
	RunID       string
	DataPath    string
	Fingerprint string
	Rows        int
	TrainRows   int
	TestRows    int

	// Model and Metrics are nil when the run stopped after EDA.
	Model   linear.Model
	Metrics *MetricsDocument
	Search  *modelselection.DegreeSearch

	MetricsPath string
	ModelPath   string
	Figures     []string
}

// Run executes the pipeline described by cfg.
func Run(ctx context.Context, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString()}
	logger := log.GetLoggerWithName("pipeline").With(log.RunIDKey, res.RunID)
	logger.Info("run started", cfg.LogFields()...)
	start := time.Now()

	for _, dir := range []string{cfg.ModelsDir(), cfg.FiguresDir(), cfg.MetricsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create output directory %s", dir)
		}
	}

	path, err := dataset.ResolvePath(cfg.DataPath, cfg.FallbackDataPath, cfg.DemoDataPath)
	if err != nil {
		return nil, err
	}
	res.DataPath = path

	raw, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	clean, err := dataset.Clean(raw, cfg.Target, cfg.Features)
	if err != nil {
		return nil, err
	}
	res.Rows = clean.NRows()
	res.Fingerprint = dataset.Fingerprint(clean)
	logger.Info("dataset ready",
		log.DataPathKey, path,
		log.SamplesKey, res.Rows,
		log.FingerprintKey, res.Fingerprint,
	)

	if cfg.MakePlots {
		figs, err := edaFigures(cfg, clean)
		if err != nil {
			return nil, err
		}
		res.Figures = append(res.Figures, figs...)
	}

	if cfg.NoTrain {
		logger.Info("training skipped", log.DurationMsKey, time.Since(start).Milliseconds())
		return res, nil
	}

	split, err := dataset.Split(clean, cfg.Features, cfg.Target, cfg.TestSize, cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	res.TrainRows = split.YTrain.Len()
	res.TestRows = split.YTest.Len()

	model, search, err := train(cfg, split)
	if err != nil {
		return nil, err
	}
	res.Model = model
	res.Search = search

	pred, err := model.Predict(split.XTest)
	if err != nil {
		return nil, err
	}
	report, err := metrics.Compute(split.YTest, pred)
	if err != nil {
		return nil, err
	}
	logger.Info("model evaluated", append([]any{log.ModelKindKey, string(model.Kind()), log.DegreeKey, model.Degree()}, report.LogFields()...)...)

	doc := &MetricsDocument{
		RunID:       res.RunID,
		Model:       string(model.Kind()),
		MAE:         report.MAE,
		MSE:         report.MSE,
		RMSE:        report.RMSE,
		R2:          report.R2,
		Degree:      model.Degree(),
		Features:    cfg.Features,
		Target:      cfg.Target,
		Fingerprint: res.Fingerprint,
	}
	if search != nil {
		doc.CVResults = search.Results
	}
	res.Metrics = doc

	res.MetricsPath = filepath.Join(cfg.MetricsDir(), fmt.Sprintf("metrics_%s.json", model.Kind()))
	if err := writeJSON(res.MetricsPath, doc); err != nil {
		return nil, err
	}

	if cfg.SaveModel {
		res.ModelPath = filepath.Join(cfg.ModelsDir(), modelFileName(model, cfg.AutoDegree()))
		if err := linear.SaveModel(res.ModelPath, model, cfg.Features, cfg.Target); err != nil {
			return nil, err
		}
		logger.Info("model saved", "path", res.ModelPath)
	}

	store, err := runstore.Open(cfg.RunsDBPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if cfg.MakePlots {
		figs, err := modelFigures(ctx, cfg, store, split, pred, model, search, report, res.Fingerprint)
		if err != nil {
			return nil, err
		}
		res.Figures = append(res.Figures, figs...)
	}

	err = store.Save(ctx, runstore.Run{
		ID:          res.RunID,
		CreatedAt:   time.Now(),
		ModelKind:   string(model.Kind()),
		Degree:      model.Degree(),
		Fingerprint: res.Fingerprint,
		DataPath:    path,
		Features:    cfg.Features,
		Target:      cfg.Target,
		TrainRows:   res.TrainRows,
		TestRows:    res.TestRows,
		Metrics:     report,
		ModelPath:   res.ModelPath,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("run finished", log.DurationMsKey, time.Since(start).Milliseconds())
	return res, nil
}

func train(cfg config.Config, split *dataset.SplitResult) (linear.Model, *modelselection.DegreeSearch, error) {
	if cfg.Model == config.ModelLinear {
		m, err := linear.TrainLinear(split.XTrain, split.YTrain)
		return m, nil, err
	}

	var search *modelselection.DegreeSearch
	degree := 0
	if cfg.AutoDegree() {
		var err error
		search, err = modelselection.SelectDegree(split.XTrain, split.YTrain, cfg.Degrees, cfg.CVFolds, cfg.RandomSeed,
			modelselection.WithWorkers(cfg.Workers))
		if err != nil {
			return nil, nil, err
		}
		degree = search.BestDegree
	} else {
		var err error
		if degree, err = cfg.FixedDegree(); err != nil {
			return nil, nil, err
		}
	}

	m, err := linear.TrainPolynomial(split.XTrain, split.YTrain, degree)
	return m, search, err
}

func modelFileName(m linear.Model, auto bool) string {
	switch {
	case m.Kind() == linear.KindLinear:
		return "linear_model.json"
	case auto:
		return "poly_best.json"
	default:
		return fmt.Sprintf("poly_degree_%d.json", m.Degree())
	}
}

// LoadMetrics reads a metrics document written by Run.
func LoadMetrics(path string) (*MetricsDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read metrics %s", path)
	}
	var doc MetricsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse metrics %s", path)
	}
	return &doc, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode json")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
