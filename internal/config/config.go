// Package config holds the run configuration: defaults, an optional YAML
// file, environment overrides and validation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// Model kinds accepted by Config.Model.
const (
	ModelLinear = "linear"
	ModelPoly   = "poly"
)

// DegreeAuto selects the polynomial degree by cross-validation.
const DegreeAuto = "auto"

// DefaultDataPath is the default DataPath, and the FallbackDataPath read when
// DataPath names no file.
const DefaultDataPath = "data/student_performance.csv"

// Environment variables read by ApplyEnv.
const (
	EnvDataPath  = "DATA_PATH"
	EnvLogLevel  = "SCORECAST_LOG_LEVEL"
	EnvOutputDir = "SCORECAST_OUTPUT_DIR"
)

// Config is the complete configuration of one pipeline run.
type Config struct {
	DataPath         string   `yaml:"data_path" json:"data_path"`
	FallbackDataPath string   `yaml:"fallback_data_path" json:"fallback_data_path"`
	DemoDataPath     string   `yaml:"demo_data_path" json:"demo_data_path"`
	Target           string   `yaml:"target" json:"target"`
	Features         []string `yaml:"features" json:"features"`

	Model   string `yaml:"model" json:"model"`
	Degree  string `yaml:"degree" json:"degree"` // "auto" or an integer >= 2
	Degrees []int  `yaml:"degrees" json:"degrees"`
	CVFolds int    `yaml:"cv_folds" json:"cv_folds"`
	Workers int    `yaml:"workers" json:"workers"` // 0 means one per CPU

	TestSize   float64 `yaml:"test_size" json:"test_size"`
	RandomSeed int64   `yaml:"random_seed" json:"random_seed"`

	OutputDir string `yaml:"output_dir" json:"output_dir"`
	SaveModel bool   `yaml:"save_model" json:"save_model"`
	MakePlots bool   `yaml:"make_plots" json:"make_plots"`
	NoTrain   bool   `yaml:"no_train" json:"no_train"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, console
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataPath:         DefaultDataPath,
		FallbackDataPath: DefaultDataPath,
		DemoDataPath:     "data/student_performance_demo.csv",
		Target:           "final_score",
		Features: []string{
			"study_hours", "attendance", "previous_scores",
			"tutoring_sessions", "sleep_hours", "physical_activity",
		},
		Model:      ModelLinear,
		Degree:     DegreeAuto,
		Degrees:    []int{2, 3, 4, 5},
		CVFolds:    5,
		TestSize:   0.2,
		RandomSeed: 42,
		OutputDir:  "outputs",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return cfg, errors.NewValueErrorf("config.Load", "unsupported config file format: %s", filepath.Ext(path))
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataPath); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
}

// AutoDegree reports whether the degree is chosen by cross-validation.
func (c Config) AutoDegree() bool {
	return strings.EqualFold(c.Degree, DegreeAuto)
}

// FixedDegree parses Degree when it is not "auto".
func (c Config) FixedDegree() (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(c.Degree))
	if err != nil {
		return 0, errors.NewValueErrorf("config", "degree must be %q or an integer, got %q", DegreeAuto, c.Degree)
	}
	if d < 2 {
		return 0, errors.NewValueErrorf("config", "degree must be at least 2, got %d", d)
	}
	return d, nil
}

// ModelsDir, FiguresDir and MetricsDir are the output locations.
func (c Config) ModelsDir() string  { return filepath.Join(c.OutputDir, "models") }
func (c Config) FiguresDir() string { return filepath.Join(c.OutputDir, "figures") }
func (c Config) MetricsDir() string { return c.OutputDir }

// RunsDBPath is the SQLite run history file.
func (c Config) RunsDBPath() string { return filepath.Join(c.OutputDir, "runs.db") }

// Validate checks every field and returns the first problem as a ValueError.
func (c Config) Validate() error {
	const op = "config.Validate"

	if strings.TrimSpace(c.Target) == "" {
		return errors.NewValueError(op, "target must not be empty")
	}
	if len(c.Features) == 0 {
		return errors.NewValueError(op, "at least one feature is required")
	}
	switch c.Model {
	case ModelLinear, ModelPoly:
	default:
		return errors.NewValueErrorf(op, "model must be %q or %q, got %q", ModelLinear, ModelPoly, c.Model)
	}
	if !c.AutoDegree() {
		if _, err := c.FixedDegree(); err != nil {
			return err
		}
	}
	if len(c.Degrees) == 0 {
		return errors.NewValueError(op, "degree grid must not be empty")
	}
	for _, d := range c.Degrees {
		if d < 2 {
			return errors.NewValueErrorf(op, "degree grid values must be at least 2, got %d", d)
		}
	}
	if c.CVFolds < 2 {
		return errors.NewValueErrorf(op, "cv_folds must be at least 2, got %d", c.CVFolds)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValueErrorf(op, "test_size must be in (0, 1), got %g", c.TestSize)
	}
	if c.Workers < 0 {
		return errors.NewValueErrorf(op, "workers must not be negative, got %d", c.Workers)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.NewValueError(op, "output_dir must not be empty")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return errors.NewValueErrorf(op, "invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return errors.NewValueErrorf(op, "log format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ParseList splits a comma separated list, trimming blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseDegrees parses a comma separated list of integers.
func ParseDegrees(s string) ([]int, error) {
	parts := ParseList(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.NewValueErrorf("config", "invalid degree %q", p)
		}
		out = append(out, d)
	}
	return out, nil
}

// LogFields returns the fields logged at the start of a run.
func (c Config) LogFields() []any {
	return []any{
		log.DataPathKey, c.DataPath,
		log.ModelKindKey, c.Model,
		log.RandomSeedKey, c.RandomSeed,
		log.TestSizeKey, c.TestSize,
		log.OutputDirKey, c.OutputDir,
		log.FoldsKey, c.CVFolds,
	}
}
