// Standard attribute keys for pipeline logging.
//
// Keys follow a hierarchical naming convention ("data.samples",
// "metrics.rmse") so log lines from every package can be filtered the same
// way.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator or transformer type.
	// Examples: "LinearRegression", "PolynomialFeatures"
	ModelNameKey = "model.name"

	// EstimatorIDKey is a per-instance UUID, useful when several fits of the
	// same type run concurrently during cross-validation.
	EstimatorIDKey = "estimator.id"

	// ModelKindKey is the fitted model variant: "linear" or "poly".
	ModelKindKey = "model.kind"

	// DegreeKey is the polynomial degree of a model or CV candidate.
	DegreeKey = "model.degree"

	OperationKey = "ml.operation"
	ComponentKey = "ml.component"
	PhaseKey     = "ml.phase"
)

// Data shape.
const (
	SamplesKey     = "data.samples"
	FeaturesKey    = "data.features"
	RowsRemovedKey = "data.rows_removed"
	TrainRowsKey   = "data.train_rows"
	TestRowsKey    = "data.test_rows"
	ImputedKey     = "data.imputed_cells"

	// DataPathKey is the CSV the dataset was read from.
	DataPathKey = "data.path"

	// FingerprintKey is the xxhash fingerprint of a dataset.
	FingerprintKey = "data.fingerprint"
)

// Metrics and cross-validation.
const (
	MAEKey      = "metrics.mae"
	MSEKey      = "metrics.mse"
	RMSEKey     = "metrics.rmse"
	R2ScoreKey  = "metrics.r2_score"
	MeanRMSEKey = "cv.mean_rmse"
	StdRMSEKey  = "cv.std_rmse"
	FoldsKey    = "cv.folds"
	FoldKey     = "cv.fold"

	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	SuggestionKey = "error.suggestion"
)

// Run configuration.
const (
	RunIDKey      = "run.id"
	RandomSeedKey = "config.random_seed"
	TestSizeKey   = "config.test_size"
	OutputDirKey  = "config.output_dir"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"
	OperationClean        = "clean"
	OperationSplit        = "split"
	OperationSelect       = "select_degree"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorMissingColumns    = "MISSING_COLUMNS"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
