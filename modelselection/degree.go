package modelselection

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scorecast/core/parallel"
	"github.com/YuminosukeSato/scorecast/linear"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
	"github.com/YuminosukeSato/scorecast/preprocessing"
)

// DegreeResult は1つの候補次数の交差検証結果
type DegreeResult struct {
	Degree   int       `json:"degree"`
	Scores   []float64 `json:"scores"`
	MeanRMSE float64   `json:"mean_rmse"`
	StdRMSE  float64   `json:"std_rmse"`
}

// DegreeSearch は次数探索の結果。Results は次数の昇順。
type DegreeSearch struct {
	BestDegree int            `json:"best_degree"`
	Results    []DegreeResult `json:"results"`
}

// Best は BestDegree に対応する結果を返す
func (s *DegreeSearch) Best() DegreeResult {
	for _, r := range s.Results {
		if r.Degree == s.BestDegree {
			return r
		}
	}
	return DegreeResult{}
}

type selectConfig struct {
	workers int
}

// SelectOption は SelectDegree の動作を変更する
type SelectOption func(*selectConfig)

// WithWorkers は並列実行するワーカー数を設定する。1 で逐次実行。
func WithWorkers(n int) SelectOption {
	return func(c *selectConfig) {
		c.workers = n
	}
}

// SelectDegree は候補次数ごとにK分割交差検証を行い、平均RMSEが最小の次数を選ぶ。
//
// 全次数で同じ分割を使う。同点の場合は小さい次数が優先される。
// 標準偏差は標本標準偏差 (n-1)。
func SelectDegree(X mat.Matrix, y mat.Vector, degrees []int, k int, seed int64, opts ...SelectOption) (*DegreeSearch, error) {
	const op = "SelectDegree"

	cfg := selectConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(degrees) == 0 {
		return nil, errors.NewValueError(op, "degree grid must not be empty")
	}
	if k < 2 {
		return nil, errors.NewValueErrorf(op, "k must be at least 2, got %d", k)
	}
	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError(op, n, y.Len(), 0)
	}
	if k > n {
		return nil, errors.NewValueErrorf(op, "k=%d exceeds the number of samples (%d)", k, n)
	}
	grid, err := normalizeDegrees(op, degrees)
	if err != nil {
		return nil, err
	}

	folds, err := KFold{NSplits: k, Shuffle: true, Seed: seed}.Split(n)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("modelselection")
	start := time.Now()

	// 次数ごとの展開は純粋関数なので先に済ませ、各セルで共有する
	expanded := make([]*mat.Dense, len(grid))
	for i, d := range grid {
		expanded[i], err = preprocessing.ExpandPolynomial(X, d)
		if err != nil {
			return nil, err
		}
	}

	fitPredict := func(XTrain *mat.Dense, yTrain *mat.VecDense, XTest *mat.Dense) (*mat.VecDense, error) {
		reg := linear.NewLinearRegression()
		if err := reg.Fit(XTrain, yTrain); err != nil {
			return nil, err
		}
		return reg.Predict(XTest)
	}

	// (次数, 分割) の各セルを添字付きで評価する
	cells, err := parallel.Map(len(grid)*k, cfg.workers, func(i int) (float64, error) {
		d, f := i/k, i%k
		rmse, err := foldRMSE(expanded[d], y, folds[f], fitPredict)
		if err != nil {
			return 0, errors.Wrapf(err, "degree %d fold %d", grid[d], f)
		}
		return rmse, nil
	})
	if err != nil {
		return nil, err
	}

	search := &DegreeSearch{Results: make([]DegreeResult, len(grid))}
	for i, d := range grid {
		scores := cells[i*k : (i+1)*k : (i+1)*k]
		mean, std := stat.MeanStdDev(scores, nil)
		search.Results[i] = DegreeResult{
			Degree:   d,
			Scores:   scores,
			MeanRMSE: mean,
			StdRMSE:  std,
		}
		logger.Debug("degree evaluated",
			log.DegreeKey, d,
			log.MeanRMSEKey, mean,
			log.StdRMSEKey, std,
		)
	}
	bestIdx := bestIndex(search.Results)
	search.BestDegree = grid[bestIdx]

	logger.Info("degree selected",
		log.OperationKey, log.OperationSelect,
		log.DegreeKey, search.BestDegree,
		log.MeanRMSEKey, search.Results[bestIdx].MeanRMSE,
		log.FoldsKey, k,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return search, nil
}

// bestIndex returns the index of the lowest mean RMSE. Equal means keep the
// earlier entry, so with an ascending grid the lowest degree wins.
func bestIndex(results []DegreeResult) int {
	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].MeanRMSE < results[best].MeanRMSE {
			best = i
		}
	}
	return best
}

func normalizeDegrees(op string, degrees []int) ([]int, error) {
	grid := make([]int, 0, len(degrees))
	seen := make(map[int]bool, len(degrees))
	for _, d := range degrees {
		if d < 2 {
			return nil, errors.NewValueErrorf(op, "degree must be at least 2, got %d", d)
		}
		if !seen[d] {
			seen[d] = true
			grid = append(grid, d)
		}
	}
	sort.Ints(grid)
	return grid, nil
}
