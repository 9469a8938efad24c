package dataset

import (
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// DemoRows and DemoSeed size and seed the generated demo dataset.
const (
	DemoRows = 120
	DemoSeed = 42
)

// Demo column headers as written to CSV. They normalise to study_hours,
// sleep_hours, attendance, participation and final_score.
var demoColumns = []string{"Study Hours", "Sleep Hours", "Attendance", "Participation", "Final Score"}

// GenerateDemo synthesises n student records. Scores follow
//
//	45 + 7.5·study + 2·(sleep−7) + 0.3·(attendance−80) + 15·participation + ε
//
// with ε ~ N(0, 8), clipped to [0, 100].
func GenerateDemo(n int, seed int64) (*Dataset, error) {
	if n <= 0 {
		return nil, errors.NewValueErrorf("dataset.GenerateDemo", "row count must be positive, got %d", n)
	}
	src := rand.NewPCG(uint64(seed), uint64(seed))

	draw := func(d interface{ Rand() float64 }, lo, hi float64) []float64 {
		vs := make([]float64, n)
		for i := range vs {
			vs[i] = d.Rand()
		}
		return errors.ClipSlice(vs, lo, hi)
	}

	study := draw(distuv.Normal{Mu: 5.5, Sigma: 2, Src: src}, 1, 12)
	sleep := draw(distuv.Normal{Mu: 7, Sigma: 1.2, Src: src}, 4, 10)
	attendance := draw(distuv.Normal{Mu: 85, Sigma: 12, Src: src}, 60, 100)
	participation := draw(distuv.Uniform{Min: 0.4, Max: 1, Src: src}, 0.4, 1)
	noise := distuv.Normal{Mu: 0, Sigma: 8, Src: src}

	score := make([]float64, n)
	for i := range score {
		score[i] = errors.ClipValue(45+
			7.5*study[i]+
			2*(sleep[i]-7)+
			0.3*(attendance[i]-80)+
			15*participation[i]+
			noise.Rand(), 0, 100)
	}

	return New(demoColumns, [][]float64{study, sleep, attendance, participation, score})
}

// EnsureDemoCSV writes the demo dataset to path unless a file already exists
// there.
func EnsureDemoCSV(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", path)
	}

	ds, err := GenerateDemo(DemoRows, DemoSeed)
	if err != nil {
		return err
	}
	if err := Save(path, ds); err != nil {
		return err
	}
	log.GetLoggerWithName("dataset").Info("demo dataset generated",
		log.DataPathKey, path,
		log.SamplesKey, ds.NRows(),
	)
	return nil
}

// ResolvePath returns the first of primary and fallback that names an
// existing file. When neither does, the demo dataset is generated at demo and
// its path returned. Empty candidates are skipped.
func ResolvePath(primary, fallback, demo string) (string, error) {
	for _, p := range []string{primary, fallback} {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	if demo == "" {
		return "", errors.NewValueErrorf("dataset.ResolvePath", "no dataset found at %q or %q", primary, fallback)
	}
	log.GetLoggerWithName("dataset").Warn("dataset not found, using demo data",
		log.DataPathKey, primary,
		"fallback", fallback,
		"demo", demo,
	)
	if err := EnsureDemoCSV(demo); err != nil {
		return "", err
	}
	return demo, nil
}
