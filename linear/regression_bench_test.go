package linear

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// createBenchmarkData はベンチマーク用のデータを生成する
func createBenchmarkData(rows, cols int) (*mat.Dense, *mat.VecDense) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
	}

	// y = 1 + Σ (j+1)/2·x_j + 小さなノイズ
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		sum := 1.0
		for j := 0; j < cols; j++ {
			sum += X.At(i, j) * float64(j+1) * 0.5
		}
		sum += (rng.Float64() - 0.5) * 0.1
		y.SetVec(i, sum)
	}
	return X, y
}

// BenchmarkLinearRegressionFit はFitメソッドのベンチマークを実行する
func BenchmarkLinearRegressionFit(b *testing.B) {
	for _, size := range []struct{ rows, cols int }{
		{100, 6},
		{1000, 6},
		{1000, 27}, // 6特徴量・次数2の展開
		{5000, 83}, // 6特徴量・次数3の展開
	} {
		X, y := createBenchmarkData(size.rows, size.cols)
		b.Run(fmt.Sprintf("%dx%d", size.rows, size.cols), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				lr := NewLinearRegression()
				if err := lr.Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkTrainPolynomial は展開込みの学習をベンチマークする
func BenchmarkTrainPolynomial(b *testing.B) {
	X, y := createBenchmarkData(120, 6)
	for _, degree := range []int{2, 3, 4, 5} {
		b.Run(fmt.Sprintf("degree_%d", degree), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := TrainPolynomial(X, y, degree); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
