// Package scorecast predicts student final scores from study and lifestyle
// factors with ordinary least squares, optionally on polynomial features
// whose degree is chosen by k-fold cross-validation.
//
// The library is organized into several packages:
//
//   - dataset: CSV loading, column normalisation, cleaning, seeded train/test split, demo data
//   - preprocessing: polynomial feature expansion and mean imputation
//   - linear: OLS regression and the linear/polynomial Model variants, model artifacts
//   - metrics: MAE, MSE, RMSE and R²
//   - modelselection: k-fold splitting and cross-validated degree selection
//   - plots: EDA and diagnostic figures
//   - core/model: fitted-state bookkeeping and persisted model weights
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # Quick Start
//
// Fit a linear model and evaluate it on held-out rows:
//
//	ds, err := dataset.Load("data/student_performance.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	features := []string{"study_hours", "sleep_hours", "attendance"}
//	clean, err := dataset.Clean(ds, "final_score", features)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	split, err := dataset.Split(clean, features, "final_score", 0.2, 42)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	model, err := linear.TrainLinear(split.XTrain, split.YTrain)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pred, err := model.Predict(split.XTest)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := metrics.Compute(split.YTest, pred)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("RMSE=%.3f R2=%.3f\n", report.RMSE, report.R2)
//
// # Degree Selection
//
//	search, err := modelselection.SelectDegree(split.XTrain, split.YTrain, []int{2, 3, 4, 5}, 5, 42)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	poly, err := linear.TrainPolynomial(split.XTrain, split.YTrain, search.BestDegree)
//
// Every (degree, fold) cell runs on core/parallel; results do not depend on
// the number of workers.
//
// # Command Line
//
// The scorecast command in cmd/scorecast runs the whole pipeline and writes
// metrics, models, figures and a SQLite run history under the output
// directory:
//
//	scorecast --model poly --degree auto --make-plots --save-model
package scorecast
