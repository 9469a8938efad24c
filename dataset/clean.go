package dataset

import (
	"github.com/YuminosukeSato/scorecast/pkg/errors"
	"github.com/YuminosukeSato/scorecast/pkg/log"
)

// Clean drops records whose target is missing and records whose features are
// all missing. Surviving records keep their order. ds is not modified.
//
// Every name in features and target must exist in ds; otherwise Clean returns
// an *errors.SchemaError listing the absent and the available columns before
// any row is inspected.
func Clean(ds *Dataset, target string, features []string) (*Dataset, error) {
	const op = "dataset.Clean"
	if err := validateColumns(op, target, features); err != nil {
		return nil, err
	}
	if err := ds.RequireColumns(op, append(append([]string(nil), features...), target)...); err != nil {
		return nil, err
	}

	y := ds.cols[ds.index[target]]
	featureCols := make([][]float64, len(features))
	for k, name := range features {
		featureCols[k] = ds.cols[ds.index[name]]
	}

	keep := make([]int, 0, ds.nrows)
	for i := 0; i < ds.nrows; i++ {
		if IsMissing(y[i]) {
			continue
		}
		allMissing := true
		for _, col := range featureCols {
			if !IsMissing(col[i]) {
				allMissing = false
				break
			}
		}
		if allMissing {
			continue
		}
		keep = append(keep, i)
	}

	cleaned := ds.Rows(keep)
	log.GetLoggerWithName("dataset").Info("dataset cleaned",
		log.OperationKey, log.OperationClean,
		log.RowsRemovedKey, ds.nrows-len(keep),
		log.SamplesKey, cleaned.NRows(),
		log.FeaturesKey, cleaned.NCols(),
	)
	return cleaned, nil
}

// validateColumns checks the caller-supplied column roles: at least one
// feature, no duplicates, target not among the features.
func validateColumns(op, target string, features []string) error {
	if len(features) == 0 {
		return errors.NewValueError(op, "at least one feature is required")
	}
	seen := make(map[string]struct{}, len(features))
	for _, name := range features {
		if name == target {
			return errors.NewValueErrorf(op, "target %q is also listed as a feature", target)
		}
		if _, dup := seen[name]; dup {
			return errors.NewValueErrorf(op, "feature %q listed twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
