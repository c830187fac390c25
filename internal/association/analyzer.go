// Package association builds the Spearman and Kruskal-Wallis reports of a target column.
package association

import (
	"featassoc/domain/core"
	"featassoc/domain/dataset"
	"featassoc/internal/config"
	"featassoc/internal/errors"
	"featassoc/ports"

	"go.uber.org/zap"
)

// Analyzer computes association reports for one dataset at a time.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	tests  ports.RankTestsPort
	cfg    config.AnalysisConfig
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer; a nil logger discards output
func NewAnalyzer(tests ports.RankTestsPort, cfg config.AnalysisConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		tests:  tests,
		cfg:    cfg,
		logger: logger,
	}
}

// numericTarget checks that target exists and is numeric and returns its values
func numericTarget(ds *dataset.Dataset, target string) ([]float64, error) {
	if ds == nil {
		return nil, errors.InvalidArgument("dataset is nil")
	}
	kind, err := ds.Kind(target)
	if err != nil {
		return nil, errors.InvalidArgumentErr(err)
	}
	if kind != dataset.Numeric {
		return nil, errors.InvalidArgumentErr(core.NewWrongKindError(target, string(dataset.Numeric), string(kind)))
	}
	values, err := ds.Floats(target)
	if err != nil {
		return nil, errors.InvalidArgumentErr(err)
	}
	return values, nil
}

// candidates lists the columns of the wanted kind, target excluded, in dataset order
func candidates(ds *dataset.Dataset, target string, numeric bool) []string {
	var names []string
	for _, name := range ds.Names() {
		if name == target {
			continue
		}
		kind, _ := ds.Kind(name)
		if (kind == dataset.Numeric) == numeric {
			names = append(names, name)
		}
	}
	return names
}
