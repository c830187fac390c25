// Package featassoc summarizes how the other columns of a dataset relate to a numeric target:
// a Spearman rank correlation report over numeric columns and a Kruskal-Wallis H report over
// categorical columns.
//
//	ds, _ := dataset.New(
//		dataset.NumericColumn("X", []float64{1, 2, 3, 4, 5}),
//		dataset.NumericColumn("Y", []float64{2, 4, 6, 8, 10}),
//		dataset.CategoricalColumn("Z", []string{"a", "b", "a", "b", "a"}),
//	)
//	corr, _ := featassoc.SpearmanAssess(ds, "Y")
//	groups, _ := featassoc.KruskalAll(ds, "Y")
package featassoc

import (
	"context"

	"featassoc/adapters/stats/rank"
	"featassoc/domain/core"
	"featassoc/domain/dataset"
	"featassoc/domain/report"
	"featassoc/internal"
	"featassoc/internal/association"
	"featassoc/internal/config"
	"featassoc/internal/encoding"
	"featassoc/internal/errors"
	"featassoc/ports"

	"go.uber.org/zap"
)

// GroupMode selects how KruskalAll and KruskalOne build their samples
type GroupMode = config.GroupMode

const (
	// GroupModeTwoSample compares the raw target with the category codes (default)
	GroupModeTwoSample = config.GroupModeTwoSample
	// GroupModeGrouped compares the target's values across category levels
	GroupModeGrouped = config.GroupModeGrouped
)

// MissingPolicy selects how category lookups treat missing values
type MissingPolicy = config.MissingPolicy

const (
	// MissingStrict fails on a missing value (default)
	MissingStrict = config.MissingStrict
	// MissingKeep carries missing values through as missing
	MissingKeep = config.MissingKeep
)

// Error codes carried by returned errors, see ErrorCode
const (
	CodeInvalidArgument      = errors.CodeInvalidArgument
	CodeMissingKey           = errors.CodeMissingKey
	CodeStatisticComputation = errors.CodeStatisticComputation
	CodeConfigInvalid        = errors.CodeConfigInvalid
)

// ErrorCode returns the code attached to err, or "UNKNOWN"
func ErrorCode(err error) string {
	return errors.GetCode(err)
}

// IsNotFound reports whether err stems from a column that does not exist
func IsNotFound(err error) bool {
	return core.IsNotFoundError(err)
}

// IsInvalidArgument reports whether err stems from a malformed dataset or an unknown column
func IsInvalidArgument(err error) bool {
	return core.IsInvalidArgument(err)
}

// IsStatisticError reports whether a rank test could not be computed
// (too few observations or no spread)
func IsStatisticError(err error) bool {
	return core.IsStatisticError(err)
}

// Analyzer computes association reports with a fixed configuration
type Analyzer struct {
	cfg      config.Config
	logger   *zap.Logger
	tests    ports.RankTestsPort
	analysis *association.Analyzer
}

// Option customizes an Analyzer
type Option func(*Analyzer)

// WithWorkers bounds how many columns are tested concurrently
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.cfg.Analysis.Workers = n }
}

// WithGroupMode selects the Kruskal-Wallis sample construction
func WithGroupMode(mode GroupMode) Option {
	return func(a *Analyzer) { a.cfg.Analysis.GroupMode = mode }
}

// WithMissingLabels selects how missing categorical values are encoded
func WithMissingLabels(policy MissingPolicy) Option {
	return func(a *Analyzer) { a.cfg.Analysis.MissingLabels = policy }
}

// WithLogger sets the logger; by default nothing is logged
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// WithRankTests replaces the statistics primitive
func WithRankTests(tests ports.RankTestsPort) Option {
	return func(a *Analyzer) { a.tests = tests }
}

// New creates an analyzer from the default configuration and opts
func New(opts ...Option) (*Analyzer, error) {
	return newAnalyzer(*config.Default(), zap.NewNop(), opts...)
}

// NewFromEnv creates an analyzer configured from the environment and optional .env files.
// Its logger follows LOG_LEVEL unless WithLogger overrides it.
func NewFromEnv(envFiles []string, opts ...Option) (*Analyzer, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	return newAnalyzer(*cfg, internal.NewLogger(cfg.Log.Level), opts...)
}

func newAnalyzer(cfg config.Config, logger *zap.Logger, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		cfg:    cfg,
		logger: logger,
		tests:  rank.NewTests(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	a.analysis = association.NewAnalyzer(a.tests, a.cfg.Analysis, a.logger)
	return a, nil
}

// SpearmanAssess correlates the numeric target with every other numeric column,
// strongest association first
func (a *Analyzer) SpearmanAssess(ctx context.Context, ds *dataset.Dataset, target string) (*report.CorrelationReport, error) {
	return a.analysis.SpearmanAssess(ctx, ds, target)
}

// KruskalAll tests the numeric target against every categorical column, in column order
func (a *Analyzer) KruskalAll(ctx context.Context, ds *dataset.Dataset, target string) (*report.GroupDifferenceReport, error) {
	return a.analysis.KruskalAll(ctx, ds, target)
}

// KruskalOne tests the numeric target against a single column
func (a *Analyzer) KruskalOne(ctx context.Context, ds *dataset.Dataset, column, target string) (report.HTest, error) {
	return a.analysis.KruskalOne(ctx, ds, column, target)
}

// WriteNames returns the label->code and code->label maps of a column
func (a *Analyzer) WriteNames(ds *dataset.Dataset, column string) (map[string]int, map[int]string, error) {
	return encoding.WriteNames(ds, column)
}

// Swap maps a copy of a column to codes (toNumbers) or back to labels
func (a *Analyzer) Swap(ds *dataset.Dataset, column string, toNumbers bool) (dataset.Column, error) {
	return encoding.Swap(ds, column, toNumbers, a.cfg.Analysis.MissingLabels)
}

var defaultAnalyzer, _ = New()

// SpearmanAssess runs Analyzer.SpearmanAssess with the default configuration
func SpearmanAssess(ds *dataset.Dataset, target string) (*report.CorrelationReport, error) {
	return defaultAnalyzer.SpearmanAssess(context.Background(), ds, target)
}

// KruskalAll runs Analyzer.KruskalAll with the default configuration
func KruskalAll(ds *dataset.Dataset, target string) (*report.GroupDifferenceReport, error) {
	return defaultAnalyzer.KruskalAll(context.Background(), ds, target)
}

// KruskalOne runs Analyzer.KruskalOne with the default configuration
func KruskalOne(ds *dataset.Dataset, column, target string) (report.HTest, error) {
	return defaultAnalyzer.KruskalOne(context.Background(), ds, column, target)
}

// WriteNames returns the label->code and code->label maps of a column
func WriteNames(ds *dataset.Dataset, column string) (map[string]int, map[int]string, error) {
	return encoding.WriteNames(ds, column)
}

// Swap maps a copy of a column to codes (toNumbers) or back to labels, failing on missing values
func Swap(ds *dataset.Dataset, column string, toNumbers bool) (dataset.Column, error) {
	return defaultAnalyzer.Swap(ds, column, toNumbers)
}
