package association

import (
	"context"
	"errors"
	"math"
	"testing"

	"featassoc/adapters/stats/rank"
	"featassoc/domain/core"
	"featassoc/domain/dataset"
	"featassoc/domain/report"
	"featassoc/internal/config"
	apperrors "featassoc/internal/errors"
	"featassoc/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockRankTests stands in for the statistics primitive
type MockRankTests struct {
	mock.Mock
}

func (m *MockRankTests) Spearman(x, y []float64) (ports.TestResult, error) {
	args := m.Called(x, y)
	return args.Get(0).(ports.TestResult), args.Error(1)
}

func (m *MockRankTests) Kruskal(samples ...[]float64) (ports.TestResult, error) {
	args := m.Called(samples)
	return args.Get(0).(ports.TestResult), args.Error(1)
}

func analysisConfig(workers int, mode config.GroupMode, missing config.MissingPolicy) config.AnalysisConfig {
	return config.AnalysisConfig{Workers: workers, GroupMode: mode, MissingLabels: missing}
}

func newAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	return NewAnalyzer(rank.NewTests(), cfg, zap.NewNop())
}

// xyzDataset is the worked example: X and Y numeric, Z categorical
func xyzDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NumericColumn("X", []float64{1, 2, 3, 4, 5}),
		dataset.NumericColumn("Y", []float64{2, 4, 6, 8, 10}),
		dataset.CategoricalColumn("Z", []string{"a", "b", "a", "b", "a"}),
	)
	require.NoError(t, err)
	return ds
}

// mixedDataset has several numeric columns of differing association with "target"
func mixedDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.CategoricalColumn("region", []string{"n", "s", "n", "e", "s", "e", "n", "s"}),
		dataset.NumericColumn("weak", []float64{3, 1, 4, 1, 5, 9, 2, 6}),
		dataset.NumericColumn("target", []float64{1, 2, 3, 4, 5, 6, 7, 8}),
		dataset.NumericColumn("inverse", []float64{80, 70, 60, 50, 40, 30, 20, 10}),
		dataset.CategoricalColumn("tier", []string{"lo", "lo", "lo", "mid", "mid", "hi", "hi", "hi"}),
		dataset.NumericColumn("noisy", []float64{2, 1, 4, 3, 6, 5, 8, 7}),
		dataset.NumericColumn("twin", []float64{10, 20, 30, 40, 50, 60, 70, 80}),
	)
	require.NoError(t, err)
	return ds
}

func TestSpearmanAssess_WorkedExample(t *testing.T) {
	rep, err := newAnalyzer(config.Default().Analysis).SpearmanAssess(context.Background(), xyzDataset(t), "Y")
	require.NoError(t, err)

	require.Len(t, rep.Rows, 1)
	row := rep.Rows[0]
	assert.Equal(t, "X", row.Feature)
	assert.InDelta(t, 1.0, row.SpearmanR, 1e-12)
	assert.Equal(t, report.StrengthVeryStrong, row.Strength)
	assert.Equal(t, 5, row.N)
	assert.Equal(t, "Y", rep.Target)
	assert.False(t, rep.ID.String() == "")
}

func TestKruskalAll_WorkedExample(t *testing.T) {
	rep, err := newAnalyzer(config.Default().Analysis).KruskalAll(context.Background(), xyzDataset(t), "Y")
	require.NoError(t, err)

	require.Len(t, rep.Rows, 1)
	row := rep.Rows[0]
	assert.Equal(t, "Z", row.Feature)
	assert.False(t, math.IsNaN(row.H) || math.IsInf(row.H, 0))
	assert.InDelta(t, 6.0649681528662365, row.H, 1e-9)
	assert.InDelta(t, 0.01378892405567077, row.PValue, 1e-9)
	assert.Equal(t, string(config.GroupModeTwoSample), rep.Mode)
}

func TestSpearmanAssess_OnlyNumericNonTargetSortedByMagnitude(t *testing.T) {
	ds := mixedDataset(t)
	rep, err := newAnalyzer(config.Default().Analysis).SpearmanAssess(context.Background(), ds, "target")
	require.NoError(t, err)

	require.Len(t, rep.Rows, 4)
	for _, row := range rep.Rows {
		assert.NotEqual(t, "target", row.Feature)
		kind, err := ds.Kind(row.Feature)
		require.NoError(t, err)
		assert.Equal(t, dataset.Numeric, kind)
	}
	for i := 0; i+1 < len(rep.Rows); i++ {
		assert.GreaterOrEqual(t, math.Abs(rep.Rows[i].SpearmanR), math.Abs(rep.Rows[i+1].SpearmanR))
	}

	// inverse and twin tie at |rho| = 1 and keep scan order
	assert.Equal(t, []string{"inverse", "twin"}, rep.Features()[:2])
	inverse, _ := rep.Row("inverse")
	assert.InDelta(t, -1.0, inverse.SpearmanR, 1e-12)
	assert.Equal(t, report.StrengthVeryStrong, inverse.Strength)
}

func TestSpearmanAssess_ParallelMatchesSequential(t *testing.T) {
	ds := mixedDataset(t)

	sequential, err := newAnalyzer(analysisConfig(1, config.GroupModeTwoSample, config.MissingStrict)).SpearmanAssess(context.Background(), ds, "target")
	require.NoError(t, err)
	parallel, err := newAnalyzer(analysisConfig(8, config.GroupModeTwoSample, config.MissingStrict)).SpearmanAssess(context.Background(), ds, "target")
	require.NoError(t, err)

	assert.Equal(t, sequential.Rows, parallel.Rows)
}

func TestKruskalAll_OneRowPerCategoricalInOrder(t *testing.T) {
	ds := mixedDataset(t)

	for _, workers := range []int{1, 3} {
		rep, err := newAnalyzer(analysisConfig(workers, config.GroupModeTwoSample, config.MissingStrict)).KruskalAll(context.Background(), ds, "target")
		require.NoError(t, err)
		assert.Equal(t, []string{"region", "tier"}, rep.Features())
	}
}

func TestKruskalAll_GroupedMode(t *testing.T) {
	rep, err := newAnalyzer(analysisConfig(2, config.GroupModeGrouped, config.MissingStrict)).KruskalAll(context.Background(), xyzDataset(t), "Y")
	require.NoError(t, err)

	require.Len(t, rep.Rows, 1)
	row := rep.Rows[0]
	// a -> {2, 6, 10}, b -> {4, 8}: identical mean ranks
	assert.InDelta(t, 0.0, row.H, 1e-9)
	assert.InDelta(t, 1.0, row.PValue, 1e-9)
	assert.Equal(t, 2, row.Groups)
	assert.Equal(t, 5, row.N)
	assert.Equal(t, string(config.GroupModeGrouped), rep.Mode)
}

func TestKruskalAll_MissingLabels(t *testing.T) {
	ds, err := dataset.New(
		dataset.NumericColumn("Y", []float64{2, 4, 6, 8, 10}),
		dataset.CategoricalColumn("Z", []string{"a", "", "b", "a", "b"}),
	)
	require.NoError(t, err)

	_, err = newAnalyzer(analysisConfig(1, config.GroupModeTwoSample, config.MissingStrict)).KruskalAll(context.Background(), ds, "Y")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeMissingKey, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrMissingKey))

	rep, err := newAnalyzer(analysisConfig(1, config.GroupModeTwoSample, config.MissingKeep)).KruskalAll(context.Background(), ds, "Y")
	require.NoError(t, err)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, 9, rep.Rows[0].N)

	grouped, err := newAnalyzer(analysisConfig(1, config.GroupModeGrouped, config.MissingKeep)).KruskalAll(context.Background(), ds, "Y")
	require.NoError(t, err)
	assert.Equal(t, 4, grouped.Rows[0].N)
}

func TestReports_InvalidTarget(t *testing.T) {
	a := newAnalyzer(config.Default().Analysis)
	ds := xyzDataset(t)
	ctx := context.Background()

	_, err := a.SpearmanAssess(ctx, ds, "missing")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrColumnNotFound))

	_, err = a.SpearmanAssess(ctx, ds, "Z")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrWrongKind))

	_, err = a.KruskalAll(ctx, ds, "missing")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.GetCode(err))

	_, err = a.KruskalAll(ctx, ds, "Z")
	assert.True(t, errors.Is(err, core.ErrWrongKind))

	_, err = a.SpearmanAssess(ctx, nil, "Y")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.GetCode(err))
}

func TestKruskalOne(t *testing.T) {
	a := newAnalyzer(config.Default().Analysis)
	ds := xyzDataset(t)
	ctx := context.Background()

	res, err := a.KruskalOne(ctx, ds, "Z", "Y")
	require.NoError(t, err)
	assert.InDelta(t, 6.0649681528662365, res.H, 1e-9)
	assert.Equal(t, 2, res.Groups)

	// numeric columns are encoded too
	res, err = a.KruskalOne(ctx, ds, "X", "Y")
	require.NoError(t, err)
	assert.Equal(t, 10, res.N)

	_, err = a.KruskalOne(ctx, ds, "nope", "Y")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrColumnNotFound))

	_, err = a.KruskalOne(ctx, ds, "Y", "Y")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.GetCode(err))
}

func TestSpearmanAssess_StatisticErrorFromEarliestColumn(t *testing.T) {
	ds := mixedDataset(t)
	tests := new(MockRankTests)
	tests.On("Spearman", mock.Anything, []float64{3, 1, 4, 1, 5, 9, 2, 6}).
		Return(ports.TestResult{}, core.ErrDegenerateInput)
	tests.On("Spearman", mock.Anything, []float64{2, 1, 4, 3, 6, 5, 8, 7}).
		Return(ports.TestResult{}, core.ErrInsufficientData)
	tests.On("Spearman", mock.Anything, mock.Anything).
		Return(ports.TestResult{Statistic: 0.5, PValue: 0.2, N: 8, Groups: 2}, nil)

	a := NewAnalyzer(tests, analysisConfig(4, config.GroupModeTwoSample, config.MissingStrict), nil)
	_, err := a.SpearmanAssess(context.Background(), ds, "target")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStatisticComputation, apperrors.GetCode(err))
	assert.True(t, errors.Is(err, core.ErrDegenerateInput), "weak precedes noisy in scan order")
	assert.Contains(t, err.Error(), `"weak"`)
}

func TestKruskalAll_UsesRankTestsPort(t *testing.T) {
	tests := new(MockRankTests)
	tests.On("Kruskal", [][]float64{{2, 4, 6, 8, 10}, {1, 2, 1, 2, 1}}).
		Return(ports.TestResult{Statistic: 3, PValue: 0.08, N: 10, Groups: 2}, nil).Once()

	a := NewAnalyzer(tests, analysisConfig(1, config.GroupModeTwoSample, config.MissingStrict), zap.NewNop())
	rep, err := a.KruskalAll(context.Background(), xyzDataset(t), "Y")
	require.NoError(t, err)

	assert.Equal(t, []report.GroupDifferenceRow{{Feature: "Z", H: 3, PValue: 0.08, Groups: 2, N: 10}}, rep.Rows)
	tests.AssertExpectations(t)
}

func TestSpearmanAssess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer(config.Default().Analysis).SpearmanAssess(ctx, xyzDataset(t), "Y")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSpearmanAssess_LogsSummary(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	a := NewAnalyzer(rank.NewTests(), config.Default().Analysis, zap.New(obsCore))

	rep, err := a.SpearmanAssess(context.Background(), xyzDataset(t), "Y")
	require.NoError(t, err)

	ready := logs.FilterMessage("spearman report ready").All()
	require.Len(t, ready, 1)
	assert.Equal(t, rep.ID.String(), ready[0].ContextMap()["report_id"])
	assert.Equal(t, 1, logs.FilterMessage("spearman computed").Len())
}

func TestSpearmanAssess_NoCandidates(t *testing.T) {
	ds, err := dataset.New(
		dataset.NumericColumn("y", []float64{1, 2, 3}),
		dataset.CategoricalColumn("c", []string{"a", "b", "c"}),
	)
	require.NoError(t, err)

	rep, err := newAnalyzer(config.Default().Analysis).SpearmanAssess(context.Background(), ds, "y")
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
}
