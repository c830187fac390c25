package association

import (
	"context"
	"math"

	"featassoc/domain/core"
	"featassoc/domain/dataset"
	"featassoc/domain/report"
	"featassoc/internal/config"
	"featassoc/internal/encoding"
	"featassoc/internal/errors"

	"go.uber.org/zap"
)

// KruskalOne encodes column and runs the Kruskal-Wallis test of it against the numeric target.
//
// In two_sample mode the raw target values and the column's category codes are compared as
// two samples. In grouped mode the target values are split by category level instead.
func (a *Analyzer) KruskalOne(ctx context.Context, ds *dataset.Dataset, column, target string) (report.HTest, error) {
	targetValues, err := numericTarget(ds, target)
	if err != nil {
		return report.HTest{}, errors.Wrapf(err, "kruskal test for %q", target)
	}
	if !ds.Has(column) {
		return report.HTest{}, errors.InvalidArgumentErr(core.NewColumnNotFoundError(column))
	}
	if column == target {
		return report.HTest{}, errors.InvalidArgument("kruskal test: column and target must differ")
	}
	return a.kruskalColumn(ctx, ds, column, targetValues)
}

func (a *Analyzer) kruskalColumn(ctx context.Context, ds *dataset.Dataset, column string, targetValues []float64) (report.HTest, error) {
	if err := ctx.Err(); err != nil {
		return report.HTest{}, err
	}

	table, mapping, err := encoding.EncodeDataset(ds, column, a.cfg.MissingLabels)
	if err != nil {
		return report.HTest{}, errors.Wrapf(err, "encoding column %q", column)
	}
	codes, err := table.Floats(column)
	if err != nil {
		return report.HTest{}, errors.InvalidArgumentErr(err)
	}

	var samples [][]float64
	if a.cfg.GroupMode == config.GroupModeGrouped {
		samples = groupByCode(targetValues, codes, mapping.Len())
	} else {
		samples = [][]float64{targetValues, codes}
	}

	res, err := a.tests.Kruskal(samples...)
	if err != nil {
		return report.HTest{}, errors.StatisticComputation("kruskal", column, err)
	}

	a.logger.Debug("kruskal computed",
		zap.String("feature", column),
		zap.String("mode", string(a.cfg.GroupMode)),
		zap.Int("levels", mapping.Len()),
		zap.Float64("h", res.Statistic),
		zap.Float64("p_value", res.PValue),
		zap.Int("n", res.N))

	return report.HTest{
		H:      res.Statistic,
		PValue: res.PValue,
		Groups: res.Groups,
		N:      res.N,
	}, nil
}

// groupByCode splits values into one sample per code 1..levels.
// Rows missing either side are dropped; levels left without rows are omitted.
func groupByCode(values, codes []float64, levels int) [][]float64 {
	groups := make([][]float64, levels)
	for i, v := range values {
		c := codes[i]
		if math.IsNaN(v) || math.IsNaN(c) {
			continue
		}
		groups[int(c)-1] = append(groups[int(c)-1], v)
	}

	samples := make([][]float64, 0, levels)
	for _, g := range groups {
		if len(g) > 0 {
			samples = append(samples, g)
		}
	}
	return samples
}

// KruskalAll runs KruskalOne for every categorical column other than target, in column order
func (a *Analyzer) KruskalAll(ctx context.Context, ds *dataset.Dataset, target string) (*report.GroupDifferenceReport, error) {
	targetValues, err := numericTarget(ds, target)
	if err != nil {
		return nil, errors.Wrapf(err, "kruskal report for %q", target)
	}

	features := candidates(ds, target, false)
	a.logger.Debug("kruskal scan started",
		zap.String("target", target),
		zap.Int("features", len(features)),
		zap.String("mode", string(a.cfg.GroupMode)))

	rows, err := scanColumns(ctx, a.cfg.Workers, features, func(ctx context.Context, name string) (report.GroupDifferenceRow, error) {
		res, err := a.kruskalColumn(ctx, ds, name, targetValues)
		if err != nil {
			return report.GroupDifferenceRow{}, err
		}
		return report.GroupDifferenceRow{
			Feature: name,
			H:       res.H,
			PValue:  res.PValue,
			Groups:  res.Groups,
			N:       res.N,
		}, nil
	})
	if err != nil {
		a.logger.Warn("kruskal report failed", zap.String("target", target), zap.Error(err))
		return nil, err
	}

	rep := report.NewGroupDifferenceReport(target, string(a.cfg.GroupMode), rows)
	a.logger.Info("kruskal report ready",
		zap.String("report_id", rep.ID.String()),
		zap.String("target", target),
		zap.Int("rows", len(rep.Rows)))
	return rep, nil
}
