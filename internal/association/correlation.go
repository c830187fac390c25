package association

import (
	"context"

	"featassoc/domain/dataset"
	"featassoc/domain/report"
	"featassoc/internal/errors"

	"go.uber.org/zap"
)

// SpearmanAssess correlates the numeric target with every other numeric column
// and returns the rows ordered by descending |rho|.
func (a *Analyzer) SpearmanAssess(ctx context.Context, ds *dataset.Dataset, target string) (*report.CorrelationReport, error) {
	targetValues, err := numericTarget(ds, target)
	if err != nil {
		return nil, errors.Wrapf(err, "spearman report for %q", target)
	}

	features := candidates(ds, target, true)
	a.logger.Debug("spearman scan started",
		zap.String("target", target),
		zap.Int("features", len(features)),
		zap.Int("workers", a.cfg.Workers))

	rows, err := scanColumns(ctx, a.cfg.Workers, features, func(ctx context.Context, name string) (report.CorrelationRow, error) {
		values, err := ds.Floats(name)
		if err != nil {
			return report.CorrelationRow{}, errors.InvalidArgumentErr(err)
		}
		res, err := a.tests.Spearman(targetValues, values)
		if err != nil {
			return report.CorrelationRow{}, errors.StatisticComputation("spearman", name, err)
		}

		a.logger.Debug("spearman computed",
			zap.String("target", target),
			zap.String("feature", name),
			zap.Float64("rho", res.Statistic),
			zap.Float64("p_value", res.PValue),
			zap.Int("n", res.N))

		return report.CorrelationRow{
			Feature:   name,
			SpearmanR: res.Statistic,
			PValue:    res.PValue,
			Strength:  report.ClassifyStrength(res.Statistic),
			N:         res.N,
		}, nil
	})
	if err != nil {
		a.logger.Warn("spearman report failed", zap.String("target", target), zap.Error(err))
		return nil, err
	}

	rep := report.NewCorrelationReport(target, rows)
	a.logger.Info("spearman report ready",
		zap.String("report_id", rep.ID.String()),
		zap.String("target", target),
		zap.Int("rows", len(rep.Rows)))
	return rep, nil
}
