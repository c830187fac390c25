// Package rank implements the non-parametric rank tests behind the association reports.
package rank

import (
	"fmt"
	"math"

	"featassoc/domain/core"
	"featassoc/ports"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minSpearmanPairs is the smallest sample with a defined t-based p-value (one degree of freedom)
const minSpearmanPairs = 3

// Tests is the gonum-backed implementation of ports.RankTestsPort
type Tests struct{}

// NewTests creates the rank test adapter
func NewTests() *Tests {
	return &Tests{}
}

var _ ports.RankTestsPort = (*Tests)(nil)

// Spearman computes Spearman's rho as the Pearson correlation of average ranks
func (t *Tests) Spearman(x, y []float64) (ports.TestResult, error) {
	if len(x) != len(y) {
		return ports.TestResult{}, fmt.Errorf("%w: x has %d values, y has %d", core.ErrLengthMismatch, len(x), len(y))
	}

	xs, ys := pairwiseComplete(x, y)
	n := len(xs)
	if n < minSpearmanPairs {
		return ports.TestResult{}, fmt.Errorf("%w: spearman needs %d complete pairs, got %d", core.ErrInsufficientData, minSpearmanPairs, n)
	}

	xRanks, _ := averageRanks(xs)
	yRanks, _ := averageRanks(ys)

	sdX, err := stats.StandardDeviation(xRanks)
	if err != nil {
		return ports.TestResult{}, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
	}
	sdY, err := stats.StandardDeviation(yRanks)
	if err != nil {
		return ports.TestResult{}, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
	}
	if sdX == 0 || sdY == 0 {
		return ports.TestResult{}, fmt.Errorf("%w: constant input, correlation undefined", core.ErrDegenerateInput)
	}

	rho := stat.Correlation(xRanks, yRanks, nil)

	// Clamp to [-1, 1] range (due to floating point precision)
	if rho > 1.0 {
		rho = 1.0
	} else if rho < -1.0 {
		rho = -1.0
	}

	return ports.TestResult{
		Statistic: rho,
		PValue:    correlationPValue(rho, n),
		N:         n,
		Groups:    2,
	}, nil
}

// correlationPValue is the two-sided p-value of rho from Student's t with n-2 degrees of freedom
func correlationPValue(rho float64, n int) float64 {
	if math.Abs(rho) >= 1 {
		return 0
	}
	dof := float64(n - 2)
	tStat := rho * math.Sqrt(dof/((rho+1.0)*(1.0-rho)))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	return 2 * tDist.Survival(math.Abs(tStat))
}

// Kruskal computes the tie-corrected Kruskal-Wallis H over the samples
func (t *Tests) Kruskal(samples ...[]float64) (ports.TestResult, error) {
	if len(samples) < 2 {
		return ports.TestResult{}, fmt.Errorf("%w: kruskal needs at least two samples, got %d", core.ErrInsufficientData, len(samples))
	}

	cleaned := make([][]float64, len(samples))
	total := 0
	for i, s := range samples {
		cleaned[i] = dropMissing(s)
		if len(cleaned[i]) == 0 {
			return ports.TestResult{}, fmt.Errorf("%w: sample %d is empty after omitting missing values", core.ErrInsufficientData, i)
		}
		total += len(cleaned[i])
	}

	pooled := make([]float64, 0, total)
	for _, s := range cleaned {
		pooled = append(pooled, s...)
	}
	ranks, ties := averageRanks(pooled)

	n := float64(total)
	sumTerm := 0.0
	offset := 0
	for _, s := range cleaned {
		rankSum, err := stats.Sum(ranks[offset : offset+len(s)])
		if err != nil {
			return ports.TestResult{}, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
		}
		sumTerm += rankSum * rankSum / float64(len(s))
		offset += len(s)
	}

	h := 12.0/(n*(n+1))*sumTerm - 3*(n+1)

	tieSum := 0.0
	for _, size := range ties {
		ts := float64(size)
		tieSum += ts*ts*ts - ts
	}
	correction := 1 - tieSum/(n*n*n-n)
	if correction <= 0 {
		return ports.TestResult{}, fmt.Errorf("%w: all numbers are identical", core.ErrDegenerateInput)
	}
	h /= correction
	if h < 0 {
		// rounding noise around zero
		h = 0
	}

	chiDist := distuv.ChiSquared{K: float64(len(cleaned) - 1)}

	return ports.TestResult{
		Statistic: h,
		PValue:    chiDist.Survival(h),
		N:         total,
		Groups:    len(cleaned),
	}, nil
}
