package ports

// TestResult is the outcome of a rank-based test
type TestResult struct {
	Statistic float64
	PValue    float64
	N         int // observations used after omitting missing values
	Groups    int // samples compared; 2 for a correlation
}

// RankTestsPort provides the non-parametric tests the association reports are built on.
// Missing values are NaN and are omitted by the implementation.
type RankTestsPort interface {
	// Spearman computes the rank correlation coefficient of x and y and its two-sided p-value,
	// dropping every pair where either side is missing.
	Spearman(x, y []float64) (TestResult, error)

	// Kruskal computes the Kruskal-Wallis H statistic over the samples and its p-value,
	// dropping missing values from each sample independently.
	Kruskal(samples ...[]float64) (TestResult, error)
}
