package report

import (
	"math"
	"sort"
	"time"

	"featassoc/domain/core"
)

// Strength is the qualitative label attached to a rank correlation
type Strength string

const (
	StrengthVeryStrong Strength = "Very Strong"
	StrengthStrong     Strength = "Strong"
	StrengthModerate   Strength = "Moderate"
	StrengthWeak       Strength = "Weak"
	StrengthNone       Strength = "None"
)

// strengthTiers are checked top to bottom; the first bound the coefficient reaches wins
var strengthTiers = []struct {
	bound    float64
	strength Strength
}{
	{0.89, StrengthVeryStrong},
	{0.68, StrengthStrong},
	{0.38, StrengthModerate},
	{0.10, StrengthWeak},
}

// ClassifyStrength labels a correlation coefficient.
// Each tier is tested against its positive bound and its negative mirror.
func ClassifyStrength(r float64) Strength {
	for _, tier := range strengthTiers {
		if r >= tier.bound || r <= -tier.bound {
			return tier.strength
		}
	}
	return StrengthNone
}

// HTest is the outcome of one Kruskal-Wallis comparison
type HTest struct {
	H      float64 `json:"h"`
	PValue float64 `json:"p_value"`
	Groups int     `json:"groups"`
	N      int     `json:"n"`
}

// CorrelationRow summarizes the rank association between the target and one numeric column
type CorrelationRow struct {
	Feature   string   `json:"feature"`
	SpearmanR float64  `json:"spearman_r"`
	PValue    float64  `json:"p_value"`
	Strength  Strength `json:"strength"`
	N         int      `json:"n"` // pairs left after omitting missing values
}

// GroupDifferenceRow summarizes the Kruskal-Wallis test between the target and one categorical column
type GroupDifferenceRow struct {
	Feature string  `json:"feature"`
	H       float64 `json:"kruskal_wallis_h"`
	PValue  float64 `json:"p_value"`
	Groups  int     `json:"groups"`
	N       int     `json:"n"`
}

// CorrelationReport is the Spearman summary for one target.
// Rows are ordered by descending |SpearmanR|; rows with equal magnitude keep scan order.
type CorrelationReport struct {
	ID          core.ReportID    `json:"id"`
	Target      string           `json:"target"`
	GeneratedAt time.Time        `json:"generated_at"`
	Rows        []CorrelationRow `json:"rows"`
}

// GroupDifferenceReport is the Kruskal-Wallis summary for one target, rows in column scan order
type GroupDifferenceReport struct {
	ID          core.ReportID        `json:"id"`
	Target      string               `json:"target"`
	Mode        string               `json:"mode"`
	GeneratedAt time.Time            `json:"generated_at"`
	Rows        []GroupDifferenceRow `json:"rows"`
}

// NewCorrelationReport builds a report from rows in scan order and sorts them
func NewCorrelationReport(target string, rows []CorrelationRow) *CorrelationReport {
	sorted := make([]CorrelationRow, len(rows))
	copy(sorted, rows)
	SortByMagnitude(sorted)
	return &CorrelationReport{
		ID:          core.NewReportID(),
		Target:      target,
		GeneratedAt: time.Now(),
		Rows:        sorted,
	}
}

// NewGroupDifferenceReport builds a report keeping rows in the order given
func NewGroupDifferenceReport(target, mode string, rows []GroupDifferenceRow) *GroupDifferenceReport {
	kept := make([]GroupDifferenceRow, len(rows))
	copy(kept, rows)
	return &GroupDifferenceReport{
		ID:          core.NewReportID(),
		Target:      target,
		Mode:        mode,
		GeneratedAt: time.Now(),
		Rows:        kept,
	}
}

// SortByMagnitude orders rows by descending |SpearmanR| with a stable sort.
// NaN coefficients sink to the bottom.
func SortByMagnitude(rows []CorrelationRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := math.Abs(rows[i].SpearmanR), math.Abs(rows[j].SpearmanR)
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})
}

// Features returns the feature names in row order
func (r *CorrelationReport) Features() []string {
	names := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		names[i] = row.Feature
	}
	return names
}

// Row looks up the row for a feature
func (r *CorrelationReport) Row(feature string) (CorrelationRow, bool) {
	for _, row := range r.Rows {
		if row.Feature == feature {
			return row, true
		}
	}
	return CorrelationRow{}, false
}

// Features returns the feature names in row order
func (r *GroupDifferenceReport) Features() []string {
	names := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		names[i] = row.Feature
	}
	return names
}

// Significant returns the rows whose p-value is below alpha, order preserved
func (r *GroupDifferenceReport) Significant(alpha float64) []GroupDifferenceRow {
	var out []GroupDifferenceRow
	for _, row := range r.Rows {
		if row.PValue < alpha {
			out = append(out, row)
		}
	}
	return out
}

// Significant returns the rows whose p-value is below alpha, order preserved
func (r *CorrelationReport) Significant(alpha float64) []CorrelationRow {
	var out []CorrelationRow
	for _, row := range r.Rows {
		if row.PValue < alpha {
			out = append(out, row)
		}
	}
	return out
}
