package dataset

import (
	"fmt"

	"featassoc/domain/core"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// FromRecords builds a dataset from in-memory string records whose first row is the header.
// Column kinds are detected once here: int and float columns become Numeric,
// everything else Categorical. "NA", "NaN" and empty cells are missing.
func FromRecords(records [][]string) (*Dataset, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: records need a header and at least one row", core.ErrInvalidArgument)
	}

	frame := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"NA", "NaN", "<nil>", ""}),
	)
	if frame.Err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidArgument, frame.Err)
	}

	columns := make([]Column, 0, frame.Ncol())
	for _, name := range frame.Names() {
		s := frame.Col(name)
		switch s.Type() {
		case series.Int, series.Float:
			columns = append(columns, NumericColumn(name, s.Float()))
		default:
			labels := make([]string, s.Len())
			missing := make([]bool, s.Len())
			for i := 0; i < s.Len(); i++ {
				e := s.Elem(i)
				if e.IsNA() {
					missing[i] = true
					continue
				}
				labels[i] = e.String()
			}
			columns = append(columns, CategoricalColumnNA(name, labels, missing))
		}
	}
	return New(columns...)
}
