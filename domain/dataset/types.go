package dataset

import (
	"fmt"
	"math"

	"featassoc/domain/core"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Kind is the closed semantic tag every column carries from construction on
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// naLabel is how gota spells a missing string element
const naLabel = "NaN"

// Column is one named, kind-tagged, NA-aware sequence of values
type Column struct {
	Name string
	Kind Kind

	values series.Series
}

// NumericColumn builds a numeric column; NaN marks a missing value
func NumericColumn(name string, values []float64) Column {
	vals := make([]float64, len(values))
	copy(vals, values)
	return Column{
		Name:   name,
		Kind:   Numeric,
		values: series.New(vals, series.Float, name),
	}
}

// CategoricalColumn builds a categorical column; the empty label marks a missing value.
// A literal "NaN" label is also read back as missing, since that is how the
// underlying gota series spells NA for strings.
func CategoricalColumn(name string, labels []string) Column {
	missing := make([]bool, len(labels))
	for i, l := range labels {
		missing[i] = l == ""
	}
	return CategoricalColumnNA(name, labels, missing)
}

// CategoricalColumnNA builds a categorical column with an explicit missing mask.
// Labels at masked positions are ignored. An unmasked "NaN" label is still
// treated as missing, as in CategoricalColumn.
func CategoricalColumnNA(name string, labels []string, missing []bool) Column {
	vals := make([]string, len(labels))
	for i, l := range labels {
		if i < len(missing) && missing[i] {
			vals[i] = naLabel
			continue
		}
		vals[i] = l
	}
	return Column{
		Name:   name,
		Kind:   Categorical,
		values: series.New(vals, series.String, name),
	}
}

// built reports whether the column came from a constructor; a zero Column has no series
func (c Column) built() bool {
	return c.values.Type() != ""
}

// Len returns the number of rows in the column
func (c Column) Len() int {
	return c.values.Len()
}

// IsMissing reports whether row i holds a missing value
func (c Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.values.Elem(i).Float())
	}
	return c.values.Elem(i).IsNA()
}

// Floats returns the numeric values with NaN at missing rows
func (c Column) Floats() ([]float64, error) {
	if c.Kind != Numeric {
		return nil, core.NewWrongKindError(c.Name, string(Numeric), string(c.Kind))
	}
	return c.values.Float(), nil
}

// Labels returns the string form of every value and the missing mask.
// Missing rows hold an empty label.
func (c Column) Labels() ([]string, []bool) {
	n := c.values.Len()
	labels := make([]string, n)
	missing := make([]bool, n)
	for i := 0; i < n; i++ {
		if c.IsMissing(i) {
			missing[i] = true
			continue
		}
		if c.Kind == Numeric {
			labels[i] = formatNumber(c.values.Elem(i).Float())
			continue
		}
		labels[i] = c.values.Elem(i).String()
	}
	return labels, missing
}

// MissingCount returns how many rows are missing
func (c Column) MissingCount() int {
	count := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			count++
		}
	}
	return count
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%v", f)
}

// Dataset is an ordered collection of equally long, named columns.
// It is immutable: Replace returns a modified copy.
type Dataset struct {
	frame dataframe.DataFrame
	kinds map[string]Kind
}

// New assembles a dataset from columns in the given order
func New(columns ...Column) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: dataset needs at least one column", core.ErrInvalidArgument)
	}

	kinds := make(map[string]Kind, len(columns))
	cols := make([]series.Series, 0, len(columns))
	rows := -1
	for _, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: column name cannot be empty", core.ErrInvalidArgument)
		}
		if _, dup := kinds[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrInvalidArgument, c.Name)
		}
		if c.Kind != Numeric && c.Kind != Categorical {
			return nil, fmt.Errorf("%w: column %q has unknown kind %q", core.ErrInvalidArgument, c.Name, c.Kind)
		}
		if !c.built() {
			return nil, fmt.Errorf("%w: column %q has no values", core.ErrInvalidArgument, c.Name)
		}
		if rows < 0 {
			rows = c.Len()
		}
		if c.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", core.ErrLengthMismatch, c.Name, c.Len(), rows)
		}
		kinds[c.Name] = c.Kind
		s := c.values.Copy()
		s.Name = c.Name
		cols = append(cols, s)
	}

	frame := dataframe.New(cols...)
	if frame.Err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidArgument, frame.Err)
	}
	return &Dataset{frame: frame, kinds: kinds}, nil
}

// Names returns the column names in dataset order
func (d *Dataset) Names() []string {
	return d.frame.Names()
}

// Nrow returns the number of rows
func (d *Dataset) Nrow() int {
	return d.frame.Nrow()
}

// Ncol returns the number of columns
func (d *Dataset) Ncol() int {
	return d.frame.Ncol()
}

// Has reports whether a column with the given name exists
func (d *Dataset) Has(name string) bool {
	_, ok := d.kinds[name]
	return ok
}

// Kind returns the kind tag of a column
func (d *Dataset) Kind(name string) (Kind, error) {
	kind, ok := d.kinds[name]
	if !ok {
		return "", core.NewColumnNotFoundError(name)
	}
	return kind, nil
}

// Column returns a copy of the named column
func (d *Dataset) Column(name string) (Column, error) {
	kind, err := d.Kind(name)
	if err != nil {
		return Column{}, err
	}
	s := d.frame.Col(name)
	if s.Err != nil {
		return Column{}, fmt.Errorf("%w: %v", core.ErrColumnNotFound, s.Err)
	}
	return Column{Name: name, Kind: kind, values: s.Copy()}, nil
}

// Floats returns the values of a numeric column with NaN at missing rows
func (d *Dataset) Floats(name string) ([]float64, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	return col.Floats()
}

// ColumnsOfKind returns the names of all columns tagged with kind, in dataset order
func (d *Dataset) ColumnsOfKind(kind Kind) []string {
	var names []string
	for _, name := range d.Names() {
		if d.kinds[name] == kind {
			names = append(names, name)
		}
	}
	return names
}

// Replace returns a copy of the dataset with the named column swapped for col.
// The receiver is left untouched.
func (d *Dataset) Replace(col Column) (*Dataset, error) {
	if !d.Has(col.Name) {
		return nil, core.NewColumnNotFoundError(col.Name)
	}
	if !col.built() {
		return nil, fmt.Errorf("%w: column %q has no values", core.ErrInvalidArgument, col.Name)
	}
	if col.Len() != d.Nrow() {
		return nil, fmt.Errorf("%w: column %q has %d rows, want %d", core.ErrLengthMismatch, col.Name, col.Len(), d.Nrow())
	}

	s := col.values.Copy()
	s.Name = col.Name
	frame := d.frame.Copy().Mutate(s)
	if frame.Err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidArgument, frame.Err)
	}

	kinds := make(map[string]Kind, len(d.kinds))
	for k, v := range d.kinds {
		kinds[k] = v
	}
	kinds[col.Name] = col.Kind
	return &Dataset{frame: frame, kinds: kinds}, nil
}
