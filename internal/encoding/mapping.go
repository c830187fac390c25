// Package encoding maps categorical labels to dense integer codes and back.
package encoding

import (
	"math"

	"featassoc/domain/core"
	"featassoc/domain/dataset"
	"featassoc/internal/config"
	"featassoc/internal/errors"
)

// Mapping is the bidirectional label/code table of one column.
// Codes run 1..K in first-occurrence order; missing values never receive one.
type Mapping struct {
	Column string
	Codes  map[string]int
	Labels map[int]string
}

// BuildMapping scans a column top to bottom and assigns a code to every distinct present value
func BuildMapping(ds *dataset.Dataset, column string) (*Mapping, error) {
	if ds == nil {
		return nil, errors.InvalidArgument("dataset is nil")
	}
	col, err := ds.Column(column)
	if err != nil {
		return nil, errors.InvalidArgumentErr(err)
	}

	labels, missing := col.Labels()
	m := &Mapping{
		Column: column,
		Codes:  make(map[string]int),
		Labels: make(map[int]string),
	}
	next := 1
	for i, label := range labels {
		if missing[i] {
			continue
		}
		if _, seen := m.Codes[label]; seen {
			continue
		}
		m.Codes[label] = next
		m.Labels[next] = label
		next++
	}
	return m, nil
}

// WriteNames returns the label->code and code->label maps of a column
func WriteNames(ds *dataset.Dataset, column string) (map[string]int, map[int]string, error) {
	m, err := BuildMapping(ds, column)
	if err != nil {
		return nil, nil, err
	}
	return m.Codes, m.Labels, nil
}

// Len returns the number of assigned codes
func (m *Mapping) Len() int {
	return len(m.Codes)
}

// Encode replaces every label of col with its code, producing a numeric column.
// Under MissingStrict a missing or unmapped value fails the lookup;
// under MissingKeep missing values become NaN while unmapped labels still fail.
func (m *Mapping) Encode(col dataset.Column, policy config.MissingPolicy) (dataset.Column, error) {
	labels, missing := col.Labels()
	codes := make([]float64, len(labels))
	for i, label := range labels {
		if missing[i] {
			if policy == config.MissingKeep {
				codes[i] = math.NaN()
				continue
			}
			return dataset.Column{}, errors.MissingKey(core.NewMissingKeyError(col.Name, "NaN"))
		}
		code, ok := m.Codes[label]
		if !ok {
			return dataset.Column{}, errors.MissingKey(core.NewMissingKeyError(col.Name, label))
		}
		codes[i] = float64(code)
	}
	return dataset.NumericColumn(col.Name, codes), nil
}

// Decode replaces every code of col with its label, producing a categorical column.
// Values that are not assigned codes fail the lookup, missing values follow policy.
func (m *Mapping) Decode(col dataset.Column, policy config.MissingPolicy) (dataset.Column, error) {
	n := col.Len()
	labels := make([]string, n)
	missing := make([]bool, n)

	if col.Kind != dataset.Numeric {
		// Labels are never keys of the code table.
		raw, rawMissing := col.Labels()
		for i := range raw {
			if rawMissing[i] && policy == config.MissingKeep {
				missing[i] = true
				continue
			}
			if rawMissing[i] {
				return dataset.Column{}, errors.MissingKey(core.NewMissingKeyError(col.Name, "NaN"))
			}
			return dataset.Column{}, errors.MissingKey(core.NewMissingKeyError(col.Name, raw[i]))
		}
		return dataset.CategoricalColumnNA(col.Name, labels, missing), nil
	}

	values, err := col.Floats()
	if err != nil {
		return dataset.Column{}, errors.InvalidArgumentErr(err)
	}
	for i, v := range values {
		if math.IsNaN(v) {
			if policy == config.MissingKeep {
				missing[i] = true
				continue
			}
			return dataset.Column{}, errors.MissingKey(core.NewMissingKeyError(col.Name, "NaN"))
		}
		label, ok := m.Labels[int(v)]
		if !ok || float64(int(v)) != v {
			return dataset.Column{}, errors.MissingKey(core.NewMissingKeyError(col.Name, v))
		}
		labels[i] = label
	}
	return dataset.CategoricalColumnNA(col.Name, labels, missing), nil
}

// Swap builds the mapping of a column and applies it to a copy of that column:
// labels to codes when toNumbers is set, codes to labels otherwise.
func Swap(ds *dataset.Dataset, column string, toNumbers bool, policy config.MissingPolicy) (dataset.Column, error) {
	m, err := BuildMapping(ds, column)
	if err != nil {
		return dataset.Column{}, err
	}
	col, err := ds.Column(column)
	if err != nil {
		return dataset.Column{}, errors.InvalidArgumentErr(err)
	}
	if toNumbers {
		return m.Encode(col, policy)
	}
	return m.Decode(col, policy)
}

// EncodeDataset returns a copy of ds whose column is replaced by its codes, plus the mapping used.
// ds itself is not modified.
func EncodeDataset(ds *dataset.Dataset, column string, policy config.MissingPolicy) (*dataset.Dataset, *Mapping, error) {
	m, err := BuildMapping(ds, column)
	if err != nil {
		return nil, nil, err
	}
	col, err := ds.Column(column)
	if err != nil {
		return nil, nil, errors.InvalidArgumentErr(err)
	}
	encoded, err := m.Encode(col, policy)
	if err != nil {
		return nil, nil, err
	}
	table, err := ds.Replace(encoded)
	if err != nil {
		return nil, nil, errors.InvalidArgumentErr(err)
	}
	return table, m, nil
}
