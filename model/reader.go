package model

import (
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FieldReader is just a simple reader for basic whitespace-delimited file
// formats like the crack-growth trajectory tables.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a new field reader around the given data
func NewFieldReader(data string) *FieldReader {
	return &FieldReader{0, strings.Fields(data)}
}

// Read returns the next space-delimited field/token
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", io.EOF
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// ReadFloat reads the next token as a float
func (fr *FieldReader) ReadFloat() (float64, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(s, 64)
}

// ReadTable parses a whitespace-delimited numeric table in the layout the
// bundled crack-growth data uses: the first column is the shared measurement
// grid, and each remaining column holds one unit's observations. The result
// is transposed to the canonical one-row-per-unit orientation expected by
// NewDatasetFromTable.
func ReadTable(data string) ([]float64, [][]float64, error) {
	var lines []string
	for _, ln := range strings.Split(data, "\n") {
		if len(strings.TrimSpace(ln)) > 0 {
			lines = append(lines, ln)
		}
	}
	if len(lines) < 1 {
		return nil, nil, errors.Errorf("Table is empty")
	}

	ncol := len(strings.Fields(lines[0]))
	if ncol < 2 {
		return nil, nil, errors.Errorf("Table needs a time column and at least one unit column, found %d columns", ncol)
	}

	nrow := len(lines)
	fr := NewFieldReader(strings.Join(lines, "\n"))
	if len(fr.Fields) != nrow*ncol {
		return nil, nil, errors.Errorf(
			"Table is ragged: %d rows of %d columns needs %d fields, found %d",
			nrow, ncol, nrow*ncol, len(fr.Fields),
		)
	}

	t := make([]float64, nrow)
	y := make([][]float64, ncol-1)
	for u := range y {
		y[u] = make([]float64, nrow)
	}

	for i := 0; i < nrow; i++ {
		v, err := fr.ReadFloat()
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Could not parse time value in row %d", i)
		}
		t[i] = v

		for u := 0; u < ncol-1; u++ {
			v, err = fr.ReadFloat()
			if err != nil {
				return nil, nil, errors.Wrapf(err, "Could not parse observation for unit %d in row %d", u, i)
			}
			y[u][i] = v
		}
	}

	return t, y, nil
}

// ReadTableFile reads and parses a trajectory table from the named file.
func ReadTableFile(filename string) ([]float64, [][]float64, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Could not READ trajectory table from %s", filename)
	}
	return ReadTable(string(data))
}
