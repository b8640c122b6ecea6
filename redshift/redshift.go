/*package redshift converts between redshifts and snapshot numbers using the
scale factor outputs of a simulation.
*/
package redshift

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/phil-mansfield/augustus/errs"
	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/floats"
)

// Table is a list of (snapshot, redshift) rows.
type Table struct {
	snaps []int
	zs    []float64
}

// NewTable creates a Table where row i is snapshot i with scale factor
// scales[i].
func NewTable(scales []float64) *Table {
	t := &Table{make([]int, len(scales)), make([]float64, len(scales))}
	for i, a := range scales {
		t.snaps[i] = i
		t.zs[i] = 1/a - 1
	}
	return t
}

func (t *Table) Len() int                  { return len(t.zs) }
func (t *Table) Snap(i int) int            { return t.snaps[i] }
func (t *Table) Redshift(i int) float64    { return t.zs[i] }
func (t *Table) ScaleFactor(i int) float64 { return 1 / (1 + t.zs[i]) }

// ReadScaleFactors reads a file containing one scale factor per line. The
// line number (starting from zero) is the snapshot number.
func ReadScaleFactors(file string) (*Table, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: The scale factor file %s cannot be "+
			"opened: %s", errs.Configuration, file, err.Error())
	}
	defer f.Close()

	scales := []float64{}
	sc := bufio.NewScanner(f)
	for line := 0; sc.Scan(); line++ {
		a, err := parseScaleFactor(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: Line %d of the scale factor file "+
				"%s: %s", errs.Configuration, line+1, file, err.Error())
		}
		scales = append(scales, a)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: Could not read the scale factor file "+
			"%s: %s", errs.Configuration, file, err.Error())
	}

	if len(scales) == 0 {
		return nil, fmt.Errorf("%w: The scale factor file %s is empty.",
			errs.Configuration, file)
	}

	return NewTable(scales), nil
}

func parseScaleFactor(text string) (float64, error) {
	tok := strings.TrimSpace(text)
	a, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a scale factor.", tok)
	} else if !validScaleFactor(a) {
		return 0, fmt.Errorf("%g is not a positive scale factor.", a)
	}
	return a, nil
}

func validScaleFactor(a float64) bool {
	return a > 0 && !math.IsInf(a, 0)
}

// countRows returns the number of non-blank, non-comment lines in file.
func countRows(file string) (int, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			n++
		}
	}
	return n, sc.Err()
}

// ReadBoxspace reads a two-column text table whose first column is the
// snapshot number and whose second column is the scale factor.
func ReadBoxspace(file string) (*Table, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("%w: The boxspace file %s cannot be "+
			"opened: %s", errs.Configuration, file, err.Error())
	}

	cols, err := table.ReadTable(file, []int{0, 1}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: Could not parse the boxspace file %s: %s",
			errs.Configuration, file, err.Error())
	}

	if len(cols) != 2 || len(cols[0]) != len(cols[1]) {
		return nil, fmt.Errorf("%w: The boxspace file %s does not have "+
			"two columns.", errs.Configuration, file)
	}
	snaps, scales := cols[0], cols[1]
	if len(scales) == 0 {
		return nil, fmt.Errorf("%w: The boxspace file %s is empty.",
			errs.Configuration, file)
	}

	rows, err := countRows(file)
	if err != nil {
		return nil, fmt.Errorf("%w: Could not read the boxspace file %s: %s",
			errs.Configuration, file, err.Error())
	} else if rows != len(scales) {
		return nil, fmt.Errorf("%w: The boxspace file %s has %d rows, but "+
			"only %d could be parsed as (snapshot, scale factor) pairs.",
			errs.Configuration, file, rows, len(scales))
	}

	t := &Table{make([]int, len(snaps)), make([]float64, len(snaps))}
	for i := range snaps {
		a := scales[i]
		if !validScaleFactor(a) || snaps[i] != math.Trunc(snaps[i]) ||
			math.IsInf(snaps[i], 0) {
			return nil, fmt.Errorf("%w: Row %d of the boxspace file %s, "+
				"(%g, %g), is not a (snapshot, scale factor) pair.",
				errs.Configuration, i+1, file, snaps[i], a)
		}
		t.snaps[i] = int(snaps[i])
		t.zs[i] = 1/a - 1
	}
	return t, nil
}

// Resolve returns the snapshot whose redshift is closest to each of the
// target redshifts. Ties go to the earliest row in the table. An empty list
// of targets gives an empty result.
func (t *Table) Resolve(targets []float64) ([]int, error) {
	out := make([]int, len(targets))
	if len(targets) == 0 {
		return out, nil
	} else if t.Len() == 0 {
		return nil, fmt.Errorf("%w: Cannot resolve redshifts with an "+
			"empty snapshot table.", errs.Validation)
	}

	dz := make([]float64, t.Len())
	for i, z := range targets {
		for j := range dz {
			dz[j] = math.Abs(t.zs[j] - z)
		}
		out[i] = t.snaps[floats.MinIdx(dz)]
	}
	return out, nil
}

// FindSnapshots returns the snapshot closest to each target redshift using
// the scale factor file, file.
func FindSnapshots(targets []float64, file string) ([]int, error) {
	t, err := ReadScaleFactors(file)
	if err != nil {
		return nil, err
	}
	return t.Resolve(targets)
}

// FindBoxspaceSnapshots is FindSnapshots for two-column boxspace files.
func FindBoxspaceSnapshots(targets []float64, file string) ([]int, error) {
	t, err := ReadBoxspace(file)
	if err != nil {
		return nil, err
	}
	return t.Resolve(targets)
}
