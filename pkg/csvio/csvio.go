// Package csvio reads sample tables and writes result tables as CSV.
// Files whose name ends in .gz are transparently gzip-compressed.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"scatterinterp/pkg/interpolation"
	"scatterinterp/pkg/spatial"
)

// ReadSamples parses a sample table from path. The first dims columns
// are coordinates, every remaining column is one variable, and an empty
// cell marks a missing observation. The header row names the columns.
func ReadSamples(path string, dims int) (*spatial.PointSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("csvio: %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	ps, err := readSamples(r, dims)
	if err != nil {
		return nil, fmt.Errorf("csvio: %s: %w", path, err)
	}
	return ps, nil
}

func readSamples(r io.Reader, dims int) (*spatial.PointSet, error) {
	if dims < 1 {
		return nil, fmt.Errorf("need at least one coordinate column, got %d", dims)
	}
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) <= dims {
		return nil, fmt.Errorf("header has %d columns, need %d coordinates plus at least one variable", len(header), dims)
	}
	varNames := header[dims:]

	var coords [][]float64
	values := make([][]float64, len(varNames))
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		c := make([]float64, dims)
		for d := 0; d < dims; d++ {
			c[d], err = strconv.ParseFloat(strings.TrimSpace(rec[d]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: coordinate %q: %w", line, rec[d], err)
			}
		}
		coords = append(coords, c)
		for j := range varNames {
			cell := strings.TrimSpace(rec[dims+j])
			if cell == "" {
				values[j] = append(values[j], math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: value %q for %q: %w", line, cell, varNames[j], err)
			}
			values[j] = append(values[j], v)
		}
	}

	ps, err := spatial.NewPointSet(coords)
	if err != nil {
		return nil, err
	}
	for j, name := range varNames {
		if err := ps.AddVariable(name, values[j]); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// WriteResults writes one row per domain location: the location's
// coordinates followed by an estimate and an uncertainty column for
// each variable, variables in name order.
func WriteResults(path string, dom spatial.Domain, fields map[string]*interpolation.Field) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio: %w", err)
	}
	var w io.Writer = f
	var zw *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		zw = gzip.NewWriter(f)
		w = zw
	}

	err = writeResults(w, dom, fields)
	if zw != nil {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("csvio: %s: %w", path, err)
	}
	return nil
}

func writeResults(w io.Writer, dom spatial.Domain, fields map[string]*interpolation.Field) error {
	n := dom.Len()
	names := make([]string, 0, len(fields))
	for name, field := range fields {
		if len(field.Estimates) != n || len(field.Uncertainties) != n {
			return fmt.Errorf("field %q has %d/%d entries for %d locations", name, len(field.Estimates), len(field.Uncertainties), n)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	dims := 0
	if n > 0 {
		dims = len(dom.Coord(0))
	}
	header := make([]string, 0, dims+2*len(names))
	for d := 0; d < dims; d++ {
		header = append(header, fmt.Sprintf("x%d", d))
	}
	for _, name := range names {
		header = append(header, name, name+"_uncertainty")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for i := 0; i < n; i++ {
		c := dom.Coord(i)
		for d, v := range c {
			row[d] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		for j, name := range names {
			field := fields[name]
			row[dims+2*j] = strconv.FormatFloat(field.Estimates[i], 'g', -1, 64)
			row[dims+2*j+1] = strconv.FormatFloat(field.Uncertainties[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
