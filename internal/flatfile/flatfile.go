// Package flatfile reads and writes the enriched CSV handed from the prepare
// stage to the load stage.
package flatfile

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/EmpoweredVote/county-health-etl/internal/records"
	"github.com/EmpoweredVote/county-health-etl/internal/tabular"
)

// Write replaces path with a header row plus one line per record and returns
// the hex BLAKE2b-256 digest of the bytes written.
func Write(path string, rows []records.EnrichedRecord) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	if err := Encode(io.MultiWriter(f, h), rows); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Encode writes rows as CSV in records.EnrichedColumns order.
func Encode(w io.Writer, rows []records.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(records.EnrichedColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.GeoKey,
			r.State,
			r.CountyName,
			formatFloat(r.LifeExpectancy),
			formatFloat(r.MedianIncome),
			r.IncomeQuartile,
			r.IncomeGroup,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read loads a file written by Write. It returns the typed rows together with
// the projected table so loaders can work from the written text.
func Read(path string) ([]records.EnrichedRecord, *tabular.Table, error) {
	raw, err := tabular.Read(path, "utf-8")
	if err != nil {
		return nil, nil, err
	}
	tbl, err := raw.Project(nil, records.EnrichedColumns)
	if err != nil {
		return nil, nil, err
	}

	var (
		fips   = tbl.Index(records.ColFIPS)
		state  = tbl.Index(records.ColState)
		county = tbl.Index(records.ColCountyName)
		life   = tbl.Index(records.ColLifeExpectancy)
		income = tbl.Index(records.ColMedianIncome)
		quart  = tbl.Index(records.ColIncomeQuartile)
		group  = tbl.Index(records.ColIncomeGroup)
	)

	out := make([]records.EnrichedRecord, 0, tbl.Len())
	for i, row := range tbl.Rows {
		key, ok := records.NormalizeGeoKey(row[fips])
		if !ok {
			return nil, nil, malformed(path, i, records.ColFIPS, row[fips])
		}
		le, err := strconv.ParseFloat(row[life], 64)
		if err != nil {
			return nil, nil, malformed(path, i, records.ColLifeExpectancy, row[life])
		}
		inc, err := strconv.ParseFloat(row[income], 64)
		if err != nil {
			return nil, nil, malformed(path, i, records.ColMedianIncome, row[income])
		}
		out = append(out, records.EnrichedRecord{
			GeoKey:         key,
			State:          row[state],
			CountyName:     row[county],
			LifeExpectancy: le,
			MedianIncome:   inc,
			IncomeQuartile: row[quart],
			IncomeGroup:    row[group],
		})
	}
	return out, tbl, nil
}

func malformed(path string, row int, col, val string) error {
	return &tabular.MalformedSourceError{
		Source: path,
		Err:    fmt.Errorf("row %d: invalid %s %q", row+2, col, val),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
