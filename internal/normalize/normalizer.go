// Package normalize turns raw county sources into typed, null-free records.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/EmpoweredVote/county-health-etl/internal/logging"
	"github.com/EmpoweredVote/county-health-etl/internal/records"
	"github.com/EmpoweredVote/county-health-etl/internal/tabular"
)

// Source describes one raw input file.
type Source struct {
	Name     string
	Path     string
	Encoding string
	// Renames maps normalized source column names to canonical names.
	Renames map[string]string
}

// DefaultHealthRenames matches the CDC county life-expectancy export.
func DefaultHealthRenames() map[string]string {
	return map[string]string{
		"county_code": records.ColFIPS,
		"county":      records.ColCountyName,
	}
}

// DefaultIncomeRenames matches the Census median household income export.
func DefaultIncomeRenames() map[string]string {
	return map[string]string{
		"geo_id":                  records.ColFIPS,
		"median_household_income": records.ColMedianIncome,
	}
}

// Normalizer reads and cleans sources, logging row counts as it goes.
type Normalizer struct {
	log *logging.Logger
}

// New creates a normalizer. A nil logger is allowed.
func New(log *logging.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Health reads the life-expectancy source.
func (n *Normalizer) Health(src Source) ([]records.HealthRecord, error) {
	start := time.Now()
	tbl, err := n.project(src, records.HealthColumns)
	if err != nil {
		return nil, err
	}

	out := HealthFromTable(tbl)
	n.log.LogTransform(src.Name, tbl.Len(), len(out), time.Since(start))
	if dropped := tbl.Len() - len(out); dropped > 0 {
		n.log.Debugf("%s: dropped %d rows with null fields", src.Name, dropped)
	}
	return out, nil
}

// Income reads the median-income source.
func (n *Normalizer) Income(src Source) ([]records.IncomeRecord, error) {
	start := time.Now()
	tbl, err := n.project(src, records.IncomeColumns)
	if err != nil {
		return nil, err
	}

	out := IncomeFromTable(tbl)
	n.log.LogTransform(src.Name, tbl.Len(), len(out), time.Since(start))
	if dropped := tbl.Len() - len(out); dropped > 0 {
		n.log.Debugf("%s: dropped %d rows with null fields", src.Name, dropped)
	}
	return out, nil
}

func (n *Normalizer) project(src Source, required []string) (*tabular.Table, error) {
	n.log.Infof("loading %s from %s", src.Name, src.Path)
	raw, err := tabular.Read(src.Path, src.Encoding)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name, err)
	}
	return raw.Project(normalizedKeys(src.Renames), required)
}

// HealthFromTable converts a projected table (HealthColumns order) into
// records, dropping rows with any null required field.
func HealthFromTable(tbl *tabular.Table) []records.HealthRecord {
	out := make([]records.HealthRecord, 0, tbl.Len())
	for _, row := range tbl.Rows {
		key, ok := records.NormalizeGeoKey(row[0])
		if !ok {
			continue
		}
		state, county := row[1], row[2]
		if state == "" || county == "" {
			continue
		}
		le := ParseNumber(row[3])
		if !le.Valid {
			continue
		}
		out = append(out, records.HealthRecord{
			GeoKey:         key,
			State:          state,
			CountyName:     county,
			LifeExpectancy: le.Float64,
		})
	}
	return out
}

// IncomeFromTable converts a projected table (IncomeColumns order) into
// records, dropping rows with an invalid key or unparseable income.
func IncomeFromTable(tbl *tabular.Table) []records.IncomeRecord {
	out := make([]records.IncomeRecord, 0, tbl.Len())
	for _, row := range tbl.Rows {
		key, ok := records.NormalizeGeoKey(row[0])
		if !ok {
			continue
		}
		income := ParseCurrency(row[1])
		if !income.Valid {
			continue
		}
		out = append(out, records.IncomeRecord{GeoKey: key, MedianIncome: income.Float64})
	}
	return out
}

// Config files may spell rename keys as the raw header ("County Code").
func normalizedKeys(renames map[string]string) map[string]string {
	out := make(map[string]string, len(renames))
	for from, to := range renames {
		out[tabular.NormalizeColumnName(from)] = strings.TrimSpace(to)
	}
	return out
}
