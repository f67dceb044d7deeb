// Package merge joins health and income records and derives income buckets.
package merge

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/EmpoweredVote/county-health-etl/internal/logging"
	"github.com/EmpoweredVote/county-health-etl/internal/records"
)

// Stats summarizes median income over the merged set.
type Stats struct {
	Rows   int
	Mean   float64
	Min    float64
	Max    float64
	Edges  []float64
	// Ranked reports that quartiles were assigned by rank because the
	// value edges collided or left a bucket empty.
	Ranked bool
}

// Merger combines one health table with one income table.
type Merger struct {
	log *logging.Logger
}

// New creates a merger. A nil logger is allowed.
func New(log *logging.Logger) *Merger {
	return &Merger{log: log}
}

// Run joins the two tables and fills in income_quartile and income_group.
func (m *Merger) Run(health []records.HealthRecord, income []records.IncomeRecord) ([]records.EnrichedRecord, Stats, error) {
	start := time.Now()
	m.log.Infof("merging %d health rows with %d income rows", len(health), len(income))

	rows := Join(health, income)
	if h, i := Unmatched(health, income); h+i > 0 {
		m.log.Debugf("dropped unmatched keys: %d health-only, %d income-only", h, i)
	}
	stats, err := Enrich(rows)
	if err != nil {
		return nil, Stats{}, err
	}

	if stats.Ranked {
		m.log.Warnf("income quartile edges %v collide or leave a bucket empty; assigned by rank", stats.Edges)
	}
	m.log.LogTransform("merge", len(health), len(rows), time.Since(start))
	m.log.Infof("merged dataset: %d counties, median income mean=%.0f min=%.0f max=%.0f",
		stats.Rows, stats.Mean, stats.Min, stats.Max)
	return rows, stats, nil
}

// Join inner-joins on GeoKey in health order. Keys present on one side only
// are dropped; repeated keys yield every pairing.
func Join(health []records.HealthRecord, income []records.IncomeRecord) []records.EnrichedRecord {
	byKey := make(map[string][]float64, len(income))
	for _, r := range income {
		byKey[r.GeoKey] = append(byKey[r.GeoKey], r.MedianIncome)
	}

	var out []records.EnrichedRecord
	for _, h := range health {
		for _, inc := range byKey[h.GeoKey] {
			out = append(out, records.EnrichedRecord{
				GeoKey:         h.GeoKey,
				State:          h.State,
				CountyName:     h.CountyName,
				LifeExpectancy: h.LifeExpectancy,
				MedianIncome:   inc,
			})
		}
	}
	return out
}

// Unmatched counts the distinct GeoKeys present on only one side.
func Unmatched(health []records.HealthRecord, income []records.IncomeRecord) (healthOnly, incomeOnly int) {
	hk := make(map[string]struct{}, len(health))
	for _, r := range health {
		hk[r.GeoKey] = struct{}{}
	}
	ik := make(map[string]struct{}, len(income))
	for _, r := range income {
		ik[r.GeoKey] = struct{}{}
	}
	for k := range hk {
		if _, ok := ik[k]; !ok {
			healthOnly++
		}
	}
	for k := range ik {
		if _, ok := hk[k]; !ok {
			incomeOnly++
		}
	}
	return healthOnly, incomeOnly
}

// Enrich assigns both income buckets in place, computed over rows only.
func Enrich(rows []records.EnrichedRecord) (Stats, error) {
	incomes := make([]float64, len(rows))
	for i, r := range rows {
		incomes[i] = r.MedianIncome
	}

	q, err := QuartileBuckets(incomes)
	if err != nil {
		return Stats{}, err
	}

	for i := range rows {
		rows[i].IncomeQuartile = QuartileLabels[q.Index[i]]
		rows[i].IncomeGroup = IncomeGroup(rows[i].MedianIncome)
	}

	return Stats{
		Rows:   len(rows),
		Mean:   stat.Mean(incomes, nil),
		Min:    floats.Min(incomes),
		Max:    floats.Max(incomes),
		Edges:  q.Edges,
		Ranked: q.Ranked,
	}, nil
}
