// Package records holds the typed rows that flow between pipeline stages.
package records

import "strings"

// GeoKeyWidth is the fixed width of a county FIPS code.
const GeoKeyWidth = 5

// Canonical column names, in flat-file order.
const (
	ColFIPS           = "fips"
	ColState          = "state"
	ColCountyName     = "county_name"
	ColLifeExpectancy = "life_expectancy"
	ColMedianIncome   = "median_income"
	ColIncomeQuartile = "income_quartile"
	ColIncomeGroup    = "income_group"
)

// EnrichedColumns is the header of the intermediate flat file and the
// destination table.
var EnrichedColumns = []string{
	ColFIPS, ColState, ColCountyName, ColLifeExpectancy,
	ColMedianIncome, ColIncomeQuartile, ColIncomeGroup,
}

// HealthColumns and IncomeColumns are the fields each source must provide
// after renaming.
var (
	HealthColumns = []string{ColFIPS, ColState, ColCountyName, ColLifeExpectancy}
	IncomeColumns = []string{ColFIPS, ColMedianIncome}
)

// NormalizeGeoKey left-pads raw with zeros to GeoKeyWidth and keeps only the
// trailing GeoKeyWidth characters. ok is false when raw is blank or holds
// anything other than ASCII letters and digits.
func NormalizeGeoKey(raw string) (key string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return "", false
		}
	}
	if len(raw) < GeoKeyWidth {
		raw = strings.Repeat("0", GeoKeyWidth-len(raw)) + raw
	}
	return raw[len(raw)-GeoKeyWidth:], true
}

// HealthRecord is one county from the life-expectancy source.
type HealthRecord struct {
	GeoKey         string
	State          string
	CountyName     string
	LifeExpectancy float64
}

// IncomeRecord is one county from the income source.
type IncomeRecord struct {
	GeoKey       string
	MedianIncome float64
}

// EnrichedRecord is a joined county with derived income buckets.
type EnrichedRecord struct {
	GeoKey         string  `gorm:"column:fips" json:"fips"`
	State          string  `gorm:"column:state" json:"state"`
	CountyName     string  `gorm:"column:county_name" json:"county_name"`
	LifeExpectancy float64 `gorm:"column:life_expectancy" json:"life_expectancy"`
	MedianIncome   float64 `gorm:"column:median_income" json:"median_income"`
	IncomeQuartile string  `gorm:"column:income_quartile" json:"income_quartile"`
	IncomeGroup    string  `gorm:"column:income_group" json:"income_group"`
}

// QuartileSummary is one row of the verification aggregate.
type QuartileSummary struct {
	IncomeQuartile    string  `gorm:"column:income_quartile" json:"income_quartile"`
	AvgLifeExpectancy float64 `gorm:"column:avg_life_expectancy" json:"avg_life_expectancy"`
	CountyCount       int64   `gorm:"column:county_count" json:"county_count"`
}
