package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EmpoweredVote/county-health-etl/internal/records"
)

func TestRenderTable_Aligns(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []string{"name", "n"}, [][]string{
		{"Doña Ana", "7"},
		{"LA", "1234"},
	}, []bool{false, true})

	want := "name        n\n" +
		"Doña Ana    7\n" +
		"LA       1234\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintLoad(t *testing.T) {
	var buf bytes.Buffer
	PrintLoad(&buf, LoadResult{
		Rows:     3142,
		Table:    "health_income",
		Database: "health_outcomes.db",
		Summary: []records.QuartileSummary{
			{IncomeQuartile: "Q1 (Lowest)", AvgLifeExpectancy: 75.1, CountyCount: 786},
			{IncomeQuartile: "Q4 (Highest)", AvgLifeExpectancy: 79.88, CountyCount: 785},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "3,142 rows loaded into health_income table")
	assert.Contains(t, out, "Q1 (Lowest)                   75.10          786")
	assert.Contains(t, out, "Q4 (Highest)                  79.88          785")
	assert.True(t, strings.HasSuffix(out, "Database saved to health_outcomes.db\n"))
}

func TestPrintPrepare(t *testing.T) {
	var buf bytes.Buffer
	PrintPrepare(&buf, PrepareResult{
		HealthRows: 1200,
		IncomeRows: 1300,
		MergedRows: 1,
		OutputPath: "data/cleaned.csv",
		Digest:     "abc",
		Head: []records.EnrichedRecord{
			{GeoKey: "06037", State: "CA", CountyName: "LA", LifeExpectancy: 81.4, MedianIncome: 70032, IncomeQuartile: "Q2", IncomeGroup: "Upper-Mid ($55k-$75k)"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Loaded 1,200 counties from CDC")
	assert.Contains(t, out, "Loaded 1,300 counties from Census")
	assert.Contains(t, out, "Merged dataset: 1 counties")
	assert.Contains(t, out, "06037")
	assert.Contains(t, out, "70032")
}
