package sink

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/EmpoweredVote/county-health-etl/internal/db"
	"github.com/EmpoweredVote/county-health-etl/internal/records"
	"github.com/EmpoweredVote/county-health-etl/internal/tabular"
)

const enrichedCSV = `fips,state,county_name,life_expectancy,median_income,income_quartile,income_group
06037,California,Los Angeles County,81.4,70032,Q3,Upper-Mid ($55k-$75k)
01001,Alabama,Autauga County,75.5,30000,Q1 (Lowest),Low (<$35k)
01003,Alabama,Baldwin County,77.25,40000,Q1 (Lowest),Middle ($35k-$55k)
48201,Texas,Harris County,78.1,60000,Q3,Upper-Mid ($55k-$75k)
36061,New York,New York County,84.3,90000,Q4 (Highest),High (>$75k)
`

func openStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	d, err := db.Open(context.Background(), db.Config{DSN: filepath.Join(t.TempDir(), "test.db")}, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(d) })
	return NewStore(d, "", 2, nil), d
}

func enrichedTable(t *testing.T, content string) *tabular.Table {
	t.Helper()
	tbl, err := tabular.Parse("cleaned.csv", strings.NewReader(content))
	require.NoError(t, err)
	return tbl
}

func TestStore_ReplaceAndVerify(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	n, err := s.Replace(ctx, enrichedTable(t, enrichedCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	summary, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, []records.QuartileSummary{
		{IncomeQuartile: "Q1 (Lowest)", AvgLifeExpectancy: 76.38, CountyCount: 2},
		{IncomeQuartile: "Q3", AvgLifeExpectancy: 79.75, CountyCount: 2},
		{IncomeQuartile: "Q4 (Highest)", AvgLifeExpectancy: 84.3, CountyCount: 1},
	}, summary)
}

func TestStore_ReplaceIsFullSwap(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, enrichedTable(t, enrichedCSV))
	require.NoError(t, err)
	n, err := s.Replace(ctx, enrichedTable(t, enrichedCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n, "second load must not accumulate")

	lines := strings.SplitN(enrichedCSV, "\n", 3)
	n, err = s.Replace(ctx, enrichedTable(t, lines[0]+"\n"+lines[1]+"\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_ColumnTypesAreInferred(t *testing.T) {
	s, d := openStore(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, enrichedTable(t, enrichedCSV))
	require.NoError(t, err)

	cols, err := d.Migrator().ColumnTypes(DefaultTable)
	require.NoError(t, err)
	got := map[string]string{}
	for _, c := range cols {
		got[c.Name()] = strings.ToUpper(c.DatabaseTypeName())
	}
	assert.Equal(t, "TEXT", got["fips"])
	assert.Equal(t, "REAL", got["life_expectancy"])
	assert.Equal(t, "INTEGER", got["median_income"])
	assert.Equal(t, "TEXT", got["income_quartile"])

	rec, err := s.County(ctx, "06037")
	require.NoError(t, err)
	assert.Equal(t, "06037", rec.GeoKey)
	assert.Equal(t, 70032.0, rec.MedianIncome)
}

func TestStore_FIPSStaysTextWithoutLeadingZeros(t *testing.T) {
	s, d := openStore(t)
	ctx := context.Background()

	csv := "fips,state,county_name,life_expectancy,median_income,income_quartile,income_group\n" +
		"48201,Texas,Harris County,78.1,60000,Q3,Upper-Mid ($55k-$75k)\n" +
		"36061,New York,New York County,84.3,90000,Q4 (Highest),High (>$75k)\n"
	_, err := s.Replace(ctx, enrichedTable(t, csv))
	require.NoError(t, err)

	cols, err := d.Migrator().ColumnTypes(DefaultTable)
	require.NoError(t, err)
	got := map[string]string{}
	for _, c := range cols {
		got[c.Name()] = strings.ToUpper(c.DatabaseTypeName())
	}
	assert.Equal(t, "TEXT", got["fips"])
	assert.Equal(t, "INTEGER", got["median_income"])

	var stored string
	require.NoError(t, d.Raw("SELECT typeof(fips) FROM health_income LIMIT 1").Scan(&stored).Error)
	assert.Equal(t, "text", stored)

	rec, err := s.County(ctx, "48201")
	require.NoError(t, err)
	assert.Equal(t, "Harris County", rec.CountyName)
}

func TestStore_ApplySchema(t *testing.T) {
	s, d := openStore(t)
	ctx := context.Background()

	script := filepath.Join(t.TempDir(), "schema.sql")
	ddl := "CREATE TABLE IF NOT EXISTS health_income (fips TEXT);\nCREATE TABLE IF NOT EXISTS data_sources (name TEXT);\n"
	require.NoError(t, os.WriteFile(script, []byte(ddl), 0o644))

	require.NoError(t, s.ApplySchema(ctx, script))
	assert.True(t, d.Migrator().HasTable("data_sources"))

	n, err := s.Replace(ctx, enrichedTable(t, enrichedCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestStore_Counties(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	_, err := s.Replace(ctx, enrichedTable(t, enrichedCSV))
	require.NoError(t, err)

	all, err := s.Counties(ctx, CountyFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "01001", all[0].GeoKey)

	q1, err := s.Counties(ctx, CountyFilter{Quartile: "Q1 (Lowest)"})
	require.NoError(t, err)
	assert.Len(t, q1, 2)

	tx, err := s.Counties(ctx, CountyFilter{State: "Texas", Group: "Upper-Mid ($55k-$75k)"})
	require.NoError(t, err)
	require.Len(t, tx, 1)
	assert.Equal(t, "Harris County", tx[0].CountyName)

	page, err := s.Counties(ctx, CountyFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "01003", page[0].GeoKey)
}

func TestStore_CountyNotFound(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()
	_, err := s.Replace(ctx, enrichedTable(t, enrichedCSV))
	require.NoError(t, err)

	_, err = s.County(ctx, "99999")
	assert.True(t, errors.Is(err, ErrCountyNotFound))
}
