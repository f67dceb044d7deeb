package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/EmpoweredVote/county-health-etl/internal/records"
)

var printer = message.NewPrinter(language.English)

// PrintPrepare writes the human-readable outcome of a prepare run.
func PrintPrepare(w io.Writer, res PrepareResult) {
	fmt.Fprintf(w, "Loaded %s counties from CDC\n", printer.Sprintf("%d", res.HealthRows))
	fmt.Fprintf(w, "Loaded %s counties from Census\n", printer.Sprintf("%d", res.IncomeRows))
	fmt.Fprintf(w, "Merged dataset: %s counties\n", printer.Sprintf("%d", res.MergedRows))
	fmt.Fprintf(w, "\nCleaned data saved to %s\n", res.OutputPath)
	fmt.Fprintf(w, "Digest: %s\n\n", res.Digest)

	header := []string{"fips", "state", "county_name", "life_expectancy", "median_income", "income_quartile", "income_group"}
	rows := make([][]string, len(res.Head))
	for i, r := range res.Head {
		rows[i] = []string{
			r.GeoKey, r.State, r.CountyName,
			strconv.FormatFloat(r.LifeExpectancy, 'f', -1, 64),
			strconv.FormatFloat(r.MedianIncome, 'f', -1, 64),
			r.IncomeQuartile, r.IncomeGroup,
		}
	}
	RenderTable(w, header, rows, []bool{false, false, false, true, true, false, false})
}

// PrintLoad writes the row count and verification aggregate of a load run.
func PrintLoad(w io.Writer, res LoadResult) {
	fmt.Fprintf(w, "%s rows loaded into %s table\n", printer.Sprintf("%d", res.Rows), res.Table)
	fmt.Fprintf(w, "\nQuick verification:\n")
	RenderTable(w, []string{"income_quartile", "avg_life_expectancy", "county_count"},
		SummaryRows(res.Summary), []bool{false, true, true})
	fmt.Fprintf(w, "\nDatabase saved to %s\n", res.Database)
}

// SummaryRows formats the verification aggregate for RenderTable.
func SummaryRows(summary []records.QuartileSummary) [][]string {
	rows := make([][]string, len(summary))
	for i, s := range summary {
		rows[i] = []string{
			s.IncomeQuartile,
			strconv.FormatFloat(s.AvgLifeExpectancy, 'f', 2, 64),
			strconv.FormatInt(s.CountyCount, 10),
		}
	}
	return rows
}

// RenderTable prints space-separated columns padded to display width.
// right marks columns that are right aligned.
func RenderTable(w io.Writer, header []string, rows [][]string, right []bool) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); i < len(widths) && cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	line := func(cells []string) {
		out := make([]string, len(cells))
		for i, cell := range cells {
			if i < len(right) && right[i] {
				out[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				out[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(out, " "), " "))
	}

	line(header)
	for _, row := range rows {
		line(row)
	}
}
