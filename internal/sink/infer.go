package sink

import (
	"math"
	"strconv"

	"github.com/EmpoweredVote/county-health-etl/internal/records"
	"github.com/EmpoweredVote/county-health-etl/internal/tabular"
)

// ColumnType is the storage class inferred for a loaded column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeReal
)

func (c ColumnType) String() string {
	switch c {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	default:
		return "text"
	}
}

// SQLType spells the type for a gorm dialector name.
func (c ColumnType) SQLType(dialect string) string {
	pg := dialect == "postgres"
	switch c {
	case TypeInteger:
		if pg {
			return "BIGINT"
		}
		return "INTEGER"
	case TypeReal:
		if pg {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	default:
		return "TEXT"
	}
}

// textColumns are always stored as text whatever their values look like.
// fips in particular must stay a five-character string.
var textColumns = map[string]bool{
	records.ColFIPS:           true,
	records.ColState:          true,
	records.ColCountyName:     true,
	records.ColIncomeQuartile: true,
	records.ColIncomeGroup:    true,
}

// ColumnTypes returns the storage type of each column of tbl.
func ColumnTypes(tbl *tabular.Table) []ColumnType {
	types := make([]ColumnType, len(tbl.Header))
	for i, name := range tbl.Header {
		if textColumns[name] {
			types[i] = TypeText
			continue
		}
		col := make([]string, len(tbl.Rows))
		for r, row := range tbl.Rows {
			if i < len(row) {
				col[r] = row[i]
			}
		}
		types[i] = InferColumnType(col)
	}
	return types
}

// InferColumnType picks the narrowest type that holds every non-blank value.
// Values with a significant leading zero ("06037") keep the column text.
func InferColumnType(values []string) ColumnType {
	seen := false
	typ := TypeInteger
	for _, v := range values {
		if v == "" {
			continue
		}
		seen = true
		if hasLeadingZero(v) {
			return TypeText
		}
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return TypeText
		}
		typ = TypeReal
	}
	if !seen {
		return TypeText
	}
	return typ
}

// convert turns written text into the value stored for typ; blanks are NULL.
func convert(v string, typ ColumnType) any {
	if v == "" {
		return nil
	}
	switch typ {
	case TypeInteger:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case TypeReal:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return v
	}
}

func hasLeadingZero(v string) bool {
	if v[0] == '-' || v[0] == '+' {
		v = v[1:]
	}
	return len(v) > 1 && v[0] == '0' && v[1] != '.'
}
