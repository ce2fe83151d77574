package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EmptyValue is rendered for absent cells and for cells that fail to format.
const EmptyValue = "-"

const DateLayout = "Jan 2, 2006"

var printer = message.NewPrinter(language.English)

// FormatCell renders one cell exactly as every output channel shows it.
func FormatCell(col ColumnDef, row Row) (out string) {
	defer func() {
		if recover() != nil {
			out = EmptyValue
		}
	}()
	return FormatValue(col.Format, row[col.ID])
}

// FormatValue renders a value under a column format.
func FormatValue(f Format, v any) string {
	if v == nil {
		return EmptyValue
	}
	switch f {
	case FormatCurrency:
		n, ok := toFloat(v)
		if !ok {
			return EmptyValue
		}
		return Currency(n)
	case FormatPercent:
		n, ok := toFloat(v)
		if !ok {
			return EmptyValue
		}
		return PercentString(n)
	case FormatDate:
		t, ok := toTime(v)
		if !ok {
			return EmptyValue
		}
		return t.Format(DateLayout)
	default:
		return plain(v)
	}
}

// Currency renders "$1,234.50"; negatives as "-$1,234.50".
func Currency(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return EmptyValue
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	return sign + "$" + printer.Sprintf("%.2f", n)
}

func PercentString(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return EmptyValue
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + "%"
}

// FormatMetric renders a stats value by its declared kind.
func FormatMetric(m Metric) string {
	switch m.Kind {
	case MetricCurrency:
		return Currency(m.Value)
	case MetricPercent:
		return PercentString(m.Value)
	default:
		return printer.Sprintf("%d", int64(math.Round(m.Value)))
	}
}

func plain(v any) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return EmptyValue
		}
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return EmptyValue
		}
		return x.Format(DateLayout)
	default:
		return fmt.Sprint(x)
	}
}

func toFloat(v any) (float64, bool) {
	return Record{"v": v}.Float("v")
}

func toTime(v any) (time.Time, bool) {
	return Record{"v": v}.Time("v")
}
