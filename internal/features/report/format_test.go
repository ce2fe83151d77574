package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	date := time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
	tests := []struct {
		name   string
		format Format
		value  any
		want   string
	}{
		{name: "Currency", format: FormatCurrency, value: 1234.5, want: "$1,234.50"},
		{name: "Currency Negative", format: FormatCurrency, value: -20.0, want: "-$20.00"},
		{name: "Currency Zero", format: FormatCurrency, value: 0.0, want: "$0.00"},
		{name: "Currency From String", format: FormatCurrency, value: "99.9", want: "$99.90"},
		{name: "Currency Garbage", format: FormatCurrency, value: "n/a", want: EmptyValue},
		{name: "Percent", format: FormatPercent, value: 75.0, want: "75%"},
		{name: "Date", format: FormatDate, value: date, want: "Mar 9, 2024"},
		{name: "Date From String", format: FormatDate, value: "2024-03-09", want: "Mar 9, 2024"},
		{name: "Nil", format: FormatCurrency, value: nil, want: EmptyValue},
		{name: "Empty String", format: FormatNone, value: "", want: EmptyValue},
		{name: "Bool", format: FormatNone, value: true, want: "Yes"},
		{name: "Int", format: FormatNone, value: 7, want: "7"},
		{name: "Float", format: FormatNone, value: 2.5, want: "2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.format, tt.value))
		})
	}
}

func TestFormatCellUsesColumnFormat(t *testing.T) {
	row := Row{"balance": 50.0, "full_name": "Ava Lee"}
	assert.Equal(t, "$50.00", FormatCell(ColumnDef{ID: "balance", Format: FormatCurrency}, row))
	assert.Equal(t, "Ava Lee", FormatCell(ColumnDef{ID: "full_name"}, row))
	assert.Equal(t, EmptyValue, FormatCell(ColumnDef{ID: "missing"}, row))
}

func TestCards(t *testing.T) {
	defs := []MetricDef{
		count("a", "A"),
		currency("b", "B"),
		percent("c", "C"),
		count("d", "D"),
		count("e", "E"),
	}
	cards := Cards(NewStatsRecord(defs, map[string]float64{"a": 1234, "b": 300, "c": 50}))
	assert.Len(t, cards, 4)
	assert.Equal(t, "1,234", cards[0].Value)
	assert.Equal(t, "$300.00", cards[1].Value)
	assert.Equal(t, "50%", cards[2].Value)
	assert.Equal(t, "0", cards[3].Value)
}
