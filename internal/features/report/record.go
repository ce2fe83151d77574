package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one loosely typed row as returned by the data store.
type Record map[string]any

// RawTable is a named, unindexed sequence of records for one entity kind.
type RawTable struct {
	Name    string
	Records []Record
}

// Bundle holds the raw tables a report needs plus optional-table capabilities.
type Bundle struct {
	Tables       map[string]RawTable
	Capabilities map[string]bool
}

func NewBundle() *Bundle {
	return &Bundle{
		Tables:       make(map[string]RawTable),
		Capabilities: make(map[string]bool),
	}
}

// Records returns the records of a table, empty when it was not loaded.
func (b *Bundle) Records(name string) []Record {
	if b == nil {
		return nil
	}
	return b.Tables[name].Records
}

// Has reports whether an optional table was available.
func (b *Bundle) Has(name string) bool {
	if b == nil {
		return false
	}
	return b.Capabilities[name]
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Str returns the value as a trimmed string; ids stored as numbers become
// their decimal form.
func (r Record) Str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Float returns a numeric value and whether one was present.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns an integral value and whether one was present.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Decimal returns a money amount, zero when absent or unparsable.
func (r Record) Decimal(key string) decimal.Decimal {
	switch v := r[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	case []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(string(v)))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "1", "yes", "y":
			return true
		}
	}
	return false
}

// Time returns a timestamp and whether one was present.
func (r Record) Time(key string) (time.Time, bool) {
	switch v := r[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}, false
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// optTime converts an optional timestamp into a Row value.
func optTime(t time.Time, ok bool) any {
	if !ok {
		return nil
	}
	return t
}

// optInt converts an optional integer into a Row value.
func optInt(n int, ok bool) any {
	if !ok {
		return nil
	}
	return n
}

// optString turns blank strings into absent Row values.
func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// indexBy builds id -> record for one table.
func indexBy(records []Record, key string) map[string]Record {
	idx := make(map[string]Record, len(records))
	for _, r := range records {
		if id := r.Str(key); id != "" {
			idx[id] = r
		}
	}
	return idx
}

// groupBy builds id -> records for one table, keeping table order.
func groupBy(records []Record, key string) map[string][]Record {
	groups := make(map[string][]Record)
	for _, r := range records {
		if id := r.Str(key); id != "" {
			groups[id] = append(groups[id], r)
		}
	}
	return groups
}
