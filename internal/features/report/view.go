package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const filterDateLayout = "2006-01-02"

// ViewController holds the user adjustable state of one report panel and
// derives the filtered, sorted and column-limited view from it. It is not
// safe for concurrent use; Panel serializes access.
type ViewController struct {
	def   *Definition
	state ViewState
}

func NewViewController(rt ReportType) (*ViewController, error) {
	v := &ViewController{}
	if err := v.SelectReportType(rt); err != nil {
		return nil, err
	}
	return v, nil
}

// SelectReportType resets filters, columns and sort to the schema defaults.
func (v *ViewController) SelectReportType(rt ReportType) error {
	def, err := Lookup(rt)
	if err != nil {
		return err
	}
	v.def = def
	v.state = ViewState{
		ReportType:     rt,
		VisibleColumns: def.DefaultVisibility(),
		ColumnOrder:    def.ColumnIDs(),
	}
	return nil
}

func (v *ViewController) Definition() *Definition {
	return v.def
}

// State returns a copy of the current view state.
func (v *ViewController) State() ViewState {
	s := v.state
	s.VisibleColumns = copyVisibility(v.state.VisibleColumns)
	s.ColumnOrder = append([]string(nil), v.state.ColumnOrder...)
	return s
}

func (v *ViewController) SetFilter(key FilterKey, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case FilterTeam:
		v.state.Filters.Team = value
	case FilterStatus:
		v.state.Filters.Status = value
	case FilterSearch:
		v.state.Filters.Search = value
	case FilterDateFrom, FilterDateTo:
		if value != "" {
			if _, err := time.Parse(filterDateLayout, value); err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidFilter, key, value)
			}
		}
		if key == FilterDateFrom {
			v.state.Filters.DateFrom = value
		} else {
			v.state.Filters.DateTo = value
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	return nil
}

// ToggleColumnVisible flips one column's visibility; order is untouched.
func (v *ViewController) ToggleColumnVisible(id string) error {
	if _, ok := v.def.Column(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, id)
	}
	v.state.VisibleColumns[id] = !v.state.VisibleColumns[id]
	return nil
}

// ReorderColumns sets a new column order. Ids left out keep their relative
// order after the given ones.
func (v *ViewController) ReorderColumns(order []string) error {
	normalized, err := v.normalizeOrder(order)
	if err != nil {
		return err
	}
	v.state.ColumnOrder = normalized
	return nil
}

func (v *ViewController) normalizeOrder(order []string) ([]string, error) {
	seen := make(map[string]bool, len(v.def.Columns))
	out := make([]string, 0, len(v.def.Columns))
	for _, id := range order {
		if _, ok := v.def.Column(id); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate %q", ErrUnknownColumn, id)
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range v.state.ColumnOrder {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// SetSort sorts ascending by a new field, or flips the direction when the
// field is already sorted.
func (v *ViewController) SetSort(field string) error {
	if err := v.checkSortable(field); err != nil {
		return err
	}
	if v.state.SortField == field && v.state.SortDir == SortAsc {
		v.state.SortDir = SortDesc
		return nil
	}
	v.state.SortField = field
	v.state.SortDir = SortAsc
	return nil
}

// SortBy sets field and direction explicitly. An empty field clears sorting.
func (v *ViewController) SortBy(field string, dir SortDir) error {
	if field == "" || dir == SortNone {
		v.state.SortField, v.state.SortDir = "", SortNone
		return nil
	}
	if dir != SortAsc && dir != SortDesc {
		return fmt.Errorf("invalid sort direction %q", dir)
	}
	if err := v.checkSortable(field); err != nil {
		return err
	}
	v.state.SortField, v.state.SortDir = field, dir
	return nil
}

func (v *ViewController) checkSortable(field string) error {
	col, ok := v.def.Column(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, field)
	}
	if !col.Sortable {
		return fmt.Errorf("%w: %q", ErrUnsortable, field)
	}
	return nil
}

// ResetColumns restores default visibility and order of the active report.
func (v *ViewController) ResetColumns() {
	v.state.VisibleColumns = v.def.DefaultVisibility()
	v.state.ColumnOrder = v.def.ColumnIDs()
}

// ApplySnapshot replaces report type, columns and filters in one step. Sort
// always resets. Nothing changes when the snapshot is invalid.
func (v *ViewController) ApplySnapshot(s Snapshot) error {
	next := &ViewController{}
	if err := next.SelectReportType(s.ReportType); err != nil {
		return err
	}
	for id, visible := range s.VisibleColumns {
		if _, ok := next.def.Column(id); ok {
			next.state.VisibleColumns[id] = visible
		}
	}
	order := make([]string, 0, len(s.ColumnOrder))
	seen := make(map[string]bool, len(s.ColumnOrder))
	for _, id := range s.ColumnOrder {
		if _, ok := next.def.Column(id); ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	normalized, err := next.normalizeOrder(order)
	if err != nil {
		return err
	}
	next.state.ColumnOrder = normalized

	for key, value := range map[FilterKey]string{
		FilterTeam:     s.Filters.Team,
		FilterStatus:   s.Filters.Status,
		FilterSearch:   s.Filters.Search,
		FilterDateFrom: s.Filters.DateFrom,
		FilterDateTo:   s.Filters.DateTo,
	} {
		if err := next.SetFilter(key, value); err != nil {
			return err
		}
	}

	*v = *next
	return nil
}

// Snapshot captures the persisted part of the state.
func (v *ViewController) Snapshot() Snapshot {
	return Snapshot{
		ReportType:     v.state.ReportType,
		VisibleColumns: copyVisibility(v.state.VisibleColumns),
		ColumnOrder:    append([]string(nil), v.state.ColumnOrder...),
		Filters:        v.state.Filters,
	}
}

// VisibleColumns returns the visible columns in display order.
func (v *ViewController) VisibleColumns() []ColumnDef {
	cols := make([]ColumnDef, 0, len(v.state.ColumnOrder))
	for _, id := range v.state.ColumnOrder {
		if !v.state.VisibleColumns[id] {
			continue
		}
		if col, ok := v.def.Column(id); ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// Apply filters and sorts rows. The input slice and its rows are not modified.
func (v *ViewController) Apply(rows []Row) []Row {
	return v.SortedRows(v.FilteredRows(rows))
}

func (v *ViewController) FilteredRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if v.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (v *ViewController) matches(r Row) bool {
	f := v.state.Filters

	if f.Team != "" && len(v.def.TeamFields) > 0 {
		found := false
		for _, field := range v.def.TeamFields {
			if matchesTeam(r[field], f.Team) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Status != "" && v.def.StatusField != "" {
		s, _ := r[v.def.StatusField].(string)
		if !strings.EqualFold(s, f.Status) {
			return false
		}
	}

	if f.Search != "" && !containsFold(r, f.Search) {
		return false
	}

	if (f.DateFrom != "" || f.DateTo != "") && v.def.DateField != "" {
		t, ok := toTime(r[v.def.DateField])
		if !ok {
			return false
		}
		day := t.Format(filterDateLayout)
		if f.DateFrom != "" && day < f.DateFrom {
			return false
		}
		if f.DateTo != "" && day > f.DateTo {
			return false
		}
	}
	return true
}

// matchesTeam compares against each name of a comma-joined team list.
func matchesTeam(v any, team string) bool {
	s, _ := v.(string)
	for _, name := range strings.Split(s, ",") {
		if strings.EqualFold(strings.TrimSpace(name), team) {
			return true
		}
	}
	return false
}

func containsFold(r Row, needle string) bool {
	needle = strings.ToLower(needle)
	for _, value := range r {
		if s, ok := value.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// SortedRows orders rows by the sort field. Rows without a value always come
// last, and descending order is the exact reverse of ascending for the rest.
func (v *ViewController) SortedRows(rows []Row) []Row {
	out := append([]Row(nil), rows...)
	field := v.state.SortField
	if field == "" || v.state.SortDir == SortNone {
		return out
	}

	present := make([]Row, 0, len(out))
	absent := make([]Row, 0)
	for _, r := range out {
		if isBlank(r[field]) {
			absent = append(absent, r)
		} else {
			present = append(present, r)
		}
	}
	sort.SliceStable(present, func(i, j int) bool {
		return compareValues(present[i][field], present[j][field]) < 0
	})
	if v.state.SortDir == SortDesc {
		for i, j := 0, len(present)-1; i < j; i, j = i+1, j-1 {
			present[i], present[j] = present[j], present[i]
		}
	}
	return append(present, absent...)
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case time.Time:
		return x.IsZero()
	}
	return false
}

// compareValues orders strings case-insensitively, numbers numerically,
// times chronologically and false before true.
func compareValues(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			if c := strings.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
				return c
			}
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func copyVisibility(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
