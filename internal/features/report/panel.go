package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BundleLoader is satisfied by *Loader.
type BundleLoader interface {
	Load(ctx context.Context, rt ReportType, scope Scope) (*Bundle, error)
}

type PanelStatus string

const (
	PanelLoading PanelStatus = "loading"
	PanelReady   PanelStatus = "ready"
	PanelError   PanelStatus = "error"
)

// ErrStale is returned by Refresh when a newer request superseded it.
var ErrStale = errors.New("stale report response discarded")

// Panel owns one report view: its state, its cached rows and the request
// token that makes the latest request win.
type Panel struct {
	mu     sync.Mutex
	loader BundleLoader
	logger *zap.Logger
	clock  func() time.Time

	scope Scope
	view  *ViewController
	token uint64

	status PanelStatus
	err    error
	comp   Composition
}

type PanelOption func(*Panel)

// WithClock fixes "now" for age and upcoming-event derivations.
func WithClock(clock func() time.Time) PanelOption {
	return func(p *Panel) { p.clock = clock }
}

func WithLogger(logger *zap.Logger) PanelOption {
	return func(p *Panel) { p.logger = logger }
}

func NewPanel(loader BundleLoader, scope Scope, rt ReportType, opts ...PanelOption) (*Panel, error) {
	view, err := NewViewController(rt)
	if err != nil {
		return nil, err
	}
	return newPanel(loader, scope, view, opts...), nil
}

func newPanel(loader BundleLoader, scope Scope, view *ViewController, opts ...PanelOption) *Panel {
	p := &Panel{
		loader: loader,
		logger: zap.NewNop(),
		clock:  time.Now,
		scope:  scope,
		view:   view,
		status: PanelLoading,
		comp:   EmptyComposition(view.Definition()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SelectReportType resets the view to the new type's defaults and reloads.
func (p *Panel) SelectReportType(ctx context.Context, rt ReportType) error {
	p.mu.Lock()
	if err := p.view.SelectReportType(rt); err != nil {
		p.mu.Unlock()
		return err
	}
	req := p.beginLocked()
	p.mu.Unlock()
	return p.load(ctx, req)
}

// SetScope changes the season/organization and reloads.
func (p *Panel) SetScope(ctx context.Context, scope Scope) error {
	p.mu.Lock()
	p.scope = scope
	req := p.beginLocked()
	p.mu.Unlock()
	return p.load(ctx, req)
}

// ApplySnapshot applies a preset and reloads when the report type changed.
func (p *Panel) ApplySnapshot(ctx context.Context, s Snapshot) error {
	p.mu.Lock()
	before := p.view.State().ReportType
	if err := p.view.ApplySnapshot(s); err != nil {
		p.mu.Unlock()
		return err
	}
	if before == s.ReportType && p.status == PanelReady {
		p.mu.Unlock()
		return nil
	}
	req := p.beginLocked()
	p.mu.Unlock()
	return p.load(ctx, req)
}

// Refresh fetches and composes the current report. A response whose token
// no longer matches is dropped and ErrStale is returned.
func (p *Panel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	req := p.beginLocked()
	p.mu.Unlock()
	return p.load(ctx, req)
}

type panelRequest struct {
	token uint64
	rt    ReportType
	def   *Definition
	scope Scope
}

// beginLocked issues a new request token. Callers hold p.mu and change the
// view in the same critical section, so older responses can never land on
// the new selection.
func (p *Panel) beginLocked() panelRequest {
	p.token++
	p.status = PanelLoading
	return panelRequest{
		token: p.token,
		rt:    p.view.State().ReportType,
		def:   p.view.Definition(),
		scope: p.scope,
	}
}

func (p *Panel) load(ctx context.Context, req panelRequest) error {
	rt, scope := req.rt, req.scope
	bundle, err := p.loader.Load(ctx, rt, scope)

	var comp Composition
	if err == nil {
		comp, err = safeCompose(rt, bundle, p.clock())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if req.token != p.token {
		p.logger.Debug("Discarding stale report response",
			zap.String("report_type", string(rt)),
			zap.Uint64("token", req.token),
			zap.Uint64("current", p.token))
		return ErrStale
	}
	if err != nil {
		p.logger.Error("Failed to load report",
			zap.String("report_type", string(rt)),
			zap.String("org_id", scope.OrgID),
			zap.Error(err))
		p.status = PanelError
		p.err = err
		p.comp = EmptyComposition(req.def)
		return err
	}
	p.status = PanelReady
	p.err = nil
	p.comp = comp
	return nil
}

// safeCompose turns a composer panic into ErrCompose so one broken report
// never takes down the engine.
func safeCompose(rt ReportType, b *Bundle, now time.Time) (comp Composition, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrCompose, rt, r)
		}
	}()
	return Compose(rt, b, now)
}

func (p *Panel) SetFilter(key FilterKey, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.SetFilter(key, value)
}

func (p *Panel) ToggleColumnVisible(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.ToggleColumnVisible(id)
}

func (p *Panel) ReorderColumns(order []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.ReorderColumns(order)
}

func (p *Panel) SetSort(field string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.SetSort(field)
}

func (p *Panel) SortBy(field string, dir SortDir) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.SortBy(field, dir)
}

func (p *Panel) ResetColumns() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view.ResetColumns()
}

func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.Snapshot()
}

func (p *Panel) State() ViewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.State()
}

func (p *Panel) Definition() *Definition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.Definition()
}

// PanelView is the rendered state of a panel.
type PanelView struct {
	ReportType   ReportType      `json:"report_type"`
	Title        string          `json:"title"`
	Status       PanelStatus     `json:"status"`
	Error        string          `json:"error,omitempty"`
	Empty        bool            `json:"empty"`
	TotalRows    int             `json:"total_rows"`
	Columns      []ColumnDef     `json:"columns"`
	Rows         []Row           `json:"rows"`
	Cells        [][]string      `json:"cells"`
	Stats        StatsRecord     `json:"stats"`
	Cards        []StatCard      `json:"cards"`
	Capabilities map[string]bool `json:"capabilities"`
	State        ViewState       `json:"state"`
}

func (p *Panel) View() PanelView {
	p.mu.Lock()
	defer p.mu.Unlock()

	def := p.view.Definition()
	rows := p.view.Apply(p.comp.Rows)
	cols := p.view.VisibleColumns()
	view := PanelView{
		ReportType:   def.Type,
		Title:        def.Title,
		Status:       p.status,
		TotalRows:    len(p.comp.Rows),
		Columns:      cols,
		Rows:         rows,
		Cells:        FormatRows(rows, cols),
		Stats:        p.comp.Stats,
		Cards:        Cards(p.comp.Stats),
		Capabilities: p.comp.Capabilities,
		State:        p.view.State(),
	}
	if p.err != nil {
		view.Error = p.err.Error()
	}
	view.Empty = p.status == PanelReady && len(rows) == 0
	return view
}

// RowCount is the number of composed rows before filtering.
func (p *Panel) RowCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.comp.Rows)
}

// Err returns the error of the last applied load, if any.
func (p *Panel) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// ExportTable builds the tuple every export renderer consumes, with a
// branding header resolved now.
func (p *Panel) ExportTable(id Identity, scopeLabel string) Table {
	p.mu.Lock()
	defer p.mu.Unlock()

	def := p.view.Definition()
	return Table{
		Rows:    p.view.Apply(p.comp.Rows),
		Columns: p.view.VisibleColumns(),
		Stats:   p.comp.Stats,
		Header:  NewBrandingHeader(id, scopeLabel, def),
	}
}

// FormatRows renders every visible cell.
func FormatRows(rows []Row, cols []ColumnDef) [][]string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		line := make([]string, len(cols))
		for j, c := range cols {
			line[j] = FormatCell(c, r)
		}
		cells[i] = line
	}
	return cells
}
