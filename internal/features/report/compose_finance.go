package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// balanceRow backs both the payments and the outstanding reports.
type balanceRow struct {
	FullName    string
	TeamName    string
	SeasonName  string
	ParentName  string
	ParentEmail string
	ParentPhone string
	Payments    PaymentSummary
	LastPaidAt  time.Time
	HasLastPaid bool
}

func (r balanceRow) project() Row {
	return Row{
		"full_name":         r.FullName,
		"team_name":         optString(r.TeamName),
		"season_name":       optString(r.SeasonName),
		"parent_name":       optString(r.ParentName),
		"parent_email":      optString(r.ParentEmail),
		"parent_phone":      optString(r.ParentPhone),
		"payment_count":     r.Payments.Count,
		"total_due":         money(r.Payments.TotalDue),
		"total_paid":        money(r.Payments.TotalPaid),
		"balance":           money(r.Payments.Balance()),
		"payment_status":    string(r.Payments.Status()),
		"last_payment_date": optTime(r.LastPaidAt, r.HasLastPaid),
	}
}

func balanceRows(b *Bundle) []balanceRow {
	roster := newRosterIndex(b)
	payments := groupBy(b.Records("payments"), "player_id")
	seasons := indexBy(b.Records("seasons"), "id")

	players := b.Records("players")
	rows := make([]balanceRow, 0, len(players))
	for _, p := range players {
		id := p.Str("id")
		seasonNames := make([]string, 0, 1)
		for _, pay := range payments[id] {
			if s, ok := seasons[pay.Str("season_id")]; ok {
				seasonNames = append(seasonNames, s.Str("name"))
			}
		}
		row := balanceRow{
			FullName:    fullNameOf(p),
			TeamName:    roster.teamName(id),
			SeasonName:  joinDistinct(seasonNames),
			ParentName:  p.Str("parent_name"),
			ParentEmail: p.Str("parent_email"),
			ParentPhone: p.Str("parent_phone"),
			Payments:    SummarizePayments(payments[id]),
		}
		row.LastPaidAt = row.Payments.LastPaidAt
		row.HasLastPaid = !row.LastPaidAt.IsZero()
		rows = append(rows, row)
	}
	return rows
}

func composePayments(b *Bundle) ([]balanceRow, map[string]float64) {
	rows := balanceRows(b)

	due, paid := decimal.Zero, decimal.Zero
	for _, r := range rows {
		due = due.Add(r.Payments.TotalDue)
		paid = paid.Add(r.Payments.TotalPaid)
	}
	return rows, map[string]float64{
		"total_revenue":   money(due),
		"collected":       money(paid),
		"outstanding":     money(due.Sub(paid)),
		"collection_rate": Percent(money(paid), money(due)),
	}
}

// composeOutstanding keeps only players who still owe; its stats describe
// that subset.
func composeOutstanding(b *Bundle) ([]balanceRow, map[string]float64) {
	all := balanceRows(b)
	rows := make([]balanceRow, 0, len(all))
	total, largest := decimal.Zero, decimal.Zero
	for _, r := range all {
		balance := r.Payments.Balance()
		if !balance.IsPositive() {
			continue
		}
		total = total.Add(balance)
		if balance.GreaterThan(largest) {
			largest = balance
		}
		rows = append(rows, r)
	}

	average := decimal.Zero
	if len(rows) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(rows))))
	}
	return rows, map[string]float64{
		"players_owing":     float64(len(rows)),
		"total_outstanding": money(total),
		"average_balance":   money(average),
		"largest_balance":   money(largest),
	}
}

type ledgerRow struct {
	PaymentDate time.Time
	HasDate     bool
	FullName    string
	Description string
	Amount      decimal.Decimal
	Paid        bool
	Method      string
	PaidAt      time.Time
	HasPaidAt   bool
}

func (r ledgerRow) project() Row {
	status := "Pending"
	if r.Paid {
		status = "Paid"
	}
	return Row{
		"payment_date": optTime(r.PaymentDate, r.HasDate),
		"full_name":    r.FullName,
		"description":  optString(r.Description),
		"amount":       money(r.Amount),
		"status":       status,
		"method":       optString(r.Method),
		"paid_at":      optTime(r.PaidAt, r.HasPaidAt),
	}
}

func ledgerDate(p Record) (time.Time, bool) {
	if t, ok := p.Time("payment_date"); ok {
		return t, true
	}
	if t, ok := p.Time("due_date"); ok {
		return t, true
	}
	return p.Time("created_at")
}

// composeFinancial emits one row per payment in date order.
func composeFinancial(b *Bundle) ([]ledgerRow, map[string]float64) {
	players := indexBy(b.Records("players"), "id")

	payments := append([]Record(nil), b.Records("payments")...)
	sortByTime(payments, ledgerDate)

	rows := make([]ledgerRow, 0, len(payments))
	billed, collected := decimal.Zero, decimal.Zero
	for _, p := range payments {
		row := ledgerRow{
			Description: p.Str("description"),
			Amount:      p.Decimal("amount"),
			Paid:        p.Bool("paid"),
			Method:      p.Str("method"),
		}
		if player, ok := players[p.Str("player_id")]; ok {
			row.FullName = fullNameOf(player)
		}
		row.PaymentDate, row.HasDate = ledgerDate(p)
		row.PaidAt, row.HasPaidAt = p.Time("paid_at")

		billed = billed.Add(row.Amount)
		if row.Paid {
			collected = collected.Add(row.Amount)
		}
		rows = append(rows, row)
	}
	return rows, map[string]float64{
		"transactions":    float64(len(rows)),
		"billed":          money(billed),
		"collected":       money(collected),
		"collection_rate": Percent(money(collected), money(billed)),
	}
}

type seasonRow struct {
	SeasonName  string
	Sport       string
	StartDate   time.Time
	HasStart    bool
	EndDate     time.Time
	HasEnd      bool
	PlayerCount int
	TeamCount   int
	Payments    PaymentSummary
}

func (r seasonRow) project() Row {
	return Row{
		"season_name":     r.SeasonName,
		"sport":           optString(r.Sport),
		"start_date":      optTime(r.StartDate, r.HasStart),
		"end_date":        optTime(r.EndDate, r.HasEnd),
		"player_count":    r.PlayerCount,
		"team_count":      r.TeamCount,
		"total_due":       money(r.Payments.TotalDue),
		"total_paid":      money(r.Payments.TotalPaid),
		"balance":         money(r.Payments.Balance()),
		"collection_rate": Percent(money(r.Payments.TotalPaid), money(r.Payments.TotalDue)),
	}
}

// composeSeasonSummary rolls every season of an organization up to one row.
func composeSeasonSummary(b *Bundle) ([]seasonRow, map[string]float64) {
	players := groupBy(b.Records("players"), "season_id")
	teams := groupBy(b.Records("teams"), "season_id")
	payments := groupBy(b.Records("payments"), "player_id")

	seasons := b.Records("seasons")
	rows := make([]seasonRow, 0, len(seasons))
	var playerTotal float64
	revenue, collected := decimal.Zero, decimal.Zero
	for _, s := range seasons {
		id := s.Str("id")
		var seasonPayments []Record
		for _, p := range players[id] {
			seasonPayments = append(seasonPayments, payments[p.Str("id")]...)
		}
		row := seasonRow{
			SeasonName:  s.Str("name"),
			Sport:       s.Str("sport"),
			PlayerCount: len(players[id]),
			TeamCount:   len(teams[id]),
			Payments:    SummarizePayments(seasonPayments),
		}
		row.StartDate, row.HasStart = s.Time("start_date")
		row.EndDate, row.HasEnd = s.Time("end_date")

		playerTotal += float64(row.PlayerCount)
		revenue = revenue.Add(row.Payments.TotalDue)
		collected = collected.Add(row.Payments.TotalPaid)
		rows = append(rows, row)
	}
	return rows, map[string]float64{
		"seasons":   float64(len(rows)),
		"players":   playerTotal,
		"revenue":   money(revenue),
		"collected": money(collected),
	}
}
