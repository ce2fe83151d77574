package report

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultMinRosterSize = 6

// FullName joins first and last name with one space, omitting empty parts.
func FullName(first, last string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{first, last} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func fullNameOf(r Record) string {
	return FullName(r.Str("first_name"), r.Str("last_name"))
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentNoFees  PaymentStatus = "No Fees"
	PaymentPartial PaymentStatus = "Partial"
	PaymentUnpaid  PaymentStatus = "Unpaid"
)

// PaymentSummary aggregates the payment records of one entity.
type PaymentSummary struct {
	TotalDue   decimal.Decimal
	TotalPaid  decimal.Decimal
	Count      int
	LastPaidAt time.Time
}

// SummarizePayments sums every amount into TotalDue and only paid amounts
// into TotalPaid.
func SummarizePayments(payments []Record) PaymentSummary {
	s := PaymentSummary{TotalDue: decimal.Zero, TotalPaid: decimal.Zero}
	for _, p := range payments {
		amount := p.Decimal("amount")
		s.TotalDue = s.TotalDue.Add(amount)
		s.Count++
		if !p.Bool("paid") {
			continue
		}
		s.TotalPaid = s.TotalPaid.Add(amount)
		if t, ok := paymentDate(p); ok && t.After(s.LastPaidAt) {
			s.LastPaidAt = t
		}
	}
	return s
}

// Balance may be negative when an entity overpaid.
func (s PaymentSummary) Balance() decimal.Decimal {
	return s.TotalDue.Sub(s.TotalPaid)
}

func (s PaymentSummary) Status() PaymentStatus {
	return ClassifyPayment(s.TotalDue, s.Balance())
}

// ClassifyPayment applies the four-way payment status rule.
func ClassifyPayment(totalDue, balance decimal.Decimal) PaymentStatus {
	switch {
	case balance.IsZero() && totalDue.IsPositive():
		return PaymentPaid
	case totalDue.IsZero():
		return PaymentNoFees
	case balance.IsPositive() && balance.LessThan(totalDue):
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

func paymentDate(p Record) (time.Time, bool) {
	for _, key := range []string{"paid_at", "payment_date", "created_at"} {
		if t, ok := p.Time(key); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// money converts an aggregate into the float64 Row representation.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Percent returns part/whole as a whole-number percentage, 0 when whole is 0.
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part / whole * 100)
}

// RosterFill is player_count / max_roster_size as a percentage.
func RosterFill(playerCount, maxRoster int) float64 {
	if maxRoster <= 0 {
		return 0
	}
	return Percent(float64(playerCount), float64(maxRoster))
}

type RosterStatus string

const (
	RosterReady       RosterStatus = "Ready"
	RosterNeedPlayers RosterStatus = "Need Players"
)

// ClassifyRoster uses a minimum of 6 players when none is configured.
func ClassifyRoster(playerCount, minRoster int) RosterStatus {
	if minRoster <= 0 {
		minRoster = defaultMinRosterSize
	}
	if playerCount >= minRoster {
		return RosterReady
	}
	return RosterNeedPlayers
}

type PipelineStatus string

const (
	PipelinePending    PipelineStatus = "pending"
	PipelineApproved   PipelineStatus = "approved"
	PipelinePaid       PipelineStatus = "paid"
	PipelinePartial    PipelineStatus = "partial"
	PipelineUnpaid     PipelineStatus = "unpaid"
	PipelineDenied     PipelineStatus = "denied"
	PipelineWaitlisted PipelineStatus = "waitlisted"
	PipelineManual     PipelineStatus = "manual"
)

// ClassifyPipeline combines a registration status with the payment rule.
// hasRegistration is false for players added without a registration.
func ClassifyPipeline(hasRegistration bool, registrationStatus string, payments PaymentSummary) PipelineStatus {
	if !hasRegistration {
		return PipelineManual
	}
	switch strings.ToLower(strings.TrimSpace(registrationStatus)) {
	case "denied", "rejected", "declined":
		return PipelineDenied
	case "waitlisted", "waitlist":
		return PipelineWaitlisted
	case "approved", "accepted", "confirmed", "active":
		switch payments.Status() {
		case PaymentPaid:
			return PipelinePaid
		case PaymentPartial:
			return PipelinePartial
		case PaymentUnpaid:
			return PipelineUnpaid
		default:
			return PipelineApproved
		}
	default:
		return PipelinePending
	}
}

// isAccepted reports whether a pipeline status counts as an accepted registration.
func (p PipelineStatus) isAccepted() bool {
	switch p {
	case PipelineApproved, PipelinePaid, PipelinePartial, PipelineUnpaid:
		return true
	}
	return false
}

// Age is the number of whole years between dob and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// joinDistinct joins non-empty values in first-seen order.
func joinDistinct(values []string) string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return strings.Join(out, ", ")
}
