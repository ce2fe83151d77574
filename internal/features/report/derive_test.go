package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ava Lee", FullName("Ava", "Lee"))
	assert.Equal(t, "Ava", FullName(" Ava ", ""))
	assert.Equal(t, "Lee", FullName("", "Lee"))
	assert.Equal(t, "", FullName("", " "))
}

func TestClassifyPayment(t *testing.T) {
	d := decimal.NewFromInt
	tests := []struct {
		name     string
		due, bal decimal.Decimal
		want     PaymentStatus
	}{
		{name: "Settled", due: d(150), bal: d(0), want: PaymentPaid},
		{name: "Nothing Due", due: d(0), bal: d(0), want: PaymentNoFees},
		{name: "Part Paid", due: d(150), bal: d(50), want: PaymentPartial},
		{name: "Nothing Paid", due: d(150), bal: d(150), want: PaymentUnpaid},
		{name: "Overpaid", due: d(100), bal: d(-20), want: PaymentUnpaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPayment(tt.due, tt.bal))
		})
	}
}

func TestSummarizePayments(t *testing.T) {
	s := SummarizePayments([]Record{
		{"amount": 100.0, "paid": true, "paid_at": "2024-03-01"},
		{"amount": "50.25", "paid": false},
		{"amount": int64(25), "paid": 1, "paid_at": "2024-04-10"},
	})
	assert.Equal(t, "175.25", s.TotalDue.String())
	assert.Equal(t, "125", s.TotalPaid.String())
	assert.Equal(t, "50.25", s.Balance().String())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), s.LastPaidAt)
	assert.Equal(t, PaymentPartial, s.Status())
}

func TestPercentAndRosterFill(t *testing.T) {
	assert.Equal(t, 50.0, Percent(150, 300))
	assert.Equal(t, 0.0, Percent(10, 0))
	assert.Equal(t, 33.0, Percent(1, 3))
	assert.Equal(t, 75.0, RosterFill(9, 12))
	assert.Equal(t, 0.0, RosterFill(9, 0))
}

func TestClassifyRoster(t *testing.T) {
	assert.Equal(t, RosterReady, ClassifyRoster(9, 6))
	assert.Equal(t, RosterNeedPlayers, ClassifyRoster(5, 6))
	assert.Equal(t, RosterReady, ClassifyRoster(6, 0), "default minimum is 6")
	assert.Equal(t, RosterNeedPlayers, ClassifyRoster(5, 0))
}

func TestClassifyPipeline(t *testing.T) {
	paid := SummarizePayments([]Record{{"amount": 100, "paid": true}})
	unpaid := SummarizePayments([]Record{{"amount": 100, "paid": false}})
	none := SummarizePayments(nil)

	assert.Equal(t, PipelineManual, ClassifyPipeline(false, "", none))
	assert.Equal(t, PipelinePending, ClassifyPipeline(true, "submitted", none))
	assert.Equal(t, PipelineDenied, ClassifyPipeline(true, "Rejected", paid))
	assert.Equal(t, PipelineWaitlisted, ClassifyPipeline(true, "waitlist", none))
	assert.Equal(t, PipelinePaid, ClassifyPipeline(true, "approved", paid))
	assert.Equal(t, PipelineUnpaid, ClassifyPipeline(true, "approved", unpaid))
	assert.Equal(t, PipelineApproved, ClassifyPipeline(true, "accepted", none))
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, Age(time.Date(2014, 6, 15, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 9, Age(time.Date(2014, 6, 16, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 0, Age(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), now))
}
