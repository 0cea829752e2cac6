package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	leads := []Lead{
		{Status: StatusApproach, EstimatedAmount: decimal.NewFromInt(1000)},
		{Status: StatusWon, EstimatedAmount: decimal.NewFromInt(2000), RealizedAmount: amount("1800")},
	}
	r := Summarize(leads)

	if r.Total != 2 {
		t.Fatalf("total = %d, want 2", r.Total)
	}
	if r.ByStatus[StatusWon] != 1 {
		t.Fatalf("won count = %d, want 1", r.ByStatus[StatusWon])
	}
	if !r.EstimatedSum.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("estimated sum = %s, want 3000", r.EstimatedSum)
	}
	if !r.RealizedSum.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("realized sum = %s, want 1800", r.RealizedSum)
	}
	if r.ConversionRatio != 0.5 {
		t.Fatalf("conversion ratio = %f, want 0.5", r.ConversionRatio)
	}
}

func TestSummarizeCountsAddUp(t *testing.T) {
	leads := []Lead{
		{Status: StatusApproach}, {Status: StatusApproach},
		{Status: StatusProposal}, {Status: StatusDocumentation},
		{Status: StatusWon, RealizedAmount: amount("1")},
		{Status: StatusCancelled},
	}
	r := Summarize(leads)
	sum := 0
	for _, n := range r.ByStatus {
		sum += n
	}
	if sum != r.Total {
		t.Fatalf("status counts sum to %d, total is %d", sum, r.Total)
	}
	if r.ConversionRatio < 0 || r.ConversionRatio > 1 {
		t.Fatalf("conversion ratio %f out of [0,1]", r.ConversionRatio)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	r := Summarize(nil)
	if r.Total != 0 || r.ConversionRatio != 0 {
		t.Fatalf("empty collection: total=%d ratio=%f, want zeros", r.Total, r.ConversionRatio)
	}
	if !r.EstimatedSum.IsZero() || !r.RealizedSum.IsZero() {
		t.Fatalf("empty collection must sum to zero")
	}
}

func TestRealizedSumIgnoresNonWon(t *testing.T) {
	// A realized amount left over from a reopened lead does not count.
	leads := []Lead{
		{Status: StatusProposal, EstimatedAmount: decimal.NewFromInt(500), RealizedAmount: amount("400")},
	}
	r := Summarize(leads)
	if !r.RealizedSum.IsZero() {
		t.Fatalf("realized sum = %s, want 0 for non-won leads", r.RealizedSum)
	}
}

func TestExpectedRevenueThreshold(t *testing.T) {
	p60, p40 := 60, 40
	leads := []Lead{
		{EstimatedAmount: decimal.NewFromInt(1000), Probability: &p60},
		{EstimatedAmount: decimal.NewFromInt(2000), Probability: &p40},
		{EstimatedAmount: decimal.NewFromInt(3000)}, // no probability: excluded
	}
	got := ExpectedRevenue(leads, DefaultProbabilityThreshold)
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected revenue = %s, want 1000", got)
	}

	// The cutoff is exclusive.
	p51 := 51
	leads = []Lead{{EstimatedAmount: decimal.NewFromInt(700), Probability: &p51}}
	if got := ExpectedRevenue(leads, 51); !got.IsZero() {
		t.Fatalf("probability equal to threshold must not count, got %s", got)
	}
}

func TestGoalGap(t *testing.T) {
	cases := []struct {
		goal, expected, want int64
	}{
		{10000, 6000, 4000},
		{5000, 6000, -1000},
		{0, 0, 0},
	}
	for _, tc := range cases {
		got := GoalGap(decimal.NewFromInt(tc.expected), decimal.NewFromInt(tc.goal))
		if !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Fatalf("GoalGap(expected=%d, goal=%d) = %s, want %d", tc.expected, tc.goal, got, tc.want)
		}
	}
}

func TestDailySeries(t *testing.T) {
	start := day(2026, time.March, 1)
	end := day(2026, time.April, 1)
	leads := []Lead{
		{CaptureDate: day(2026, time.March, 2), Status: StatusApproach, EstimatedAmount: decimal.NewFromInt(100)},
		{CaptureDate: day(2026, time.March, 2), Status: StatusWon, EstimatedAmount: decimal.NewFromInt(300), RealizedAmount: amount("250")},
		{CaptureDate: day(2026, time.March, 10), Status: StatusProposal, EstimatedAmount: decimal.NewFromInt(50)},
		{CaptureDate: day(2026, time.April, 2), Status: StatusApproach, EstimatedAmount: decimal.NewFromInt(999)}, // outside
	}

	series := DailySeries(leads, start, end, false)
	if len(series) != 31 {
		t.Fatalf("expected 31 points for March, got %d", len(series))
	}
	if !series[0].Estimated.IsZero() {
		t.Fatalf("day without leads must be zero, got %s", series[0].Estimated)
	}
	if !series[1].Estimated.Equal(decimal.NewFromInt(400)) || !series[1].Realized.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("march 2: estimated=%s realized=%s", series[1].Estimated, series[1].Realized)
	}
	if !series[30].Estimated.IsZero() {
		t.Fatalf("lead outside the window leaked into the series")
	}
}

func TestDailySeriesCumulativeMonotonic(t *testing.T) {
	start := day(2026, time.March, 1)
	end := day(2026, time.March, 8)
	leads := []Lead{
		{CaptureDate: day(2026, time.March, 1), Status: StatusApproach, EstimatedAmount: decimal.NewFromInt(10)},
		{CaptureDate: day(2026, time.March, 4), Status: StatusWon, EstimatedAmount: decimal.NewFromInt(20), RealizedAmount: amount("15")},
	}
	series := DailySeries(leads, start, end, true)
	for i := 1; i < len(series); i++ {
		if series[i].Estimated.LessThan(series[i-1].Estimated) {
			t.Fatalf("cumulative estimated dipped at %s", series[i].Date)
		}
		if series[i].Realized.LessThan(series[i-1].Realized) {
			t.Fatalf("cumulative realized dipped at %s", series[i].Date)
		}
	}
	last := series[len(series)-1]
	if !last.Estimated.Equal(decimal.NewFromInt(30)) || !last.Realized.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("cumulative totals: estimated=%s realized=%s", last.Estimated, last.Realized)
	}
}

func TestDailySeriesRestartable(t *testing.T) {
	start := day(2026, time.March, 1)
	end := day(2026, time.March, 4)
	leads := []Lead{{CaptureDate: day(2026, time.March, 2), Status: StatusApproach, EstimatedAmount: decimal.NewFromInt(5)}}
	a := DailySeries(leads, start, end, true)
	b := DailySeries(leads, start, end, true)
	if len(a) != len(b) {
		t.Fatalf("series lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Estimated.Equal(b[i].Estimated) || !a[i].Realized.Equal(b[i].Realized) {
			t.Fatalf("series not a pure function of its inputs at index %d", i)
		}
	}
}

func TestStalledClients(t *testing.T) {
	leads := []Lead{
		{Client: "Acme", Status: StatusApproach},
		{Client: "Acme", Status: StatusProposal}, // progressed: not stalled
		{Client: "Globex", Status: StatusApproach},
		{Client: "Initech", Status: StatusApproach},
		{Client: "Initech", Status: StatusCancelled}, // cancelled does not rescue
		{Client: "Umbrella", Status: StatusCancelled},
	}
	got := StalledClients(leads)
	want := []string{"Globex", "Initech"}
	if len(got) != len(want) {
		t.Fatalf("stalled = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stalled = %v, want %v", got, want)
		}
	}
}
