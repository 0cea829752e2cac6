package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultProbabilityThreshold is the closing-probability cutoff (exclusive)
// above which a lead's estimated amount counts toward expected revenue.
const DefaultProbabilityThreshold = 51

// Rollup holds the aggregate metrics for a scoped collection of leads.
type Rollup struct {
	Total           int             `json:"total"`
	ByStatus        map[Status]int  `json:"by_status"`
	EstimatedSum    decimal.Decimal `json:"estimated_sum"`
	RealizedSum     decimal.Decimal `json:"realized_sum"`
	ConversionRatio float64         `json:"conversion_ratio"`
}

// Summarize computes the rollup for an already-scoped lead collection.
// The conversion ratio of an empty collection is 0, never a division error.
// Realized amounts count only for leads currently Won.
func Summarize(leads []Lead) Rollup {
	r := Rollup{
		ByStatus:     make(map[Status]int, 5),
		EstimatedSum: decimal.Zero,
		RealizedSum:  decimal.Zero,
	}
	for _, s := range AllStatuses() {
		r.ByStatus[s] = 0
	}
	for i := range leads {
		l := &leads[i]
		r.Total++
		r.ByStatus[l.Status]++
		r.EstimatedSum = r.EstimatedSum.Add(l.EstimatedAmount)
		if l.IsWon() && l.RealizedAmount != nil {
			r.RealizedSum = r.RealizedSum.Add(*l.RealizedAmount)
		}
	}
	if r.Total > 0 {
		r.ConversionRatio = float64(r.ByStatus[StatusWon]) / float64(r.Total)
	}
	return r
}

// ExpectedRevenue sums estimated amounts over leads whose closing probability
// strictly exceeds threshold. Leads without a probability are excluded, not
// treated as zero-probability.
func ExpectedRevenue(leads []Lead, threshold int) decimal.Decimal {
	sum := decimal.Zero
	for i := range leads {
		l := &leads[i]
		if l.Probability == nil || *l.Probability <= threshold {
			continue
		}
		sum = sum.Add(l.EstimatedAmount)
	}
	return sum
}

// GoalGap is the remaining distance to a revenue target. Negative means the
// target is already exceeded.
func GoalGap(expected, target decimal.Decimal) decimal.Decimal {
	return target.Sub(expected)
}

// DailyPoint is one calendar day of estimated and realized totals.
type DailyPoint struct {
	Date      time.Time       `json:"date"`
	Estimated decimal.Decimal `json:"estimated"`
	Realized  decimal.Decimal `json:"realized"`
}

// DailySeries buckets leads by capture date over [start, endExclusive), one
// point per calendar day with days lacking leads zero-filled. With cumulative
// set, each point carries the running totals of all prior days. Realized
// totals count leads currently Won on their capture date; the lead stores a
// single capture date, not the date it became Won.
func DailySeries(leads []Lead, start, endExclusive time.Time, cumulative bool) []DailyPoint {
	start = dateOnly(start)
	endExclusive = dateOnly(endExclusive)
	if !start.Before(endExclusive) {
		return nil
	}

	days := int(endExclusive.Sub(start).Hours() / 24)
	series := make([]DailyPoint, days)
	for i := range series {
		series[i] = DailyPoint{
			Date:      start.AddDate(0, 0, i),
			Estimated: decimal.Zero,
			Realized:  decimal.Zero,
		}
	}

	for i := range leads {
		l := &leads[i]
		day := dateOnly(l.CaptureDate)
		if day.Before(start) || !day.Before(endExclusive) {
			continue
		}
		idx := int(day.Sub(start).Hours() / 24)
		series[idx].Estimated = series[idx].Estimated.Add(l.EstimatedAmount)
		if l.IsWon() && l.RealizedAmount != nil {
			series[idx].Realized = series[idx].Realized.Add(*l.RealizedAmount)
		}
	}

	if cumulative {
		for i := 1; i < len(series); i++ {
			series[i].Estimated = series[i].Estimated.Add(series[i-1].Estimated)
			series[i].Realized = series[i].Realized.Add(series[i-1].Realized)
		}
	}
	return series
}

// StalledClients returns the sorted client names whose best funnel rank over
// the collection is exactly Approach. A later cancellation does not rescue a
// client, since Cancelled ranks below Approach.
func StalledClients(leads []Lead) []string {
	best := make(map[string]int)
	for i := range leads {
		l := &leads[i]
		if l.Client == "" {
			continue
		}
		if rank := l.Status.Rank(); rank > best[l.Client] {
			best[l.Client] = rank
		} else if _, seen := best[l.Client]; !seen {
			best[l.Client] = rank
		}
	}
	var stalled []string
	for client, rank := range best {
		if rank == StatusApproach.Rank() {
			stalled = append(stalled, client)
		}
	}
	sort.Strings(stalled)
	return stalled
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
