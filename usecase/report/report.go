package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

// LeadLister is the slice of the funnel use case the reports need; going
// through it keeps report reads behind the same cache as plain listings.
type LeadLister interface {
	ListLeads(ctx context.Context, filter repository.LeadFilter) ([]domain.Lead, error)
}

// ThresholdSource exposes the currently configured traffic-light bands.
type ThresholdSource interface {
	Thresholds() domain.Thresholds
}

// AdvisorSummary is one dashboard row: the advisor's funnel rollup for the
// period plus the derived light, expected revenue, and goal gap. Goal and
// GoalGap are nil when no goal is set for the period.
type AdvisorSummary struct {
	AdvisorID       string           `json:"advisor_id"`
	Advisor         string           `json:"advisor"`
	Rollup          domain.Rollup    `json:"rollup"`
	Light           domain.Light     `json:"light"`
	ExpectedRevenue decimal.Decimal  `json:"expected_revenue"`
	Goal            *decimal.Decimal `json:"goal,omitempty"`
	GoalGap         *decimal.Decimal `json:"goal_gap,omitempty"`
}

type UseCase struct {
	leads      LeadLister
	goals      repository.GoalRepository
	thresholds ThresholdSource
	logger     *zap.Logger
}

func New(leads LeadLister, goals repository.GoalRepository, thresholds ThresholdSource, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		leads:      leads,
		goals:      goals,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Summaries builds one dashboard row per advisor that has leads in the
// period, sorted by advisor alias. The period covers the calendar month of
// the given instant.
func (uc *UseCase) Summaries(ctx context.Context, period time.Time, clientType string) ([]AdvisorSummary, error) {
	from, to := monthWindow(period)
	leads, err := uc.leads.ListLeads(ctx, repository.LeadFilter{
		ClientType:      clientType,
		DateFrom:        &from,
		DateToExclusive: &to,
	})
	if err != nil {
		return nil, err
	}

	byOwner := make(map[string][]domain.Lead)
	alias := make(map[string]string)
	for _, lead := range leads {
		byOwner[lead.OwnerID] = append(byOwner[lead.OwnerID], lead)
		if _, ok := alias[lead.OwnerID]; !ok {
			alias[lead.OwnerID] = lead.Advisor
		}
	}

	goals, err := uc.goals.ListForPeriod(ctx, from)
	if err != nil {
		return nil, err
	}
	goalByOwner := make(map[string]domain.MonthlyGoal, len(goals))
	for _, goal := range goals {
		goalByOwner[goal.AdvisorID] = goal
	}

	bands := domain.DefaultThresholds()
	if uc.thresholds != nil {
		bands = uc.thresholds.Thresholds()
	}

	summaries := make([]AdvisorSummary, 0, len(byOwner))
	for ownerID, ownerLeads := range byOwner {
		rollup := domain.Summarize(ownerLeads)
		expected := domain.ExpectedRevenue(ownerLeads, domain.DefaultProbabilityThreshold)
		row := AdvisorSummary{
			AdvisorID:       ownerID,
			Advisor:         alias[ownerID],
			Rollup:          rollup,
			ExpectedRevenue: expected,
		}
		if rollup.Total > 0 {
			row.Light = domain.Classify(rollup.ConversionRatio, bands)
		}
		if goal, ok := goalByOwner[ownerID]; ok {
			target := goal.Amount
			gap := domain.GoalGap(expected, target)
			row.Goal = &target
			row.GoalGap = &gap
		}
		summaries = append(summaries, row)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Advisor < summaries[j].Advisor
	})
	return summaries, nil
}

// Daily returns the per-day capture series for the calendar month of the
// given instant, zero-filled across the whole month.
func (uc *UseCase) Daily(ctx context.Context, period time.Time, filter repository.LeadFilter, cumulative bool) ([]domain.DailyPoint, error) {
	from, to := monthWindow(period)
	filter.DateFrom = &from
	filter.DateToExclusive = &to
	leads, err := uc.leads.ListLeads(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.DailySeries(leads, from, to, cumulative), nil
}

// Stalled lists clients whose best stage never moved past the first one.
func (uc *UseCase) Stalled(ctx context.Context, filter repository.LeadFilter) ([]string, error) {
	leads, err := uc.leads.ListLeads(ctx, filter)
	if err != nil {
		return nil, err
	}
	return domain.StalledClients(leads), nil
}

func monthWindow(t time.Time) (time.Time, time.Time) {
	from := domain.PeriodStart(t)
	return from, from.AddDate(0, 1, 0)
}
