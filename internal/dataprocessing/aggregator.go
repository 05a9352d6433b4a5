package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"nmgcli/internal/errors"
	"nmgcli/pkg/contracts/domain"
)

// AggregatorConfig holds the aggregation-stage parameters.
type AggregatorConfig struct {
	// BaselineStart and BaselineEnd bound the pre-pandemic baseline band
	// (inclusive). The Baseline scalar is the mean estimated savings over it.
	BaselineStart int
	BaselineEnd   int

	// LowConfidenceYears marks survey years whose summaries carry the
	// low-confidence flag (sparse income coverage, per the cleaner).
	LowConfidenceYears map[int]bool
}

// Aggregator reduces the cleaned household table into the yearly and
// decile-level summary tables.
type Aggregator struct {
	logger *slog.Logger
	config AggregatorConfig
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger, config: config}
}

// Aggregate computes the baseline and both summary tables.
//
// The baseline is computed first from baseline-band rows; an empty band is
// InsufficientDataError (a zero baseline would silently corrupt every excess
// figure downstream). Excess savings may be negative: below-baseline years
// are a valid signal and are reported as-is. Cumulative excess is the running
// sum of per-year excess in ascending year order, reset to zero at the
// baseline-band boundary. Years with no retained rows are omitted with a gap
// warning rather than failing the run.
func (a *Aggregator) Aggregate(ctx context.Context, records []domain.CleanedHouseholdRecord) (*domain.AggregateResult, error) {
	if len(records) == 0 {
		return nil, errors.NewEmptyInputError("no cleaned households to aggregate")
	}

	baseline, baselineCount := a.computeBaseline(records)
	if baselineCount == 0 {
		return nil, errors.NewInsufficientDataError(fmt.Sprintf(
			"no households in baseline band %d-%d", a.config.BaselineStart, a.config.BaselineEnd))
	}

	result := &domain.AggregateResult{Baseline: baseline}

	byYear := make(map[int][]domain.CleanedHouseholdRecord)
	for _, record := range records {
		byYear[record.SurveyYear] = append(byYear[record.SurveyYear], record)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	// Gap years between the first and last observed waves get a warning,
	// not a fatal error.
	for y := years[0]; y <= years[len(years)-1]; y++ {
		if _, ok := byYear[y]; !ok {
			warning := fmt.Sprintf("survey year %d has no retained households, summary omitted", y)
			result.Warnings = append(result.Warnings, warning)
			a.logger.WarnContext(ctx, "yearly summary gap", slog.Int("survey_year", y))
		}
	}

	cumulative := 0.0
	pastBaseline := false
	for _, year := range years {
		group := byYear[year]

		summary := domain.YearlySummary{
			SurveyYear:    year,
			Households:    len(group),
			AvgIncome:     meanOf(group, func(r domain.CleanedHouseholdRecord) float64 { return r.GrossIncome }),
			AvgSavings:    meanOf(group, func(r domain.CleanedHouseholdRecord) float64 { return r.EstimatedSavings }),
			MedianSavings: medianSavings(group),
			LowConfidence: a.config.LowConfidenceYears[year],
		}
		summary.ExcessSavings = summary.AvgSavings - baseline

		if !pastBaseline && year > a.config.BaselineEnd {
			cumulative = 0
			pastBaseline = true
		}
		cumulative += summary.ExcessSavings
		summary.CumulativeExcess = cumulative

		result.YearlySummaries = append(result.YearlySummaries, summary)
	}

	result.DecileSummaries = a.aggregateDeciles(byYear, baseline)

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.Float64("baseline", baseline),
		slog.Int("baseline_households", baselineCount),
		slog.Int("yearly_summaries", len(result.YearlySummaries)),
		slog.Int("decile_summaries", len(result.DecileSummaries)),
		slog.Int("warnings", len(result.Warnings)))

	return result, nil
}

// computeBaseline returns the mean estimated savings over the baseline band
// and the number of contributing households.
func (a *Aggregator) computeBaseline(records []domain.CleanedHouseholdRecord) (float64, int) {
	sum := 0.0
	count := 0
	for _, record := range records {
		if record.SurveyYear >= a.config.BaselineStart && record.SurveyYear <= a.config.BaselineEnd {
			sum += record.EstimatedSavings
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// aggregateDeciles applies the yearly reduction grouped additionally by
// income decile. Rows are ordered by year, then decile.
func (a *Aggregator) aggregateDeciles(byYear map[int][]domain.CleanedHouseholdRecord, baseline float64) []domain.DecileSummary {
	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	var summaries []domain.DecileSummary
	for _, year := range years {
		byDecile := make(map[int][]domain.CleanedHouseholdRecord)
		for _, record := range byYear[year] {
			byDecile[record.IncomeDecile] = append(byDecile[record.IncomeDecile], record)
		}

		for decile := 1; decile <= 10; decile++ {
			group, ok := byDecile[decile]
			if !ok {
				continue
			}
			avgSavings := meanOf(group, func(r domain.CleanedHouseholdRecord) float64 { return r.EstimatedSavings })
			summaries = append(summaries, domain.DecileSummary{
				SurveyYear:   year,
				IncomeDecile: decile,
				Households:   len(group),
				AvgIncome:    meanOf(group, func(r domain.CleanedHouseholdRecord) float64 { return r.GrossIncome }),
				AvgSavings:   avgSavings,
				AvgExcess:    avgSavings - baseline,
			})
		}
	}

	return summaries
}

// meanOf averages a field over a non-empty group.
func meanOf(group []domain.CleanedHouseholdRecord, field func(domain.CleanedHouseholdRecord) float64) float64 {
	sum := 0.0
	for _, record := range group {
		sum += field(record)
	}
	return sum / float64(len(group))
}

// medianSavings returns the median estimated savings of a non-empty group,
// averaging the two middle values for even-sized groups.
func medianSavings(group []domain.CleanedHouseholdRecord) float64 {
	values := make([]float64, len(group))
	for i, record := range group {
		values[i] = record.EstimatedSavings
	}
	sort.Float64s(values)

	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
