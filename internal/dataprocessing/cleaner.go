package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"nmgcli/internal/errors"
	"nmgcli/pkg/contracts/domain"
)

// CleanerConfig holds the cleaning-stage parameters.
type CleanerConfig struct {
	MinYear int
	MaxYear int

	// MaxExclusionRate is the highest acceptable fraction of rows excluded
	// for missing income before a quality warning is emitted.
	MaxExclusionRate float64

	// MinCoverage is the per-year income coverage below which the year is
	// flagged low-confidence.
	MinCoverage float64
}

// Cleaner turns raw household records into the cleaned household-level table:
// it filters incomplete records, applies the savings-rate proxy, and assigns
// per-year income deciles.
type Cleaner struct {
	logger *slog.Logger
	rates  RateTable
	config CleanerConfig
}

// NewCleaner creates a cleaner over the given rate table. The table must
// already be validated against the configured survey range.
func NewCleaner(logger *slog.Logger, rates RateTable, config CleanerConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger, rates: rates, config: config}
}

// Clean produces the CleanedHouseholdRecord set and the quality report.
// The input slice is not mutated. Output ordering is deterministic: survey
// year ascending, then original workbook row order.
//
// Returns EmptyInputError when zero rows survive the completeness filter.
func (c *Cleaner) Clean(ctx context.Context, records []domain.HouseholdRecord) ([]domain.CleanedHouseholdRecord, domain.QualityReport, error) {
	report := domain.QualityReport{
		RowsRead:     len(records),
		YearCoverage: make(map[int]float64),
	}

	yearTotals := make(map[int]int)
	yearRetained := make(map[int]int)

	var cleaned []domain.CleanedHouseholdRecord

	for _, record := range records {
		if record.SurveyYear < c.config.MinYear || record.SurveyYear > c.config.MaxYear {
			report.RowsDroppedYear++
			continue
		}
		yearTotals[record.SurveyYear]++

		if !record.HasIncome() {
			report.RowsExcludedIncome++
			continue
		}

		rate, err := c.rates.RateFor(record.SurveyYear)
		if err != nil {
			return nil, report, err
		}

		income := *record.GrossIncome
		cleaned = append(cleaned, domain.CleanedHouseholdRecord{
			HouseholdID:      record.HouseholdID,
			SurveyYear:       record.SurveyYear,
			Wave:             record.Wave,
			GrossIncome:      income,
			EstimatedSavings: income * rate,
			RowIndex:         record.RowIndex,
		})
		yearRetained[record.SurveyYear]++
	}

	report.RowsRetained = len(cleaned)
	inRange := report.RowsRead - report.RowsDroppedYear
	if inRange > 0 {
		report.CoverageRate = float64(report.RowsRetained) / float64(inRange)
	}

	if len(cleaned) == 0 {
		return nil, report, errors.NewEmptyInputError("no households remain after completeness filtering")
	}

	assignDeciles(cleaned)

	// Deterministic table order for byte-identical re-runs.
	sort.SliceStable(cleaned, func(i, j int) bool {
		if cleaned[i].SurveyYear != cleaned[j].SurveyYear {
			return cleaned[i].SurveyYear < cleaned[j].SurveyYear
		}
		return cleaned[i].RowIndex < cleaned[j].RowIndex
	})

	c.buildWarnings(&report, yearTotals, yearRetained)

	c.logger.InfoContext(ctx, "cleaning complete",
		slog.Int("rows_read", report.RowsRead),
		slog.Int("rows_dropped_year", report.RowsDroppedYear),
		slog.Int("rows_excluded_income", report.RowsExcludedIncome),
		slog.Int("rows_retained", report.RowsRetained),
		slog.Float64("coverage_rate", report.CoverageRate),
		slog.Int("warnings", len(report.Warnings)))

	return cleaned, report, nil
}

// LowConfidenceYears returns the survey years whose income coverage fell
// below the configured threshold, derived from a quality report.
func (c *Cleaner) LowConfidenceYears(report domain.QualityReport) map[int]bool {
	low := make(map[int]bool)
	for year, coverage := range report.YearCoverage {
		if coverage < c.config.MinCoverage {
			low[year] = true
		}
	}
	return low
}

// assignDeciles ranks each year's retained households by income and buckets
// them into ten equal-sized groups. Ties are broken by original workbook row
// order, keeping the output stable across sort implementations.
func assignDeciles(cleaned []domain.CleanedHouseholdRecord) {
	byYear := make(map[int][]int) // year -> indexes into cleaned
	for i, record := range cleaned {
		byYear[record.SurveyYear] = append(byYear[record.SurveyYear], i)
	}

	for _, indexes := range byYear {
		sort.SliceStable(indexes, func(a, b int) bool {
			ra, rb := cleaned[indexes[a]], cleaned[indexes[b]]
			if ra.GrossIncome != rb.GrossIncome {
				return ra.GrossIncome < rb.GrossIncome
			}
			return ra.RowIndex < rb.RowIndex
		})

		n := len(indexes)
		for rank, idx := range indexes {
			decile := rank*10/n + 1
			if decile > 10 {
				decile = 10
			}
			cleaned[idx].IncomeDecile = decile
		}
	}
}

// buildWarnings records the non-fatal data-quality findings.
func (c *Cleaner) buildWarnings(report *domain.QualityReport, yearTotals, yearRetained map[int]int) {
	exclusionRate := 1 - report.CoverageRate
	if exclusionRate > c.config.MaxExclusionRate {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"exclusion rate %.1f%% exceeds threshold %.1f%%",
			exclusionRate*100, c.config.MaxExclusionRate*100))
	}

	years := make([]int, 0, len(yearTotals))
	for year := range yearTotals {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		coverage := 0.0
		if yearTotals[year] > 0 {
			coverage = float64(yearRetained[year]) / float64(yearTotals[year])
		}
		report.YearCoverage[year] = coverage
		if coverage < c.config.MinCoverage {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"survey year %d has income coverage %.1f%%, flagged low-confidence", year, coverage*100))
		}
	}
}
