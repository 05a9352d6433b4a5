package exporter

import (
	"fmt"
	"strconv"

	"nmgcli/pkg/contracts/domain"
)

// Table column layouts. Order is fixed; the dashboard consumes these files
// positionally as well as by name.

// HouseholdTable renders the cleaned household-level table.
func HouseholdTable(records []domain.CleanedHouseholdRecord) ([]string, [][]string) {
	headers := []string{
		"survey_year", "wave", "household_id",
		"gross_income", "estimated_savings", "income_decile",
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.SurveyYear),
			r.Wave,
			r.HouseholdID,
			money(r.GrossIncome),
			money(r.EstimatedSavings),
			r.DecileLabel(),
		})
	}
	return headers, rows
}

// YearlyTable renders the yearly aggregate table.
func YearlyTable(summaries []domain.YearlySummary) ([]string, [][]string) {
	headers := []string{
		"survey_year", "n_households", "avg_income", "avg_savings",
		"median_savings", "excess_savings", "cumulative_excess", "low_confidence",
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.SurveyYear),
			strconv.Itoa(s.Households),
			money(s.AvgIncome),
			money(s.AvgSavings),
			money(s.MedianSavings),
			money(s.ExcessSavings),
			money(s.CumulativeExcess),
			strconv.FormatBool(s.LowConfidence),
		})
	}
	return headers, rows
}

// DecileTable renders the per-decile aggregate table.
func DecileTable(summaries []domain.DecileSummary) ([]string, [][]string) {
	headers := []string{
		"survey_year", "income_decile", "n_households",
		"avg_income", "avg_savings", "avg_excess",
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			strconv.Itoa(s.SurveyYear),
			s.DecileLabel(),
			strconv.Itoa(s.Households),
			money(s.AvgIncome),
			money(s.AvgSavings),
			money(s.AvgExcess),
		})
	}
	return headers, rows
}

// money formats a monetary amount with two decimal places.
func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
