package domain

import "fmt"

// HouseholdRecord represents one surveyed household in one survey wave,
// as extracted from the raw workbook before any cleaning.
type HouseholdRecord struct {
	HouseholdID string   `json:"household_id" csv:"HouseholdID"`
	SurveyYear  int      `json:"survey_year" csv:"SurveyYear"`
	Wave        string   `json:"wave" csv:"Wave"`
	GrossIncome *float64 `json:"gross_income,omitempty" csv:"GrossIncome"`

	// RowIndex is the record's position in the original workbook read order.
	// It is the stable tie-break key for decile ranking.
	RowIndex int `json:"-"`
}

// HasIncome reports whether the record carries a usable income value.
// Non-positive incomes cannot receive a savings estimate and count as missing.
func (r HouseholdRecord) HasIncome() bool {
	return r.GrossIncome != nil && *r.GrossIncome > 0
}

// CleanedHouseholdRecord is a HouseholdRecord that passed the completeness
// filter, with the derived savings estimate and income decile attached.
// Instances are immutable after creation.
type CleanedHouseholdRecord struct {
	HouseholdID      string  `json:"household_id" csv:"HouseholdID"`
	SurveyYear       int     `json:"survey_year" csv:"SurveyYear"`
	Wave             string  `json:"wave" csv:"Wave"`
	GrossIncome      float64 `json:"gross_income" csv:"GrossIncome"`
	EstimatedSavings float64 `json:"estimated_savings" csv:"EstimatedSavings"`
	IncomeDecile     int     `json:"income_decile" csv:"IncomeDecile"`

	// RowIndex carries the original workbook read order through the
	// pipeline; it is the stable tie-break for decile ranking and the
	// table's secondary sort key. Not exported to the output tables.
	RowIndex int `json:"-"`
}

// DecileLabel returns the exported decile label (D1 lowest .. D10 highest).
func (r CleanedHouseholdRecord) DecileLabel() string {
	return fmt.Sprintf("D%d", r.IncomeDecile)
}

// YearlySummary is one row of the yearly aggregate table.
type YearlySummary struct {
	SurveyYear       int     `json:"survey_year" csv:"SurveyYear"`
	Households       int     `json:"n_households" csv:"Households"`
	AvgIncome        float64 `json:"avg_income" csv:"AvgIncome"`
	AvgSavings       float64 `json:"avg_savings" csv:"AvgSavings"`
	MedianSavings    float64 `json:"median_savings" csv:"MedianSavings"`
	ExcessSavings    float64 `json:"excess_savings" csv:"ExcessSavings"`
	CumulativeExcess float64 `json:"cumulative_excess" csv:"CumulativeExcess"`
	LowConfidence    bool    `json:"low_confidence" csv:"LowConfidence"`
}

// DecileSummary is one row of the per-decile aggregate table.
type DecileSummary struct {
	SurveyYear   int     `json:"survey_year" csv:"SurveyYear"`
	IncomeDecile int     `json:"income_decile" csv:"IncomeDecile"`
	Households   int     `json:"n_households" csv:"Households"`
	AvgIncome    float64 `json:"avg_income" csv:"AvgIncome"`
	AvgSavings   float64 `json:"avg_savings" csv:"AvgSavings"`
	AvgExcess    float64 `json:"avg_excess" csv:"AvgExcess"`
}

// DecileLabel returns the exported decile label for the summary row.
func (s DecileSummary) DecileLabel() string {
	return fmt.Sprintf("D%d", s.IncomeDecile)
}

// QualityReport carries the data-quality scalars produced by the cleaning
// stage. Warnings are non-fatal; the caller decides whether a warnings-only
// run is acceptable.
type QualityReport struct {
	RowsRead           int             `json:"rows_read"`
	RowsDroppedYear    int             `json:"rows_dropped_year"`
	RowsExcludedIncome int             `json:"rows_excluded_income"`
	RowsRetained       int             `json:"rows_retained"`
	CoverageRate       float64         `json:"coverage_rate"`
	YearCoverage       map[int]float64 `json:"year_coverage"`
	Warnings           []string        `json:"warnings,omitempty"`
}

// AggregateResult bundles the aggregation outputs: the pre-pandemic baseline,
// the yearly and decile summary tables, and any sparsity warnings.
type AggregateResult struct {
	Baseline        float64         `json:"baseline"`
	YearlySummaries []YearlySummary `json:"yearly_summaries"`
	DecileSummaries []DecileSummary `json:"decile_summaries"`
	Warnings        []string        `json:"warnings,omitempty"`
}
