package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nmgcli/internal/errors"
	"nmgcli/pkg/contracts/domain"
)

func testAggregator(low map[int]bool) *Aggregator {
	return NewAggregator(testLogger(), AggregatorConfig{
		BaselineStart:      2016,
		BaselineEnd:        2019,
		LowConfidenceYears: low,
	})
}

func cleanedRecord(id string, year int, savings float64, decile int) domain.CleanedHouseholdRecord {
	return domain.CleanedHouseholdRecord{
		HouseholdID:      id,
		SurveyYear:       year,
		Wave:             "test",
		GrossIncome:      savings * 10,
		EstimatedSavings: savings,
		IncomeDecile:     decile,
	}
}

func TestAggregator_Baseline(t *testing.T) {
	agg := testAggregator(nil)

	records := []domain.CleanedHouseholdRecord{
		cleanedRecord("H1", 2016, 800, 1),
		cleanedRecord("H2", 2017, 1000, 1),
		cleanedRecord("H3", 2018, 1200, 1),
		cleanedRecord("H4", 2022, 1330, 1),
		cleanedRecord("H5", 2022, 1330, 1),
	}

	result, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	assert.InDelta(t, 1000, result.Baseline, 1e-9)

	require.Len(t, result.YearlySummaries, 4)
	last := result.YearlySummaries[3]
	assert.Equal(t, 2022, last.SurveyYear)
	assert.Equal(t, 2, last.Households)
	assert.InDelta(t, 1330, last.AvgSavings, 1e-9)
	assert.InDelta(t, 330, last.ExcessSavings, 1e-9)
}

func TestAggregator_NegativeExcessReportedAsIs(t *testing.T) {
	agg := testAggregator(nil)

	records := []domain.CleanedHouseholdRecord{
		cleanedRecord("H1", 2016, 1000, 1),
		cleanedRecord("H2", 2017, 1000, 1),
		cleanedRecord("H3", 2023, 600, 1),
	}

	result, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	last := result.YearlySummaries[len(result.YearlySummaries)-1]
	assert.Equal(t, 2023, last.SurveyYear)
	assert.InDelta(t, -400, last.ExcessSavings, 1e-9, "below-baseline years stay negative")
	assert.InDelta(t, -400, last.CumulativeExcess, 1e-9)
}

func TestAggregator_CumulativeExcessResetsAfterBaseline(t *testing.T) {
	agg := testAggregator(nil)

	records := []domain.CleanedHouseholdRecord{
		cleanedRecord("H1", 2016, 900, 1),
		cleanedRecord("H2", 2017, 1100, 1),
		cleanedRecord("H3", 2020, 1500, 1),
		cleanedRecord("H4", 2021, 800, 1),
	}

	result, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, result.YearlySummaries, 4)

	// Baseline is 1000 over 2016-2017. Within the band the running sum
	// accumulates; the first post-baseline year starts a fresh accumulator.
	byYear := make(map[int]domain.YearlySummary)
	for _, s := range result.YearlySummaries {
		byYear[s.SurveyYear] = s
	}

	assert.InDelta(t, -100, byYear[2016].CumulativeExcess, 1e-9)
	assert.InDelta(t, 0, byYear[2017].CumulativeExcess, 1e-9)
	assert.InDelta(t, 500, byYear[2020].CumulativeExcess, 1e-9, "accumulator reset at the band boundary")
	assert.InDelta(t, 300, byYear[2021].CumulativeExcess, 1e-9)
}

func TestAggregator_MedianSavings(t *testing.T) {
	agg := testAggregator(nil)

	records := []domain.CleanedHouseholdRecord{
		cleanedRecord("H1", 2018, 400, 1),
		cleanedRecord("H2", 2018, 1000, 1),
		cleanedRecord("H3", 2018, 600, 1),
		cleanedRecord("H4", 2018, 800, 1),
	}

	result, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, result.YearlySummaries, 1)

	assert.InDelta(t, 700, result.YearlySummaries[0].MedianSavings, 1e-9, "even group averages the middle pair")
}

func TestAggregator_EmptyInput(t *testing.T) {
	agg := testAggregator(nil)

	_, err := agg.Aggregate(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyInput))
}

func TestAggregator_EmptyBaselineBand(t *testing.T) {
	agg := testAggregator(nil)

	records := []domain.CleanedHouseholdRecord{
		cleanedRecord("H1", 2022, 1000, 1),
		cleanedRecord("H2", 2023, 1200, 1),
	}

	_, err := agg.Aggregate(context.Background(), records)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInsufficientData))
}

func TestAggregator_GapYearWarning(t *testing.T) {
	agg := testAggregator(nil)

	records := []domain.CleanedHouseholdRecord{
		cleanedRecord("H1", 2016, 1000, 1),
		cleanedRecord("H2", 2018, 1100, 1),
	}

	result, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, result.YearlySummaries, 2, "missing year omitted, not zero-filled")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "2017")
}

func TestAggregator_LowConfidenceFlag(t *testing.T) {
	agg := testAggregator(map[int]bool{2016: true})

	records := []domain.CleanedHouseholdRecord{
		cleanedRecord("H1", 2016, 1000, 1),
		cleanedRecord("H2", 2017, 1100, 1),
	}

	result, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, result.YearlySummaries, 2)

	assert.True(t, result.YearlySummaries[0].LowConfidence)
	assert.False(t, result.YearlySummaries[1].LowConfidence)
}

func TestAggregator_DecileSummaries(t *testing.T) {
	agg := testAggregator(nil)

	// Ten households in 2018, one per decile, savings 100..1000.
	var records []domain.CleanedHouseholdRecord
	for decile := 1; decile <= 10; decile++ {
		records = append(records, cleanedRecord(
			"H"+string(rune('A'+decile)), 2018, float64(100*decile), decile))
	}

	result, err := agg.Aggregate(context.Background(), records)
	require.NoError(t, err)

	assert.InDelta(t, 550, result.Baseline, 1e-9)
	require.Len(t, result.DecileSummaries, 10)

	total := 0
	for i, s := range result.DecileSummaries {
		assert.Equal(t, 2018, s.SurveyYear)
		assert.Equal(t, i+1, s.IncomeDecile, "rows ordered by decile")
		assert.InDelta(t, float64(100*(i+1)), s.AvgSavings, 1e-9)
		assert.InDelta(t, s.AvgSavings-result.Baseline, s.AvgExcess, 1e-9)
		total += s.Households
	}
	assert.Equal(t, result.YearlySummaries[0].Households, total, "decile counts sum to the year total")
}
