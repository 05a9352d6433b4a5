package dataprocessing

import (
	"fmt"

	"nmgcli/internal/errors"
)

// RateBand maps an inclusive year range to a fixed savings-rate fraction.
type RateBand struct {
	StartYear int     `json:"start_year"`
	EndYear   int     `json:"end_year"`
	Rate      float64 `json:"rate"`
}

// RateTable is an ordered list of rate bands. Bands must partition the
// supported survey range with no gaps or overlaps, so exactly one band
// matches any valid year. Validate enforces this at startup.
type RateTable []RateBand

// Literature-derived savings-rate proxies: the NMG survey captures income but
// not savings flows, so a fixed fraction of income is assumed saved per band.
const (
	prePandemicRate  = 0.08
	pandemicRate     = 0.18
	postPandemicRate = 0.10
)

// DefaultRateTable returns the year-banded proxy rates used for the NMG
// survey: 8% pre-pandemic, 18% during the 2020-2021 lockdowns, 10% after.
// The post-pandemic band is open-ended past the last published wave.
func DefaultRateTable() RateTable {
	return RateTable{
		{StartYear: 2011, EndYear: 2019, Rate: prePandemicRate},
		{StartYear: 2020, EndYear: 2021, Rate: pandemicRate},
		{StartYear: 2022, EndYear: 2035, Rate: postPandemicRate},
	}
}

// Validate checks that the table is non-empty, ordered, contiguous and that
// every rate is a sensible fraction. Called once at startup; any violation
// means the table cannot be trusted for lookups.
func (t RateTable) Validate() error {
	if len(t) == 0 {
		return errors.NewValidationError("rate table is empty")
	}

	for i, band := range t {
		if band.StartYear > band.EndYear {
			return errors.NewValidationError(
				fmt.Sprintf("rate band %d-%d: start year after end year", band.StartYear, band.EndYear))
		}
		if band.Rate <= 0 || band.Rate >= 1 {
			return errors.NewValidationError(
				fmt.Sprintf("rate band %d-%d: rate %.4f outside (0,1)", band.StartYear, band.EndYear, band.Rate))
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if band.StartYear <= prev.EndYear {
			return errors.NewValidationError(
				fmt.Sprintf("rate bands %d-%d and %d-%d overlap",
					prev.StartYear, prev.EndYear, band.StartYear, band.EndYear))
		}
		if band.StartYear != prev.EndYear+1 {
			return errors.NewValidationError(
				fmt.Sprintf("gap between rate bands %d-%d and %d-%d",
					prev.StartYear, prev.EndYear, band.StartYear, band.EndYear))
		}
	}

	return nil
}

// Covers checks that the table spans the whole configured survey range.
func (t RateTable) Covers(minYear, maxYear int) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t[0].StartYear > minYear || t[len(t)-1].EndYear < maxYear {
		return errors.NewValidationError(
			fmt.Sprintf("rate table spans %d-%d, survey range is %d-%d",
				t[0].StartYear, t[len(t)-1].EndYear, minYear, maxYear))
	}
	return nil
}

// RateFor returns the savings-rate fraction for the given survey year.
func (t RateTable) RateFor(year int) (float64, error) {
	for _, band := range t {
		if year >= band.StartYear && year <= band.EndYear {
			return band.Rate, nil
		}
	}
	return 0, errors.NewValidationError(fmt.Sprintf("no rate band covers year %d", year))
}
