package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"nmgcli/internal/errors"
	"nmgcli/pkg/contracts/domain"
)

// householdIDColumn is the respondent identifier column carried by every
// wave of the workbook.
const householdIDColumn = "subsid"

// incomeSourceMarker identifies the per-source income columns. Column names
// drift across waves but all income sources share this fragment.
const incomeSourceMarker = "qincomefreev2_n_"

// Loader reads the raw survey workbook into household records.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a workbook loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadStats carries loader diagnostics surfaced to the caller.
type LoadStats struct {
	SheetsLoaded    int      `json:"sheets_loaded"`
	SheetsSkipped   []string `json:"sheets_skipped,omitempty"`
	RowsRead        int      `json:"rows_read"`
	NegativeIncomes int      `json:"negative_incomes"`
}

// LoadWorkbook reads every year sheet of the survey workbook and extracts one
// HouseholdRecord per data row. Sheets are one per survey wave, named either
// by year ("2011".."2024") or wave label ("March 2025"); both 2025 half-year
// waves map to survey year 2025 with the wave label retained.
//
// Gross income is the sum of the wave's income-source columns with blanks
// treated as zero; a row whose source cells are all blank has null income.
// A sheet without the household id column is a data-format error.
func (l *Loader) LoadWorkbook(ctx context.Context, path string, minYear, maxYear int) ([]domain.HouseholdRecord, LoadStats, error) {
	var stats LoadStats

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, stats, errors.NewFormatError("failed to open survey workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	var records []domain.HouseholdRecord
	rowIndex := 0

	for _, sheet := range f.GetSheetList() {
		year, ok := sheetYear(sheet)
		if !ok || year < minYear || year > maxYear {
			l.logger.WarnContext(ctx, "skipping sheet outside survey range",
				slog.String("sheet", sheet))
			stats.SheetsSkipped = append(stats.SheetsSkipped, sheet)
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, stats, errors.NewFormatError("failed to read sheet", err).
				WithContext("sheet", sheet)
		}
		if len(rows) < 2 {
			l.logger.WarnContext(ctx, "sheet has no data rows", slog.String("sheet", sheet))
			stats.SheetsSkipped = append(stats.SheetsSkipped, sheet)
			continue
		}

		idCol, incomeCols := mapColumns(rows[0])
		if idCol < 0 {
			return nil, stats, errors.NewFormatError(
				fmt.Sprintf("required column %q not found", householdIDColumn), nil).
				WithContext("sheet", sheet)
		}

		sheetRecords := 0
		withIncome := 0
		for _, row := range rows[1:] {
			if isBlankRow(row) {
				continue
			}

			record := domain.HouseholdRecord{
				HouseholdID: cellAt(row, idCol),
				SurveyYear:  year,
				Wave:        sheet,
				RowIndex:    rowIndex,
			}
			rowIndex++

			if income, ok := sumIncomeSources(row, incomeCols); ok {
				if income < 0 {
					// Unusable: a negative income sum cannot feed the
					// savings proxy. Treated as missing.
					stats.NegativeIncomes++
				} else {
					record.GrossIncome = &income
					withIncome++
				}
			}

			records = append(records, record)
			sheetRecords++
		}

		stats.SheetsLoaded++
		stats.RowsRead += sheetRecords
		l.logger.InfoContext(ctx, "loaded survey sheet",
			slog.String("sheet", sheet),
			slog.Int("survey_year", year),
			slog.Int("households", sheetRecords),
			slog.Int("with_income", withIncome),
			slog.Int("income_columns", len(incomeCols)))
	}

	if stats.SheetsLoaded == 0 {
		return nil, stats, errors.NewFormatError("workbook contains no survey year sheets", nil).
			WithContext("path", path)
	}

	l.logger.InfoContext(ctx, "workbook load complete",
		slog.Int("sheets_loaded", stats.SheetsLoaded),
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("negative_incomes", stats.NegativeIncomes))

	return records, stats, nil
}

// sheetYear derives the survey year from a sheet name. Plain year names parse
// directly; wave-labelled sheets ("March 2025") use their trailing year token.
func sheetYear(sheet string) (int, bool) {
	name := strings.TrimSpace(sheet)
	if year, err := strconv.Atoi(name); err == nil {
		return year, true
	}
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return 0, false
	}
	year, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// mapColumns locates the household id column and all income-source columns
// in a header row. Matching is case-insensitive because column casing drifts
// between waves.
func mapColumns(header []string) (idCol int, incomeCols []int) {
	idCol = -1
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		switch {
		case lower == householdIDColumn:
			idCol = i
		case strings.Contains(lower, incomeSourceMarker):
			incomeCols = append(incomeCols, i)
		}
	}
	return idCol, incomeCols
}

// sumIncomeSources sums the income-source cells of a row, treating blank
// cells as zero. Returns ok=false when every source cell is blank (or the
// wave carries no income columns at all), which marks the income as missing.
func sumIncomeSources(row []string, incomeCols []int) (float64, bool) {
	total := 0.0
	seen := false

	for _, col := range incomeCols {
		raw := cellAt(row, col)
		if raw == "" {
			continue
		}
		val, err := parseAmount(raw)
		if err != nil {
			continue
		}
		total += val
		seen = true
	}

	return total, seen
}

// parseAmount parses a numeric cell, tolerating thousands separators.
func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}

// cellAt returns the trimmed cell value, or "" when the row is short.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// isBlankRow reports whether every cell of the row is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
