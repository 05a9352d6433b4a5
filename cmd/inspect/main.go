package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// inspect is a read-only diagnostic for the survey workbook: it lists the
// sheets with row/column counts, shows which household id and income-source
// columns were detected, and samples income coverage. Useful when a new wave
// lands with renamed columns and the pipeline starts excluding everything.
func main() {
	inPath := flag.String("in", "boe-nmg-household-survey-data.xlsx", "survey workbook to inspect")
	sheetName := flag.String("sheet", "", "dump the header of a single sheet instead of the overview")
	sample := flag.Int("sample", 200, "rows to sample per sheet for coverage estimates")
	flag.Parse()

	f, err := excelize.OpenFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open workbook: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if *sheetName != "" {
		dumpHeader(f, *sheetName)
		return
	}

	fmt.Printf("Workbook: %s\n", *inPath)
	fmt.Printf("Sheets: %d\n\n", len(f.GetSheetList()))

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			fmt.Printf("  %-16s unreadable: %v\n", sheet, err)
			continue
		}
		if len(rows) == 0 {
			fmt.Printf("  %-16s empty\n", sheet)
			continue
		}

		header := rows[0]
		idCol, incomeCols := scanHeader(header)

		idStatus := "subsid MISSING"
		if idCol >= 0 {
			idStatus = "subsid ok"
		}

		covered, sampled := sampleCoverage(rows[1:], incomeCols, *sample)
		coverage := "n/a"
		if sampled > 0 {
			coverage = fmt.Sprintf("%.0f%%", float64(covered)/float64(sampled)*100)
		}

		fmt.Printf("  %-16s %6d rows  %4d cols  %s  %3d income columns  coverage ~%s\n",
			sheet, len(rows)-1, len(header), idStatus, len(incomeCols), coverage)
	}
}

// scanHeader mirrors the loader's column detection.
func scanHeader(header []string) (idCol int, incomeCols []int) {
	idCol = -1
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		switch {
		case lower == "subsid":
			idCol = i
		case strings.Contains(lower, "qincomefreev2_n_"):
			incomeCols = append(incomeCols, i)
		}
	}
	return idCol, incomeCols
}

// sampleCoverage counts sampled rows with at least one non-blank income cell.
func sampleCoverage(rows [][]string, incomeCols []int, limit int) (covered, sampled int) {
	for _, row := range rows {
		if sampled >= limit {
			break
		}
		sampled++
		for _, col := range incomeCols {
			if col < len(row) && strings.TrimSpace(row[col]) != "" {
				covered++
				break
			}
		}
	}
	return covered, sampled
}

// dumpHeader prints one sheet's column names with their indexes.
func dumpHeader(f *excelize.File, sheet string) {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "cannot read sheet %q\n", sheet)
		os.Exit(1)
	}
	fmt.Printf("Sheet %q: %d data rows, %d columns\n", sheet, len(rows)-1, len(rows[0]))
	for i, name := range rows[0] {
		fmt.Printf("  [%3d] %s\n", i, name)
	}
}
