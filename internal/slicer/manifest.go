package slicer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Manifest column names. Header order is free; names are matched
// case-insensitively after trimming.
const (
	colJobName     = "jobname"
	colFileFormat  = "fileformat"
	colRegion      = "regionlookup"
	colGenotype    = "genotype"
	colFilters     = "filters"
	colMapping     = "mapping"
	colPopulations = "populations"
)

var manifestColumns = []string{
	colJobName, colFileFormat, colRegion, colGenotype, colFilters, colMapping, colPopulations,
}

// ReadManifest parses a batch manifest into job specs, one per row, in row
// order. CSV and XLSX are told apart by extension. Every job shares the given
// timeout and runs headless: sequential browser launches are not meant to be
// supervised interactively.
func ReadManifest(path string, timeout time.Duration) ([]JobSpec, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("manifest %s is empty", path)
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}

	var jobs []JobSpec
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		cell := func(col string) string {
			pos := index[col]
			if pos >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[pos])
		}
		job := JobSpec{
			Name:        cell(colJobName),
			FileFormat:  strings.ToUpper(cell(colFileFormat)),
			Region:      cell(colRegion),
			GenotypeURL: cell(colGenotype),
			FilterMode:  NormalizeFilterMode(cell(colFilters)),
			MappingURL:  cell(colMapping),
			Populations: cell(colPopulations),
			Timeout:     timeout,
			Headless:    true,
		}
		if job.Name == "" {
			return nil, errors.Errorf("manifest %s row %d: missing job name", path, i+2)
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil, errors.Errorf("manifest %s has no job rows", path)
	}
	return jobs, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening manifest %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening manifest %s", path)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, errors.Errorf("manifest %s has no sheets", path)
	}
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s of %s", sheet, path)
	}
	return rows, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range manifestColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
