package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/student"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseTable reads a tabular file into rows keyed by their header cells.
// The first non-empty line is the header row; headers are kept verbatim so
// that column matching stays in control of the caller. Columns under an
// empty header are skipped.
func ParseTable(contents []byte, filename string) ([]student.Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(contents)
	case ".xlsx", ".xlsm":
		return parseExcel(contents)
	}
	return nil, ErrUnsupportedFormat
}

func parseCSV(contents []byte) ([]student.Row, error) {
	r := csv.NewReader(bytes.NewReader(contents))
	r.FieldsPerRecord = -1 // ragged rows are fine; missing cells read as empty

	records := make([][]string, 0)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading csv")
		}
		records = append(records, record)
	}
	return buildRows(records), nil
}

func parseExcel(contents []byte) ([]student.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(contents))
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []student.Row{}, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading sheet "+sheets[0])
	}
	return buildRows(records), nil
}

func buildRows(records [][]string) []student.Row {
	rows := make([]student.Row, 0)
	if len(records) == 0 {
		return rows
	}

	headers := make([]string, 0, len(records[0]))
	cols := make([]int, 0, len(records[0]))
	for i, h := range records[0] {
		if h == "" {
			continue
		}
		headers = append(headers, h)
		cols = append(cols, i)
	}
	if len(headers) == 0 {
		return rows
	}

	for _, record := range records[1:] {
		cells := make(map[string]string, len(headers))
		for i, h := range headers {
			var val string
			if col := cols[i]; col < len(record) {
				val = record[col]
			}
			if _, ok := cells[h]; ok {
				continue // duplicate header, first column wins
			}
			cells[h] = val
		}
		rows = append(rows, student.Row{Headers: headers, Cells: cells})
	}
	return rows
}
