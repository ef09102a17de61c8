package report

import (
	"io"
	"strconv"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetFull    = "full"
	SheetHits    = "hits"
	SheetMinimal = "minimal"
)

// WriteWorkbook writes an XLSX workbook holding the full, hits and minimal
// reports as separate sheets. Numeric columns are stored as numbers.
func WriteWorkbook(w io.Writer, results domain.ResultSet, threshold int64) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = serrors.Wrap(serrors.ErrInternal, cerr, "could not close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetFull); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not rename sheet")
	}
	for _, name := range []string{SheetHits, SheetMinimal} {
		if _, err := f.NewSheet(name); err != nil {
			return serrors.Wrap(serrors.ErrInternal, err, "could not add sheet %s", name)
		}
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{SheetFull, FullHeader, fullRows(results)},
		{SheetHits, FullHeader, fullRows(results.Hits(threshold))},
		{SheetMinimal, MinimalHeader, minimalRows(results)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.header, s.rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not write workbook")
	}

	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not write %s header", sheet)
	}

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return serrors.Wrap(serrors.ErrInternal, err, "invalid row %d", i+2)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return serrors.Wrap(serrors.ErrInternal, err, "could not write %s row %d", sheet, i+2)
		}
	}

	return nil
}

// cellValue stores integer columns as numbers so they can be sorted and summed.
func cellValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}

	return v
}
