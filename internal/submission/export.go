package submission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mattlowe/formhall/internal/field"
)

// timestampLayout formats the Submitted At column.
const timestampLayout = "2006-01-02 15:04:05"

// Columns returns the export column set for a loaded page: the union of
// field ids actually present in the records, not the form's full field
// list. Known ids order by their definition's sort_order; unknown ids
// follow alphabetically.
func Columns(records []field.Submission, fields []field.Definition) []string {
	byID := make(map[string]field.Definition, len(fields))
	for _, def := range fields {
		byID[def.ID] = def
	}

	seen := make(map[string]bool)
	var ids []string
	for _, rec := range records {
		for id := range rec.Data {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		di, iKnown := byID[ids[i]]
		dj, jKnown := byID[ids[j]]
		switch {
		case iKnown && jKnown:
			return di.SortOrder < dj.SortOrder
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

// exportTable builds the shared header/rows table behind both exporters.
func exportTable(records []field.Submission, fields []field.Definition) (header []string, rows [][]string) {
	byID := make(map[string]field.Definition, len(fields))
	for _, def := range fields {
		byID[def.ID] = def
	}
	ids := Columns(records, fields)

	header = []string{"Submitted At", "Submitter"}
	for _, id := range ids {
		if def, ok := byID[id]; ok {
			header = append(header, def.Label)
		} else {
			header = append(header, id)
		}
	}

	for _, rec := range records {
		row := []string{rec.SubmittedAt.Format(timestampLayout), rec.Submitter}
		for _, id := range ids {
			row = append(row, rec.Data[id])
		}
		rows = append(rows, row)
	}
	return header, rows
}

// ExportCSV serializes a loaded page as comma-delimited text with every
// cell double-quoted and embedded quotes doubled.
func ExportCSV(records []field.Submission, fields []field.Definition) string {
	header, rows := exportTable(records, fields)

	var b strings.Builder
	writeCSVRow(&b, header)
	for _, row := range rows {
		writeCSVRow(&b, row)
	}
	return b.String()
}

// writeCSVRow quotes unconditionally; the export format quotes every cell,
// which rules out encoding/csv's quote-when-needed behavior.
func writeCSVRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// CSVFilename names the browser download for a form's export.
func CSVFilename(formID string) string {
	return fmt.Sprintf("submissions-%s.csv", formID)
}

// XLSXFilename names the spreadsheet download for a form's export.
func XLSXFilename(formID string) string {
	return fmt.Sprintf("submissions-%s.xlsx", formID)
}

// ExportXLSX serializes the same table as a single-sheet spreadsheet.
func ExportXLSX(records []field.Submission, fields []field.Definition) ([]byte, error) {
	header, rows := exportTable(records, fields)

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	writeRow := func(rowIdx int, cells []string) error {
		for col, cell := range cells {
			name, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}
