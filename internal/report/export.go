package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fmriprep-tools/motiontsv/internal/shared"
	"github.com/xuri/excelize/v2"
)

// ExportToText generates a plain text report
func ExportToText(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Processing report for %s (task %s)\n", r.Root, r.Task))
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n", r.Generated.Format("2006-01-02 15:04:05")))

	if len(r.Entries) == 0 {
		buf.WriteString("No candidate files found.\n")
		return buf.Bytes(), nil
	}

	var lastSubject, lastSession string
	for _, e := range r.Entries {
		if e.Subject != lastSubject || e.Session != lastSession {
			if lastSubject != "" {
				buf.WriteString("\n")
			}
			buf.WriteString(fmt.Sprintf("%s %s\n", e.Subject, e.Session))
			lastSubject, lastSession = e.Subject, e.Session
		}
		buf.WriteString(fmt.Sprintf("  %-8s %-34s %s\n", e.Run, e.Pattern, e.Status))
	}

	buf.WriteString(fmt.Sprintf("\nTotals: %d complete, %d ready, %d missing\n", r.Complete, r.Ready, r.Missing))

	return buf.Bytes(), nil
}

// ExportToMarkdown generates a Markdown report
func ExportToMarkdown(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Processing Report\n\n")
	buf.WriteString(fmt.Sprintf("- **Study**: %s\n", r.Root))
	buf.WriteString(fmt.Sprintf("- **Task**: %s\n", r.Task))
	buf.WriteString(fmt.Sprintf("- **Generated**: %s\n\n", r.Generated.Format("2006-01-02 15:04:05")))

	if len(r.Entries) == 0 {
		buf.WriteString("No candidate files found.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| Subject | Session | Run | Pattern | Status |\n")
	buf.WriteString("|---------|---------|-----|---------|--------|\n")

	for _, e := range r.Entries {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			e.Subject, e.Session, e.Run, e.Pattern, e.Status))
	}

	buf.WriteString(fmt.Sprintf("\n**Totals**: %d complete, %d ready, %d missing\n", r.Complete, r.Ready, r.Missing))

	return buf.Bytes(), nil
}

// ExportToCSV generates CSV data for the report entries
func ExportToCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"subject", "session", "run", "pattern", "status"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range r.Entries {
		record := []string{e.Subject, e.Session, e.Run, e.Pattern, string(e.Status)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToXLSX generates an Excel workbook with one row per report entry
// and a totals footer
func ExportToXLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []string{"Subject", "Session", "Run", "Pattern", "Status"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for row, e := range r.Entries {
		values := []any{e.Subject, e.Session, e.Run, e.Pattern, string(e.Status)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write entry cell: %w", err)
			}
		}
	}

	// Totals go one blank row below the last entry.
	footer := len(r.Entries) + 3
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", footer), "Totals"); err != nil {
		return nil, fmt.Errorf("failed to write totals label: %w", err)
	}
	totals := fmt.Sprintf("%d complete, %d ready, %d missing", r.Complete, r.Ready, r.Missing)
	if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", footer), totals); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// Write renders the report in the requested format and writes it to a
// timestamped file under dir, returning the path of the written file
func Write(r *Report, dir, format string) (string, error) {
	var (
		data []byte
		ext  string
		err  error
	)

	switch format {
	case "text":
		data, err = ExportToText(r)
		ext = "txt"
	case "markdown":
		data, err = ExportToMarkdown(r)
		ext = "md"
	case "csv":
		data, err = ExportToCSV(r)
		ext = "csv"
	case "xlsx":
		data, err = ExportToXLSX(r)
		ext = "xlsx"
	default:
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("motion_report_%s.%s", r.Generated.Format("20060102_150405"), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
