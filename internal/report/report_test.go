package report

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fmriprep-tools/motiontsv/internal/bids"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
	th "github.com/fmriprep-tools/motiontsv/internal/testing"
	"github.com/xuri/excelize/v2"
)

type fakeLister struct {
	runs map[string][]string
}

func (f *fakeLister) EnumerateRuns(subject, session string) ([]string, error) {
	return f.runs[subject+"/"+session], nil
}

func sampleReport() *Report {
	return &Report{
		Root:      "/data/study",
		Task:      "rest",
		Generated: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Entries: []Entry{
			{Subject: "sub-01", Session: "ses-01", Run: "run-01", Pattern: "filtered including FD -> filtered", Status: StatusComplete},
			{Subject: "sub-01", Session: "ses-01", Run: "run-01", Pattern: "including FD -> motion", Status: StatusReady},
			{Subject: "sub-02", Session: "ses-01", Run: "run-01", Pattern: "including FD -> motion", Status: StatusMissing},
		},
		Complete: 1,
		Ready:    1,
		Missing:  1,
	}
}

func TestBuild(t *testing.T) {
	t.Run("classifies candidates", func(t *testing.T) {
		root := t.TempDir()
		resolver := bids.NewResolver(root, "rest")
		th.MustWriteFile(t, filepath.Join(root, "dataset_description.json"),
			`{"Name": "fixture", "BIDSVersion": "1.8.0"}`)

		patterns := bids.Patterns()
		// run-01 has both input and output for the first pattern, only the
		// input for the second. run-02 has neither.
		th.MustWriteFile(t, resolver.InputPath("sub-01", "ses-01", "run-01", patterns[0]), "x\n")
		th.MustWriteFile(t, resolver.OutputPath("sub-01", "ses-01", "run-01", patterns[0]), "x\n")
		th.MustWriteFile(t, resolver.InputPath("sub-01", "ses-01", "run-01", patterns[1]), "x\n")

		lister := &fakeLister{runs: map[string][]string{
			"sub-01/ses-01": {"run-01", "run-02"},
		}}

		r, err := Build(bids.NewLayout(root), resolver, lister)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		if r.Root != root {
			t.Errorf("expected root %q, got %q", root, r.Root)
		}
		if r.Task != "rest" {
			t.Errorf("expected task rest, got %q", r.Task)
		}
		if len(r.Entries) != 4 {
			t.Fatalf("expected 4 entries, got %d", len(r.Entries))
		}

		statuses := []Status{StatusComplete, StatusReady, StatusMissing, StatusMissing}
		for i, want := range statuses {
			if r.Entries[i].Status != want {
				t.Errorf("entry %d: expected status %s, got %s", i, want, r.Entries[i].Status)
			}
		}
		if r.Complete != 1 || r.Ready != 1 || r.Missing != 2 {
			t.Errorf("expected totals 1/1/2, got %d/%d/%d", r.Complete, r.Ready, r.Missing)
		}
	})

	t.Run("missing root", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "absent")
		_, err := Build(bids.NewLayout(root), bids.NewResolver(root, "rest"), &fakeLister{})
		if !errors.Is(err, shared.ErrMissingDataset) {
			t.Errorf("expected ErrMissingDataset, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleReport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Processing report for /data/study (task rest)") {
			t.Errorf("text missing study line, got: %s", output)
		}
		if !strings.Contains(output, "Generated: 2026-03-14 09:30:00") {
			t.Errorf("text missing generation time")
		}
		if !strings.Contains(output, "sub-01 ses-01") {
			t.Errorf("text missing pair heading")
		}
		if !strings.Contains(output, "sub-02 ses-01") {
			t.Errorf("text missing second pair heading")
		}
		if !strings.Contains(output, "Totals: 1 complete, 1 ready, 1 missing") {
			t.Errorf("text missing totals line")
		}
	})

	t.Run("ExportToText empty", func(t *testing.T) {
		data, err := ExportToText(&Report{Root: "/data/study", Task: "rest", Generated: time.Now()})
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "No candidate files found.") {
			t.Errorf("text missing empty notice")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleReport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Processing Report") {
			t.Errorf("markdown missing title")
		}
		if !strings.Contains(output, "- **Study**: /data/study") {
			t.Errorf("markdown missing study line")
		}
		if !strings.Contains(output, "| Subject | Session | Run | Pattern | Status |") {
			t.Errorf("markdown missing table header")
		}
		if !strings.Contains(output, "| sub-01 | ses-01 | run-01 | filtered including FD -> filtered | complete |") {
			t.Errorf("markdown missing first row, got: %s", output)
		}
		if !strings.Contains(output, "**Totals**: 1 complete, 1 ready, 1 missing") {
			t.Errorf("markdown missing totals")
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleReport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "subject,session,run,pattern,status") {
			t.Errorf("CSV missing header, got: %s", output)
		}
		if !strings.Contains(output, "sub-01,ses-01,run-01,filtered including FD -> filtered,complete") {
			t.Errorf("CSV missing first record")
		}
		if !strings.Contains(output, "sub-02,ses-01,run-01,including FD -> motion,missing") {
			t.Errorf("CSV missing last record")
		}
	})

	t.Run("ExportToXLSX", func(t *testing.T) {
		data, err := ExportToXLSX(sampleReport())
		if err != nil {
			t.Fatalf("ExportToXLSX failed: %v", err)
		}

		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer f.Close()

		cells := map[string]string{
			"A1": "Subject",
			"E1": "Status",
			"A2": "sub-01",
			"E2": "complete",
			"A4": "sub-02",
			"A6": "Totals",
			"B6": "1 complete, 1 ready, 1 missing",
		}
		for cell, want := range cells {
			got, err := f.GetCellValue("Report", cell)
			if err != nil {
				t.Fatalf("failed to read cell %s: %v", cell, err)
			}
			if got != want {
				t.Errorf("cell %s: expected %q, got %q", cell, want, got)
			}
		}
	})
}

func TestWrite(t *testing.T) {
	t.Run("writes timestamped file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports")

		path, err := Write(sampleReport(), dir, "csv")
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		if filepath.Base(path) != "motion_report_20260314_093000.csv" {
			t.Errorf("unexpected report name %q", filepath.Base(path))
		}
		th.AssertFileExists(t, path)

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, "subject,session,run,pattern,status") {
			t.Errorf("written CSV missing header")
		}
	})

	t.Run("each format", func(t *testing.T) {
		tc := []struct {
			format string
			ext    string
		}{
			{"text", ".txt"},
			{"markdown", ".md"},
			{"csv", ".csv"},
			{"xlsx", ".xlsx"},
		}

		for _, tt := range tc {
			t.Run(tt.format, func(t *testing.T) {
				path, err := Write(sampleReport(), t.TempDir(), tt.format)
				if err != nil {
					t.Fatalf("Write failed: %v", err)
				}
				if !strings.HasSuffix(path, tt.ext) {
					t.Errorf("expected %s suffix, got %q", tt.ext, path)
				}
				th.AssertFileExists(t, path)
			})
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Write(sampleReport(), t.TempDir(), "pdf")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
