package bids

import (
	"path/filepath"
	"testing"
)

func TestResolver(t *testing.T) {
	r := NewResolver("/data/study", "rest")

	t.Run("input path keeps the padded run", func(t *testing.T) {
		got := r.InputPath("sub-01", "ses-01", "run-01", Patterns()[1])
		want := filepath.Join("/data/study", "sub-01", "ses-01", "func",
			"sub-01_ses-01_task-rest_run-01_desc-includingFD_motion.tsv")
		if got != want {
			t.Errorf("InputPath() = %q, want %q", got, want)
		}
	})

	t.Run("output path de-pads the run", func(t *testing.T) {
		got := r.OutputPath("sub-01", "ses-01", "run-01", Patterns()[1])
		want := filepath.Join("/data/study", "sub-01", "ses-01", "func",
			"sub-01_ses-01_task-rest_run-1_motion.tsv")
		if got != want {
			t.Errorf("OutputPath() = %q, want %q", got, want)
		}
	})

	t.Run("filtered pattern paths", func(t *testing.T) {
		p := Patterns()[0]
		in := r.InputPath("sub-02", "ses-03", "run-10", p)
		wantIn := filepath.Join("/data/study", "sub-02", "ses-03", "func",
			"sub-02_ses-03_task-rest_run-10_desc-filteredincludingFD_motion.tsv")
		if in != wantIn {
			t.Errorf("InputPath() = %q, want %q", in, wantIn)
		}

		out := r.OutputPath("sub-02", "ses-03", "run-10", p)
		wantOut := filepath.Join("/data/study", "sub-02", "ses-03", "func",
			"sub-02_ses-03_task-rest_run-10_desc-filtered_motion.tsv")
		if out != wantOut {
			t.Errorf("OutputPath() = %q, want %q", out, wantOut)
		}
	})

	t.Run("task is part of the base name", func(t *testing.T) {
		nback := NewResolver("/data/study", "nback")
		got := nback.InputPath("sub-01", "ses-01", "run-01", Patterns()[1])
		want := filepath.Join("/data/study", "sub-01", "ses-01", "func",
			"sub-01_ses-01_task-nback_run-01_desc-includingFD_motion.tsv")
		if got != want {
			t.Errorf("InputPath() = %q, want %q", got, want)
		}
	})

	t.Run("timeseries artifact path", func(t *testing.T) {
		got := r.TimeseriesPath("sub-01", "ses-01")
		want := filepath.Join("/data/study", "sub-01", "ses-01", "func",
			"sub-01_ses-01_task-rest_bold_desc-filtered_timeseries.dtseries.nii")
		if got != want {
			t.Errorf("TimeseriesPath() = %q, want %q", got, want)
		}
	})

	t.Run("candidates cover every run and pattern", func(t *testing.T) {
		cs := r.Candidates("sub-01", "ses-01", []string{"run-01", "run-02"})
		if len(cs) != 4 {
			t.Fatalf("expected 4 candidates, got %d", len(cs))
		}
		if cs[0].Run != "run-01" || cs[0].Pattern.Label != Patterns()[0].Label {
			t.Errorf("unexpected first candidate: %+v", cs[0])
		}
		if cs[1].Run != "run-01" || cs[1].Pattern.Label != Patterns()[1].Label {
			t.Errorf("unexpected second candidate: %+v", cs[1])
		}
		if cs[3].Run != "run-02" || cs[3].Subject != "sub-01" || cs[3].Session != "ses-01" {
			t.Errorf("unexpected last candidate: %+v", cs[3])
		}
	})

	t.Run("no runs yields no candidates", func(t *testing.T) {
		if cs := r.Candidates("sub-01", "ses-01", nil); len(cs) != 0 {
			t.Errorf("expected no candidates, got %d", len(cs))
		}
	})
}
