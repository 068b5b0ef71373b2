package ui

import (
	"github.com/fmriprep-tools/motiontsv/internal/report"
	"github.com/fmriprep-tools/motiontsv/internal/tasks"
)

// reportLoadedMsg carries the study scan that backs the pair and candidate
// lists.
type reportLoadedMsg struct {
	report *report.Report
	err    error
}

// progressUpdateMsg wraps a [tasks.ProgressUpdate] received while a pair is
// being processed.
type progressUpdateMsg tasks.ProgressUpdate

// processCompleteMsg carries the final result once processing finishes.
type processCompleteMsg struct {
	result *tasks.PairResult
	err    error
}
