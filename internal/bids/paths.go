package bids

import (
	"fmt"
	"path/filepath"
)

// Candidate is one concrete transform opportunity: a run and pattern
// resolved to input and output paths.
type Candidate struct {
	Subject string
	Session string
	Run     string
	Pattern Pattern
	Input   string
	Output  string
}

// Resolver derives filenames under a study root for one task. Resolution
// is pure string construction and never touches the filesystem.
type Resolver struct {
	root string
	task string
}

func NewResolver(root, task string) *Resolver {
	return &Resolver{root: root, task: task}
}

func (r *Resolver) Root() string { return r.root }
func (r *Resolver) Task() string { return r.task }

// SubjectDir returns the top-level directory for a subject.
func (r *Resolver) SubjectDir(subject string) string {
	return filepath.Join(r.root, subject)
}

// FuncDir returns the functional-data directory for a subject and session.
func (r *Resolver) FuncDir(subject, session string) string {
	return filepath.Join(r.root, subject, session, "func")
}

func (r *Resolver) base(subject, session string) string {
	return fmt.Sprintf("%s_%s_task-%s", subject, session, r.task)
}

// InputPath returns the motion table expected for a run under a pattern.
func (r *Resolver) InputPath(subject, session, run string, p Pattern) string {
	name := r.base(subject, session) + "_" + run + p.InputSuffix
	return filepath.Join(r.FuncDir(subject, session), name)
}

// OutputPath returns where the projected table for a run is written under
// a pattern. Output names carry the de-padded run entity.
func (r *Resolver) OutputPath(subject, session, run string, p Pattern) string {
	name := r.base(subject, session) + "_" + DepadRun(run) + p.OutputSuffix
	return filepath.Join(r.FuncDir(subject, session), name)
}

// TimeseriesPath returns the filtered timeseries artifact whose leading
// axis encodes the session's total sample count.
func (r *Resolver) TimeseriesPath(subject, session string) string {
	name := r.base(subject, session) + "_bold_desc-filtered_timeseries.dtseries.nii"
	return filepath.Join(r.FuncDir(subject, session), name)
}

// Candidates expands runs into the full list of transform opportunities,
// one Candidate per run and pattern in evaluation order.
func (r *Resolver) Candidates(subject, session string, runs []string) []Candidate {
	out := make([]Candidate, 0, len(runs)*len(patterns))
	for _, run := range runs {
		for _, p := range patterns {
			out = append(out, Candidate{
				Subject: subject,
				Session: session,
				Run:     run,
				Pattern: p,
				Input:   r.InputPath(subject, session, run, p),
				Output:  r.OutputPath(subject, session, run, p),
			})
		}
	}
	return out
}
