// package report builds processing-state summaries of a study tree and
// exports them to various formats (plain text, Markdown, CSV, XLSX)
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/fmriprep-tools/motiontsv/internal/bids"
)

// Status classifies one candidate file.
type Status string

const (
	StatusComplete Status = "complete" // output already written
	StatusReady    Status = "ready"    // input present, output missing
	StatusMissing  Status = "missing"  // input absent
)

// Entry is the status of one candidate: a run and pattern for one
// subject/session.
type Entry struct {
	Subject string
	Session string
	Run     string
	Pattern string
	Status  Status
}

// Report summarizes the processing state of a study tree at one point in
// time.
type Report struct {
	Root      string
	Task      string
	Generated time.Time
	Entries   []Entry
	Complete  int
	Ready     int
	Missing   int
}

// RunLister reports the run identifiers available for a subject/session.
type RunLister interface {
	EnumerateRuns(subject, session string) ([]string, error)
}

// Build scans the study tree and classifies every candidate file without
// modifying anything.
func Build(layout *bids.Layout, resolver *bids.Resolver, runs RunLister) (*Report, error) {
	subjects, err := layout.Subjects()
	if err != nil {
		return nil, err
	}
	sessions, err := layout.SessionUnion(subjects)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Root:      layout.Root(),
		Task:      resolver.Task(),
		Generated: time.Now(),
	}

	for _, subject := range subjects {
		for _, session := range sessions {
			ids, err := runs.EnumerateRuns(subject, session)
			if err != nil {
				return nil, fmt.Errorf("enumerating runs for %s %s: %w", subject, session, err)
			}
			for _, c := range resolver.Candidates(subject, session, ids) {
				entry := Entry{
					Subject: subject,
					Session: session,
					Run:     c.Run,
					Pattern: c.Pattern.Label,
					Status:  classify(c),
				}
				r.Entries = append(r.Entries, entry)
				switch entry.Status {
				case StatusComplete:
					r.Complete++
				case StatusReady:
					r.Ready++
				default:
					r.Missing++
				}
			}
		}
	}

	return r, nil
}

func classify(c bids.Candidate) Status {
	if _, err := os.Stat(c.Output); err == nil {
		return StatusComplete
	}
	if _, err := os.Stat(c.Input); err == nil {
		return StatusReady
	}
	return StatusMissing
}
