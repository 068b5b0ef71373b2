package tasks

import (
	"fmt"
	"strings"

	"github.com/fmriprep-tools/motiontsv/internal/bids"
	"github.com/fmriprep-tools/motiontsv/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Discover Phase = iota
	Enumerate
	Process
	Finalize
)

func (p Phase) String() string {
	switch p {
	case Discover:
		return "discover"
	case Enumerate:
		return "enumerate"
	case Process:
		return "process"
	case Finalize:
		return "finalize"
	default:
		return ""
	}
}

func discoverUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Discover,
		Step:    1,
		Total:   1,
		Message: "Discovering subjects and sessions...",
	}
}

func pairUpdate(step, total int, subject, session string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, subject, session),
	}
}

func subjectMissingUpdate(subject string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Subject directory missing: %s", subject),
	}
}

func enumerateUpdate(subject, session string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Enumerating runs for %s %s...", subject, session),
	}
}

func noRunsUpdate(subject, session string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("No runs found for %s %s", subject, session),
	}
}

func runsFoundUpdate(subject, session string, runs []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enumerate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d run(s) for %s %s: %s", len(runs), subject, session, strings.Join(runs, ", ")),
		Data:    runs,
	}
}

func processFileUpdate(step, total int, c bids.Candidate) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Process,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%s)", step, total, c.Run, c.Pattern.Label),
		Data:    c,
	}
}

func fileOutcomeUpdate(step, total int, fr FileResult) ProgressUpdate {
	var message string
	switch {
	case fr.Outcome == models.OutcomeProcessed:
		message = fmt.Sprintf("[%d/%d] ✓ %s (%d rows)", step, total, fr.Candidate.Output, fr.Rows)
	case fr.Outcome.Skipped():
		message = fmt.Sprintf("[%d/%d] - %s: %s", step, total, fr.Candidate.Run, fr.Detail)
	default:
		message = fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, fr.Candidate.Input, fr.Detail)
	}
	return ProgressUpdate{
		Phase:   Process,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    fr,
	}
}

func finalizeUpdate(result *BatchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Processed %d, skipped %d, failed %d", result.Processed, result.Skipped, result.Failed),
		Data:    result,
	}
}
