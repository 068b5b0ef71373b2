package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/fmriprep-tools/motiontsv/internal/report"
)

var (
	_ list.Item = pairItem{}
	_ list.Item = candidateItem{}
)

// pairItem summarizes one subject/session pair to implement [list.Item].
type pairItem struct {
	subject  string
	session  string
	complete int
	ready    int
	missing  int
}

func (i pairItem) FilterValue() string { return i.subject + " " + i.session }
func (i pairItem) Title() string       { return fmt.Sprintf("%s %s", i.subject, i.session) }
func (i pairItem) Description() string {
	return fmt.Sprintf("%d ready • %d complete • %d missing", i.ready, i.complete, i.missing)
}

// candidateItem wraps [report.Entry] to implement [list.Item].
type candidateItem struct {
	entry report.Entry
}

func (i candidateItem) FilterValue() string { return i.entry.Run }
func (i candidateItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.entry.Run, i.entry.Pattern)
}
func (i candidateItem) Description() string { return string(i.entry.Status) }
