package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fmriprep-tools/motiontsv/internal/bids"
	"github.com/fmriprep-tools/motiontsv/internal/models"
	"github.com/fmriprep-tools/motiontsv/internal/report"
	"github.com/fmriprep-tools/motiontsv/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PairListView ViewState = iota
	CandidateListView
	ConfirmView
	ProcessView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	engine        tasks.Engine
	layout        *bids.Layout
	resolver      *bids.Resolver
	width         int
	height        int
	study         *report.Report
	pairList      list.Model
	candidateList list.Model
	selected      *pairItem
	progressChan  chan tasks.ProgressUpdate
	progress      tasks.ProgressUpdate
	result        *tasks.PairResult
	err           error
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.Engine, layout *bids.Layout, resolver *bids.Resolver) *Model {
	return &Model{
		ctx:      ctx,
		view:     PairListView,
		engine:   engine,
		layout:   layout,
		resolver: resolver,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by scanning the study tree.
func (m *Model) Init() tea.Cmd {
	return m.scanStudy()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.pairList.Width() == 0 {
			m.pairList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.candidateList.Width() == 0 {
			m.candidateList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PairListView:
			return m.handlePairListKeys(msg)
		case CandidateListView:
			return m.handleCandidateListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case reportLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.study = msg.report
		pairs := pairsFromReport(msg.report)
		items := make([]list.Item, len(pairs))
		for i, p := range pairs {
			items[i] = p
		}
		m.pairList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.pairList.Title = "Subject/Session Pairs"
		m.pairList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case processCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		if m.progressChan != nil {
			m.progressChan = nil
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PairListView:
		return m.renderPairList()
	case CandidateListView:
		return m.renderCandidateList()
	case ConfirmView:
		return m.renderConfirm()
	case ProcessView:
		return m.renderProcess()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// pairsFromReport folds report entries into one item per subject/session pair,
// preserving discovery order.
func pairsFromReport(r *report.Report) []pairItem {
	var pairs []pairItem
	index := map[string]int{}
	for _, e := range r.Entries {
		key := e.Subject + "/" + e.Session
		i, ok := index[key]
		if !ok {
			i = len(pairs)
			index[key] = i
			pairs = append(pairs, pairItem{subject: e.Subject, session: e.Session})
		}
		switch e.Status {
		case report.StatusComplete:
			pairs[i].complete++
		case report.StatusReady:
			pairs[i].ready++
		default:
			pairs[i].missing++
		}
	}
	return pairs
}

func (m *Model) handlePairListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.pairList.SelectedItem()
		if selected != nil {
			if p, ok := selected.(pairItem); ok {
				m.selected = &p
				m.showCandidates(p)
				m.view = CandidateListView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.pairList, cmd = m.pairList.Update(msg)
	return m, cmd
}

func (m *Model) handleCandidateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PairListView
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.candidateList, cmd = m.candidateList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = CandidateListView
		return m, nil
	case "y":
		m.view = ProcessView
		return m, m.startProcessing()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PairListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, m.scanStudy()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PairListView:
		m.pairList, cmd = m.pairList.Update(msg)
	case CandidateListView:
		m.candidateList, cmd = m.candidateList.Update(msg)
	}
	return m, cmd
}

func (m *Model) scanStudy() tea.Cmd {
	return func() tea.Msg {
		r, err := report.Build(m.layout, m.resolver, m.engine)
		return reportLoadedMsg{report: r, err: err}
	}
}

// showCandidates rebuilds the candidate list from the entries of one pair.
func (m *Model) showCandidates(p pairItem) {
	var items []list.Item
	for _, e := range m.study.Entries {
		if e.Subject == p.subject && e.Session == p.session {
			items = append(items, candidateItem{entry: e})
		}
	}
	m.candidateList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.candidateList.Title = fmt.Sprintf("Candidates for %s %s", p.subject, p.session)
	m.candidateList.SetSize(m.width-4, m.height-8)
}

func (m *Model) startProcessing() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.ProcessPair(m.ctx, m.progressChan, m.selected.subject, m.selected.session)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return processCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return processCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPairList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.pairList.View(), helpView)
}

func (m *Model) renderCandidateList() string {
	processKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "process"),
	)
	helpKeys := []key.Binding{processKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.candidateList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Process %s %s?", m.selected.subject, m.selected.session))
	info := fmt.Sprintf("\nReady: %d\nAlready complete: %d\nMissing inputs: %d\n",
		m.selected.ready, m.selected.complete, m.selected.missing)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderProcess() string {
	title := styles.title.Render("Processing Motion Tables")

	var phase string
	switch m.progress.Phase {
	case tasks.Enumerate:
		phase = "Enumerating runs..."
	case tasks.Process:
		phase = fmt.Sprintf("Processing files (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Finalize:
		phase = "Finishing up..."
	default:
		phase = "Working..."
	}

	footer := styles.help.Render("updates stream in as files are written")
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, footer)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Processing failed: %v\n\nPress r to refresh, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to refresh, q to quit")
	}

	title := styles.ok.Render("✓ Processing Complete!")
	info := fmt.Sprintf(
		"\nPair: %s %s\nProcessed: %d\nSkipped: %d\nFailed: %d",
		m.result.Subject,
		m.result.Session,
		m.result.Processed,
		m.result.Skipped,
		m.result.Failed,
	)

	var failed string
	if m.result.Failed > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Failed %d file(s):", m.result.Failed)))
		for _, f := range m.result.Files {
			if f.Outcome == models.OutcomeFailed {
				failed += fmt.Sprintf("\n  • %s (%s): %s", f.Candidate.Run, f.Candidate.Pattern.Label, f.Detail)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
