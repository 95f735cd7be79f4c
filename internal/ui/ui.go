package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"packtrack/internal/models"
	"packtrack/internal/repositories"
	"packtrack/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SeriesListView ViewState = iota
	ProgressView
	TracklistView
)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	engine        *tasks.ReconcileEngine
	seriesRepo    *repositories.SeriesRepository
	width         int
	height        int
	seriesList    list.Model
	trackList     list.Model
	selected      *models.Series
	items         []models.TracklistItem
	progressChan  chan tasks.ProgressUpdate
	reconcileDone chan reconcileCompleteMsg
	progress      tasks.ProgressUpdate
	err           error
	help          help.Model
	keys          keyMap
}

type seriesFetchedMsg struct {
	series []*models.Series
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type reconcileCompleteMsg struct {
	items []models.TracklistItem
	err   error
}

type flagToggledMsg struct {
	index       int
	preExisting bool
	err         error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.ReconcileEngine, seriesRepo *repositories.SeriesRepository) *Model {
	return &Model{
		ctx:        ctx,
		view:       SeriesListView,
		engine:     engine,
		seriesRepo: seriesRepo,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by loading the tracked series.
func (m *Model) Init() tea.Cmd {
	return m.fetchSeries()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.seriesList.Width() == 0 {
			m.seriesList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SeriesListView:
			return m.handleSeriesListKeys(msg)
		case TracklistView:
			return m.handleTracklistKeys(msg)
		}

	case seriesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.series))
		for i, s := range msg.series {
			items[i] = seriesItem{series: s}
		}
		m.seriesList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.seriesList.Title = "Tracked Series"
		m.seriesList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case reconcileCompleteMsg:
		m.progressChan = nil
		if msg.err != nil {
			m.err = msg.err
			m.view = SeriesListView
			return m, nil
		}
		m.err = nil
		m.items = msg.items
		m.rebuildTrackList()
		m.view = TracklistView
		return m, nil

	case flagToggledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if msg.index >= 0 && msg.index < len(m.items) {
			if msg.preExisting {
				m.items[msg.index].PreExisting = !m.items[msg.index].PreExisting
			} else {
				m.items[msg.index].Irrelevant = !m.items[msg.index].Irrelevant
			}
			selected := m.trackList.Index()
			m.rebuildTrackList()
			m.trackList.Select(selected)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view == SeriesListView && m.seriesList.Width() == 0 {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SeriesListView:
		return m.renderSeriesList()
	case ProgressView:
		return m.renderProgress()
	case TracklistView:
		return m.renderTracklist()
	default:
		return ""
	}
}

func (m *Model) handleSeriesListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.seriesList.SelectedItem()
		if selected != nil {
			if s, ok := selected.(seriesItem); ok {
				m.selected = s.series
				m.view = ProgressView
				return m, m.startReconcile()
			}
		}
	}

	var cmd tea.Cmd
	m.seriesList, cmd = m.seriesList.Update(msg)
	return m, cmd
}

func (m *Model) handleTracklistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SeriesListView
		return m, nil
	case "r":
		m.view = ProgressView
		return m, m.startReconcile()
	case "p":
		return m, m.toggleFlag(m.trackList.Index(), true)
	case "i":
		return m, m.toggleFlag(m.trackList.Index(), false)
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SeriesListView:
		m.seriesList, cmd = m.seriesList.Update(msg)
	case TracklistView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildTrackList() {
	items := make([]list.Item, len(m.items))
	for i, item := range m.items {
		items[i] = trackItem{item: item}
	}
	m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("%s - %s", m.selected.Artist(), m.selected.Album())
	m.trackList.SetSize(m.width-4, m.height-8)
}

func (m *Model) fetchSeries() tea.Cmd {
	return func() tea.Msg {
		series, err := m.seriesRepo.List(map[string]any{})
		return seriesFetchedMsg{series: series, err: err}
	}
}

func (m *Model) startReconcile() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	seriesID := m.selected.ID()
	done := make(chan reconcileCompleteMsg, 1)

	go func() {
		items, err := m.engine.Reconcile(m.ctx, progressChan, seriesID)
		done <- reconcileCompleteMsg{items: items, err: err}
		close(progressChan)
	}()

	m.reconcileDone = done
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return nil
		}

		update, ok := <-m.progressChan
		if !ok {
			return <-m.reconcileDone
		}
		return progressUpdateMsg(update)
	}
}

// toggleFlag flips one flag for the selected track via the engine.
func (m *Model) toggleFlag(index int, preExisting bool) tea.Cmd {
	if index < 0 || index >= len(m.items) {
		return nil
	}
	item := m.items[index]
	seriesID := m.selected.ID()

	return func() tea.Msg {
		update := models.FlagUpdate{ExternalID: item.ExternalID}
		if update.ExternalID == "" {
			update.Title = item.TitleClean
		}

		var err error
		if preExisting {
			update.Value = !item.PreExisting
			err = m.engine.SetPreexistingFlags(m.ctx, seriesID, []models.FlagUpdate{update})
		} else {
			update.Value = !item.Irrelevant
			err = m.engine.SetIrrelevantFlags(m.ctx, seriesID, []models.FlagUpdate{update})
		}

		return flagToggledMsg{index: index, preExisting: preExisting, err: err}
	}
}

func (m *Model) renderSeriesList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	errLine := ""
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	return fmt.Sprintf("%s%s\n\n%s", errLine, m.seriesList.View(), helpView)
}

func (m *Model) renderProgress() string {
	title := styles.title.Render(fmt.Sprintf("Reconciling %s - %s", m.selected.Artist(), m.selected.Album()))

	var phase string
	switch m.progress.Phase {
	case tasks.SearchAlbum:
		phase = "Searching the catalog..."
	case tasks.MatchTracks:
		phase = fmt.Sprintf("Matching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.CheckOfficial:
		phase = fmt.Sprintf("Checking release status (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderTracklist() string {
	helpKeys := []key.Binding{m.keys.preexisting, m.keys.irrelevant, m.keys.reconcile, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	errLine := ""
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	return fmt.Sprintf("%s%s\n\n%s", errLine, m.trackList.View(), helpView)
}
