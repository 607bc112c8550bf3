package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"sunwave/internal/repositories"
	"sunwave/internal/session"
	"sunwave/internal/tasks"
)

type snapshotMsg repositories.Snapshot

type reconcileMsg tasks.Event

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	controller *session.Controller
	events     <-chan tasks.Event
	snapshots  chan repositories.Snapshot

	unsubscribe func()
	width       int
	height      int
	songList    list.Model
	statusLine  string
	help        help.Model
	keys        keyMap
}

// NewModel creates a TUI model wired to the session controller and store.
func NewModel(ctx context.Context, controller *session.Controller, store *repositories.Store, reconciler *tasks.Reconciler) *Model {
	m := &Model{
		ctx:        ctx,
		controller: controller,
		events:     reconciler.Events(),
		snapshots:  make(chan repositories.Snapshot, 8),
		help:       help.New(),
		keys:       newKeyMap(),
	}

	m.songList = list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	m.songList.Title = "Songs"
	m.songList.SetShowHelp(false)

	// Snapshots are forwarded through a buffered channel; a stale snapshot
	// is dropped rather than blocking the store's notify path.
	m.unsubscribe = store.Subscribe(func(snap repositories.Snapshot) {
		select {
		case m.snapshots <- snap:
		default:
		}
	})

	return m
}

// Init starts the snapshot and event pumps.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case snapshotMsg:
		m.refreshItems()
		return m, m.waitForSnapshot()

	case reconcileMsg:
		event := tasks.Event(msg)
		switch event.Kind {
		case tasks.TaskFailed:
			m.statusLine = styles.err.Render(event.Message)
		case tasks.TaskFinished:
			m.statusLine = styles.ok.Render(event.Message)
		}
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.unsubscribe()
		return m, tea.Quit
	case "enter":
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			if err := m.controller.Select(item.song.ID); err == nil {
				m.controller.SetPlaying(!m.controller.Playing())
			}
		}
		return m, nil
	case "l":
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			if err := m.controller.ToggleLike(item.song.ID); err != nil {
				m.statusLine = styles.err.Render(fmt.Sprintf("like failed: %v", err))
			}
		}
		return m, nil
	case "x":
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			if err := m.controller.Delete(item.song.ID); err != nil {
				m.statusLine = styles.err.Render(fmt.Sprintf("delete failed: %v", err))
			}
		}
		return m, nil
	case "f":
		m.cycleFilter()
		m.refreshItems()
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

// View renders the song monitor.
func (m *Model) View() string {
	header := styles.title.Render(fmt.Sprintf("sunwave • %d credits • filter: %s", m.controller.Credits(), m.controller.Filter()))
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	body := m.songList.View()
	if m.statusLine != "" {
		body = fmt.Sprintf("%s\n\n%s", body, m.statusLine)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", header, body, helpView)
}

func (m *Model) cycleFilter() {
	var next session.Filter
	switch m.controller.Filter() {
	case session.FilterAll:
		next = session.FilterOriginal
	case session.FilterOriginal:
		next = session.FilterCover
	default:
		next = session.FilterAll
	}
	m.controller.SetFilter(next)
}

func (m *Model) refreshItems() {
	songs := m.controller.Songs()
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}
	m.songList.SetItems(items)
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case snap := <-m.snapshots:
			return snapshotMsg(snap)
		}
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case event := <-m.events:
			return reconcileMsg(event)
		}
	}
}
