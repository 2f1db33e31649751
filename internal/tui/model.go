package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/rubrica/internal/contact"
	"github.com/smileynet/rubrica/internal/directory"
)

// Mode identifies which input the browser is currently handling.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModeConfirm
)

// chrome is the number of lines around the contact rows: title, blank line,
// input or status line, and help bar.
const chrome = 4

// ChangeMsg delivers a Directory mutation to the browser.
type ChangeMsg directory.Change

// Model is the Bubble Tea model for browsing a contact directory.
// The Directory is only touched from Update.
type Model struct {
	dir     *directory.Directory
	changes chan directory.Change
	cancel  func()

	rows   []*contact.Contact
	cursor int
	offset int
	query  string
	mode   Mode

	search      textinput.Model
	keys        browseKeys
	searchKeys  searchKeys
	confirmKeys confirmKeys
	help        help.Model

	status    string
	statusErr bool
	width     int
	height    int
}

// NewModel creates a browser over dir and subscribes it to dir's changes.
func NewModel(dir *directory.Directory) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name prefix"

	changes := make(chan directory.Change, 1)
	stop := dir.Observe(func(ch directory.Change) {
		// Drop when a change is already pending; the browser re-reads the
		// whole sequence anyway.
		select {
		case changes <- ch:
		default:
		}
	})
	// Copies of the model share one cancel, so the channel closes once.
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			close(changes)
		})
	}

	m := Model{
		dir:         dir,
		changes:     changes,
		cancel:      cancel,
		search:      ti,
		keys:        BrowseKeyMap(),
		searchKeys:  SearchKeyMap(),
		confirmKeys: ConfirmKeyMap(),
		help:        help.New(),
	}
	m.refresh()
	return m
}

// Init starts listening for directory changes.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan directory.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return ChangeMsg(c)
	}
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-len(m.search.Prompt)-1, 0)
		m.scroll()
		return m, nil

	case ChangeMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		switch m.mode {
		case ModeSearch:
			return m.handleSearchKey(msg)
		case ModeConfirm:
			return m.handleConfirmKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}
	}

	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Clear):
		if m.query != "" {
			m.query = ""
			m.refresh()
		}
	case key.Matches(msg, m.keys.Delete):
		if m.Selected() != nil {
			m.mode = ModeConfirm
		}
	case key.Matches(msg, m.keys.Save):
		if err := m.dir.Save(); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus(fmt.Sprintf("saved %d contacts to %s", m.dir.Len(), m.dir.Path()), false)
		}
	case key.Matches(msg, m.keys.Reload):
		m.refresh()
		m.setStatus("refreshed", false)
	}
	m.scroll()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.searchKeys.Accept):
		m.mode = ModeBrowse
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.searchKeys.Cancel):
		m.mode = ModeBrowse
		m.search.Blur()
		m.search.Reset()
		m.query = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.query {
		m.query = v
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.confirmKeys.Confirm):
		m.mode = ModeBrowse
		c := m.Selected()
		if c == nil {
			return m, nil
		}
		if err := m.dir.Delete(c); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.refresh()
		m.setStatus(fmt.Sprintf("deleted %s (unsaved)", c), false)
	case key.Matches(msg, m.confirmKeys.Cancel):
		m.mode = ModeBrowse
	}
	return m, nil
}

// Selected returns the contact under the cursor, or nil if the list is empty.
func (m Model) Selected() *contact.Contact {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

// Rows returns the contacts currently shown.
func (m Model) Rows() []*contact.Contact { return m.rows }

// Query returns the active search prefix, "" when unfiltered.
func (m Model) Query() string { return m.query }

// Mode returns the current input mode.
func (m Model) Mode() Mode { return m.mode }

// refresh re-reads the rows from the directory and keeps the cursor in range.
func (m *Model) refresh() {
	if m.query == "" {
		m.rows = m.dir.ListAll()
	} else {
		rows, err := m.dir.Search(m.query)
		if err != nil {
			m.setStatus(err.Error(), true)
		}
		m.rows = rows
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	visible := m.visibleRows()
	if visible <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m Model) visibleRows() int {
	if m.height == 0 {
		return len(m.rows)
	}
	return max(m.height-chrome, 1)
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.statusErr = failed
}

// unsubscribe stops observing the directory and releases the change listener.
func (m *Model) unsubscribe() {
	if m.cancel != nil {
		m.cancel()
	}
}

// View renders the title, the visible rows, the input line and the help bar.
func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Rubrica  %d contacts", m.dir.Len())
	if m.query != "" {
		title += fmt.Sprintf("  (%d matching %q)", len(m.rows), m.query)
	}
	b.WriteString(TitleStyle().Render(title))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		if m.query != "" {
			b.WriteString(DimStyle().Render(fmt.Sprintf("  no contacts match %q", m.query)))
		} else {
			b.WriteString(DimStyle().Render("  no contacts"))
		}
		b.WriteString("\n")
	}

	end := min(m.offset+m.visibleRows(), len(m.rows))
	for i := m.offset; i < end; i++ {
		line := renderRow(m.rows[i])
		if i == m.cursor {
			b.WriteString(SelectedStyle().Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case ModeSearch:
		b.WriteString(m.search.View())
		b.WriteString("\n")
		b.WriteString(m.help.View(m.searchKeys))
	case ModeConfirm:
		fmt.Fprintf(&b, "Delete %s?\n", m.Selected())
		b.WriteString(m.help.View(m.confirmKeys))
	default:
		if m.status != "" {
			b.WriteString(StatusStyle(m.statusErr).Render(m.status))
		}
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}

	return b.String()
}

// renderRow formats one contact as name, phones and emails columns.
func renderRow(c *contact.Contact) string {
	name := lipgloss.NewStyle().Width(NameWidth).MaxWidth(NameWidth).Render(c.String())
	phones := strings.Join(contact.Values(c.PhoneNumbers()), ", ")
	emails := strings.Join(contact.Values(c.Emails()), ", ")
	return strings.TrimRight(fmt.Sprintf("%s %-24s %s", name, phones, emails), " ")
}
