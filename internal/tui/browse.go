// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/douban-comment/internal/i18n"
	"github.com/toeirei/douban-comment/internal/model"
)

// statusKeys maps the number keys to the status filter; "0" clears it.
var statusKeys = map[string]model.Status{
	"0": "",
	"1": model.StatusRead,
	"2": model.StatusReading,
	"3": model.StatusWish,
}

// BrowseModel is a filterable table of stored comments.
type BrowseModel struct {
	table       table.Model
	book        model.Book
	all         []model.Comment // Master list
	visible     []model.Comment // Rows currently shown, same order as the table
	filter      string
	status      model.Status
	isFiltering bool
	showDetail  bool
	width       int
}

// NewBrowseModel builds the browser for one book's comments.
func NewBrowseModel(book model.Book, comments []model.Comment) BrowseModel {
	m := BrowseModel{book: book, all: comments}

	columns := []table.Column{
		{Title: i18n.T("browse.col.user"), Width: 16},
		{Title: i18n.T("browse.col.rating"), Width: 7},
		{Title: i18n.T("browse.col.votes"), Width: 6},
		{Title: i18n.T("browse.col.time"), Width: 19},
		{Title: i18n.T("browse.col.content"), Width: 60},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	m.rebuildTableRows()
	return m
}

// Stars renders a rating as five stars, or "" when there is none.
func Stars(rating *float64) string {
	if rating == nil {
		return ""
	}
	n := max(0, min(5, int(*rating+0.5)))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func (m *BrowseModel) matches(c model.Comment) bool {
	if m.status != "" && c.Status != m.status {
		return false
	}
	if m.filter == "" {
		return true
	}
	lowerFilter := strings.ToLower(m.filter)
	return strings.Contains(strings.ToLower(c.Content), lowerFilter) ||
		strings.Contains(strings.ToLower(c.User), lowerFilter) ||
		strings.Contains(strings.ToLower(c.Location), lowerFilter)
}

// rebuildTableRows filters the master list and populates the table.
func (m *BrowseModel) rebuildTableRows() {
	rows := []table.Row{}
	m.visible = nil
	for _, c := range m.all {
		if !m.matches(c) {
			continue
		}
		votes := ""
		if c.VoteCount != nil {
			votes = strconv.Itoa(*c.VoteCount)
		}
		content := strings.Join(strings.Fields(c.Content), " ")
		rows = append(rows, table.Row{c.User, Stars(c.Rating), votes, c.Time, content})
		m.visible = append(m.visible, c)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Visible returns the comments that pass the current filters.
func (m BrowseModel) Visible() []model.Comment {
	return m.visible
}

// Selected returns the highlighted comment.
func (m BrowseModel) Selected() (model.Comment, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return model.Comment{}, false
	}
	return m.visible[i], true
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title(2) + table header(2) + footer(3) + margins
		m.width = msg.Width
		m.table.SetHeight(max(3, msg.Height-9))
		m.table.SetWidth(max(20, msg.Width-4))

	case tea.KeyMsg:
		if m.isFiltering {
			switch msg.Type {
			case tea.KeyEsc:
				m.isFiltering = false
				m.filter = ""
				m.rebuildTableRows()
			case tea.KeyEnter:
				m.isFiltering = false
			case tea.KeyBackspace:
				if r := []rune(m.filter); len(r) > 0 {
					m.filter = string(r[:len(r)-1])
					m.rebuildTableRows()
				}
			case tea.KeyRunes, tea.KeySpace:
				m.filter += string(msg.Runes)
				m.rebuildTableRows()
			}
			return m, nil
		}

		if m.showDetail {
			switch msg.String() {
			case "enter", "esc", "q":
				m.showDetail = false
			}
			return m, nil
		}

		switch key := msg.String(); key {
		case "/":
			m.isFiltering = true
			m.filter = ""
			m.rebuildTableRows()
			return m, nil
		case "0", "1", "2", "3":
			m.status = statusKeys[key]
			m.rebuildTableRows()
			return m, nil
		case "enter":
			if _, ok := m.Selected(); ok {
				m.showDetail = true
			}
			return m, nil
		case "esc":
			if m.filter != "" || m.status != "" {
				m.filter = ""
				m.status = ""
				m.rebuildTableRows()
				return m, nil
			}
			return m, tea.Quit
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BrowseModel) View() string {
	var b strings.Builder
	statusLabel := i18n.T("browse.all")
	if m.status != "" {
		statusLabel = m.status.Label()
	}
	b.WriteString(titleStyle.Render(i18n.T("browse.title", m.book.SubjectID, m.book.Title)))
	b.WriteString(" " + statusMessageStyle.Render(statusLabel) + "\n\n")

	if m.showDetail {
		if c, ok := m.Selected(); ok {
			width := 72
			if m.width > 10 {
				width = min(width, m.width-6)
			}
			head := fmt.Sprintf("%s  %s  %s", c.User, ratingStyle.Render(Stars(c.Rating)), c.Time)
			if c.Location != "" {
				head += "  " + c.Location
			}
			b.WriteString(detailStyle.Width(width).Render(head + "\n\n" + c.Content))
			b.WriteString("\n")
			return docStyle.Render(b.String())
		}
	}

	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render(i18n.T("browse.empty")))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString(m.footerView())
	return docStyle.Render(b.String())
}

func (m BrowseModel) footerView() string {
	var filterStatus string
	if m.isFiltering {
		filterStatus = i18n.T("browse.filter_prompt") + m.filter + "█"
	} else if m.filter != "" {
		filterStatus = i18n.T("browse.filter_prompt") + m.filter
	}
	count := i18n.T("browse.count", len(m.visible), len(m.all))
	return helpStyle.Render(fmt.Sprintf("\n%s  %s\n%s", count, filterStatus, i18n.T("browse.help")))
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(book model.Book, comments []model.Comment) error {
	p := tea.NewProgram(NewBrowseModel(book, comments), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
