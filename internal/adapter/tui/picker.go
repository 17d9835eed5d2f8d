package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/grainlens/uploader/internal/domain/entity"
	"github.com/grainlens/uploader/internal/usecase"
)

// Selector receives selection events
type Selector interface {
	Select(ctx context.Context, sel *entity.Selection) *usecase.Pending
}

// Content is the output element the upload classifier renders into
type Content interface {
	Content() string
}

// resultMsg carries a finished request back into the update loop
type resultMsg struct {
	id     uuid.UUID
	result entity.Result
}

// Styles holds the picker's lipgloss styles
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Notice  lipgloss.Style
	Result  lipgloss.Style
	Pending lipgloss.Style
}

// DefaultStyles returns the default picker palette
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Result:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		Pending: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")),
	}
}

// Model is a terminal file picker bound to the upload classifier.
// Picking a file is a selection event; the result element shows whatever
// the classifier last rendered.
type Model struct {
	ctx      context.Context
	picker   filepicker.Model
	selector Selector
	output   Content

	selected string
	latest   uuid.UUID
	pending  bool
	notice   string
	quitting bool

	styles Styles
}

// New creates a picker rooted at dir that only enables files with the
// given extensions
func New(ctx context.Context, selector Selector, output Content, dir string, extensions []string) Model {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = allowedTypes(extensions)

	return Model{
		ctx:      ctx,
		picker:   fp,
		selector: selector,
		output:   output,
		styles:   DefaultStyles(),
	}
}

func allowedTypes(extensions []string) []string {
	types := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		types = append(types, "."+strings.TrimPrefix(strings.ToLower(ext), "."))
	}
	return types
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.picker.Init()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case resultMsg:
		if msg.id == m.latest {
			m.pending = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		var selectCmd tea.Cmd
		m, selectCmd = m.selectPath(path)
		return m, tea.Batch(cmd, selectCmd)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = fmt.Sprintf("%s is not a supported image", filepath.Base(path))
		return m, cmd
	}

	return m, cmd
}

// selectPath turns a picked file into a selection event
func (m Model) selectPath(path string) (Model, tea.Cmd) {
	m.notice = ""

	file, err := entity.ReadSelectedFile(path)
	if err != nil {
		m.notice = fmt.Sprintf("cannot read %s", filepath.Base(path))
		return m, nil
	}

	pending := m.selector.Select(m.ctx, entity.NewSelection(file))
	if pending == nil {
		return m, nil
	}

	m.selected = path
	m.latest = pending.SelectionID
	m.pending = true
	return m, waitForResult(pending)
}

func waitForResult(p *usecase.Pending) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{id: p.SelectionID, result: p.Result()}
	}
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Rice Grain Classifier"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(m.picker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.styles.Notice.Render(m.notice))
		b.WriteString("\n")
	}

	if m.selected != "" {
		b.WriteString(m.styles.Muted.Render("Selected: " + filepath.Base(m.selected)))
		b.WriteString("\n")
	}
	if m.pending {
		b.WriteString(m.styles.Pending.Render("Classifying..."))
		b.WriteString("\n")
	}
	if content := m.output.Content(); content != "" {
		b.WriteString(m.styles.Result.Render(content))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Muted.Render("enter: select  q: quit"))
	return b.String()
}
