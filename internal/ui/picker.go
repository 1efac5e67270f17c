package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"sportsdl/internal/media"
)

// formatItem implements list.Item.
type formatItem struct {
	format media.Format
	index  int
}

func (i formatItem) Title() string       { return i.format.FormatID }
func (i formatItem) Description() string { return FormatLabel(i.format) }
func (i formatItem) FilterValue() string { return i.format.FormatID + " " + string(i.format.Protocol) }

type picker struct {
	list   list.Model
	chosen int
}

// newPicker lists formats best first.
func newPicker(title string, formats []media.Format) *picker {
	items := make([]list.Item, 0, len(formats))
	for i := len(formats) - 1; i >= 0; i-- {
		items = append(items, formatItem{format: formats[i], index: i})
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)

	return &picker{list: l, chosen: -1}
}

func (p *picker) Init() tea.Cmd { return nil }

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return p, tea.Quit
		}
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := p.list.SelectedItem().(formatItem); ok {
				p.chosen = item.index
			}
			return p, tea.Quit
		case "q", "esc":
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p *picker) View() string {
	return p.list.View()
}

// PickFormat lets the user choose one of formats interactively.
func PickFormat(title string, formats []media.Format) (media.Format, error) {
	if len(formats) == 0 {
		return media.Format{}, fmt.Errorf("no formats to select from")
	}
	if !IsTerminal() {
		return media.Format{}, ErrNotTerminal
	}

	final, err := tea.NewProgram(newPicker(title, formats), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return media.Format{}, fmt.Errorf("running picker: %w", err)
	}

	p, ok := final.(*picker)
	if !ok || p.chosen < 0 {
		return media.Format{}, ErrCancelled
	}
	return formats[p.chosen], nil
}
