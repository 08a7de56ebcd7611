package viz

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/overshoot/internal/config"
)

type presetItem struct {
	name string
	cfg  *config.Config
}

func (i presetItem) Title() string { return i.name }

func (i presetItem) Description() string {
	kinds := map[string]int{}
	for _, o := range i.cfg.Oscillators {
		kinds[o.Kind]++
	}
	return fmt.Sprintf("%d overshoot, %d spring", kinds[config.KindOvershoot], kinds[config.KindSpring])
}

func (i presetItem) FilterValue() string { return i.name }

// Picker lets the user choose a preset before the live view starts.
type Picker struct {
	list   list.Model
	choice string
}

func NewPicker() Picker {
	names := config.ListPresets()
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = presetItem{name: name, cfg: config.Presets[name]}
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	l := list.New(items, delegate, 40, 20)
	l.Title = "Choose a preset"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return Picker{list: l}
}

// Choice returns the chosen preset name, or "" if the user quit.
func (p Picker) Choice() string { return p.choice }

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(msg.Width-4, msg.Height-2)
		return p, nil

	case tea.KeyMsg:
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return p, tea.Quit
		case "enter":
			if item, ok := p.list.SelectedItem().(presetItem); ok {
				p.choice = item.name
			}
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p Picker) View() string {
	return p.list.View()
}

// Pick runs the picker and returns the chosen preset name.
func Pick() (string, error) {
	m, err := tea.NewProgram(NewPicker()).Run()
	if err != nil {
		return "", err
	}
	return m.(Picker).Choice(), nil
}
