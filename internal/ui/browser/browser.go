// Package browser is the interactive terminal view of a parsed
// disassembly: a filterable function list per section and a listing pane.
package browser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"asmexplorer/internal/asmexplorer/styles"
	"asmexplorer/internal/disasm"
	"asmexplorer/internal/listing"
	"asmexplorer/internal/ui/colorize"
)

type viewMode int

const (
	viewFunctions viewMode = iota
	viewListing
)

type functionItem struct {
	index   int
	name    string
	address uint64
}

func (i functionItem) FilterValue() string {
	return fmt.Sprintf("%x %s", i.address, i.name)
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(functionItem)
	if !ok {
		return
	}

	indicator := " "
	addrStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Accent))
	}
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Mnemonic))

	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("%016x", i.address)),
		nameStyle.Render(i.name))
}

// Options configures the browser.
type Options struct {
	Source  string
	Listing listing.Options
}

// Model is the bubbletea model of the browser.
type Model struct {
	tree     *disasm.Tree
	opts     Options
	sections []disasm.SectionSummary
	section  int

	list     list.Model
	viewport viewport.Model
	mode     viewMode
	width    int
	height   int
	status   string
}

// New builds a browser over t, starting at the first section that has
// functions.
func New(t *disasm.Tree, opts Options) Model {
	l := list.New([]list.Item{}, itemDelegate{}, 80, 24)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color(styles.Section)).
		MarginLeft(2)

	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	m := Model{
		tree:     t,
		opts:     opts,
		sections: t.ListSections(),
		list:     l,
		viewport: vp,
		width:    80,
		height:   24,
		status:   opts.Source,
	}
	start := 0
	for i, s := range m.sections {
		if s.FunctionCount > 0 {
			start = i
			break
		}
	}
	m.selectSection(start)
	return m
}

// selectSection fills the function list from section i.
func (m *Model) selectSection(i int) {
	if len(m.sections) == 0 {
		m.list.Title = "No sections"
		m.list.SetItems(nil)
		return
	}
	i = (i + len(m.sections)) % len(m.sections)
	m.section = i

	fns, err := m.tree.ListFunctions(i)
	if err != nil {
		m.status = err.Error()
		return
	}
	items := make([]list.Item, len(fns))
	for j, f := range fns {
		items[j] = functionItem{index: j, name: m.opts.Listing.Name(f.Name), address: f.Address}
	}
	m.list.SetItems(items)
	m.list.ResetSelected()
	m.list.Title = fmt.Sprintf("%s (%d of %d) · %d functions",
		m.sections[i].Name, i+1, len(m.sections), len(fns))
}

// openSelected shows the listing of the highlighted function.
func (m *Model) openSelected() bool {
	item, ok := m.list.SelectedItem().(functionItem)
	if !ok {
		return false
	}
	entries, err := m.tree.EntriesOf(m.section, item.index)
	if err != nil {
		m.status = err.Error()
		return false
	}
	m.viewport.SetContent(renderListing(item, entries, m.opts.Listing))
	m.viewport.GotoTop()
	m.mode = viewListing
	m.status = fmt.Sprintf("%s · %016x", item.name, item.address)
	return true
}

// renderListing formats one function body for the viewport.
func renderListing(item functionItem, entries []disasm.Entry, opts listing.Options) string {
	addrStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Address))
	rawStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.Comment))
	hl := colorize.Highlighter{Off: !opts.Color}

	var b strings.Builder
	fmt.Fprintf(&b, "%016x <%s>:\n", item.address, item.name)
	for _, r := range listing.Rows(entries) {
		if !r.IsInstruction {
			b.WriteString(strings.Repeat(" ", 10))
			b.WriteString(textStyle.Render(r.Text))
			b.WriteByte('\n')
			continue
		}
		b.WriteString(addrStyle.Render(r.Address))
		b.WriteString("  ")
		if opts.Bytes {
			b.WriteString(rawStyle.Render(fmt.Sprintf("%-24s", r.Raw)))
			b.WriteString("  ")
		}
		b.WriteString(hl.Instruction(r.Text))
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 2)
		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		if m.mode == viewFunctions && m.list.FilterState() == list.Filtering {
			// The list owns the keyboard while filtering.
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if m.mode == viewFunctions {
				m.openSelected()
				return m, nil
			}
		case "esc", "backspace":
			if m.mode == viewListing {
				m.mode = viewFunctions
				m.status = m.opts.Source
				return m, nil
			}
		case "tab":
			if m.mode == viewFunctions {
				m.selectSection(m.section + 1)
				return m, nil
			}
		case "shift+tab":
			if m.mode == viewFunctions {
				m.selectSection(m.section - 1)
				return m, nil
			}
		}
	}

	switch m.mode {
	case viewListing:
		m.viewport, cmd = m.viewport.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	var content, menu string
	switch m.mode {
	case viewListing:
		content = m.viewport.View()
		menu = " Esc: back • ↑/↓: scroll • Q: quit "
	default:
		content = m.list.View()
		menu = " Enter: listing • Tab: next section • /: filter • Q: quit "
	}
	if m.status != "" {
		menu = " " + m.status + " │" + menu
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("252")).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

// Run shows the browser until the user quits or ctx is cancelled.
func Run(ctx context.Context, t *disasm.Tree, opts Options) error {
	program := tea.NewProgram(
		New(t, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}
