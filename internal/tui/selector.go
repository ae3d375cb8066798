package tui

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrInvalidSelection   = errors.New("invalid selection")
)

type selectorKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func (k selectorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Confirm, k.Cancel}
}

func (k selectorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var selectorKeys = selectorKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "subir")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "bajar")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("espacio", "marcar")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "todos")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "publicar")),
	Cancel:  key.NewBinding(key.WithKeys("ctrl+c", "esc", "q"), key.WithHelp("q", "cancelar")),
}

// Selector is a multi-select list over generated test cases. Placeholder
// cases are shown but cannot be selected.
type Selector struct {
	cases     []model.TestCase
	cursor    int
	selected  map[int]bool
	width     int
	help      help.Model
	confirmed bool
	cancelled bool
}

func NewSelector(cases []model.TestCase) *Selector {
	s := &Selector{cases: cases, selected: make(map[int]bool), help: help.New()}
	s.cursor = s.next(-1, 1)
	if s.cursor < 0 {
		s.cursor = 0
	}
	return s
}

func (s *Selector) Init() tea.Cmd {
	return nil
}

func (s *Selector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, selectorKeys.Cancel):
			s.cancelled = true
			return s, tea.Quit
		case key.Matches(msg, selectorKeys.Up):
			if i := s.next(s.cursor, -1); i >= 0 {
				s.cursor = i
			}
		case key.Matches(msg, selectorKeys.Down):
			if i := s.next(s.cursor, 1); i >= 0 {
				s.cursor = i
			}
		case key.Matches(msg, selectorKeys.Toggle):
			s.toggle(s.cursor)
		case key.Matches(msg, selectorKeys.All):
			s.toggleAll()
		case key.Matches(msg, selectorKeys.Confirm):
			s.confirmed = true
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *Selector) View() string {
	if s.confirmed || s.cancelled {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Selecciona los test cases a publicar en Jira") + "\n\n")

	for i, tc := range s.cases {
		cursor := "  "
		if i == s.cursor {
			cursor = cursorStyle.Render("> ")
		}

		title := s.fit(fmt.Sprintf("Test Case %d: %s", i+1, tc.Title))
		switch {
		case tc.Placeholder:
			sb.WriteString(cursor + "[-] " + disabledStyle.Render(title) + " " + warningStyle.Render("(provisional)") + "\n")
		case s.selected[i]:
			sb.WriteString(cursor + successStyle.Render("[x] ") + title + " " + categoryBadge(string(tc.Category)) + "\n")
		default:
			sb.WriteString(cursor + "[ ] " + title + " " + categoryBadge(string(tc.Category)) + "\n")
		}
	}

	sb.WriteString("\n" + s.help.View(selectorKeys) + "\n")
	return sb.String()
}

// fit truncates a line to the terminal width, leaving room for the cursor,
// checkbox and category badge.
func (s *Selector) fit(line string) string {
	const chrome = 24
	if s.width <= chrome {
		return line
	}
	return runewidth.Truncate(line, s.width-chrome, "…")
}

// Selected returns the chosen indexes in ascending order.
func (s *Selector) Selected() []int {
	indexes := make([]int, 0, len(s.selected))
	for i, ok := range s.selected {
		if ok {
			indexes = append(indexes, i)
		}
	}
	sort.Ints(indexes)
	return indexes
}

func (s *Selector) Cancelled() bool {
	return s.cancelled
}

func (s *Selector) selectable(i int) bool {
	return i >= 0 && i < len(s.cases) && !s.cases[i].Placeholder
}

// next finds the nearest selectable index from i in direction dir, or -1.
func (s *Selector) next(i, dir int) int {
	for j := i + dir; j >= 0 && j < len(s.cases); j += dir {
		if s.selectable(j) {
			return j
		}
	}
	return -1
}

func (s *Selector) toggle(i int) {
	if !s.selectable(i) {
		return
	}
	if s.selected[i] {
		delete(s.selected, i)
		return
	}
	s.selected[i] = true
}

func (s *Selector) toggleAll() {
	all := true
	for i := range s.cases {
		if s.selectable(i) && !s.selected[i] {
			all = false
			break
		}
	}
	for i := range s.cases {
		if !s.selectable(i) {
			continue
		}
		if all {
			delete(s.selected, i)
		} else {
			s.selected[i] = true
		}
	}
}

// RunSelector runs the selector on the given terminal streams and returns
// the chosen cases.
func RunSelector(cases []model.TestCase, in io.Reader, out io.Writer) ([]model.TestCase, error) {
	s := NewSelector(cases)

	p := tea.NewProgram(s, tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("running selector: %w", err)
	}
	if s.Cancelled() {
		return nil, ErrSelectionCancelled
	}

	return pick(cases, s.Selected()), nil
}

// ParseSelection turns a list such as "1,3" or "2-4" (1-based) into the
// chosen cases. "all" selects every case.
func ParseSelection(spec string, cases []model.TestCase) ([]model.TestCase, error) {
	spec = strings.TrimSpace(spec)
	if strings.EqualFold(spec, "all") {
		return append([]model.TestCase(nil), cases...), nil
	}

	seen := make(map[int]bool)
	var indexes []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if lo < 1 || hi > len(cases) || lo > hi {
			return nil, fmt.Errorf("%w: %q is outside 1-%d", ErrInvalidSelection, part, len(cases))
		}
		for n := lo; n <= hi; n++ {
			if !seen[n-1] {
				seen[n-1] = true
				indexes = append(indexes, n-1)
			}
		}
	}

	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: %q selects nothing", ErrInvalidSelection, spec)
	}
	sort.Ints(indexes)
	return pick(cases, indexes), nil
}

func parseRange(part string) (int, int, error) {
	if from, to, ok := strings.Cut(part, "-"); ok {
		lo, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
		}
		hi, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
		}
		return lo, hi, nil
	}

	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
	}
	return n, n, nil
}

func pick(cases []model.TestCase, indexes []int) []model.TestCase {
	chosen := make([]model.TestCase, 0, len(indexes))
	for _, i := range indexes {
		chosen = append(chosen, cases[i])
	}
	return chosen
}
