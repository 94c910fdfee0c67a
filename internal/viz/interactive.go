package viz

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/sim"
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuActDesc  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// setting is one world knob editable before a scene starts.
type setting struct {
	name  string
	step  float64
	isInt bool
	get   func(*sim.Config) float64
	set   func(*sim.Config, float64)
}

var settings = []setting{
	{name: "gravity", step: 0.05,
		get: func(c *sim.Config) float64 { return c.Gravity },
		set: func(c *sim.Config, v float64) { c.Gravity = v }},
	{name: "air_drag", step: 0.02,
		get: func(c *sim.Config) float64 { return c.AirDrag },
		set: func(c *sim.Config, v float64) { c.AirDrag = v }},
	{name: "surface_drag", step: 0.02,
		get: func(c *sim.Config) float64 { return c.SurfaceDrag },
		set: func(c *sim.Config, v float64) { c.SurfaceDrag = v }},
	{name: "collision_k", step: 5,
		get: func(c *sim.Config) float64 { return c.CollisionStiffness },
		set: func(c *sim.Config, v float64) { c.CollisionStiffness = v }},
	{name: "bond_iters", step: 1, isInt: true,
		get: func(c *sim.Config) float64 { return float64(c.BondIterations) },
		set: func(c *sim.Config, v float64) { c.BondIterations = int(v) }},
	{name: "act_iters", step: 5, isInt: true,
		get: func(c *sim.Config) float64 { return float64(c.ActuatorIterations) },
		set: func(c *sim.Config, v float64) { c.ActuatorIterations = int(v) }},
}

type menu struct {
	state, cursor int
	reg           *scenes.Registry
	scenes        []string
	selected      string
	world         sim.Config
	dt            float64
	paramCursor   int
	editing       bool
	editBuf       string
	logger        *slog.Logger
	err           error
	live          Model
}

// NewMenu lists the registry's scenes and lets the user tune a few world
// settings before the viewer starts.
func NewMenu(reg *scenes.Registry, logger *slog.Logger) tea.Model {
	return &menu{state: stateMenu, reg: reg, scenes: reg.List(), logger: logger}
}

func (m *menu) Init() tea.Cmd { return nil }

func (m *menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m *menu) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenes)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.scenes) == 0 {
			return m, nil
		}
		m.selected = m.scenes[m.cursor]
		cfg, err := m.reg.WorldConfig(m.selected, scenes.Options{})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.world = cfg
		m.dt, _ = m.reg.DefaultDt(m.selected)
		m.paramCursor = 0
		m.state = stateConfig
	}
	return m, nil
}

func (m *menu) configKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				settings[m.paramCursor].set(&m.world, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				m.editBuf += s
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(settings)-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "enter":
		m.editing, m.editBuf = true, ""
	case "s":
		return m, m.start()
	}
	return m, nil
}

func (m *menu) adjust(dir float64) {
	s := settings[m.paramCursor]
	v := max(0, s.get(&m.world)+dir*s.step)
	s.set(&m.world, v)
}

func (m *menu) start() tea.Cmd {
	name, world := m.selected, m.world
	build := func() (*scenes.Scene, error) {
		return m.reg.Build(name, scenes.Options{
			Logger: m.logger,
			Tune:   func(c *sim.Config) { *c = world },
		})
	}
	live, err := NewModel(build, m.dt)
	if err != nil {
		m.err = err
		return nil
	}
	m.live, m.err = live, nil
	m.state = stateSim
	return m.live.Init()
}

func (m *menu) View() string {
	switch m.state {
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return m.viewMenu()
}

func (m *menu) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("SOFTBODY") + "\n    " + menuSub.Render("mass spring simulation") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.scenes {
		desc, _ := m.reg.Describe(name)
		if len(desc) > 32 {
			desc = desc[:29] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-16s", name)), menuActDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-16s", name)), menuIdleDesc.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHelp("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m *menu) viewConfig() string {
	var b strings.Builder
	desc, _ := m.reg.Describe(m.selected)
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(desc) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, s := range settings {
		val := s.get(&m.world)
		valStr := fmt.Sprintf("%8.3f", val)
		if s.isInt {
			valStr = fmt.Sprintf("%8d", int(val))
		}
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-13s", s.name)), menuActDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-13s", s.name)), menuIdleDesc.Render(valStr)))
		}
	}
	b.WriteString(fmt.Sprintf("\n    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-13s", "dt")), menuIdleDesc.Render(fmt.Sprintf("%8.3f", m.dt))))
	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHelp("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func keyHelp(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuIdle.Render(" "+pairs[i+1]+"  "))
	}
	return strings.TrimRight(b.String(), " ")
}

// RunMenu starts the scene picker full screen.
func RunMenu(reg *scenes.Registry, logger *slog.Logger) error {
	_, err := tea.NewProgram(NewMenu(reg, logger), tea.WithAltScreen()).Run()
	return err
}
