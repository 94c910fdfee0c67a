package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/softbody/internal/scenes"
	"github.com/san-kum/softbody/internal/telemetry"
	"github.com/san-kum/softbody/internal/vmath"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	perfWindow      = 120
	frameRate       = 60

	rotStep      = 0.1
	zoomStep     = 0.1
	panStep      = 0.5
	dragStep     = 0.1
	minSelRadius = 1.0
	maxPerFrame  = 64
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
)

type TickMsg time.Time

// BuildFunc produces a fresh scene. The viewer calls it on start and on
// every reset.
type BuildFunc func() (*scenes.Scene, error)

// Model steps a scene's world once per frame and draws it.
type Model struct {
	build         BuildFunc
	scene         *scenes.Scene
	dt            float64
	stepsPerFrame int
	width, height int
	canvas        *Canvas
	camera        *Camera
	layers        Layers
	theme         Theme
	running       bool
	controller    bool
	instantMove   bool
	moving        bool
	selRadius     float64
	energy        []float64
	stepMS        []float64
	perf          *telemetry.PerfCollector
	lastFrame     time.Time
	fps           float64
	recording     bool
	recorder      *Recorder
	gifPath       string
	showHelp      bool
	status        string
	err           error
}

// NewModel builds the scene and frames the camera around it. dt <= 0
// keeps the scene's own timestep.
func NewModel(build BuildFunc, dt float64) (Model, error) {
	m := Model{
		build:         build,
		dt:            dt,
		stepsPerFrame: 1,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		layers:        DefaultLayers(),
		theme:         ThemeCyberpunk,
		running:       true,
		controller:    true,
		instantMove:   true,
		selRadius:     minSelRadius,
		recorder:      &Recorder{},
		gifPath:       "softbody.gif",
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// SetGIFPath changes where recordings are written.
func (m *Model) SetGIFPath(path string) { m.gifPath = path }

func (m *Model) reset() error {
	sc, err := m.build()
	if err != nil {
		return err
	}
	m.scene = sc
	if m.dt <= 0 {
		m.dt = sc.Dt
	}
	m.energy = make([]float64, 0, historyCapacity)
	m.stepMS = make([]float64, 0, historyCapacity)
	m.perf = telemetry.NewPerfCollector(perfWindow)
	m.err = nil
	m.status = ""
	if !m.controller {
		sc.World.SetController(nil)
	}

	pts := sc.World.AllPoints()
	pos := make([]vmath.Vec3, len(pts))
	for i, p := range pts {
		pos[i] = p.Pos
	}
	m.camera.Fit(pos)
	m.pushEnergy()
	return nil
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			if d := now.Sub(m.lastFrame).Seconds(); d > 0 {
				m.fps = 1 / d
			}
		}
		m.lastFrame = now
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerFrame; i++ {
				if !m.advance() {
					break
				}
			}
		}
		Render(m.canvas, m.camera, m.scene.World, m.layers, m.moving)
		m.moving = false
		if m.recording {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw, ch := w-50, h-2
	if cw < 20 || ch < 8 {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.scene.World
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case ".":
		if !m.running {
			m.advance()
		}
	case "r":
		if err := m.reset(); err != nil {
			m.err = err
		}
	case ">":
		m.stepsPerFrame = min(m.stepsPerFrame*2, maxPerFrame)
	case "<":
		m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
	case "left":
		m.camera.Orbit(rotStep, 0)
	case "right":
		m.camera.Orbit(-rotStep, 0)
	case "up":
		m.camera.Orbit(0, rotStep)
	case "down":
		m.camera.Orbit(0, -rotStep)
	case "+", "=":
		m.camera.Zoom(zoomStep)
	case "-", "_":
		m.camera.Zoom(-zoomStep)
	case "w":
		m.camera.Pan(panStep, 0)
	case "s":
		m.camera.Pan(-panStep, 0)
	case "a":
		m.camera.Pan(0, -panStep)
	case "d":
		m.camera.Pan(0, panStep)
	case "[":
		m.selRadius = max(minSelRadius, m.selRadius-1)
	case "]":
		m.selRadius++
	case "c":
		n := w.SelectRadius(m.camera.Target, m.selRadius)
		m.status = fmt.Sprintf("selected %d", n)
	case "esc":
		w.ClearSelection()
	case "delete", "backspace":
		n, err := w.DeleteSelection()
		if err != nil {
			m.err = err
		} else {
			m.status = fmt.Sprintf("deleted %d", n)
		}
	case "F":
		w.FloodFillSelection()
	case "M":
		res := w.MinimizeSelection()
		m.status = fmt.Sprintf("minimized in %d passes", res.Iterations)
	case "f":
		m.toggleFixed()
	case "j":
		m.drag(vmath.V(-dragStep, 0, 0))
	case "l":
		m.drag(vmath.V(dragStep, 0, 0))
	case "i":
		m.drag(vmath.V(0, dragStep, 0))
	case "k":
		m.drag(vmath.V(0, -dragStep, 0))
	case "u":
		m.drag(vmath.V(0, 0, dragStep))
	case "o":
		m.drag(vmath.V(0, 0, -dragStep))
	case "n":
		m.instantMove = !m.instantMove
	case "x":
		m.controller = !m.controller
		if m.controller {
			w.SetController(m.scene.Controller)
		} else {
			w.SetController(nil)
		}
	case "p":
		m.layers.Points = !m.layers.Points
	case "b":
		m.layers.Springs = !m.layers.Springs
	case "t":
		m.theme = NextTheme(m.theme)
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// advance runs one world step. It reports false and records the error
// when the step fails.
func (m *Model) advance() bool {
	w := m.scene.World
	if err := w.Step(m.dt); err != nil {
		m.err = err
		m.running = false
		return false
	}
	t := w.Timings()
	m.perf.Record(t)
	m.stepMS = appendCapped(m.stepMS, float64(t.Step.Microseconds())/1000)
	m.pushEnergy()
	return true
}

func (m *Model) pushEnergy() {
	m.energy = appendCapped(m.energy, m.scene.World.MeasureEnergy())
}

func appendCapped(xs []float64, v float64) []float64 {
	if len(xs) >= historyCapacity {
		xs = append(xs[:0], xs[1:]...)
	}
	return append(xs, v)
}

func (m *Model) drag(delta vmath.Vec3) {
	w := m.scene.World
	if len(w.Selection()) == 0 {
		return
	}
	w.MoveSelection(delta, m.instantMove)
	m.moving = true
}

func (m *Model) toggleFixed() {
	w := m.scene.World
	sel := w.Selection()
	if len(sel) == 0 {
		return
	}
	p, ok := w.Point(sel[0])
	if !ok {
		return
	}
	w.SetFixed(!p.Fixed)
	if p.Fixed {
		m.status = fmt.Sprintf("fixed %d", len(sel))
	} else {
		m.status = fmt.Sprintf("released %d", len(sel))
	}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.recorder.Reset()
		return
	}
	m.recording = false
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.status = "gif: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), m.gifPath)
	}
	m.recorder.Reset()
}

func (m Model) View() string {
	if m.showHelp {
		return helpView
	}
	st := m.theme.styles()
	w := m.scene.World
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(GradientText(strings.ToUpper(m.scene.Name), m.theme.Primary, m.theme.Accent)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("ERROR "+m.err.Error()) + "\n")
	case m.recording:
		s.WriteString(StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len())) + "\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}
	if m.status != "" {
		s.WriteString(st.accent.Render(m.status) + "\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	energy := 0.0
	if len(m.energy) > 0 {
		energy = m.energy[len(m.energy)-1]
	}
	row("Tick", fmt.Sprintf("%d", w.Timestep()))
	row("Time", fmt.Sprintf("%.2fs", float64(w.Timestep())*m.dt))
	row("Energy", fmt.Sprintf("%.2f", energy))
	row("Bodies", fmt.Sprintf("%d atoms %d bonds", w.NumPoints(), len(w.AllSprings())))
	row("Collisions", fmt.Sprintf("%d", w.Collisions()))
	row("Selection", fmt.Sprintf("%d r=%.0f %s", len(w.Selection()), m.selRadius, moveMode(m.instantMove)))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame))
	row("Frame", fmt.Sprintf("%.0f fps", m.fps))

	ps := m.perf.Stats()
	s.WriteString("\n")
	row("Step", fmt.Sprintf("%.2f ms", float64(ps.AvgStep.Microseconds())/1000))
	row("Ticks/s", fmt.Sprintf("%.0f", ps.TicksPerSecond))
	row("Index", ProgressBar(ps.IndexPct/100, 10)+fmt.Sprintf(" %.0f%%", ps.IndexPct))
	row("Collide", ProgressBar(ps.CollisionPct/100, 10)+fmt.Sprintf(" %.0f%%", ps.CollisionPct))
	s.WriteString(SparklineChart(m.stepMS, 30) + "\n")

	s.WriteString(st.help.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record ?:Help"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func moveMode(instant bool) string {
	if instant {
		return "instant"
	}
	return "physical"
}

const helpView = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    pause / resume             ║
║  .        single step while paused   ║
║  R        rebuild the scene          ║
║  < >      steps per frame            ║
║  Arrows   orbit camera               ║
║  + -      zoom                       ║
║  W A S D  pan along the ground       ║
║  C        select around view centre  ║
║  [ ]      selection radius           ║
║  Esc      clear selection            ║
║  Del      delete selection           ║
║  F        flood fill selection       ║
║  M        relax selection            ║
║  f        fix / release selection    ║
║  IJKL UO  drag selection             ║
║  N        instant / physical drag    ║
║  X        controller on / off        ║
║  P B      points / springs layer     ║
║  T        cycle theme                ║
║  G        record GIF                 ║
║  Q        quit                       ║
║  ?        toggle this help           ║
╚══════════════════════════════════════╝
`

// Run starts the viewer full screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
