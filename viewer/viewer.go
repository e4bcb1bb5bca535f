// Package viewer is a live terminal view of a relaxation session.
//
// Every frame runs one session Update (bounded by the configured iteration
// budget and time limit) and redraws the map with half-block characters, two
// grid rows per terminal line. Settings changed from the keyboard go through
// session.Apply, so metric, policy and randomness switch live while a new
// district count rebuilds the grid.
package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/katalvlaran/redistrict/config"
	"github.com/katalvlaran/redistrict/guard"
	"github.com/katalvlaran/redistrict/metric"
	"github.com/katalvlaran/redistrict/relax"
	"github.com/katalvlaran/redistrict/render"
	"github.com/katalvlaran/redistrict/session"
)

// DefaultFrame is the delay between frames.
const DefaultFrame = 33 * time.Millisecond

const randomnessStep = 0.05

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c2e7"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

type frameMsg time.Time

// Options configures the viewer.
type Options struct {
	// Frame is the delay between updates; DefaultFrame when 0.
	Frame time.Duration

	// ConfigPath receives the settings on "w"; empty uses config.DefaultPath.
	ConfigPath string
}

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	s    *session.Session
	opts Options

	paused        bool
	width, height int
	last          relax.Stats
	status        string
	err           error

	cache *drawCache
}

// drawCache survives the value copies bubbletea makes of Model.
type drawCache struct {
	palette []color.NRGBA
	gen     int
	styles  map[[2]color.NRGBA]string
}

// New returns a viewer over an initialised session. ctx bounds every Update.
func New(ctx context.Context, s *session.Session, opts Options) Model {
	if opts.Frame <= 0 {
		opts.Frame = DefaultFrame
	}

	return Model{
		ctx:    ctx,
		s:      s,
		opts:   opts,
		width:  80,
		height: 24,
		cache:  &drawCache{styles: make(map[[2]color.NRGBA]string)},
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Frame, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Init starts the frame clock.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles frames, resizes and keys.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case frameMsg:
		if !m.paused {
			st, err := m.s.Update(m.ctx)
			if err != nil {
				m.err = err
			} else {
				m.last = st
			}
		}
		return m, m.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cfg := m.s.Config()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
		return m, nil
	case "r":
		m.apply(m.s.Restart(m.ctx), "restarted")
		return m, nil
	case "m":
		mt, _ := cfg.MetricValue()
		cfg.Metric = mt.Next().String()
	case "p":
		p, _ := cfg.PolicyValue()
		cfg.Policy = p.Next().String()
	case "+", "=":
		cfg.Randomness = math.Min(1, math.Round((cfg.Randomness+randomnessStep)*100)/100)
	case "-", "_":
		cfg.Randomness = math.Max(0, math.Round((cfg.Randomness-randomnessStep)*100)/100)
	case "]":
		cfg.Districts++
	case "[":
		if cfg.Districts > 1 {
			cfg.Districts--
		}
	case "w":
		m.apply(config.Save(m.opts.ConfigPath, cfg), "settings saved")
		return m, nil
	default:
		return m, nil
	}
	m.apply(m.s.Apply(m.ctx, cfg), "")

	return m, nil
}

func (m *Model) apply(err error, ok string) {
	m.err = err
	if err == nil {
		m.status = ok
	}
}

// View draws the title, the map and the status lines.
func (m Model) View() string {
	var b strings.Builder
	cfg := m.s.Config()
	b.WriteString(titleStyle.Render("redistrict"))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  %s · %s · randomness %.2f · %d districts",
		cfg.Metric, cfg.Policy, cfg.Randomness, cfg.Districts)))
	if m.paused {
		b.WriteString(errorStyle.Render("  paused"))
	}
	b.WriteString("\n")

	if g := m.s.Grid(); g != nil {
		c := m.cache
		if c.gen != m.s.Generation() || len(c.palette) != g.Districts()+1 {
			c.palette = render.Palette(g.Districts())
			c.gen = m.s.Generation()
		}
		m.drawMap(&b, render.Image(g, c.palette, true))
	}

	b.WriteString(statusStyle.Render(fmt.Sprintf("iterations %d · accepted %d (%.2f%%) · guard %d · %v",
		m.last.Iterations, m.last.Accepted, 100*m.last.AcceptanceRate(), m.last.GuardRejected,
		m.last.Elapsed.Round(time.Millisecond))))
	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine()))

	return b.String()
}

func helpLine() string {
	return fmt.Sprintf("space pause · r restart · m metric (%d) · p policy (%d) · +/- randomness · [/] districts · w save · q quit",
		len(metric.All()), len(guard.Policies()))
}

// drawMap samples img down to the terminal width and renders two pixel rows
// per line with an upper half block.
func (m Model) drawMap(b *strings.Builder, img *image.NRGBA) {
	bounds := img.Bounds()
	cols := m.width
	if cols < 1 {
		cols = 1
	}
	step := (bounds.Dx() + cols - 1) / cols
	if rows := 2 * (m.height - 4); rows > 0 {
		if s := (bounds.Dy() + rows - 1) / rows; s > step {
			step = s
		}
	}
	if step < 1 {
		step = 1
	}

	for y := 0; y < bounds.Dy(); y += 2 * step {
		for x := 0; x < bounds.Dx(); x += step {
			top := img.NRGBAAt(x, y)
			bottom := render.Background
			if y+step < bounds.Dy() {
				bottom = img.NRGBAAt(x, y+step)
			}
			b.WriteString(m.cell(top, bottom))
		}
		b.WriteString("\n")
	}
}

// cell renders one half-block with top as foreground and bottom as background.
func (m Model) cell(top, bottom color.NRGBA) string {
	key := [2]color.NRGBA{top, bottom}
	if s, ok := m.cache.styles[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex(top))).
		Background(lipgloss.Color(hex(bottom))).
		Render("▀")
	m.cache.styles[key] = s

	return s
}

func hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
