package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	noneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	e        *engine.Engine
	shutdown func()
	tick     time.Duration

	objects []contentengine.ObjectID
	scenes  map[contentengine.SceneID]contentengine.SceneHandle

	input   textinput.Model
	mode    inputMode
	message string
}

type inputMode int

const (
	modeIdle inputMode = iota
	modeLoad
	modeRelease
	modeScene
	modeUnloadScene
)

type tickMsg time.Time

func newInteractiveModel(e *engine.Engine, shutdown func(), tick time.Duration) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "id"
	ti.Prompt = "> "
	ti.Width = 20
	return &interactiveModel{
		e:        e,
		shutdown: shutdown,
		tick:     tick,
		scenes:   make(map[contentengine.SceneID]contentengine.SceneHandle),
		input:    ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.scheduleTick()
}

func (m *interactiveModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.e.ProcessQueuedCommands()
		return m, m.scheduleTick()

	case tea.KeyMsg:
		if m.mode != modeIdle {
			switch msg.String() {
			case "enter":
				m.submit()
				return m, nil
			case "esc":
				m.mode = modeIdle
				m.input.Blur()
				m.input.SetValue("")
				return m, nil
			case "ctrl+c":
				return m.quit()
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m.quit()
		case "l":
			m.enterMode(modeLoad, "object id to load")
		case "r":
			m.enterMode(modeRelease, "object id to release")
		case "s":
			m.enterMode(modeScene, "scene id to load")
		case "u":
			m.enterMode(modeUnloadScene, "scene id to unload")
		}
	}
	return m, nil
}

func (m *interactiveModel) quit() (tea.Model, tea.Cmd) {
	for id := range m.scenes {
		if err := m.e.ReleaseScene(id); err != nil {
			engine.Logger().Warn("scene release failed", zap.Error(err))
		}
	}
	m.e.Cleanup()
	m.shutdown()
	return m, tea.Quit
}

func (m *interactiveModel) enterMode(mode inputMode, placeholder string) {
	m.mode = mode
	m.message = ""
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

func (m *interactiveModel) submit() {
	raw := strings.TrimSpace(m.input.Value())
	m.input.Blur()
	m.input.SetValue("")
	mode := m.mode
	m.mode = modeIdle

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		m.message = fmt.Sprintf("bad id %q", raw)
		return
	}

	switch mode {
	case modeLoad:
		id := contentengine.ObjectID(v)
		m.e.LoadObjectAsync(id)
		m.track(id)
		m.message = fmt.Sprintf("load queued for object %d", id)

	case modeRelease:
		id := contentengine.ObjectID(v)
		m.e.ReleaseObjectAsync(id)
		m.message = fmt.Sprintf("release queued for object %d", id)

	case modeScene:
		id := contentengine.SceneID(v)
		h, err := m.e.LoadScene(id, contentengine.SceneParams{ActivateOnLoad: true})
		if err != nil {
			m.message = fmt.Sprintf("scene %d: %v", id, err)
			return
		}
		m.scenes[id] = h
		m.message = fmt.Sprintf("scene %d loading", id)

	case modeUnloadScene:
		id := contentengine.SceneID(v)
		if err := m.e.ReleaseScene(id); err != nil {
			m.message = fmt.Sprintf("scene %d: %v", id, err)
			return
		}
		delete(m.scenes, id)
		m.message = fmt.Sprintf("scene %d unload deferred", id)
	}
}

func (m *interactiveModel) track(id contentengine.ObjectID) {
	for _, known := range m.objects {
		if known == id {
			return
		}
	}
	m.objects = append(m.objects, id)
	sort.Slice(m.objects, func(i, j int) bool { return m.objects[i] < m.objects[j] })
}

func styleFor(st contentengine.LoadStatus) lipgloss.Style {
	switch st {
	case contentengine.StatusLoading:
		return loadingStyle
	case contentengine.StatusCompleted:
		return completedStyle
	case contentengine.StatusError:
		return errorStyle
	default:
		return noneStyle
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Content Engine"))
	b.WriteString(fmt.Sprintf("  generation %d\n\n", m.e.Generation()))

	b.WriteString("Objects:\n")
	if len(m.objects) == 0 {
		b.WriteString(noneStyle.Render("  (none requested)"))
		b.WriteString("\n")
	}
	for _, id := range m.objects {
		st := m.e.GetObjectStatus(id)
		b.WriteString(fmt.Sprintf("  %-8d %s\n", id, styleFor(st).Render(st.String())))
	}

	if len(m.scenes) > 0 {
		b.WriteString("\nScenes:\n")
		ids := make([]contentengine.SceneID, 0, len(m.scenes))
		for id := range m.scenes {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			st := m.scenes[id].Status()
			b.WriteString(fmt.Sprintf("  %-8d %s\n", id, styleFor(st).Render(st.String())))
		}
	}

	if m.mode != modeIdle {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter submit • esc cancel"))
	} else {
		if m.message != "" {
			b.WriteString("\n")
			b.WriteString(helpStyle.Render(m.message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("l load • r release • s scene • u unload scene • q quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func runInteractive(manifest, root string, tick time.Duration, concurrency int64, wasm bool) error {
	e, shutdown, err := newEngine(manifest, root, concurrency, wasm, zap.NewNop())
	if err != nil {
		return err
	}
	e.Initialize()

	p := tea.NewProgram(newInteractiveModel(e, shutdown, tick), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
