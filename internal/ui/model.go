// ABOUTME: Bubbletea model for the playback status TUI
// ABOUTME: Holds stream geometry, playback position and volume state
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	debugStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Model represents the TUI state
type Model struct {
	// Source
	file string

	// Stream
	codec      string
	sampleRate int
	channels   int
	bitDepth   int

	// Geometry
	frequencyRange int
	upperLimit     int
	tableSize      int
	selectorMode   string
	bitrate        int

	// Playback
	state    string
	looping  bool
	position int64
	total    int64
	volume   int
	muted    bool

	// Stats
	frames  int64
	written int64

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	volumeCtrl *VolumeControl
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
		if m.state == StateFinished {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += styled(headerStyle, m.renderHeader())
	s += m.renderStreamInfo()
	s += m.renderControls()
	s += m.renderStats()

	if m.showDebug {
		s += styled(debugStyle, m.renderDebug())
	}

	s += styled(helpStyle, m.renderHelp())

	return s
}

// styled renders a newline-terminated block with style
func styled(style lipgloss.Style, block string) string {
	return style.Render(strings.TrimSuffix(block, "\n")) + "\n"
}

// renderHeader renders the file and playback state
func (m Model) renderHeader() string {
	state := m.state
	if state == "" {
		state = StateIdle
	}
	if m.looping {
		state += " (loop)"
	}

	return fmt.Sprintf(`┌─ SMD Player ─────────────────────────────────────────┐
│ File:   %-44s │
│ State:  %-44s │
├──────────────────────────────────────────────────────┤
`, truncate(m.file, 44), state)
}

// renderStreamInfo renders the format and frame geometry
func (m Model) renderStreamInfo() string {
	if m.codec == "" {
		return "│ No stream                                            │\n"
	}

	format := fmt.Sprintf("%s %dHz %s %d-bit",
		m.codec, m.sampleRate, channelName(m.channels), m.bitDepth)
	geometry := fmt.Sprintf("range %d, limit %d, table %d (%s)",
		m.frequencyRange, m.upperLimit, m.tableSize, m.selectorMode)

	s := fmt.Sprintf("│ Format:   %-42s │\n", truncate(format, 42))
	s += fmt.Sprintf("│ Geometry: %-42s │\n", truncate(geometry, 42))
	s += fmt.Sprintf("│ Bitrate:  %-42s │\n", fmt.Sprintf("%.1f kbps", float64(m.bitrate)/1000))
	return s
}

// renderControls renders progress and volume
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " 🔇"
	}

	elapsed := m.elapsed()
	length := m.length()
	progress := 0
	if length > 0 {
		progress = int(min(elapsed*100/length, 100))
	}

	return fmt.Sprintf("│                                                      │\n"+
		"│ Time:   [%s] %s / %s%-12s │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n",
		renderBar(progress, 100, 20), formatDuration(elapsed), formatDuration(length), "",
		renderBar(m.volume, 100, 10), m.volume, muteIcon, "")
}

// renderStats renders playback statistics
func (m Model) renderStats() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Stats:  Frames: %d  Written: %d%-18s │
│                                                      │
`, m.frames, m.written, "")
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  m:Mute  d:Debug  q:Quit                  │
└──────────────────────────────────────────────────────┘
`
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf(`│ DEBUG:                                               │
│   Position: %d / %d samples%-20s │
│   Window:   %dx%d%-34s │
`, m.position, m.total, "", m.width, m.height, "")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.volumeCtrl != nil {
			select {
			case m.volumeCtrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
			m.sendVolume()
		}
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
			m.sendVolume()
		}
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// sendVolume forwards the current volume to the player without blocking.
func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.File != "" {
		m.file = msg.File
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Looping != nil {
		m.looping = *msg.Looping
	}
	if msg.Codec != "" {
		m.codec = msg.Codec
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	if msg.FrequencyRange != 0 {
		m.frequencyRange = msg.FrequencyRange
		m.upperLimit = msg.UpperLimit
		m.tableSize = msg.TableSize
		m.selectorMode = msg.SelectorMode
		m.bitrate = msg.Bitrate
	}
	if msg.Total != 0 {
		m.total = msg.Total
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	if msg.Frames != 0 {
		m.position = msg.Position
		m.frames = msg.Frames
		m.written = msg.Written
	}
}

// elapsed is the playback position within the current pass.
func (m Model) elapsed() time.Duration {
	if m.sampleRate == 0 {
		return 0
	}
	pos := m.position
	if m.total > 0 && m.looping {
		pos %= m.total
	}
	return time.Duration(pos) * time.Second / time.Duration(m.sampleRate)
}

func (m Model) length() time.Duration {
	if m.sampleRate == 0 {
		return 0
	}
	return time.Duration(m.total) * time.Second / time.Duration(m.sampleRate)
}

// Playback states
const (
	StateIdle     = "idle"
	StatePlaying  = "playing"
	StateFinished = "finished"
)

// StatusMsg updates TUI state
type StatusMsg struct {
	File           string
	State          string
	Looping        *bool
	Codec          string
	SampleRate     int
	Channels       int
	BitDepth       int
	FrequencyRange int
	UpperLimit     int
	TableSize      int
	SelectorMode   string
	Bitrate        int
	Total          int64
	Volume         int
	Position       int64
	Frames         int64
	Written        int64
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
