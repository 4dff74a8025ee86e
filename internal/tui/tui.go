// Package tui provides a Bubble Tea terminal user interface for
// browsing bensound channels and downloading songs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/velvetear/bensound-downloader/internal/bensound"
	"github.com/velvetear/bensound-downloader/internal/config"
	"github.com/velvetear/bensound-downloader/internal/download"
	"github.com/velvetear/bensound-downloader/internal/http"
	"github.com/velvetear/bensound-downloader/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	songStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
)

// State represents the current UI state.
type State int

const (
	StateLoadingChannels State = iota
	StateChannels
	StateLoadingSongs
	StateSongs
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// eventBuffer collects progress events from download goroutines so the
// model can drain them on its own schedule during ticks.
type eventBuffer struct {
	mu     sync.Mutex
	events []download.ProgressEvent
}

func (b *eventBuffer) add(e download.ProgressEvent) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *eventBuffer) drain() []download.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	client   *bensound.Client
	logs     []LogEntry
	err      error

	// Browsing state
	channels       []model.Channel
	channelCursor  int
	songs          []*model.Song
	songCursor     int
	currentChannel string
	skippedPages   int
	skippedBlocks  int

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager
	events  *eventBuffer

	// Download progress
	totalFiles      int32
	downloadedFiles int32
	totalBytes      int64
	receivedBytes   int64

	// Options
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	httpClient := http.NewClientWithUserAgent(settings.RequestTimeout(), settings.UserAgent)
	client := bensound.New(bensound.Config{
		BaseURL: settings.BaseURL,
		HTTP:    httpClient,
	})

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateLoadingChannels,
		spinner:  sp,
		progress: prog,
		settings: settings,
		client:   client,
		events:   &eventBuffer{},
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadChannels(), m.spinner.Tick)
}

// Message types
type (
	// ChannelsMsg is sent when channel discovery completes.
	ChannelsMsg struct {
		Channels []model.Channel
		Err      error
	}

	// SongsMsg is sent when a channel traversal completes.
	SongsMsg struct {
		Channel string
		Songs   []*model.Song
		Report  *bensound.Report
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Err error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		if newModel, cmd, handled := m.handleKey(msg); handled {
			return newModel, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ChannelsMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.channels = msg.Channels
			m.channelCursor = 0
			m.state = StateChannels
		}

	case SongsMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.currentChannel = msg.Channel
			m.songs = msg.Songs
			m.songCursor = 0
			m.skippedPages = len(msg.Report.PageErrors)
			m.skippedBlocks = len(msg.Report.BlockErrors)
			m.state = StateSongs
		}

	case DownloadDoneMsg:
		m.drainEvents()
		m.syncProgress()
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateDownloading {
			m.drainEvents()
			m.syncProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles) / float64(m.totalFiles)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses; the bool result reports whether the
// key was consumed.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return m, tea.Quit, true

	case "q", "esc":
		if m.state == StateDownloading || m.state == StateLoadingSongs || m.state == StateLoadingChannels {
			m.cancel()
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
			return m, nil, true
		}
		return m, tea.Quit, true

	case "up", "k":
		switch m.state {
		case StateChannels:
			if m.channelCursor > 0 {
				m.channelCursor--
			}
		case StateSongs:
			if m.songCursor > 0 {
				m.songCursor--
			}
		}
		return m, nil, true

	case "down", "j":
		switch m.state {
		case StateChannels:
			if m.channelCursor < len(m.channels)-1 {
				m.channelCursor++
			}
		case StateSongs:
			if m.songCursor < len(m.songs)-1 {
				m.songCursor++
			}
		}
		return m, nil, true

	case "enter":
		switch m.state {
		case StateChannels:
			if len(m.channels) > 0 {
				m.state = StateLoadingSongs
				return m, tea.Batch(m.loadSongs(m.channels[m.channelCursor].Name), m.spinner.Tick), true
			}
		case StateSongs:
			if len(m.songs) > 0 {
				return m.beginDownload(m.songs[m.songCursor : m.songCursor+1])
			}
		}
		return m, nil, true

	case "d":
		if m.state == StateSongs && len(m.songs) > 0 {
			return m.beginDownload(m.songs[m.songCursor : m.songCursor+1])
		}
		return m, nil, true

	case "a":
		if m.state == StateSongs && len(m.songs) > 0 {
			return m.beginDownload(m.songs)
		}
		return m, nil, true

	case "b":
		if m.state == StateSongs || m.state == StateComplete || m.state == StateError {
			m.state = StateChannels
			m.logs = nil
			m.err = nil
			if m.ctx.Err() != nil {
				m.ctx, m.cancel = context.WithCancel(context.Background())
			}
			if len(m.channels) == 0 {
				m.state = StateLoadingChannels
				return m, tea.Batch(m.loadChannels(), m.spinner.Tick), true
			}
		}
		return m, nil, true

	case "r":
		switch m.state {
		case StateChannels, StateError:
			m.state = StateLoadingChannels
			m.logs = nil
			m.err = nil
			if m.ctx.Err() != nil {
				m.ctx, m.cancel = context.WithCancel(context.Background())
			}
			return m, tea.Batch(m.loadChannels(), m.spinner.Tick), true
		case StateSongs:
			m.state = StateLoadingSongs
			return m, tea.Batch(m.loadSongs(m.currentChannel), m.spinner.Tick), true
		}
		return m, nil, true

	case "v":
		m.verbose = !m.verbose
		return m, nil, true
	}

	return m, nil, false
}

// beginDownload builds a fresh manager for the selection and kicks off
// the download plus the progress ticker.
func (m Model) beginDownload(songs []*model.Song) (Model, tea.Cmd, bool) {
	m.state = StateDownloading
	m.logs = nil
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.totalBytes = 0

	m.manager = download.NewManager(m.settings, m.events.add)
	m.manager.Queue(m.currentChannel, songs...)

	return m, tea.Batch(m.runDownload(), m.tickProgress(), m.spinner.Tick), true
}

// loadChannels discovers the channel list in the background.
func (m *Model) loadChannels() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		channels, err := client.DiscoverChannels(ctx)
		return ChannelsMsg{Channels: channels, Err: err}
	}
}

// loadSongs traverses one channel in the background.
func (m *Model) loadSongs(channel string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		songs, report, err := client.ChannelSongs(ctx, channel)
		return SongsMsg{Channel: channel, Songs: songs, Report: report, Err: err}
	}
}

// runDownload sizes the queue and downloads it in the background.
func (m *Model) runDownload() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		manager.ComputeTotals(ctx)
		err := manager.Start(ctx)
		return DownloadDoneMsg{Err: err}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// drainEvents moves buffered manager events into the visible log tail.
func (m *Model) drainEvents() {
	for _, event := range m.events.drain() {
		if event.Level == download.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	}
	// Keep only last 10 logs
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

// syncProgress copies the manager's counters into the model.
func (m *Model) syncProgress() {
	if m.manager == nil {
		return
	}
	received, total, files, totalFiles := m.manager.Progress()
	m.receivedBytes = received
	m.totalBytes = total
	m.downloadedFiles = files
	m.totalFiles = totalFiles
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ Bensound Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Browse and download royalty-free music from bensound.com"))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoadingChannels:
		b.WriteString(m.viewLoading("Discovering channels..."))
	case StateChannels:
		b.WriteString(m.viewChannels())
	case StateLoadingSongs:
		b.WriteString(m.viewLoading(fmt.Sprintf("Fetching %s pages...", m.channels[m.channelCursor].Name)))
	case StateSongs:
		b.WriteString(m.viewSongs())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewLoading(message string) string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(message))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewChannels() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Channels (%d):", len(m.channels))))
	b.WriteString("\n\n")

	for i, ch := range m.channels {
		cursor := "  "
		line := ch.Name
		if i == m.channelCursor {
			cursor = cursorStyle.Render("> ")
			line = cursorStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	return b.String()
}

func (m Model) viewSongs() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%s — %d songs", m.currentChannel, len(m.songs))))
	if m.skippedPages > 0 || m.skippedBlocks > 0 {
		b.WriteString(warningStyle.Render(fmt.Sprintf("  (%d pages, %d blocks skipped)", m.skippedPages, m.skippedBlocks)))
	}
	b.WriteString("\n\n")

	for i, song := range m.songs {
		cursor := "  "
		line := fmt.Sprintf("%s %s", song.Title, dimStyle.Render(song.Length))

		var badges []string
		if song.ForDownload {
			badges = append(badges, successStyle.Render("[free]"))
		}
		if song.ForPurchase {
			badges = append(badges, warningStyle.Render("[license]"))
		}
		if len(badges) > 0 {
			line += " " + strings.Join(badges, " ")
		}

		if i == m.songCursor {
			cursor = cursorStyle.Render("> ")
			line = songStyle.Render(song.Title) + line[len(song.Title):]
		}
		b.WriteString(cursor + line + "\n")
	}

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Downloading from %s...", m.currentChannel)))
	b.WriteString("\n\n")

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.downloadedFiles,
		m.totalFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"Download Complete\n\n"+
			"Channel: %s\n"+
			"Files: %d\n"+
			"Size: %.2f MB",
		m.currentChannel,
		m.downloadedFiles,
		float64(m.receivedBytes)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateChannels:
		return "↑/↓: move • enter: open channel • r: reload • q: quit"
	case StateSongs:
		return "↑/↓: move • d/enter: download song • a: download all • b: back • r: reload • v: verbose • q: quit"
	case StateLoadingChannels, StateLoadingSongs, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "b: back to channels • r: reload • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
